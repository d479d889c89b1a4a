package enum

// ── Group A: State machines (enum types in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivery  = "delivery"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	FoodStatusActive   = "active"
	FoodStatusInactive = "inactive"
)

// ── Group B: Roles (CHECK constrained in DB) ──

const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
)

// ── Group C: Stock ledger operations (API only) ──

const (
	StockOperationAdd      = "add"
	StockOperationSubtract = "subtract"
)
