package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/santapan/api/internal/service"
	"github.com/santapan/api/internal/stock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// stockErrorResponse carries the fields clients need to render stock
// remediation next to the envelope fields.
type stockErrorResponse struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message"`
	Errors      []string       `json:"errors,omitempty"`
	Type        stock.Kind     `json:"type"`
	FoodID      string         `json:"foodId"`
	FoodName    string         `json:"foodName"`
	Requested   int32          `json:"requested"`
	Available   int32          `json:"available"`
	Severity    stock.Severity `json:"severity"`
	Suggestions []string       `json:"suggestions"`
	Retryable   bool           `json:"retryable"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// --- Writers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode JSON response", zap.Error(err))
	}
}

func writeOK(w http.ResponseWriter, status int, message string, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: errs})
}

func writeStockError(w http.ResponseWriter, e *stock.Error) {
	p := e.Presentation()
	writeJSON(w, p.Status, stockErrorResponse{
		Success:     false,
		Message:     p.Message,
		Errors:      []string{e.Error()},
		Type:        e.Kind,
		FoodID:      e.FoodID.String(),
		FoodName:    e.FoodName,
		Requested:   e.Requested,
		Available:   e.Available,
		Severity:    p.Severity,
		Suggestions: p.Suggestions,
		Retryable:   p.Retryable,
	})
}

// writeError maps a service error to its response. Errors with no mapping
// are logged under op and answered with a bare 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var stockErr *stock.Error
	if errors.As(err, &stockErr) {
		writeStockError(w, stockErr)
		return
	}
	var invErr *stock.InventoryError
	if errors.As(err, &invErr) {
		writeFail(w, http.StatusConflict, "stock cannot drop below reserved quantity", invErr.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrFoodNotFound):
		writeFail(w, http.StatusNotFound, "food not found")
	case errors.Is(err, service.ErrCartItemNotFound):
		writeFail(w, http.StatusNotFound, "cart item not found")
	case errors.Is(err, service.ErrOrderNotFound):
		writeFail(w, http.StatusNotFound, "order not found")
	case errors.Is(err, service.ErrInvalidTransition):
		writeFail(w, http.StatusConflict, err.Error())
	case isValidationError(err):
		writeFail(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error(op, zap.Error(err))
		writeFail(w, http.StatusInternalServerError, "internal server error")
	}
}

// isValidationError reports service errors caused by bad input.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyCart) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidStatus) ||
		errors.Is(err, service.ErrCategoryNotFound) ||
		errors.Is(err, service.ErrInvalidPrice) ||
		errors.Is(err, service.ErrInvalidMinStock) ||
		errors.Is(err, service.ErrInvalidFoodStatus) ||
		errors.Is(err, stock.ErrInvalidOperation)
}

// --- Request decoding ---

// decodeJSON decodes and validates the request body into dst. It writes the
// 400 response itself and returns false on failure. An empty body is
// accepted when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			writeFail(w, http.StatusBadRequest, "invalid request body")
			return false
		}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeFail(w, http.StatusBadRequest, "validation failed", fieldErrors(verrs)...)
			return false
		}
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) []string {
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fieldError(fe))
	}
	return out
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "uuid":
		return field + " must be a valid UUID"
	case "url":
		return field + " must be a valid URL"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// --- Helpers ---

// parsePage reads limit and offset. Limit defaults to 20 and is capped at 100.
func parsePage(r *http.Request) (limit, offset int32) {
	limit = 20
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = int32(min(v, 100))
		}
	}
	if s := r.URL.Query().Get("offset"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func numericToString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}
