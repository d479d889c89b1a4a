package cache

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	foodDetailPrefix   = "food:detail:"
	foodListPrefix     = "foods:v"
	foodListVersionKey = "foods:version"
	categoriesKey      = "categories:active"
)

// Keys builds every cache key the catalog uses.
var Keys keys

type keys struct{}

func (keys) Food(id uuid.UUID) string {
	return foodDetailPrefix + id.String()
}

// FoodList keys a page of the food list under a list generation.
func (keys) FoodList(version int64, categoryID, search string, limit, offset int32) string {
	return fmt.Sprintf("%s%d:c:%s:s:%s:l:%d:o:%d",
		foodListPrefix, version, categoryID, strings.ToLower(strings.TrimSpace(search)), limit, offset)
}

func (keys) Categories() string {
	return categoriesKey
}
