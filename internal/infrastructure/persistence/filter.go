package persistence

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/distroerp/backend/internal/domain/shared"
)

// Column names come from API query parameters, so only plain
// identifiers are accepted before reaching the ORDER BY clause.
var sortColumnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// applyFilter applies ordering and pagination from a shared.Filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applyOrdering(query, filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	return query
}

func applyOrdering(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.OrderBy == "" || !sortColumnPattern.MatchString(filter.OrderBy) {
		return query
	}
	dir := "ASC"
	if strings.EqualFold(filter.OrderDir, "desc") {
		dir = "DESC"
	}
	return query.Order(fmt.Sprintf("%s %s", filter.OrderBy, dir))
}

// nextDocumentNumber produces the next sequential business number for the
// current year, formatted as PREFIX-YYYY-NNNNN. Callers run it inside the
// transaction that inserts the numbered row.
func nextDocumentNumber(db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", prefix, time.Now().Year())

	var last string
	err := db.Model(model).
		Select(column).
		Where(column+" LIKE ?", yearPrefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			var n int
			if _, err := fmt.Sscanf(parts[2], "%d", &n); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("%s%05d", yearPrefix, next), nil
}
