package persistence

import "fmt"

// allowedSortColumns lists columns clients may sort by, per table.
// Anything else falls back to created_at to keep ORDER BY injection-safe.
var allowedSortColumns = map[string]map[string]bool{
	"auctions": {
		"created_at":  true,
		"updated_at":  true,
		"start_at":    true,
		"end_at":      true,
		"current_bid": true,
		"title":       true,
	},
	"payment_requests": {
		"created_at":   true,
		"updated_at":   true,
		"submitted_at": true,
		"verified_at":  true,
	},
	"users": {
		"created_at": true,
		"name":       true,
		"email":      true,
	},
}

// sortClause builds a safe ORDER BY clause for the given table
func sortClause(table, orderBy, orderDir string) string {
	cols, ok := allowedSortColumns[table]
	if !ok || !cols[orderBy] {
		orderBy = "created_at"
	}
	if orderDir != "asc" {
		orderDir = "desc"
	}
	return fmt.Sprintf("%s %s", orderBy, orderDir)
}
