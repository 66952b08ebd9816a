package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so every query is
// recorded as a child span of the request span. Query variables are
// excluded from span attributes.
func RegisterDBTracing(db *gorm.DB, dbName string) error {
	return db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName(dbName),
		otelgorm.WithoutQueryVariables(),
	))
}
