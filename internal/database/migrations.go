package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// Indexes beyond the single-column ones declared on the models.
var indexes = []index{
	// Reminder sweep: open deliverables by due date
	{"deliverables", "idx_deliverables_status_due_date", "status, due_date"},

	// Organization scoping through sponsors
	{"sponsors", "idx_sponsors_organization_event", "organization_id, event_id"},

	// Admin lookup for digests
	{"profiles", "idx_profiles_organization_role", "organization_id, role"},

	// Template provisioning
	{"deliverable_templates", "idx_templates_tier_active", "package_tier, is_active"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", idx.table), zap.String("columns", idx.columns))
	}

	return nil
}
