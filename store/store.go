// Package store holds the gorm-backed persistence layer. Every store keyed
// by a natural key derives its row id deterministically so upserts are
// idempotent; JSON-shaped aggregates go through Valuer/Scanner columns.
package store

import "gorm.io/gorm"

// Migrate creates or updates every table this module persists to.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&sourceRow{},
		&custodyBorrowerRow{},
		&custodyBalanceRow{},
		&whitelistRow{},
		&collateralRow{},
		&liabilityRow{},
		&marketStateRow{},
		&wrapperStateRow{},
	)
}
