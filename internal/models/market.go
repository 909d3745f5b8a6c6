package models

// Market represents a prop market: a named target statistic to predict.
// Markets are immutable reference data seeded at ingestion time.
type Market struct {
	ID        int    `db:"id" json:"id"`
	Code      string `db:"code" json:"code" validate:"required"`
	StatField string `db:"stat_field" json:"stat_field" validate:"required"`
	Name      string `db:"name" json:"name" validate:"required"`
}
