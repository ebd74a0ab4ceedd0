package models

import "time"

// Event is a volunteering opportunity owned by a single NGO account.
type Event struct {
	ID                string    `db:"id" json:"id"`
	Title             string    `db:"title" json:"title"`
	Description       string    `db:"description" json:"description"`
	Date              time.Time `db:"date" json:"date"`
	StartTime         string    `db:"start_time" json:"start_time"`
	EndTime           string    `db:"end_time" json:"end_time"`
	Location          string    `db:"location" json:"location"`
	CreatedBy         string    `db:"created_by" json:"created_by"`
	CreatedByUsername string    `db:"created_by_username" json:"created_by_username"`
	IsPublished       bool      `db:"is_published" json:"is_published"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// EventFilter selects events. Zero value matches published events only.
type EventFilter struct {
	// OwnerID lists every event of that NGO regardless of publish state.
	OwnerID string
	Page    PageRequest
}
