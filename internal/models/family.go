package models

import "time"

// Family is the root aggregate every member and relationship belongs to
type Family struct {
	ID          int64
	Name        string
	Description string
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
