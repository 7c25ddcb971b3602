// Package models defines server-side data models.
package models

import "time"

// Item is the only persisted entity. ID and CreatedAt are assigned by the
// server at creation and never change afterwards. A nil Description means
// "absent", which is distinct from an empty string.
type Item struct {
	ID          string
	Name        string
	Description *string
	CreatedAt   time.Time
}
