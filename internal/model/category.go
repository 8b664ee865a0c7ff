package model

import "time"

// Category is a group-scoped spending category. Transactions reference
// categories by name, so deleting one does not cascade.
type Category struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Icon      string
	Color     string
	GroupID   string
}
