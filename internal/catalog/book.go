// Package catalog defines the book record and the store interface the
// router talks to.
package catalog

import "time"

// Book is one catalog record. Category is normally a vocabulary label but
// may be "Unknown"; Position is a shelf code (letter + shelf number).
type Book struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Category  string    `json:"category"`
	Position  string    `json:"position"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
