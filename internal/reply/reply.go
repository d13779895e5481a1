// Package reply renders operation outcomes into the text sent back to the
// user.
package reply

import (
	"fmt"
	"strings"

	"book-chatter/internal/catalog"
)

type Kind int

const (
	Added Kind = iota
	Duplicate
	Deleted
	NotFound
	PositionFound
	PositionEmpty
	Recap
	Recommendation
	ParseError
	Passthrough
)

// Outcome is the tagged result of one dispatched operation. Which fields
// are meaningful depends on Kind.
type Outcome struct {
	Kind Kind
	Book *catalog.Book
	// Text carries generated content (recap, recommendation reasoning,
	// passthrough chat) or a lookup key (shelf code, title/author pair).
	Text string
	// Hint is the usage hint for ParseError outcomes.
	Hint string
}

const AddUsageHint = "add book: bn: <title>; at: <author>"
const DeleteUsageHint = "delete book: bn: <title>; at: <author>"

// Format is pure: outcome in, reply text out.
func Format(o Outcome) string {
	switch o.Kind {
	case Added:
		b := o.Book
		return fmt.Sprintf("✅ Added %q by %s\nCategory: %s\nShelf: %s", b.Title, b.Author, b.Category, b.Position)
	case Duplicate:
		b := o.Book
		return fmt.Sprintf("❌ %q by %s is already in the catalog.", b.Title, b.Author)
	case Deleted:
		b := o.Book
		return fmt.Sprintf("🗑️ Deleted %q by %s.", b.Title, b.Author)
	case NotFound:
		if o.Text != "" {
			return fmt.Sprintf("❌ Nothing found for %s.", o.Text)
		}
		return "❌ Nothing found."
	case PositionFound:
		b := o.Book
		return fmt.Sprintf("📍 Shelf %s: %q by %s.", b.Position, b.Title, b.Author)
	case PositionEmpty:
		return fmt.Sprintf("📭 Shelf %s is empty.", strings.ToUpper(o.Text))
	case Recap:
		b := o.Book
		return fmt.Sprintf("📖 %q by %s:\n%s", b.Title, b.Author, o.Text)
	case Recommendation:
		b := o.Book
		s := fmt.Sprintf("📚 Try %q by %s (shelf %s).", b.Title, b.Author, b.Position)
		if o.Text != "" {
			s += "\n" + o.Text
		}
		return s
	case ParseError:
		return "❌ Wrong syntax. Use: " + o.Hint
	case Passthrough:
		return o.Text
	}
	return "❌ Nothing found."
}
