// Package shelf computes capacity-bounded shelf codes.
package shelf

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Capacity is the number of books one shelf holds before the next one in
// the category opens.
const Capacity = 15

// placeholder letter for an empty category string.
const placeholder = "X"

// Allocate returns the shelf code for the next book of a category that
// already holds countInCategory books: the category's initial letter plus a
// 1-based shelf number. The count must come from the same critical section
// as the insert it supports (see catalog.Store.Add), otherwise two
// concurrent additions can land on the same slot.
func Allocate(category string, countInCategory int) string {
	letter := placeholder
	if category != "" {
		r, _ := utf8.DecodeRuneInString(category)
		letter = string(unicode.ToUpper(r))
	}
	n := countInCategory/Capacity + 1
	return fmt.Sprintf("%s%d", letter, n)
}
