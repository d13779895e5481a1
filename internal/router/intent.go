package router

import "strings"

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentAddBook       Intent = "add_book"
	IntentDeleteBook    Intent = "delete_book"
	IntentAskPosition   Intent = "ask_position"
	IntentAskRecap      Intent = "ask_recap"
	IntentSearchBook    Intent = "search_book"
	IntentRecommendBook Intent = "recommend_book"
	IntentSmallTalk     Intent = "small_talk"
	IntentOther         Intent = "other"
)

// parseIntent maps classifier output onto the enumeration, defaulting to
// Other for anything unrecognized.
func parseIntent(s string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentAddBook:
		return IntentAddBook
	case IntentDeleteBook:
		return IntentDeleteBook
	case IntentAskPosition:
		return IntentAskPosition
	case IntentAskRecap:
		return IntentAskRecap
	case IntentSearchBook:
		return IntentSearchBook
	case IntentRecommendBook:
		return IntentRecommendBook
	case IntentSmallTalk:
		return IntentSmallTalk
	default:
		return IntentOther
	}
}
