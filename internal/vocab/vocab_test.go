package vocab

import "testing"

func TestNormalizeExactMatch(t *testing.T) {
	if got := Normalize("History"); got != "History" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize("  literature "); got != "Literature" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize("ECONOMICS"); got != "Economics" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeVietnameseAliases(t *testing.T) {
	cases := map[string]string{
		"Lịch sử":   "History",
		"văn học":   "Literature",
		"Triết học": "Philosophy",
		"khác":      Unknown,
		"Chưa rõ":   Unknown,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeKeywordRules(t *testing.T) {
	if got := Normalize("a book about the war"); got != "History" {
		t.Fatalf("got %q", got)
	}
	if got := Normalize("pop-science physics"); got != "Science" {
		t.Fatalf("got %q", got)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	inputs := []string{"", "   ", "garbage", "🤷", "12345", "lorem ipsum dolor"}
	for _, in := range inputs {
		got := Normalize(in)
		if !Contains(got) {
			t.Fatalf("Normalize(%q) = %q, outside vocabulary", in, got)
		}
	}
	if Normalize("") != Unknown {
		t.Fatalf("empty input must map to the catch-all")
	}
}

func TestRuleOrderIsTheTieBreak(t *testing.T) {
	// Matches both the History and Science rule sets; History is listed
	// first and must win.
	if got := Normalize("history of science"); got != "History" {
		t.Fatalf("got %q", got)
	}
}

func TestMatchKeywordsNoMatch(t *testing.T) {
	if l, ok := MatchKeywords("nothing relevant"); ok {
		t.Fatalf("unexpected match %q", l)
	}
}
