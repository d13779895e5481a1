// Package vocab holds the closed category vocabulary and the rules that map
// arbitrary category strings onto it.
package vocab

import "strings"

// Unknown is the catch-all label. Every input that matches nothing else
// normalizes to it.
const Unknown = "Unknown"

// Labels is the fixed vocabulary, in rule priority order. Unknown is not
// listed; it is the fallback, not a choice.
var Labels = []string{
	"History",
	"Psychology",
	"Literature",
	"Science",
	"Philosophy",
	"Economics",
	"Politics",
}

// rule maps trigger substrings to a vocabulary label. Order is significant:
// the first matching rule wins, so the table doubles as the tie-break policy.
// Triggers cover both English and Vietnamese because the catalog this grew
// out of was bilingual.
type rule struct {
	label    string
	triggers []string
}

var rules = []rule{
	{"History", []string{"history", "historical", "war", "lịch sử", "lich su", "chiến tranh"}},
	{"Psychology", []string{"psychology", "psycholog", "mind", "habit", "tâm lý", "tam ly"}},
	{"Literature", []string{"literature", "novel", "fiction", "poem", "poetry", "văn học", "van hoc"}},
	{"Science", []string{"science", "physics", "biology", "chemistry", "khoa học", "khoa hoc"}},
	{"Philosophy", []string{"philosophy", "philosoph", "triết", "triet"}},
	{"Economics", []string{"economics", "econom", "finance", "money", "kinh tế", "kinh te"}},
	{"Politics", []string{"politics", "politic", "government", "chính trị", "chinh tri"}},
}

// Vietnamese label aliases: the original catalog stored categories in
// Vietnamese, so exact matches on those still resolve.
var aliases = map[string]string{
	"lịch sử":   "History",
	"tâm lý":    "Psychology",
	"văn học":   "Literature",
	"khoa học":  "Science",
	"triết học": "Philosophy",
	"kinh tế":   "Economics",
	"chính trị": "Politics",
	"khác":      Unknown,
	"chưa rõ":   Unknown,
}

// Normalize maps an arbitrary category string onto the vocabulary. It is
// total: any input, including the empty string, yields exactly one label.
func Normalize(s string) string {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return Unknown
	}
	if in == strings.ToLower(Unknown) {
		return Unknown
	}
	for _, l := range Labels {
		if in == strings.ToLower(l) {
			return l
		}
	}
	if l, ok := aliases[in]; ok {
		return l
	}
	if l, ok := MatchKeywords(in); ok {
		return l
	}
	return Unknown
}

// MatchKeywords applies the ordered trigger rules to s and returns the first
// matching label. Used both by Normalize and as the non-generative fallback
// when inferring a category from title/author text.
func MatchKeywords(s string) (string, bool) {
	in := strings.ToLower(s)
	for _, r := range rules {
		for _, t := range r.triggers {
			if strings.Contains(in, t) {
				return r.label, true
			}
		}
	}
	return "", false
}

// Contains reports whether label is a vocabulary member (Unknown included).
func Contains(label string) bool {
	if label == Unknown {
		return true
	}
	for _, l := range Labels {
		if l == label {
			return true
		}
	}
	return false
}
