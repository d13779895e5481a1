package llm

import "encoding/json"

// ExtractJSON returns the first balanced {...} span of s that parses as a
// JSON object. Model output is frequently wrapped in prose or markdown
// fences, so the scan ignores everything outside the braces. The boolean is
// false when no such span exists.
func ExtractJSON(s string) (json.RawMessage, bool) {
	for start := 0; start < len(s); start++ {
		if s[start] != '{' {
			continue
		}
		end, ok := balancedEnd(s, start)
		if !ok {
			// Unclosed object; an inner object may still close.
			continue
		}
		candidate := s[start : end+1]
		if json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), true
		}
		start = end
	}
	return nil, false
}

// ExtractJSONInto unmarshals the first JSON object found in s into v.
func ExtractJSONInto(s string, v any) bool {
	raw, ok := ExtractJSON(s)
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// balancedEnd finds the index of the brace closing the object opened at
// start, tracking string literals and escapes so braces inside values do not
// count.
func balancedEnd(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
