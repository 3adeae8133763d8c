package review

import (
	"encoding/json"
	"strings"
)

// FindJSONObject returns the first balanced {...} span in text. Braces inside
// JSON string literals are ignored, so prose like "use {x}" before the object
// only matters if it opens an unbalanced brace.
func FindJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
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
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// Parse converts raw model output into a record. It never fails: output
// without a decodable JSON object yields DefaultRecord with OutcomeDegraded.
func Parse(raw string) (ReviewRecord, Outcome) {
	span, ok := FindJSONObject(raw)
	if !ok {
		return DefaultRecord(raw), OutcomeDegraded
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return DefaultRecord(raw), OutcomeDegraded
	}

	return Normalize(fields, raw), OutcomeParsed
}
