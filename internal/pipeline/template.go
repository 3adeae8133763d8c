package pipeline

import (
	"fmt"
	"strings"
)

// Template is a prompt with {name} placeholders. "{{" and "}}" render as
// literal braces.
type Template struct {
	segments     []segment
	placeholders []string
}

type segment struct {
	text        string
	placeholder bool
}

// ParseTemplate splits a template into literal text and placeholders.
func ParseTemplate(src string) (*Template, error) {
	t := &Template{}
	seen := map[string]bool{}

	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			t.segments = append(t.segments, segment{text: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '{' && i+1 < len(src) && src[i+1] == '{':
			literal.WriteByte('{')
			i++
		case c == '}' && i+1 < len(src) && src[i+1] == '}':
			literal.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(src[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unclosed placeholder at offset %d", i)
			}
			name := src[i+1 : i+1+end]
			if !validName(name) {
				return nil, fmt.Errorf("invalid placeholder %q at offset %d", name, i)
			}
			flush()
			t.segments = append(t.segments, segment{text: name, placeholder: true})
			if !seen[name] {
				seen[name] = true
				t.placeholders = append(t.placeholders, name)
			}
			i += end + 1
		case c == '}':
			return nil, fmt.Errorf("unmatched '}' at offset %d", i)
		default:
			literal.WriteByte(c)
		}
	}
	flush()

	return t, nil
}

// Placeholders lists the distinct variable names in first-use order.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.placeholders...)
}

// Render substitutes every placeholder. A missing variable is an error.
func (t *Template) Render(vars map[string]string) (string, error) {
	var sb strings.Builder
	for _, seg := range t.segments {
		if !seg.placeholder {
			sb.WriteString(seg.text)
			continue
		}
		value, ok := vars[seg.text]
		if !ok {
			return "", fmt.Errorf("missing value for {%s}", seg.text)
		}
		sb.WriteString(value)
	}
	return sb.String(), nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
