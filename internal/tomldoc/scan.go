package tomldoc

import "fmt"

// The unstable parser records raw byte ranges for scalar nodes only.
// Composite values (arrays, inline tables) get their spans from a small
// scanner instead. The input has already been parsed, so the scanner can
// assume well-formed TOML.

// scanValueStart returns the offset of the first byte of a value whose
// last key part ends at keyEnd, skipping the "=" and surrounding blanks.
func scanValueStart(src []byte, keyEnd int) (int, error) {
	i := keyEnd
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i >= len(src) || src[i] != '=' {
		return 0, fmt.Errorf("tomldoc: no value after key at offset %d", keyEnd)
	}
	i++
	for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
		i++
	}
	if i >= len(src) {
		return 0, fmt.Errorf("tomldoc: missing value at offset %d", keyEnd)
	}
	return i, nil
}

// scanCompositeEnd returns the offset just past a bracketed value ("[...]"
// or "{...}") starting at start. Strings and comments inside the value are
// skipped so brackets within them do not affect the balance.
func scanCompositeEnd(src []byte, start int) (int, error) {
	depth := 0
	i := start
	for i < len(src) {
		switch src[i] {
		case '[', '{':
			depth++
			i++
		case ']', '}':
			depth--
			i++
			if depth == 0 {
				return i, nil
			}
		case '"', '\'':
			end, err := scanStringEnd(src, i)
			if err != nil {
				return 0, err
			}
			i = end
		case '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		default:
			i++
		}
	}
	return 0, fmt.Errorf("tomldoc: unterminated value at offset %d", start)
}

// scanStringEnd returns the offset just past a TOML string starting at
// start, handling basic/literal and multi-line forms.
func scanStringEnd(src []byte, start int) (int, error) {
	q := src[start]
	if start+2 < len(src) && src[start+1] == q && src[start+2] == q {
		i := start + 3
		for i < len(src) {
			if q == '"' && src[i] == '\\' {
				i += 2
				continue
			}
			if src[i] == q && i+2 < len(src) && src[i+1] == q && src[i+2] == q {
				return i + 3, nil
			}
			i++
		}
		return 0, fmt.Errorf("tomldoc: unterminated multi-line string at offset %d", start)
	}
	for i := start + 1; i < len(src); i++ {
		if q == '"' && src[i] == '\\' {
			i++
			continue
		}
		if src[i] == q {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("tomldoc: unterminated string at offset %d", start)
}

// lineEnd returns the offset just past the line containing from.
func lineEnd(src []byte, from int) int {
	for i := from; i < len(src); i++ {
		if src[i] == '\n' {
			return i + 1
		}
	}
	return len(src)
}
