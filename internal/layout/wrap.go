package layout

import "strings"

// wrap breaks text into lines no wider than width. Words are separated by
// any whitespace, including newlines; a word wider than a whole line is
// split between runes. Empty text yields no lines.
func wrap(m Measurer, text, fontName string, size, width float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var cur string
	for _, w := range words {
		switch {
		case cur == "":
			cur = w
		case m.Width(cur+" "+w, fontName, size) <= width:
			cur += " " + w
			continue
		default:
			lines = append(lines, cur)
			cur = w
		}

		if m.Width(cur, fontName, size) > width {
			pieces := splitWord(m, cur, fontName, size, width)
			lines = append(lines, pieces[:len(pieces)-1]...)
			cur = pieces[len(pieces)-1]
		}
	}
	return append(lines, cur)
}

// splitWord cuts word into chunks that each fit width, keeping at least
// one rune per chunk.
func splitWord(m Measurer, word, fontName string, size, width float64) []string {
	var out []string
	runes := []rune(word)
	start := 0
	for start < len(runes) {
		end := start + 1
		for end < len(runes) && m.Width(string(runes[start:end+1]), fontName, size) <= width {
			end++
		}
		out = append(out, string(runes[start:end]))
		start = end
	}
	return out
}
