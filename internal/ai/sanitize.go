package ai

import "strings"

// Sanitize normalizes raw model output into the bare artifact text. Models
// sometimes wrap the answer in a fenced code block (```html ... ```); both
// fenced and unfenced responses must yield identical content. This is
// normalization, not parsing.
func Sanitize(raw string) string {
	out := strings.TrimSpace(raw)

	if after, ok := strings.CutPrefix(out, "```"); ok {
		// Drop the opening fence together with its language tag.
		if i := strings.IndexByte(after, '\n'); i >= 0 {
			out = after[i+1:]
		} else {
			out = strings.TrimPrefix(after, "html")
		}
	}

	out = strings.TrimSpace(out)
	out = strings.TrimSuffix(out, "```")
	return strings.TrimSpace(out)
}
