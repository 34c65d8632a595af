package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	const page = "<!DOCTYPE html>\n<html>\n<body>hello</body>\n</html>"

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "unfenced output passes through",
			raw:  page,
			want: page,
		},
		{
			name: "html fence is stripped",
			raw:  "```html\n" + page + "\n```",
			want: page,
		},
		{
			name: "bare fence is stripped",
			raw:  "```\n" + page + "\n```",
			want: page,
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "\n\n  " + page + "  \n",
			want: page,
		},
		{
			name: "fenced and whitespace combined",
			raw:  "\n```html\n" + page + "\n```\n\n",
			want: page,
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "fence with nothing inside",
			raw:  "```html\n```",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.raw))
		})
	}
}

func TestSanitizeFencedMatchesUnfenced(t *testing.T) {
	const page = "<html><body><h1>todo</h1></body></html>"
	assert.Equal(t, Sanitize(page), Sanitize("```html\n"+page+"\n```"))
}
