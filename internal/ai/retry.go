package ai

import (
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// shouldRetry reports whether a generation failure looks transient enough to
// be worth one more attempt (rate limits, upstream 5xx, timeouts).
func shouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= 500 || apiErr.HTTPStatusCode == 429
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"rate limit",
		"timeout",
		"connection reset by peer",
		"context deadline exceeded",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
