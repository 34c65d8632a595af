// Package verify polls a published site URL until it serves successfully or
// a deadline elapses. Verification is advisory: static-site propagation delay
// is outside this system's control, so exhaustion is not an error.
package verify

import (
	"context"
	"net/http"
	"time"

	"pageforge/internal/common/httpclient"
	"pageforge/internal/common/logger"
)

type Verifier struct {
	client       *httpclient.Client
	maxAttempts  int
	pollInterval time.Duration
	log          logger.Logger
}

func NewVerifier(client *httpclient.Client, maxAttempts int, pollInterval time.Duration, log logger.Logger) *Verifier {
	return &Verifier{
		client:       client,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		log:          log.With("component", "verifier"),
	}
}

// WaitLive returns true once url answers with a clean 200. Network errors and
// any other status count as "not yet ready". Returns false when attempts are
// exhausted or the context is done.
func (v *Verifier) WaitLive(ctx context.Context, url string) bool {
	for attempt := 1; attempt <= v.maxAttempts; attempt++ {
		status, err := v.client.GetStatus(ctx, url)
		if err == nil && status == http.StatusOK {
			v.log.Info("site is live", "url", url, "attempt", attempt)
			return true
		}
		v.log.Debug("site not live yet", "url", url, "attempt", attempt, "status", status, "error", err)

		if attempt == v.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(v.pollInterval):
		}
	}
	v.log.Warn("site did not become live within the polling deadline", "url", url, "attempts", v.maxAttempts)
	return false
}
