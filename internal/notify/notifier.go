// Package notify delivers the completion payload to the caller-supplied
// evaluation callback with bounded retry and exponential backoff. The
// evaluator has no liveness guarantee, so delivery is retried up to the
// attempt budget; exhausting it fails the overall request.
package notify

import (
	"context"
	"net/http"
	"time"

	"pageforge/internal/common/httpclient"
	"pageforge/internal/common/logger"
)

// Payload is the completion report. Exactly one is delivered per
// successfully completed request.
type Payload struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

type Notifier struct {
	client       *httpclient.Client
	maxAttempts  int
	initialDelay time.Duration
	log          logger.Logger
}

func NewNotifier(client *httpclient.Client, maxAttempts int, initialDelay time.Duration, log logger.Logger) *Notifier {
	return &Notifier{
		client:       client,
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		log:          log.With("component", "notifier"),
	}
}

// Deliver POSTs the payload to url. Success is exactly an HTTP 200 from the
// callback; anything else, including transport errors, counts as a failed
// attempt followed by the backoff delay — the final attempt included, with no
// special-casing. Returns false once the attempt budget is exhausted.
func (n *Notifier) Deliver(ctx context.Context, url string, payload Payload) bool {
	delay := n.initialDelay
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		status, err := n.client.PostJSON(ctx, url, payload)
		if err == nil && status == http.StatusOK {
			n.log.Info("evaluation callback delivered", "url", url, "attempt", attempt)
			return true
		}
		n.log.Warn("evaluation callback attempt failed", "url", url, "attempt", attempt, "status", status, "error", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		delay *= 2
	}
	n.log.Error("evaluation callback delivery exhausted all attempts", "url", url, "attempts", n.maxAttempts)
	return false
}

// WorstCase returns the longest wall-clock time a full delivery cycle can
// take, used by the orchestrator to reserve budget for the mandatory
// notification step.
func (n *Notifier) WorstCase(perAttemptTimeout time.Duration) time.Duration {
	total := time.Duration(n.maxAttempts) * perAttemptTimeout
	delay := n.initialDelay
	for i := 0; i < n.maxAttempts; i++ {
		total += delay
		delay *= 2
	}
	return total
}
