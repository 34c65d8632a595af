// Package api hosts the HTTP surface and the request orchestrator that
// sequences generation, materialization, publication, verification and
// notification for one request.
package api

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
	"pageforge/internal/notify"
	"pageforge/internal/project"
	"pageforge/internal/publish"
)

// ArtifactGenerator is the LLM-backed generator contract.
type ArtifactGenerator interface {
	Generate(ctx context.Context, brief string, round int, existingArtifact string, attachmentNames []string) (string, error)
}

// ProjectMaterializer lays out one round's files in the working directory.
type ProjectMaterializer interface {
	Materialize(dir string, in project.Input) ([]string, error)
}

// LivenessChecker polls the published site URL, best effort.
type LivenessChecker interface {
	WaitLive(ctx context.Context, url string) bool
}

// CallbackNotifier delivers the completion payload to the evaluator.
type CallbackNotifier interface {
	Deliver(ctx context.Context, url string, payload notify.Payload) bool
}

// Options carries the orchestrator's own settings.
type Options struct {
	// Allowed is the static identity→secret allow-list, read-only.
	Allowed map[string]string
	// Owner is the account that owns published repositories (named in LICENSE files).
	Owner string
	// Budget is the overall wall-clock allowance per request.
	Budget time.Duration
	// NotifyReserve is the worst-case notifier duration; verification is
	// skipped when less than this remains of the budget.
	NotifyReserve time.Duration
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	generator    ArtifactGenerator
	materializer ProjectMaterializer
	publisher    publish.Publisher
	verifier     LivenessChecker
	notifier     CallbackNotifier
	opts         Options
	log          logger.Logger
}

func NewAPIHandler(
	gen ArtifactGenerator,
	mat ProjectMaterializer,
	pub publish.Publisher,
	verifier LivenessChecker,
	notifier CallbackNotifier,
	opts Options,
	log logger.Logger,
) *APIHandler {
	return &APIHandler{
		generator:    gen,
		materializer: mat,
		publisher:    pub,
		verifier:     verifier,
		notifier:     notifier,
		opts:         opts,
		log:          log.With("component", "orchestrator"),
	}
}

// DeployRequest is the wire shape of one generation-and-publish submission.
type DeployRequest struct {
	Email         string               `json:"email" binding:"required"`
	Secret        string               `json:"secret" binding:"required"`
	Task          string               `json:"task" binding:"required"`
	Brief         string               `json:"brief" binding:"required"`
	Round         int                  `json:"round"`
	Nonce         string               `json:"nonce"`
	EvaluationURL string               `json:"evaluation_url" binding:"required"`
	RepoURL       string               `json:"repo_url"`
	Attachments   []project.Attachment `json:"attachments"`
	Checks        []string             `json:"checks"`
}

type DeployResponse struct {
	Message   string `json:"message"`
	RepoURL   string `json:"repo_url"`
	PagesURL  string `json:"pages_url"`
	CommitSHA string `json:"commit_sha"`
}

// POST /api-endpoint
func (h *APIHandler) HandleDeployment(c *gin.Context) {
	start := time.Now()

	var req DeployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request body: " + err.Error()})
		return
	}
	if req.Round <= 0 {
		req.Round = 1
	}

	// Authentication comes before any resource is touched.
	if secret, ok := h.opts.Allowed[req.Email]; !ok || secret != req.Secret {
		c.JSON(http.StatusForbidden, gin.H{"detail": "Secret mismatch"})
		return
	}

	log := h.log.With("request_id", requestIDFrom(c), "task", req.Task, "round", req.Round)

	resp, err := h.run(c.Request.Context(), &req, start, log)
	if err != nil {
		log.WithError(err).Error("request failed")
		c.JSON(apperrors.HTTPStatus(err), gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// run executes the pipeline for one authenticated request. The staging
// directory is removed on every exit path.
func (h *APIHandler) run(ctx context.Context, req *DeployRequest, start time.Time, log logger.Logger) (*DeployResponse, error) {
	identity, err := h.resolveIdentity(req)
	if err != nil {
		return nil, err
	}
	log = log.With("project", identity)

	stage, err := os.MkdirTemp("", "pageforge-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to create staging directory", err)
	}
	defer os.RemoveAll(stage)

	workdir, err := h.publisher.Begin(ctx, identity, req.Round, stage)
	if err != nil {
		return nil, err
	}

	existing := ""
	if req.Round > 1 {
		// Absence of a prior artifact is tolerated; the generator must
		// produce a full new one either way.
		if data, readErr := os.ReadFile(filepath.Join(workdir, project.ArtifactFile)); readErr == nil {
			existing = string(data)
		} else {
			log.Warn("prior artifact not readable, generating from scratch", "error", readErr)
		}
	}

	artifact, err := h.generator.Generate(ctx, req.Brief, req.Round, existing, attachmentNames(req.Attachments))
	if err != nil {
		return nil, err
	}

	written, err := h.materializer.Materialize(workdir, project.Input{
		Artifact:    artifact,
		Round:       req.Round,
		Task:        req.Task,
		Brief:       req.Brief,
		Owner:       h.opts.Owner,
		Checks:      req.Checks,
		Attachments: req.Attachments,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to stage project files", err)
	}
	log.Info("project materialized", "files", written)

	result, err := h.publisher.Publish(ctx, identity, req.Round, stage)
	if err != nil {
		return nil, err
	}
	log.Info("project published", "repo_url", result.RepoURL, "sha", result.CommitSHA)

	// Verification is best effort and is skipped when the remaining budget
	// must be preserved for the mandatory notification step.
	if remaining := h.opts.Budget - time.Since(start); remaining > h.opts.NotifyReserve {
		if !h.verifier.WaitLive(ctx, result.PagesURL) {
			log.Warn("published site not confirmed live", "pages_url", result.PagesURL)
		}
	} else {
		log.Warn("skipping liveness verification to preserve notification budget")
	}

	delivered := h.notifier.Deliver(ctx, req.EvaluationURL, notify.Payload{
		Email:     req.Email,
		Task:      req.Task,
		Round:     req.Round,
		Nonce:     req.Nonce,
		RepoURL:   result.RepoURL,
		CommitSHA: result.CommitSHA,
		PagesURL:  result.PagesURL,
	})
	if !delivered {
		return nil, apperrors.New(apperrors.CodeNotifyFailed, "failed to POST to evaluation URL")
	}

	return &DeployResponse{
		Message:   "Success",
		RepoURL:   result.RepoURL,
		PagesURL:  result.PagesURL,
		CommitSHA: result.CommitSHA,
	}, nil
}

// resolveIdentity derives the project identity: slug of (task, nonce) on
// round 1, trailing segment of the prior project URL afterwards.
func (h *APIHandler) resolveIdentity(req *DeployRequest) (string, error) {
	if req.Round <= 1 {
		return project.DeriveIdentity(req.Task, req.Nonce), nil
	}
	if req.RepoURL == "" {
		return "", apperrors.Newf(apperrors.CodeBadRequest, "repo_url is required for round %d", req.Round)
	}
	return project.IdentityFromURL(req.RepoURL)
}

func attachmentNames(attachments []project.Attachment) []string {
	if len(attachments) == 0 {
		return nil
	}
	names := make([]string, 0, len(attachments))
	for _, att := range attachments {
		names = append(names, att.Name)
	}
	return names
}
