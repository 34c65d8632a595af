package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	git "github.com/go-git/go-git/v5"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
	"pageforge/internal/publish/githost"
)

// SubdirPublisher keeps every project as a subdirectory of one fixed
// repository whose Pages site serves them all. The base repository must
// already exist and belong to the configured account.
type SubdirPublisher struct {
	host     *githost.Client
	opts     Options
	baseRepo string
	log      logger.Logger
}

func NewSubdirPublisher(host *githost.Client, opts Options, baseRepo string, log logger.Logger) *SubdirPublisher {
	return &SubdirPublisher{
		host:     host,
		opts:     opts.withDefaults(),
		baseRepo: baseRepo,
		log:      log.With("component", "publisher", "strategy", "subdir", "base_repo", baseRepo),
	}
}

// Begin clones the base repository and resolves the project's subdirectory.
// The subdirectory's presence in the clone plays the role the repository
// existence check plays for the repo strategy.
func (p *SubdirPublisher) Begin(ctx context.Context, identity string, round int, stage string) (string, error) {
	exists, err := p.host.RepoExists(ctx, p.baseRepo)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", apperrors.Newf(apperrors.CodePublishFailed,
			"base repository %s/%s does not exist", p.opts.Owner, p.baseRepo)
	}

	_, err = git.PlainCloneContext(ctx, stage, false, &git.CloneOptions{
		URL:  p.opts.cloneURL(p.baseRepo),
		Auth: p.opts.auth(),
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to clone base repository %s/%s", p.opts.Owner, p.baseRepo), err)
	}

	workdir := filepath.Join(stage, identity)
	info, statErr := os.Stat(workdir)
	switch {
	case round <= 1 && statErr == nil && info.IsDir():
		return "", apperrors.Newf(apperrors.CodeProjectExists,
			"project %q already exists in %s/%s", identity, p.opts.Owner, p.baseRepo)
	case round > 1 && statErr != nil:
		return "", apperrors.Newf(apperrors.CodeProjectNotFound,
			"project %q not found in %s/%s", identity, p.opts.Owner, p.baseRepo)
	}

	if round <= 1 {
		if err := os.MkdirAll(workdir, 0o755); err != nil {
			return "", apperrors.Wrap(apperrors.CodePublishFailed, "failed to create project directory", err)
		}
	}
	return workdir, nil
}

func (p *SubdirPublisher) Publish(ctx context.Context, identity string, round int, stage string) (*Result, error) {
	repo, err := git.PlainOpen(stage)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to open base repository clone", err)
	}
	sha, err := commitAll(repo, commitMessage(round), p.opts.signature())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to commit staged files", err)
	}
	if err := push(ctx, repo, p.opts.auth()); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to push to %s/%s", p.opts.Owner, p.baseRepo), err)
	}
	p.log.Info("project pushed", "project", identity, "round", round, "sha", sha)

	if round <= 1 {
		// The base repository normally has Pages enabled already; a conflict
		// from the host confirms that and is not an error.
		if err := p.host.EnablePages(ctx, p.baseRepo, DefaultBranch); err != nil {
			p.log.Warn("could not enable static-site publication", "error", err)
		}
	}

	return &Result{
		RepoURL:   p.opts.repoURL(p.baseRepo),
		PagesURL:  fmt.Sprintf("https://%s.%s/%s/%s/", p.opts.Owner, p.opts.PagesDomain, p.baseRepo, identity),
		CommitSHA: sha,
		Branch:    DefaultBranch,
	}, nil
}
