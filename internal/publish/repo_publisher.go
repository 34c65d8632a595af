package publish

import (
	"context"
	"fmt"

	git "github.com/go-git/go-git/v5"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
	"pageforge/internal/publish/githost"
)

// RepoPublisher publishes each project as its own repository under the
// configured account. This is the default strategy.
type RepoPublisher struct {
	host *githost.Client
	opts Options
	log  logger.Logger
}

func NewRepoPublisher(host *githost.Client, opts Options, log logger.Logger) *RepoPublisher {
	return &RepoPublisher{
		host: host,
		opts: opts.withDefaults(),
		log:  log.With("component", "publisher", "strategy", "repo"),
	}
}

// Begin checks remote state before any generation work is spent. Round 1
// fails fast if the derived identity already has a repository; later rounds
// clone the existing repository into the staging directory, which then serves
// as the working tree.
func (p *RepoPublisher) Begin(ctx context.Context, identity string, round int, stage string) (string, error) {
	exists, err := p.host.RepoExists(ctx, identity)
	if err != nil {
		return "", err
	}

	if round <= 1 {
		if exists {
			return "", apperrors.Newf(apperrors.CodeProjectExists,
				"repository %s/%s already exists", p.opts.Owner, identity)
		}
		return stage, nil
	}

	if !exists {
		return "", apperrors.Newf(apperrors.CodeProjectNotFound,
			"repository %s/%s not found", p.opts.Owner, identity)
	}

	p.log.Info("cloning existing repository", "repo", identity)
	_, err = git.PlainCloneContext(ctx, stage, false, &git.CloneOptions{
		URL:  p.opts.cloneURL(identity),
		Auth: p.opts.auth(),
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to clone %s/%s", p.opts.Owner, identity), err)
	}
	return stage, nil
}

func (p *RepoPublisher) Publish(ctx context.Context, identity string, round int, stage string) (*Result, error) {
	if round <= 1 {
		return p.publishNew(ctx, identity, stage)
	}
	return p.publishUpdate(ctx, identity, round, stage)
}

func (p *RepoPublisher) publishNew(ctx context.Context, identity, stage string) (*Result, error) {
	if err := p.host.CreateRepo(ctx, identity); err != nil {
		return nil, err
	}
	p.log.Info("repository created", "repo", identity)

	repo, err := initWorktree(stage, p.opts.cloneURL(identity))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to initialize working tree", err)
	}
	sha, err := commitAll(repo, commitMessage(1), p.opts.signature())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to commit staged files", err)
	}
	if err := push(ctx, repo, p.opts.auth()); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to push to %s/%s", p.opts.Owner, identity), err)
	}
	p.log.Info("initial commit pushed", "repo", identity, "sha", sha)

	// Site publication failing does not roll back the pushed commit.
	if err := p.host.EnablePages(ctx, identity, DefaultBranch); err != nil {
		p.log.Warn("could not enable static-site publication", "repo", identity, "error", err)
	}

	// The remote is the authority for the published head; fall back to the
	// local commit if the read-back fails.
	if remoteSHA, err := p.host.BranchHead(ctx, identity, DefaultBranch); err == nil && remoteSHA != "" {
		sha = remoteSHA
	}

	return &Result{
		RepoURL:   p.opts.repoURL(identity),
		PagesURL:  p.pagesURL(identity),
		CommitSHA: sha,
		Branch:    DefaultBranch,
	}, nil
}

func (p *RepoPublisher) publishUpdate(ctx context.Context, identity string, round int, stage string) (*Result, error) {
	repo, err := git.PlainOpen(stage)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to open cloned repository", err)
	}
	sha, err := commitAll(repo, commitMessage(round), p.opts.signature())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed, "failed to commit round update", err)
	}
	if err := push(ctx, repo, p.opts.auth()); err != nil {
		return nil, apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to push to %s/%s", p.opts.Owner, identity), err)
	}
	p.log.Info("round update pushed", "repo", identity, "round", round, "sha", sha)

	return &Result{
		RepoURL:   p.opts.repoURL(identity),
		PagesURL:  p.pagesURL(identity),
		CommitSHA: sha,
		Branch:    DefaultBranch,
	}, nil
}

func (p *RepoPublisher) pagesURL(identity string) string {
	return fmt.Sprintf("https://%s.%s/%s/", p.opts.Owner, p.opts.PagesDomain, identity)
}
