// Package githost wraps the remote-host repository API: existence checks,
// creation, branch heads, and static-site (Pages) publication.
package githost

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	apperrors "pageforge/internal/common/errors"
	"pageforge/internal/common/logger"
)

type Client struct {
	gh    *github.Client
	owner string
	log   logger.Logger
}

func New(token, owner string, log logger.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{
		gh:    github.NewClient(tc),
		owner: owner,
		log:   log.With("component", "githost"),
	}
}

func (c *Client) Owner() string { return c.owner }

// RepoExists reports whether owner/name exists. Only a definite 404 counts as
// absent; any other failure (auth, network) propagates so the caller does not
// mistake a transient error for a missing repository.
func (c *Client) RepoExists(ctx context.Context, name string) (bool, error) {
	_, resp, err := c.gh.Repositories.Get(ctx, c.owner, name)
	if err == nil {
		return true, nil
	}
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, apperrors.Wrap(apperrors.CodePublishFailed,
		fmt.Sprintf("repository lookup for %s/%s failed", c.owner, name), err)
}

// CreateRepo creates a public repository under the configured account. A host
// rejection because the name is already taken is mapped to the same project
// conflict as the pre-creation existence check; the host is the authoritative
// backstop for the check-then-create race.
func (c *Client) CreateRepo(ctx context.Context, name string) error {
	repo := &github.Repository{
		Name:    github.String(name),
		Private: github.Bool(false),
	}
	_, resp, err := c.gh.Repositories.Create(ctx, "", repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnprocessableEntity {
			return apperrors.Wrap(apperrors.CodeProjectExists,
				fmt.Sprintf("repository %s/%s already exists", c.owner, name), err)
		}
		return apperrors.Wrap(apperrors.CodePublishFailed,
			fmt.Sprintf("failed to create repository %s/%s", c.owner, name), err)
	}
	return nil
}

// EnablePages requests static-site publication for branch at the repository
// root. "Already enabled" (conflict) is treated identically to "freshly
// enabled".
func (c *Client) EnablePages(ctx context.Context, name, branch string) error {
	pages := &github.Pages{
		Source: &github.PagesSource{
			Branch: github.String(branch),
			Path:   github.String("/"),
		},
	}
	_, resp, err := c.gh.Repositories.EnablePages(ctx, c.owner, name, pages)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			c.log.Info("pages already enabled", "repo", name)
			return nil
		}
		return fmt.Errorf("enable pages for %s/%s: %w", c.owner, name, err)
	}
	c.log.Info("pages enabled", "repo", name, "branch", branch)
	return nil
}

// BranchHead returns the head commit sha of the given branch.
func (c *Client) BranchHead(ctx context.Context, name, branch string) (string, error) {
	b, _, err := c.gh.Repositories.GetBranch(ctx, c.owner, name, branch, 1)
	if err != nil {
		return "", fmt.Errorf("get branch %s of %s/%s: %w", branch, c.owner, name, err)
	}
	return b.GetCommit().GetSHA(), nil
}
