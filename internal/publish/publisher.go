// Package publish reconciles local staged files with remote repository
// state: create-if-absent on round 1, clone-and-update on later rounds,
// commit, push, and static-site publication.
package publish

import (
	"context"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// DefaultBranch is the primary branch every published project uses.
const DefaultBranch = "main"

// Result is the remote state recorded after a successful publish.
type Result struct {
	RepoURL   string
	PagesURL  string
	CommitSHA string
	Branch    string
}

// Publisher is the repository-publication contract. Begin prepares the
// staging area for the given round and returns the directory the project's
// files belong in; Publish commits and pushes whatever was materialized
// there. The two deployment strategies (repository per project, subdirectory
// of one fixed repository) implement the same contract.
type Publisher interface {
	Begin(ctx context.Context, identity string, round int, stage string) (workdir string, err error)
	Publish(ctx context.Context, identity string, round int, stage string) (*Result, error)
}

// Options carries host account and authentication settings shared by the
// strategies.
type Options struct {
	Token       string
	Owner       string
	PagesDomain string // e.g. "github.io"
	CommitName  string
	CommitEmail string
}

func (o Options) withDefaults() Options {
	if o.PagesDomain == "" {
		o.PagesDomain = "github.io"
	}
	if o.CommitName == "" {
		o.CommitName = o.Owner
	}
	if o.CommitEmail == "" {
		o.CommitEmail = fmt.Sprintf("%s@users.noreply.github.com", o.Owner)
	}
	return o
}

func (o Options) auth() *githttp.BasicAuth {
	// GitHub ignores the username for token auth; it only must be non-empty.
	return &githttp.BasicAuth{Username: "git", Password: o.Token}
}

func (o Options) cloneURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s.git", o.Owner, repo)
}

func (o Options) repoURL(repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", o.Owner, repo)
}

func (o Options) signature() *object.Signature {
	return &object.Signature{Name: o.CommitName, Email: o.CommitEmail, When: time.Now()}
}

// initWorktree initializes a fresh repository at path with the default
// branch checked out and origin pointing at remoteURL.
func initWorktree(path, remoteURL string) (*git.Repository, error) {
	repo, err := git.PlainInitWithOptions(path, &git.PlainInitOptions{
		InitOptions: git.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("git init: %w", err)
	}
	_, err = repo.CreateRemote(&gitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{remoteURL},
	})
	if err != nil {
		return nil, fmt.Errorf("add remote origin: %w", err)
	}
	return repo, nil
}

// commitAll stages every change in the worktree and commits it, returning
// the commit sha.
func commitAll(repo *git.Repository, message string, author *object.Signature) (string, error) {
	w, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	if err := w.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return "", fmt.Errorf("git add: %w", err)
	}
	hash, err := w.Commit(message, &git.CommitOptions{Author: author})
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	return hash.String(), nil
}

func push(ctx context.Context, repo *git.Repository, auth *githttp.BasicAuth) error {
	refspec := gitcfg.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", DefaultBranch, DefaultBranch))
	err := repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitcfg.RefSpec{refspec},
		Auth:       auth,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("git push: %w", err)
	}
	return nil
}

func commitMessage(round int) string {
	if round <= 1 {
		return "Initial commit"
	}
	return fmt.Sprintf("Update for round %d", round)
}
