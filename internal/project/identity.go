// Package project covers project identity derivation and staging-area
// materialization of generated artifacts.
package project

import (
	"net/url"
	"strings"

	apperrors "pageforge/internal/common/errors"
)

// DeriveIdentity builds the stable slug for a round-1 submission:
// lower(task)-lower(nonce) with spaces replaced by hyphens. Re-submitting the
// same (task, nonce) pair derives the same identity, which the publisher then
// detects as an existing project.
func DeriveIdentity(task, nonce string) string {
	slug := strings.TrimSpace(task) + "-" + strings.TrimSpace(nonce)
	slug = strings.ToLower(slug)
	return strings.ReplaceAll(slug, " ", "-")
}

// IdentityFromURL extracts the project identity from a prior-round project
// URL, which is its trailing path segment (with any .git suffix dropped).
func IdentityFromURL(repoURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(repoURL))
	if err != nil || u.Host == "" {
		return "", apperrors.Newf(apperrors.CodeBadRequest, "cannot derive project identity from repo_url %q", repoURL)
	}
	path := strings.Trim(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	segments := strings.Split(path, "/")
	identity := segments[len(segments)-1]
	if identity == "" {
		return "", apperrors.Newf(apperrors.CodeBadRequest, "cannot derive project identity from repo_url %q", repoURL)
	}
	return identity, nil
}
