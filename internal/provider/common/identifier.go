package common

import (
	"fmt"
	"net/url"
	"strings"
)

const githubPrefix = "https://github.com/"

// NormalizeRepository turns a GitHub URL or "owner/repo" shorthand into
// the shorthand form. Trailing slashes are dropped.
func NormalizeRepository(ref string) string {
	ref = strings.TrimSpace(ref)
	ref = strings.TrimPrefix(ref, githubPrefix)
	ref = strings.TrimPrefix(ref, "http://github.com/")
	return strings.TrimRight(ref, "/")
}

func ParseRepository(ref string) (owner, repo string, err error) {
	parts := strings.Split(NormalizeRepository(ref), "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: expected 'owner/repo', got '%s'", ErrInvalidRepository, ref)
	}
	owner, repo = parts[0], parts[1]
	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("%w: owner and repo must be non-empty", ErrInvalidRepository)
	}
	return owner, repo, nil
}

// RepositoryURL returns ref unchanged when it already has a scheme,
// otherwise it is treated as a shorthand under webBase.
func RepositoryURL(webBase, ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		return ref
	}
	return strings.TrimRight(webBase, "/") + "/" + strings.TrimLeft(ref, "/")
}

// RepositoryOwner is the first path segment of a shorthand, or
// "unknown".
func RepositoryOwner(ref string) string {
	owner, _, _ := strings.Cut(NormalizeRepository(ref), "/")
	if owner == "" || strings.Contains(owner, ":") {
		return "unknown"
	}
	return owner
}

// Host returns the host part of rawURL, or "" when it has none.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
