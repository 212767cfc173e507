package provider

import (
	"context"

	"github.com/0xb0rn3/gitnav/internal/domain"
)

// Provider is the remote repository directory: given an owner it returns
// repository descriptors, plus the single-repository content fetchers the
// display commands use. Transport failures are reported as UNAVAILABLE
// application errors.
type Provider interface {
	// GetRepositories retrieves all repositories for an owner, ordered as
	// the remote reports them
	GetRepositories(ctx context.Context, owner string) ([]domain.Repository, error)

	// GetProfile retrieves the owner's profile
	GetProfile(ctx context.Context, owner string) (*domain.Profile, error)

	// GetReadme retrieves a repository's README as decoded text
	GetReadme(ctx context.Context, owner, repo string) (string, error)

	// GetIssues retrieves issues in the given state (open, closed, all)
	GetIssues(ctx context.Context, owner, repo, state string) ([]domain.Issue, error)

	// GetReleases retrieves all releases with their assets
	GetReleases(ctx context.Context, owner, repo string) ([]domain.Release, error)

	// DownloadAsset streams a release asset to destPath
	DownloadAsset(ctx context.Context, asset domain.ReleaseAsset, destPath string) error
}
