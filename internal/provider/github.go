package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/0xb0rn3/gitnav/internal/domain"
	apperrors "github.com/0xb0rn3/gitnav/internal/errors"
)

const (
	maxAttempts  = 3
	retryBackoff = 2 * time.Second
)

// githubProvider implements Provider using the GitHub REST API
type githubProvider struct {
	client      *github.Client
	httpClient  *http.Client
	rateLimiter RateLimiter
}

// NewGitHubProvider creates a provider. An empty token gives unauthenticated
// access (public repositories only, lower rate limit). A non-empty proxyURL
// routes every outbound call through that HTTP proxy.
func NewGitHubProvider(token, proxyURL string) (Provider, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	httpClient := &http.Client{Transport: transport, Timeout: 30 * time.Second}

	var client *github.Client
	if token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	} else {
		client = github.NewClient(httpClient)
	}

	return &githubProvider{
		client:      client,
		httpClient:  httpClient,
		rateLimiter: NewRateLimiter(),
	}, nil
}

// GetRepositories retrieves all repositories for an owner
func (p *githubProvider) GetRepositories(ctx context.Context, owner string) ([]domain.Repository, error) {
	var allRepos []domain.Repository
	opts := &github.RepositoryListOptions{
		Sort:        "updated",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		if err := p.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		var repos []*github.Repository
		var resp *github.Response
		err := p.withRetry(ctx, func() error {
			var callErr error
			repos, resp, callErr = p.client.Repositories.List(ctx, owner, opts)
			return callErr
		})
		if err != nil {
			return nil, p.wrapAPIError(fmt.Sprintf("repositories for %s", owner), err)
		}

		p.updateRateLimitFromResponse(resp)

		for _, repo := range repos {
			allRepos = append(allRepos, mapRepository(owner, repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allRepos, nil
}

// GetProfile retrieves the owner's profile
func (p *githubProvider) GetProfile(ctx context.Context, owner string) (*domain.Profile, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	var user *github.User
	err := p.withRetry(ctx, func() error {
		var callErr error
		var resp *github.Response
		user, resp, callErr = p.client.Users.Get(ctx, owner)
		p.updateRateLimitFromResponse(resp)
		return callErr
	})
	if err != nil {
		return nil, p.wrapAPIError(fmt.Sprintf("user %s", owner), err)
	}

	return &domain.Profile{
		Login:       user.GetLogin(),
		Name:        user.GetName(),
		Bio:         user.GetBio(),
		Company:     user.GetCompany(),
		Location:    user.GetLocation(),
		Blog:        user.GetBlog(),
		PublicRepos: user.GetPublicRepos(),
		Followers:   user.GetFollowers(),
		Following:   user.GetFollowing(),
		CreatedAt:   user.GetCreatedAt().Time,
	}, nil
}

// GetReadme retrieves a repository's README as decoded text
func (p *githubProvider) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	var readme *github.RepositoryContent
	err := p.withRetry(ctx, func() error {
		var callErr error
		var resp *github.Response
		readme, resp, callErr = p.client.Repositories.GetReadme(ctx, owner, repo, nil)
		p.updateRateLimitFromResponse(resp)
		return callErr
	})
	if err != nil {
		return "", p.wrapAPIError(fmt.Sprintf("README for %s/%s", owner, repo), err)
	}

	content, err := readme.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode README for %s/%s: %w", owner, repo, err)
	}
	return content, nil
}

// GetIssues retrieves issues in the given state. Pull requests, which the
// issues endpoint also returns, are filtered out.
func (p *githubProvider) GetIssues(ctx context.Context, owner, repo, state string) ([]domain.Issue, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &github.IssueListByRepoOptions{
		State:       state,
		ListOptions: github.ListOptions{PerPage: 50},
	}

	var issues []*github.Issue
	err := p.withRetry(ctx, func() error {
		var callErr error
		var resp *github.Response
		issues, resp, callErr = p.client.Issues.ListByRepo(ctx, owner, repo, opts)
		p.updateRateLimitFromResponse(resp)
		return callErr
	})
	if err != nil {
		return nil, p.wrapAPIError(fmt.Sprintf("issues for %s/%s", owner, repo), err)
	}

	var out []domain.Issue
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		var labels []string
		for _, label := range issue.Labels {
			labels = append(labels, label.GetName())
		}
		out = append(out, domain.Issue{
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			Author:    issue.GetUser().GetLogin(),
			State:     issue.GetState(),
			Labels:    labels,
			CreatedAt: issue.GetCreatedAt().Time,
		})
	}
	return out, nil
}

// GetReleases retrieves all releases with their assets
func (p *githubProvider) GetReleases(ctx context.Context, owner, repo string) ([]domain.Release, error) {
	if err := p.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &github.ListOptions{PerPage: 50}

	var releases []*github.RepositoryRelease
	err := p.withRetry(ctx, func() error {
		var callErr error
		var resp *github.Response
		releases, resp, callErr = p.client.Repositories.ListReleases(ctx, owner, repo, opts)
		p.updateRateLimitFromResponse(resp)
		return callErr
	})
	if err != nil {
		return nil, p.wrapAPIError(fmt.Sprintf("releases for %s/%s", owner, repo), err)
	}

	var out []domain.Release
	for _, release := range releases {
		rel := domain.Release{
			TagName: release.GetTagName(),
			Name:    release.GetName(),
		}
		if ts := release.GetPublishedAt(); !ts.IsZero() {
			t := ts.Time
			rel.PublishedAt = &t
		}
		for _, asset := range release.Assets {
			rel.Assets = append(rel.Assets, domain.ReleaseAsset{
				Name:        asset.GetName(),
				SizeBytes:   int64(asset.GetSize()),
				Downloads:   asset.GetDownloadCount(),
				DownloadURL: asset.GetBrowserDownloadURL(),
			})
		}
		out = append(out, rel)
	}
	return out, nil
}

// DownloadAsset streams a release asset to destPath
func (p *githubProvider) DownloadAsset(ctx context.Context, asset domain.ReleaseAsset, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailableError(fmt.Sprintf("download %s", asset.Name), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUnavailableError(
			fmt.Sprintf("download %s: HTTP %d", asset.Name, resp.StatusCode), nil)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", destPath, err)
	}
	return nil
}

// withRetry runs call with a bounded number of attempts. Responses that
// retrying cannot fix (not found, auth, rate limit, cancelled context) are
// returned immediately.
func (p *githubProvider) withRetry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if !isRetryable(err) || attempt == maxAttempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		switch errResp.Response.StatusCode {
		case http.StatusNotFound, http.StatusUnauthorized,
			http.StatusForbidden, http.StatusUnprocessableEntity:
			return false
		}
	}
	return true
}

// wrapAPIError translates go-github errors into application errors
func (p *githubProvider) wrapAPIError(resource string, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError(
			fmt.Sprintf("rate limit exceeded, resets at %s", rateErr.Rate.Reset.Format(time.RFC1123)))
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil &&
		errResp.Response.StatusCode == http.StatusNotFound {
		return apperrors.NewNotFoundError(resource)
	}

	return apperrors.NewUnavailableError(resource, err)
}

// updateRateLimitFromResponse updates the rate limiter from API response
func (p *githubProvider) updateRateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		p.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

func mapRepository(owner string, repo *github.Repository) domain.Repository {
	out := domain.Repository{
		Owner:       owner,
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		Description: repo.GetDescription(),
		CloneURL:    repo.GetCloneURL(),
		HTMLURL:     repo.GetHTMLURL(),
		SizeKB:      repo.GetSize(),
		Language:    repo.GetLanguage(),
		IsPrivate:   repo.GetPrivate(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
	}
	if ts := repo.GetUpdatedAt(); !ts.IsZero() {
		t := ts.Time
		out.UpdatedAt = &t
	}
	return out
}
