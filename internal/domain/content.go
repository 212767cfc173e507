package domain

import "time"

// Issue is the subset of issue metadata shown by the issues command.
type Issue struct {
	Number    int
	Title     string
	Author    string
	State     string
	Labels    []string
	CreatedAt time.Time
}

// Release describes one published release and its downloadable assets.
type Release struct {
	TagName     string
	Name        string
	PublishedAt *time.Time
	Assets      []ReleaseAsset
}

// ReleaseAsset is a single downloadable file attached to a release.
type ReleaseAsset struct {
	Name        string
	SizeBytes   int64
	Downloads   int
	DownloadURL string
}
