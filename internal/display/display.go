// Package display renders repository metadata and backup state as terminal
// tables.
package display

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/0xb0rn3/gitnav/internal/domain"
)

// FormatSize converts a byte count to a human readable string
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}

	size := float64(sizeBytes)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}

// FormatDate renders a timestamp as "2006-01-02 15:04"; nil means never
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}

// RenderRepositories prints the repository listing. The detailed form adds
// size, visibility and last-update columns.
func RenderRepositories(w io.Writer, repos []domain.Repository, detailed bool) {
	if len(repos) == 0 {
		fmt.Fprintln(w, "No repositories found.")
		return
	}

	table := tablewriter.NewWriter(w)
	if detailed {
		table.SetHeader([]string{"Name", "Description", "Stars", "Forks", "Language", "Size", "Private", "Updated"})
		for _, repo := range repos {
			table.Append([]string{
				repo.Name,
				truncate(repo.Description, 40),
				fmt.Sprintf("%d", repo.Stars),
				fmt.Sprintf("%d", repo.Forks),
				orDash(repo.Language),
				FormatSize(int64(repo.SizeKB) * 1024),
				yesNo(repo.IsPrivate),
				FormatDate(repo.UpdatedAt),
			})
		}
	} else {
		table.SetHeader([]string{"Name", "Description", "Stars", "Forks", "Language"})
		for _, repo := range repos {
			table.Append([]string{
				repo.Name,
				truncate(repo.Description, 50),
				fmt.Sprintf("%d", repo.Stars),
				fmt.Sprintf("%d", repo.Forks),
				orDash(repo.Language),
			})
		}
	}
	table.Render()
}

// RenderStats prints aggregate statistics over a repository listing
func RenderStats(w io.Writer, repos []domain.Repository) {
	var totalStars, totalForks int
	var totalSize int64
	languages := make(map[string]int)

	for _, repo := range repos {
		totalStars += repo.Stars
		totalForks += repo.Forks
		totalSize += int64(repo.SizeKB) * 1024
		if repo.Language != "" {
			languages[repo.Language]++
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Total Repositories", fmt.Sprintf("%d", len(repos))})
	table.Append([]string{"Total Stars", fmt.Sprintf("%d", totalStars)})
	table.Append([]string{"Total Forks", fmt.Sprintf("%d", totalForks)})
	table.Append([]string{"Total Size", FormatSize(totalSize)})
	if top := TopLanguages(languages, 5); len(top) > 0 {
		table.Append([]string{"Top Languages", strings.Join(top, ", ")})
	}
	table.Render()
}

// TopLanguages returns up to n language names ordered by repository count,
// ties broken alphabetically.
func TopLanguages(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

// RenderProfile prints an owner profile
func RenderProfile(w io.Writer, profile *domain.Profile) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Field", "Value"})
	table.Append([]string{"Login", profile.Login})
	if profile.Name != "" {
		table.Append([]string{"Name", profile.Name})
	}
	if profile.Bio != "" {
		table.Append([]string{"Bio", profile.Bio})
	}
	if profile.Company != "" {
		table.Append([]string{"Company", profile.Company})
	}
	if profile.Location != "" {
		table.Append([]string{"Location", profile.Location})
	}
	if profile.Blog != "" {
		table.Append([]string{"Website", profile.Blog})
	}
	table.Append([]string{"Public Repos", fmt.Sprintf("%d", profile.PublicRepos)})
	table.Append([]string{"Followers", fmt.Sprintf("%d", profile.Followers)})
	table.Append([]string{"Following", fmt.Sprintf("%d", profile.Following)})
	created := profile.CreatedAt
	table.Append([]string{"Account Created", FormatDate(&created)})
	table.Render()
}

// RenderIssues prints an issue listing
func RenderIssues(w io.Writer, repo string, issues []domain.Issue) {
	if len(issues) == 0 {
		fmt.Fprintf(w, "No issues found for %s.\n", repo)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Title", "Author", "State", "Labels", "Created"})
	for _, issue := range issues {
		created := issue.CreatedAt
		table.Append([]string{
			fmt.Sprintf("%d", issue.Number),
			truncate(issue.Title, 50),
			issue.Author,
			issue.State,
			strings.Join(issue.Labels, ", "),
			FormatDate(&created),
		})
	}
	table.Render()
}

// RenderReleases prints releases and their assets
func RenderReleases(w io.Writer, repo string, releases []domain.Release) {
	if len(releases) == 0 {
		fmt.Fprintf(w, "No releases found for %s.\n", repo)
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Tag", "Name", "Published", "Asset", "Size", "Downloads"})
	for _, release := range releases {
		name := release.Name
		if name == "" {
			name = release.TagName
		}
		if len(release.Assets) == 0 {
			table.Append([]string{release.TagName, name, FormatDate(release.PublishedAt), "-", "-", "-"})
			continue
		}
		for _, asset := range release.Assets {
			table.Append([]string{
				release.TagName,
				name,
				FormatDate(release.PublishedAt),
				asset.Name,
				FormatSize(asset.SizeBytes),
				fmt.Sprintf("%d", asset.Downloads),
			})
		}
	}
	table.Render()
}

// RenderBackupStatus prints the metadata store contents for one owner
func RenderBackupStatus(w io.Writer, owner string, records map[string]domain.BackupRecord) {
	var keys []string
	for key, rec := range records {
		if rec.Owner == owner {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		fmt.Fprintf(w, "No backups recorded for %s.\n", owner)
		return
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Repository", "Cloned", "Last Synced", "Size", "Language"})
	for _, key := range keys {
		rec := records[key]
		cloned := rec.ClonedAt
		synced := rec.LastSyncedAt
		table.Append([]string{
			rec.Name,
			FormatDate(&cloned),
			FormatDate(&synced),
			FormatSize(int64(rec.SizeKB) * 1024),
			orDash(rec.Language),
		})
	}
	table.Render()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
