package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/0xb0rn3/gitnav/internal/backup"
	"github.com/0xb0rn3/gitnav/internal/config"
	"github.com/0xb0rn3/gitnav/internal/display"
	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/gitexec"
	"github.com/0xb0rn3/gitnav/internal/inventory"
	"github.com/0xb0rn3/gitnav/internal/provider"
	"github.com/0xb0rn3/gitnav/internal/store"
	"github.com/0xb0rn3/gitnav/internal/store/jsonfile"
	"github.com/0xb0rn3/gitnav/internal/store/sqlite"
)

var (
	detailed      bool
	issueState    string
	backupDir     string
	jobs          int
	assumeYes     bool
	downloadAsset string
	downloadTag   string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "gitnav",
	Short: "GitHub repository navigator and backup tool",
	Long: `A CLI tool for exploring a GitHub user's repositories and mirroring
them to a local backup directory.

gitnav lists, searches and inspects repository metadata through the GitHub
REST API, and clones or pulls repositories in parallel to keep a local
backup in sync with the remote account.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list [user]",
	Short: "List a user's repositories",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var searchCmd = &cobra.Command{
	Use:   "search [user] [term]",
	Short: "Search repositories by name, description or language",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

var statsCmd = &cobra.Command{
	Use:   "stats [user]",
	Short: "Show aggregate repository statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

var profileCmd = &cobra.Command{
	Use:   "profile [user]",
	Short: "Show a user's profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

var readmeCmd = &cobra.Command{
	Use:   "readme [user] [repo]",
	Short: "Print a repository's README",
	Args:  cobra.ExactArgs(2),
	RunE:  runReadme,
}

var issuesCmd = &cobra.Command{
	Use:   "issues [user] [repo]",
	Short: "List repository issues",
	Args:  cobra.ExactArgs(2),
	RunE:  runIssues,
}

var releasesCmd = &cobra.Command{
	Use:   "releases [user] [repo]",
	Short: "List releases, optionally downloading an asset",
	Args:  cobra.ExactArgs(2),
	RunE:  runReleases,
}

var openCmd = &cobra.Command{
	Use:   "open [user] [repo]",
	Short: "Open a repository page in the browser",
	Args:  cobra.ExactArgs(2),
	RunE:  runOpen,
}

var backupCmd = &cobra.Command{
	Use:   "backup [user]",
	Short: "Back up all of a user's repositories",
	Long: `Clone every repository that is not yet present in the backup
directory, then optionally pull the ones that already are. Repositories are
processed in parallel up to the configured number of jobs.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackup,
}

var syncCmd = &cobra.Command{
	Use:   "sync [user]",
	Short: "Synchronize the local backup with the remote account",
	Long: `Clone new repositories, pull existing ones and report local
backups whose repository no longer exists remotely. Orphaned backups are
never deleted.`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status [user]",
	Short: "Show recorded backup state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	listCmd.Flags().BoolVar(&detailed, "details", false, "include size, visibility and update time")
	issuesCmd.Flags().StringVar(&issueState, "state", "open", "issue state (open, closed, all)")
	releasesCmd.Flags().StringVar(&downloadAsset, "download", "", "download the named asset")
	releasesCmd.Flags().StringVar(&downloadTag, "tag", "", "restrict asset download to this release tag")

	for _, cmd := range []*cobra.Command{backupCmd, syncCmd, statusCmd} {
		cmd.Flags().StringVar(&backupDir, "backup-dir", "", "backup directory (default from BACKUP_DIR)")
	}
	for _, cmd := range []*cobra.Command{backupCmd, syncCmd} {
		cmd.Flags().IntVar(&jobs, "jobs", 0, "parallel clone/pull operations (default from BACKUP_CONCURRENCY)")
		cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to all confirmation prompts")
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(readmeCmd)
	rootCmd.AddCommand(issuesCmd)
	rootCmd.AddCommand(releasesCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if jobs > 0 {
		cfg.Concurrency = jobs
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getProvider(cfg *config.Config) (provider.Provider, error) {
	return provider.NewGitHubProvider(cfg.GitHubToken, cfg.ProxyURL)
}

func getStore(cfg *config.Config) (store.Store, error) {
	switch cfg.StorageType {
	case "sqlite":
		return sqlite.NewSQLiteStore(cfg.SQLitePath)
	default:
		return jsonfile.NewJSONStore(cfg.MetadataPath)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	user := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	repos, err := prov.GetRepositories(context.Background(), user)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d repositories for %s\n\n", len(repos), user)
	display.RenderRepositories(os.Stdout, repos, detailed)
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	user, term := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	repos, err := prov.GetRepositories(context.Background(), user)
	if err != nil {
		return err
	}

	matches := domain.FilterRepositories(repos, term)
	if len(matches) == 0 {
		fmt.Printf("No repositories matching %q.\n", term)
		return nil
	}
	fmt.Printf("Found %d repositories matching %q\n\n", len(matches), term)
	display.RenderRepositories(os.Stdout, matches, true)
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	user := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	repos, err := prov.GetRepositories(context.Background(), user)
	if err != nil {
		return err
	}

	fmt.Printf("Repository statistics for %s\n\n", user)
	display.RenderStats(os.Stdout, repos)
	return nil
}

func runProfile(cmd *cobra.Command, args []string) error {
	user := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	profile, err := prov.GetProfile(context.Background(), user)
	if err != nil {
		return err
	}

	display.RenderProfile(os.Stdout, profile)
	return nil
}

func runReadme(cmd *cobra.Command, args []string) error {
	user, repo := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	content, err := prov.GetReadme(context.Background(), user, repo)
	if err != nil {
		return err
	}

	fmt.Println(content)
	return nil
}

func runIssues(cmd *cobra.Command, args []string) error {
	user, repo := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	issues, err := prov.GetIssues(context.Background(), user, repo, issueState)
	if err != nil {
		return err
	}

	fmt.Printf("Issues for %s/%s (%s)\n\n", user, repo, issueState)
	display.RenderIssues(os.Stdout, repo, issues)
	return nil
}

func runReleases(cmd *cobra.Command, args []string) error {
	user, repo := args[0], args[1]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()
	releases, err := prov.GetReleases(ctx, user, repo)
	if err != nil {
		return err
	}

	if downloadAsset == "" {
		display.RenderReleases(os.Stdout, repo, releases)
		return nil
	}

	for _, release := range releases {
		if downloadTag != "" && release.TagName != downloadTag {
			continue
		}
		for _, asset := range release.Assets {
			if asset.Name != downloadAsset {
				continue
			}
			fmt.Printf("Downloading %s (%s)...\n", asset.Name, display.FormatSize(asset.SizeBytes))
			if err := prov.DownloadAsset(ctx, asset, asset.Name); err != nil {
				return err
			}
			fmt.Printf("Download complete: %s\n", asset.Name)
			return nil
		}
	}
	return fmt.Errorf("asset %q not found", downloadAsset)
}

func runOpen(cmd *cobra.Command, args []string) error {
	user, repo := args[0], args[1]
	url := fmt.Sprintf("https://github.com/%s/%s", user, repo)

	fmt.Printf("Opening %s in browser...\n", url)
	return openBrowser(url)
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}

func runBackup(cmd *cobra.Command, args []string) error {
	return runBackupFlow(args[0], false)
}

func runSync(cmd *cobra.Command, args []string) error {
	return runBackupFlow(args[0], true)
}

func runBackupFlow(user string, syncMode bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := getProvider(cfg)
	if err != nil {
		return err
	}
	st, err := getStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize metadata store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Printf("Fetching repositories for %s...\n", user)
	repos, err := prov.GetRepositories(ctx, user)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d repositories\n", len(repos))

	inv := inventory.New(cfg.BackupDir)
	dispatcher := backup.NewDispatcher(inv, st, cfg.Concurrency)
	executor := gitexec.New(cfg.GitBinary)
	orch := backup.NewOrchestrator(dispatcher, executor, inv, backup.Options{
		Confirm:  confirmFunc(),
		Progress: progressPrinter(os.Stdout),
		Out:      os.Stdout,
	})

	if syncMode {
		_, err = orch.Sync(ctx, user, repos)
	} else {
		_, err = orch.FullBackup(ctx, user, repos)
	}
	return err
}

func runStatus(cmd *cobra.Command, args []string) error {
	user := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := getStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize metadata store: %w", err)
	}
	defer st.Close()

	records, err := st.All(context.Background())
	if err != nil {
		return err
	}

	display.RenderBackupStatus(os.Stdout, user, records)
	return nil
}

// confirmFunc returns the confirmation gate: pre-answered when --yes was
// given, otherwise an interactive stdin prompt.
func confirmFunc() backup.ConfirmFunc {
	if assumeYes {
		return func(string) bool { return true }
	}
	reader := bufio.NewReader(os.Stdin)
	return func(prompt string) bool {
		fmt.Printf("%s [y/N]: ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

// progressPrinter prints each clone phase once per repository so parallel
// clones stay readable instead of mirroring every progress tick.
func progressPrinter(w *os.File) backup.ProgressFunc {
	var mu sync.Mutex
	lastPhase := make(map[string]string)
	return func(repo, line string) {
		phase, _, _ := strings.Cut(line, ":")
		mu.Lock()
		defer mu.Unlock()
		if lastPhase[repo] == phase {
			return
		}
		lastPhase[repo] = phase
		fmt.Fprintf(w, "  [%s] %s\n", repo, phase)
	}
}
