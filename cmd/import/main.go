// Command import bulk-loads posts from a directory of text files. Each
// file's name, without extension, becomes the post title.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/debemdeboas/the-blog/internal/config"
	"github.com/debemdeboas/the-blog/internal/db"
	"github.com/debemdeboas/the-blog/internal/logger"
	"github.com/debemdeboas/the-blog/internal/model"
	"github.com/debemdeboas/the-blog/internal/repository"
)

var extensions = []string{".md", ".txt"}

var (
	configPath string
	sourceDir  string
	author     string
	tags       string

	rootCmd = &cobra.Command{
		Use:          "import",
		Short:        "Import posts from a directory of .md and .txt files",
		SilenceUsage: true,
		RunE:         runImport,
	}
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	boxStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML configuration file")
	rootCmd.Flags().StringVarP(&sourceDir, "path", "p", "", "directory containing the post files")
	rootCmd.Flags().StringVar(&author, "author", "", "author recorded on every imported post")
	rootCmd.Flags().StringVar(&tags, "tags", "", "tags recorded on every imported post")
	_ = rootCmd.MarkFlagRequired("path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type report struct {
	Inserted   []string
	Duplicates []string
	Failed     map[string]error
}

func (r report) String() string {
	lines := []string{
		okStyle.Render(fmt.Sprintf("inserted:   %d", len(r.Inserted))),
		warnStyle.Render(fmt.Sprintf("duplicates: %d", len(r.Duplicates))),
		errStyle.Render(fmt.Sprintf("failed:     %d", len(r.Failed))),
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// titleFromFile strips the directory and extension from a file name.
func titleFromFile(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func importable(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func importDir(ctx context.Context, repo repository.PostRepository, dir string) (report, error) {
	rep := report{Failed: make(map[string]error)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return rep, fmt.Errorf("error reading directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !importable(entry.Name()) {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			rep.Failed[entry.Name()] = err
			continue
		}

		post := model.NewPost(titleFromFile(entry.Name()), author, string(body), tags)
		err = repo.Insert(ctx, post)
		switch {
		case errors.Is(err, repository.ErrDuplicatePermalink):
			rep.Duplicates = append(rep.Duplicates, entry.Name())
		case err != nil:
			rep.Failed[entry.Name()] = err
		default:
			rep.Inserted = append(rep.Inserted, entry.Name())
		}
	}

	return rep, nil
}

func runImport(cmd *cobra.Command, _ []string) error {
	l := logger.New("info", "console")
	config.SetLogger(l)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	l = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	db.SetLogger(l)
	repository.SetLogger(l)

	ctx := cmd.Context()
	database := db.NewSQLite(cfg.Database.Driver, cfg.Database.Path)
	if err := database.InitDB(ctx); err != nil {
		l.Error().Err(err).Msgf(config.ErrInitializeDatabaseFmt, cfg.Database.Path)
		return err
	}
	defer database.Close()

	repo := repository.NewDBPostRepository(database)
	if err := repo.Init(ctx); err != nil {
		l.Error().Err(err).Msg(config.ErrInitializePosts)
		return err
	}

	rep, err := importDir(ctx, repo, sourceDir)
	if err != nil {
		return err
	}

	for name, err := range rep.Failed {
		l.Error().Err(err).Str("file", name).Msg("Failed to import post")
	}
	for _, name := range rep.Duplicates {
		l.Warn().Str("file", name).Msg("Skipped duplicate post")
	}

	fmt.Println(rep)
	return nil
}
