package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	geekcms "github.com/gamegeek/geekcms"
	"github.com/gamegeek/geekcms/config"
	"github.com/gamegeek/geekcms/gitsync"
	"github.com/gamegeek/geekcms/migrate"
)

var (
	cfgFile string
	root    string
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gctool",
	Short: "Maintenance tasks for the GameGeek content repository",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile, nil)
		if err != nil {
			return err
		}
		zc := zap.NewProductionConfig()
		if verbose || cfg.Debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var (
	author   string
	title    string
	category string
	slug     string
	simulate bool
)

// createPost renders p into the posts collection below root and returns the
// file path and its content. Nothing is written when dryRun is set, and an
// existing post is never overwritten.
func createPost(root string, p geekcms.Post, dryRun bool) (string, []byte, error) {
	if p.Slug == "" {
		p.Slug = geekcms.Slugify(p.Title)
	}
	if p.Slug == "" {
		return "", nil, errors.Errorf("Cannot derive a slug from title %q", p.Title)
	}
	b, err := migrate.Render(p, []byte(fmt.Sprintf("![%s](/images/news/%s.jpg)\n", p.Title, p.Slug)))
	if err != nil {
		return "", nil, err
	}

	fpath := filepath.Join(root, geekcms.ContentRoot, "posts", p.Slug+".md")
	if dryRun {
		return fpath, b, nil
	}
	if err := os.MkdirAll(filepath.Dir(fpath), 0755); err != nil {
		return "", nil, errors.Wrapf(err, "Cannot create directory: %q", filepath.Dir(fpath))
	}
	f, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", nil, errors.Wrapf(err, "Cannot create file: %q", fpath)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return "", nil, errors.Wrapf(err, "Cannot write file: %q", fpath)
	}
	return fpath, b, nil
}

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new post",
	RunE: func(cmd *cobra.Command, args []string) error {
		fpath, b, err := createPost(root, geekcms.Post{
			Title:    title,
			Slug:     slug,
			Date:     geekcms.Date(time.Now()),
			Category: category,
			Author:   author,
		}, simulate)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fpath)
		fmt.Fprint(cmd.OutOrStdout(), string(b))
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert src/data/news.json and slides.json into collection entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := migrate.Migrator{Root: root, Logger: logger}.Run()
		if err != nil {
			return err
		}
		logger.Info("migration finished",
			zap.Int("categories", res.Categories),
			zap.Int("posts", res.Posts),
			zap.Int("slides", res.Slides),
		)
		return nil
	},
}

var once bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Commit and push content changes as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &gitsync.Syncer{
			Repo:     root,
			Dir:      cfg.Sync.Dir,
			Remote:   cfg.Sync.Remote,
			Branch:   cfg.Sync.Branch,
			Debounce: cfg.Sync.Debounce,
			Logger:   logger,
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if once {
			pushed, err := s.Sync(ctx)
			if err != nil {
				return err
			}
			if !pushed {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to sync")
			}
			return nil
		}
		return s.Watch(ctx)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	pf.StringVar(&root, "root", ".", "path to the site checkout")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug output")

	f := newCmd.Flags()
	f.StringVar(&author, "author", "Admin", "Set the author name")
	f.StringVar(&title, "title", "New Post", "Set the title")
	f.StringVar(&category, "category", "", "Set the category slug")
	f.StringVar(&slug, "slug", "", "Set the slug (default derived from the title)")
	f.BoolVarP(&simulate, "dry-run", "n", false, "Only show the result")

	syncCmd.Flags().BoolVar(&once, "once", false, "sync pending changes and exit")

	rootCmd.AddCommand(newCmd, migrateCmd, syncCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
