package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nikbrunner/bmtab/internal/background"
	"github.com/nikbrunner/bmtab/internal/browser"
	"github.com/nikbrunner/bmtab/internal/controller"
	"github.com/nikbrunner/bmtab/internal/exporter"
	"github.com/nikbrunner/bmtab/internal/importer"
	"github.com/nikbrunner/bmtab/internal/linkcheck"
	"github.com/nikbrunner/bmtab/internal/logging"
	"github.com/nikbrunner/bmtab/internal/model"
	"github.com/nikbrunner/bmtab/internal/picker"
	"github.com/nikbrunner/bmtab/internal/prefs"
	"github.com/nikbrunner/bmtab/internal/search"
	"github.com/nikbrunner/bmtab/internal/storage"
	"github.com/nikbrunner/bmtab/internal/theme"
	"github.com/nikbrunner/bmtab/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := loadConfig()
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: "json", OutputPath: cfg.LogFile}); err != nil {
		logging.InitNop()
	}
	defer logging.Sync()

	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			printHelp()
			return
		case "import":
			if len(os.Args) < 3 {
				fatalf("Usage: bmtab import <file.html>\n")
			}
			runImport(ctx, cfg, os.Args[2])
			return
		case "export":
			var outputPath string
			if len(os.Args) >= 3 {
				outputPath = os.Args[2]
			}
			runExport(ctx, cfg, outputPath)
			return
		case "check":
			runCheck(ctx, cfg, len(os.Args) >= 3 && os.Args[2] == "--remove")
			return
		default:
			// Treat as search query (join all remaining args)
			runQuickSearch(ctx, cfg, strings.Join(os.Args[1:], " "))
			return
		}
	}

	runTUI(ctx, cfg)
}

func printHelp() {
	help := `bmtab - bookmark dashboard for the terminal

Usage:
  bmtab                   Open the dashboard
  bmtab <query>           Quick search → select → open
  bmtab import <file>     Import bookmarks from HTML into the local database
  bmtab export [path]     Export bookmarks to HTML
  bmtab check [--remove]  Find (and optionally remove) dead links
  bmtab help              Show this help

Dashboard keys:
  h/j/k/l     Move between cards and bookmarks
  gg/G        Jump to first/last card
  Enter/o     Open bookmark in browser
  v           Show all bookmarks of a folder
  e           Edit bookmark
  d           Delete bookmark
  y           Copy URL
  /           Filter folders and bookmarks
  t           Themes
  b/B         Toggle/refresh background image
  r           Reload
  q           Quit

Configuration:
  ~/.config/bmtab/config.json
`
	fmt.Print(help)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func loadConfig() *storage.Config {
	path, err := storage.DefaultConfigFilePath()
	if err != nil {
		fatalf("Error getting config path: %v\n", err)
	}
	cfg, err := storage.LoadConfig(path)
	if err != nil {
		fatalf("Error loading config: %v\n", err)
	}
	return cfg
}

func openHost(cfg *storage.Config) storage.BookmarkStore {
	host, err := storage.Open(*cfg)
	if err != nil {
		fatalf("Error opening bookmark store: %v\n", err)
	}
	return host
}

func openPrefs(cfg *storage.Config) prefs.Store {
	p, err := prefs.OpenSQLite(cfg.PrefsPath)
	if err != nil {
		// Preferences are optional: fall back to this session only
		logging.L().Warn("open preferences", zap.String("path", cfg.PrefsPath), zap.Error(err))
		return prefs.NewMemory()
	}
	return p
}

func closeStore(s any) {
	if c, ok := s.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

// loadFolders reads the host tree once and builds the display folders.
func loadFolders(ctx context.Context, host storage.BookmarkStore) ([]model.Folder, *model.Node) {
	root, err := host.GetTree(ctx)
	if err != nil {
		logging.L().Error("load bookmark tree", zap.Error(err))
		fatalf("Error loading bookmarks: %v\n", err)
	}
	return model.BuildFolders(root, time.Now()), root
}

// runTUI runs the dashboard.
func runTUI(ctx context.Context, cfg *storage.Config) {
	host := openHost(cfg)
	defer storage.Close(host)
	store := openPrefs(cfg)
	defer closeStore(store)

	themes := theme.Load(theme.DefaultRegistry(), store)
	bg := background.New(store, background.NewHTTPFetcher(cfg.BackgroundURL), background.Options{
		MaxAge: cfg.BackgroundMaxAge.Duration,
	})
	ctrl := controller.New(model.NewStore(), host, time.Now)

	app := tui.NewApp(tui.AppParams{
		Controller:    ctrl,
		Themes:        themes,
		Background:    bg,
		Context:       ctx,
		ClockInterval: cfg.ClockInterval.Duration,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fatalf("Error running app: %v\n", err)
	}
}

// runQuickSearch performs a fuzzy search and opens the selected bookmark.
func runQuickSearch(ctx context.Context, cfg *storage.Config, query string) {
	host := openHost(cfg)
	defer storage.Close(host)

	folders, _ := loadFolders(ctx, host)
	results := search.FuzzySearchBookmarks(folders, query)

	if len(results) == 0 {
		fmt.Printf("No bookmarks found for '%s'\n", query)
		return
	}

	var selected *model.Bookmark
	if len(results) == 1 {
		selected = results[0].Bookmark
		fmt.Printf("Opening: %s\n", selected.Title)
	} else {
		store := openPrefs(cfg)
		current := theme.Load(theme.DefaultRegistry(), store).Current()
		closeStore(store)

		finalModel, err := tea.NewProgram(picker.New(results, query, current)).Run()
		if err != nil {
			fatalf("Error running picker: %v\n", err)
		}
		selected = finalModel.(picker.Picker).SelectedBookmark()
	}

	if selected == nil {
		return
	}
	if err := browser.Open(selected.URL); err != nil {
		fatalf("Error opening browser: %v\n", err)
	}
}

// runImport handles the import subcommand.
func runImport(ctx context.Context, cfg *storage.Config, filePath string) {
	db, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		fatalf("Error opening database: %v\n", err)
	}
	defer db.Close()

	file, err := os.Open(filePath)
	if err != nil {
		fatalf("Error opening file: %v\n", err)
	}
	defer file.Close()

	stats, err := importer.Import(ctx, db, file)
	if err != nil {
		fatalf("Error importing bookmarks: %v\n", err)
	}

	fmt.Printf("Imported %d bookmarks, %d folders into %s", stats.Added, stats.Folders, db.Path())
	if stats.Skipped > 0 {
		fmt.Printf(" (%d duplicates skipped)", stats.Skipped)
	}
	fmt.Println()
	if cfg.Backend == storage.BackendChrome {
		fmt.Println("Note: the configured backend is the Chromium file; set \"backend\": \"sqlite\" to use the imported bookmarks.")
	}
}

// runExport handles the export subcommand.
func runExport(ctx context.Context, cfg *storage.Config, outputPath string) {
	if outputPath == "" {
		var err error
		outputPath, err = exporter.DefaultExportPath(time.Now())
		if err != nil {
			fatalf("Error getting default export path: %v\n", err)
		}
	}

	host := openHost(cfg)
	defer storage.Close(host)
	_, root := loadFolders(ctx, host)

	file, err := os.Create(outputPath)
	if err != nil {
		fatalf("Error creating file: %v\n", err)
	}
	stats, err := exporter.WriteHTML(file, root)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fatalf("Error writing file: %v\n", err)
	}

	fmt.Printf("Exported %d bookmarks, %d folders to %s\n", stats.Bookmarks, stats.Folders, outputPath)
}

// runCheck reports dead links and removes them when asked to.
func runCheck(ctx context.Context, cfg *storage.Config, remove bool) {
	host := openHost(cfg)
	defer storage.Close(host)
	folders, _ := loadFolders(ctx, host)

	checker := linkcheck.NewChecker(linkcheck.DefaultTimeout, cfg.CheckExcludeDomains)
	results := checker.Check(ctx, linkcheck.Targets(folders), func(completed, total int) {
		fmt.Printf("\rChecked %d/%d", completed, total)
	})
	fmt.Println()

	dead := linkcheck.DeadResults(results)
	if len(dead) == 0 {
		fmt.Println("No dead links found")
		return
	}

	for _, r := range dead {
		fmt.Printf("%d  %s / %s\n    %s\n", r.StatusCode, r.Folder, r.Bookmark.Title, r.Bookmark.URL)
	}
	fmt.Printf("%d dead links\n", len(dead))
	if !remove {
		return
	}

	removed := 0
	for _, r := range dead {
		if err := host.Remove(ctx, r.Bookmark.ID); err != nil {
			logging.L().Warn("remove dead link", zap.String("id", r.Bookmark.ID), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error removing %s: %v\n", r.Bookmark.URL, err)
			continue
		}
		removed++
	}
	fmt.Printf("Removed %d bookmarks\n", removed)
}
