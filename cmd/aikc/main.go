package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/ai-knowledge-crawler/aikc/internal/article"
	"github.com/ai-knowledge-crawler/aikc/internal/collect"
	"github.com/ai-knowledge-crawler/aikc/internal/config"
	"github.com/ai-knowledge-crawler/aikc/internal/database"
	"github.com/ai-knowledge-crawler/aikc/internal/pipeline"
	"github.com/ai-knowledge-crawler/aikc/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "aikc",
	Short:   "AI knowledge crawler",
	Long:    "aikc crawls AI news sources, filters and ranks the articles, and turns them into a published daily brief.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("aikc", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/aikc/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure sources, crawl windows, and the summarization provider.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configured sources and archive status",
	RunE: func(cmd *cobra.Command, args []string) error {
		sources := cfg.Sources.All()
		fmt.Printf("Sources configured: %d\n", len(sources))
		byKind := make(map[string]int)
		for _, src := range sources {
			byKind[src.Kind]++
		}
		kinds := make([]string, 0, len(byKind))
		for kind := range byKind {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Printf("  %s: %d\n", kind, byKind[kind])
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(1)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		fmt.Println("\nArchive:")
		if len(runs) == 0 {
			fmt.Println("  No runs yet. Run 'aikc run' to start.")
			return nil
		}
		last := runs[0]
		fmt.Printf("  Last run: #%d at %s\n", last.ID, last.StartedAt)
		fmt.Printf("  Articles: %d from %d sources (%d high, %d medium, %d low)\n",
			last.TotalArticles, last.SourceCount, last.High, last.Medium, last.Low)

		brief, err := db.LatestBrief()
		if err != nil {
			return err
		}
		if brief != nil {
			fmt.Printf("  Latest brief: #%d generated %s\n", brief.ID, brief.GeneratedAt)
		}
		return nil
	},
}

// --- crawl command ---

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl all sources and write the results to the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		collector, err := collect.New(cfg)
		if err != nil {
			return err
		}

		fmt.Println("Crawling configured sources...")
		articles := collector.CrawlAll()
		stats := collect.ComputeStats(articles)

		dataDir := cfg.GetDataDir()
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}

		stamp := time.Now().UTC().Format("20060102_150405")
		jsonlPath := filepath.Join(dataDir, fmt.Sprintf("ai_knowledge_%s.jsonl", stamp))
		if err := writeArticles(jsonlPath, articles, article.WriteJSONL); err != nil {
			return err
		}
		jsonPath := filepath.Join(dataDir, fmt.Sprintf("ai_knowledge_%s.json", stamp))
		if err := writeArticles(jsonPath, articles, article.WriteCollection); err != nil {
			return err
		}

		fmt.Println("\nCrawl complete:")
		fmt.Printf("  Articles: %d\n", stats.Total)
		fmt.Printf("  Priorities: %d high, %d medium, %d low\n",
			stats.ByPriority.High, stats.ByPriority.Medium, stats.ByPriority.Low)
		if stats.OldestDate != "" {
			fmt.Printf("  Date range: %s .. %s\n", stats.OldestDate, stats.NewestDate)
		}

		if len(stats.BySource) > 0 {
			fmt.Println("\nArticles by source:")
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range stats.BySource {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}

		fmt.Printf("\nWrote %s and %s\n", jsonlPath, jsonPath)
		return nil
	},
}

func writeArticles(path string, articles []article.Article, write func(w io.Writer, articles []article.Article) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f, articles); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// --- run command ---

var (
	dryRun      bool
	daysBack    int
	skipPublish bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: crawl -> enrich -> archive -> summarize -> publish",
	RunE: func(cmd *cobra.Command, args []string) error {
		if daysBack > 0 {
			cfg.Crawl.DaysBack = daysBack
		}

		if dryRun {
			fmt.Printf("Would crawl %d sources with a %d-day lookback window:\n",
				len(cfg.Sources.All()), cfg.Crawl.DaysBack)
			for _, src := range cfg.Sources.All() {
				fmt.Printf("  %s (%s)\n", src.Name, src.Kind)
			}
			return nil
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		pipe := pipeline.New(cfg, db)
		result := pipe.Run(context.Background(), pipeline.Options{SkipPublish: skipPublish})

		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		fmt.Println("\nPipeline complete! Run 'aikc serve' to browse the results.")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().IntVar(&daysBack, "days-back", 0, "Override lookback window (days)")
	runCmd.Flags().BoolVar(&skipPublish, "skip-publish", false, "Skip the Notion publish step")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	return database.Open(filepath.Join(cfg.GetDataDir(), "aikc.db"))
}
