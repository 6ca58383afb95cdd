package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// Fetcher kinds understood by the crawler registry.
const (
	KindRSS            = "rss"
	KindScrape         = "scrape"
	KindArxiv          = "arxiv"
	KindGithubTrending = "github_trending"
	KindHuggingFace    = "huggingface"
	KindPapersWithCode = "paperswithcode"
)

type Config struct {
	Crawl         Crawl         `yaml:"crawl"`
	Sources       Registry      `yaml:"sources"`
	Summarization Summarization `yaml:"summarization"`
	Notion        Notion        `yaml:"notion"`
	Output        Output        `yaml:"output"`
	Server        Server        `yaml:"server"`
	Logging       Logging       `yaml:"logging"`
}

// Crawl holds the tunable crawl windows and relevance keywords.
type Crawl struct {
	DaysBack int `yaml:"days_back"`
	// LegacyHoursBack is the single-feed mode lookback window. Exposed as
	// configuration; the multi-source path does not consult it.
	LegacyHoursBack int      `yaml:"legacy_hours_back"`
	PauseMs         int      `yaml:"pause_ms"`
	Keywords        []string `yaml:"keywords"`
}

// Pause returns the courtesy pause between fetchers.
func (c Crawl) Pause() time.Duration {
	return time.Duration(c.PauseMs) * time.Millisecond
}

// Registry is the declarative list of sources, grouped by category.
type Registry struct {
	Corporate      []Source `yaml:"corporate"`
	Startups       []Source `yaml:"startups"`
	Academic       []Source `yaml:"academic"`
	Implementation []Source `yaml:"implementation"`
	Institutes     []Source `yaml:"institutes"`
}

// All returns every source in category order. This is the crawl order.
func (r Registry) All() []Source {
	var all []Source
	all = append(all, r.Corporate...)
	all = append(all, r.Startups...)
	all = append(all, r.Academic...)
	all = append(all, r.Implementation...)
	all = append(all, r.Institutes...)
	return all
}

// Source describes one configured source and its kind-specific parameters.
type Source struct {
	Name          string   `yaml:"name"`
	Kind          string   `yaml:"kind"`
	URL           string   `yaml:"url,omitempty"`
	Tags          []string `yaml:"tags,omitempty"`
	ThrottleDelay float64  `yaml:"throttle_delay"`

	// Scrape selectors (kind: scrape).
	ArticleSelector string `yaml:"article_selector,omitempty"`
	TitleSelector   string `yaml:"title_selector,omitempty"`
	DateSelector    string `yaml:"date_selector,omitempty"`
	LinkSelector    string `yaml:"link_selector,omitempty"`

	// Paper-index categories (kind: arxiv).
	Categories []string `yaml:"categories,omitempty"`
}

// Throttle returns the per-source minimum inter-request delay.
func (s Source) Throttle() time.Duration {
	return time.Duration(s.ThrottleDelay * float64(time.Second))
}

// Validate checks a source descriptor for the mistakes a registry author
// can make. Malformed entries are the one orchestrator-fatal error class.
func (s Source) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("source with kind %q: missing name", s.Kind)
	}
	switch s.Kind {
	case KindRSS:
		if s.URL == "" {
			return fmt.Errorf("source %q: rss requires url", s.Name)
		}
	case KindScrape:
		if s.URL == "" {
			return fmt.Errorf("source %q: scrape requires url", s.Name)
		}
		if s.ArticleSelector == "" || s.TitleSelector == "" || s.LinkSelector == "" {
			return fmt.Errorf("source %q: scrape requires article, title and link selectors", s.Name)
		}
	case KindArxiv, KindGithubTrending, KindHuggingFace, KindPapersWithCode:
		// API-driven kinds carry their own endpoints.
	default:
		return fmt.Errorf("source %q: unknown kind %q", s.Name, s.Kind)
	}
	return nil
}

type Summarization struct {
	Provider    string `yaml:"provider"` // preferred-provider hint
	MaxTokens   int    `yaml:"max_tokens"`
	DigestLimit int    `yaml:"digest_limit"`
}

type Notion struct {
	TokenEnv  string `yaml:"token_env"`
	PageIDEnv string `yaml:"page_id_env"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for aikc.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "aikc")
}

// DataDir returns the XDG data directory for aikc.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "aikc")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/aikc/config.yaml > ./config.yaml.
// An empty return value means no file exists and the embedded default
// configuration applies.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path loads the
// embedded default configuration.
func Load(path string) (*Config, error) {
	data := DefaultConfigYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults and validating
// the source registry.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Crawl: Crawl{
			DaysBack:        3,
			LegacyHoursBack: 48,
			PauseMs:         500,
		},
		Summarization: Summarization{
			MaxTokens:   4000,
			DigestLimit: 50,
		},
		Notion: Notion{
			TokenEnv:  "NOTION_TOKEN",
			PageIDEnv: "NOTION_PAGE_ID",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for _, src := range cfg.Sources.All() {
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("invalid source registry: %w", err)
		}
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
