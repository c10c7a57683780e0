package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/intakehq/intake/internal/constants"
	"github.com/intakehq/intake/internal/ranking"
	"github.com/intakehq/intake/internal/search"
)

// LeadsConfig selects where lead snapshots come from.
type LeadsConfig struct {
	Source string `yaml:"source" json:"source"`
	Path   string `yaml:"path"   json:"path"`
	URL    string `yaml:"url"    json:"url"`
	Token  string `yaml:"token"  json:"token"`
}

type SyncConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url"     json:"url"`
	Token   string `yaml:"token"   json:"token"`
}

type RelevanceConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url"     json:"url"`
	Token   string `yaml:"token"   json:"token"`
}

type SearchConfig struct {
	DebounceMS      int `yaml:"debounce_ms"      json:"debounce_ms"`
	SuggestionLimit int `yaml:"suggestion_limit" json:"suggestion_limit"`
}

type UIConfig struct {
	Overscan       int    `yaml:"overscan"         json:"overscan"`
	SortKey        string `yaml:"sort_key"         json:"sort_key"`
	SortDirection  string `yaml:"sort_direction"   json:"sort_direction"`
	PreviewCacheMB int    `yaml:"preview_cache_mb" json:"preview_cache_mb"`
}

type Config struct {
	DataDir   string          `yaml:"datadir"   json:"data_dir"`
	Leads     LeadsConfig     `yaml:"leads"     json:"leads"`
	Sync      SyncConfig      `yaml:"sync"      json:"sync"`
	Relevance RelevanceConfig `yaml:"relevance" json:"relevance"`
	Search    SearchConfig    `yaml:"search"    json:"search"`
	UI        UIConfig        `yaml:"ui"        json:"ui"`

	home string `yaml:"-"`
}

const (
	SourceFile   = "file"
	SourceRemote = "remote"
)

var validSourceNames = []string{SourceFile, SourceRemote}

var ValidSources = func() map[string]bool {
	sources := make(map[string]bool, len(validSourceNames))
	for _, source := range validSourceNames {
		sources[source] = true
	}

	return sources
}()

func ValidateSource(source string) error {
	if _, valid := ValidSources[source]; valid {
		return nil
	}

	return fmt.Errorf(
		"invalid leads source: %q. Please choose from %s.",
		source,
		validSourceList(),
	)
}

func validSourceList() string {
	quoted := make([]string, len(validSourceNames))
	for i, name := range validSourceNames {
		quoted[i] = fmt.Sprintf("'%s'", name)
	}

	if len(quoted) == 0 {
		return ""
	}

	if len(quoted) == 1 {
		return quoted[0]
	}

	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}

// Load reads the config file under home, fills in defaults and applies
// INTAKE_* environment overrides. An empty file yields the default config.
func Load(home string) (*Config, error) {
	path := GetConfigPath(home)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{home: home}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.EnsureDefaults()
	cfg.applyEnv()

	if err := ValidateSource(cfg.Leads.Source); err != nil {
		return nil, err
	}

	return cfg, nil
}

// EnsureDefaults fills every unset field so callers never see zero values
// where a sane default exists.
func (cfg *Config) EnsureDefaults() {
	if cfg.DataDir == "" && cfg.home != "" {
		cfg.DataDir = filepath.Join(cfg.home, strings.Trim(constants.ConfigDir, "/"))
	}
	if cfg.Leads.Source == "" {
		cfg.Leads.Source = SourceFile
	}
	if cfg.Leads.Path == "" && cfg.DataDir != "" {
		cfg.Leads.Path = filepath.Join(cfg.DataDir, "leads.jsonl")
	}
	if cfg.Search.DebounceMS <= 0 {
		cfg.Search.DebounceMS = int(search.DefaultQuietPeriod.Milliseconds())
	}
	if cfg.Search.SuggestionLimit <= 0 {
		cfg.Search.SuggestionLimit = search.DefaultLimit
	}
	if cfg.UI.Overscan <= 0 {
		cfg.UI.Overscan = 8
	}
	if cfg.UI.SortKey == "" {
		cfg.UI.SortKey = ranking.DefaultSpec().Key
	}
	if cfg.UI.SortDirection == "" {
		cfg.UI.SortDirection = string(ranking.DefaultSpec().Direction)
	}
	if cfg.UI.PreviewCacheMB <= 0 {
		cfg.UI.PreviewCacheMB = 50
	}
}

// applyEnv lets INTAKE_* variables override file values, so tokens and URLs
// can stay out of the on-disk config.
func (cfg *Config) applyEnv() {
	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setString := func(key string, dst *string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	setBool := func(key string, dst *bool) {
		if s := v.GetString(key); s != "" {
			if b, err := strconv.ParseBool(s); err == nil {
				*dst = b
			}
		}
	}

	setString("datadir", &cfg.DataDir)
	setString("leads.source", &cfg.Leads.Source)
	setString("leads.path", &cfg.Leads.Path)
	setString("leads.url", &cfg.Leads.URL)
	setString("leads.token", &cfg.Leads.Token)
	setString("sync.url", &cfg.Sync.URL)
	setString("sync.token", &cfg.Sync.Token)
	setBool("sync.enabled", &cfg.Sync.Enabled)
	setString("relevance.url", &cfg.Relevance.URL)
	setString("relevance.token", &cfg.Relevance.Token)
	setBool("relevance.enabled", &cfg.Relevance.Enabled)
}

func (cfg *Config) GetConfigPath() string {
	if cfg.home != "" {
		return GetConfigPath(cfg.home)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return GetConfigPath(homeDir)
}

// Save writes the config atomically so a crash mid-write cannot leave a
// truncated file behind.
func (cfg *Config) Save() error {
	if err := ValidateSource(cfg.Leads.Source); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	configPath := cfg.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("cannot resolve config path")
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	return atomic.WriteFile(configPath, bytes.NewReader(data))
}
