package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Paintersrp/linkrank/internal/constants"
	"github.com/Paintersrp/linkrank/internal/graph"
	"github.com/Paintersrp/linkrank/internal/logger"
	"github.com/Paintersrp/linkrank/internal/pagerank"
)

const (
	SourceDir = "dir"
	SourceS3  = "s3"
	SourceGit = "git"

	DefaultTop          = 10
	DefaultRedisChannel = "linkrank.runs"
)

type S3Config struct {
	Bucket          string `yaml:"bucket"            json:"bucket"`
	Prefix          string `yaml:"prefix"            json:"prefix"`
	Region          string `yaml:"region"            json:"region"`
	Endpoint        string `yaml:"endpoint"          json:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"     json:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key" json:"-"`
}

type GitConfig struct {
	Repo     string `yaml:"repo"     json:"repo"`
	Revision string `yaml:"revision" json:"revision"`
	Prefix   string `yaml:"prefix"   json:"prefix"`
}

type SourceConfig struct {
	Kind           string    `yaml:"kind"            json:"kind"`
	Dir            string    `yaml:"dir"             json:"dir"`
	Extensions     []string  `yaml:"extensions"      json:"extensions"`
	IgnoredFolders []string  `yaml:"ignored_folders" json:"ignored_folders"`
	S3             S3Config  `yaml:"s3"              json:"s3"`
	Git            GitConfig `yaml:"git"             json:"git"`
}

type LinksConfig struct {
	Syntax   string   `yaml:"syntax"   json:"syntax"`
	Suffixes []string `yaml:"suffixes" json:"suffixes"`
}

type RankingConfig struct {
	Damping       float64 `yaml:"damping"        json:"damping"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Tolerance     float64 `yaml:"tolerance"      json:"tolerance"`
	Workers       int     `yaml:"workers"        json:"workers"`
	Top           int     `yaml:"top"            json:"top"`
}

type LogConfig struct {
	Level  string `yaml:"level"  json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn" json:"-"`
}

type RedisConfig struct {
	URL     string `yaml:"url"     json:"-"`
	Channel string `yaml:"channel" json:"channel"`
}

type Config struct {
	Source   SourceConfig   `yaml:"source"   json:"source"`
	Links    LinksConfig    `yaml:"links"    json:"links"`
	Ranking  RankingConfig  `yaml:"ranking"  json:"ranking"`
	Log      LogConfig      `yaml:"log"      json:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"  json:"metrics"`
	Postgres PostgresConfig `yaml:"postgres" json:"postgres"`
	Redis    RedisConfig    `yaml:"redis"    json:"redis"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:       SourceDir,
			Dir:        ".",
			Extensions: []string{".html", ".htm"},
		},
		Links: LinksConfig{
			Syntax:   string(graph.SyntaxHTML),
			Suffixes: append([]string(nil), graph.DefaultSuffixes...),
		},
		Ranking: RankingConfig{
			Damping:       pagerank.DefaultDamping,
			MaxIterations: pagerank.DefaultMaxIterations,
			Tolerance:     pagerank.DefaultTolerance,
			Top:           DefaultTop,
		},
		Log:   LogConfig{Level: "info"},
		Redis: RedisConfig{Channel: DefaultRedisChannel},
	}
}

// Load reads the YAML file at path on top of the defaults. When required is
// false a missing file yields the defaults.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// BindEnv makes LINKRANK_* variables visible to v under their dotted keys,
// e.g. LINKRANK_RANKING_DAMPING for "ranking.damping".
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ApplyOverrides copies every key set in v (by flag or environment) over the
// file values. Keys use the dotted yaml path, e.g. "ranking.damping".
func (cfg *Config) ApplyOverrides(v *viper.Viper) {
	if v == nil {
		return
	}

	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setStrings := func(key string, dst *[]string) {
		if v.IsSet(key) {
			*dst = splitList(v.GetStringSlice(key))
		}
	}
	setInt := func(key string, dst *int) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setFloat := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}

	setString("source.kind", &cfg.Source.Kind)
	setString("source.dir", &cfg.Source.Dir)
	setStrings("source.extensions", &cfg.Source.Extensions)
	setStrings("source.ignored_folders", &cfg.Source.IgnoredFolders)
	setString("source.s3.bucket", &cfg.Source.S3.Bucket)
	setString("source.s3.prefix", &cfg.Source.S3.Prefix)
	setString("source.s3.region", &cfg.Source.S3.Region)
	setString("source.s3.endpoint", &cfg.Source.S3.Endpoint)
	setString("source.s3.access_key_id", &cfg.Source.S3.AccessKeyID)
	setString("source.s3.secret_access_key", &cfg.Source.S3.SecretAccessKey)
	setString("source.git.repo", &cfg.Source.Git.Repo)
	setString("source.git.revision", &cfg.Source.Git.Revision)
	setString("source.git.prefix", &cfg.Source.Git.Prefix)

	setString("links.syntax", &cfg.Links.Syntax)
	setStrings("links.suffixes", &cfg.Links.Suffixes)

	setFloat("ranking.damping", &cfg.Ranking.Damping)
	setInt("ranking.max_iterations", &cfg.Ranking.MaxIterations)
	setFloat("ranking.tolerance", &cfg.Ranking.Tolerance)
	setInt("ranking.workers", &cfg.Ranking.Workers)
	setInt("ranking.top", &cfg.Ranking.Top)

	setString("log.level", &cfg.Log.Level)
	if v.IsSet("log.pretty") {
		cfg.Log.Pretty = v.GetBool("log.pretty")
	}

	setString("metrics.textfile", &cfg.Metrics.Textfile)
	setString("postgres.dsn", &cfg.Postgres.DSN)
	setString("redis.url", &cfg.Redis.URL)
	setString("redis.channel", &cfg.Redis.Channel)
}

// Env values arrive as a single comma separated string.
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks every section and joins the problems it finds.
func (cfg *Config) Validate() error {
	var errs []error

	switch cfg.Source.Kind {
	case SourceDir:
		if strings.TrimSpace(cfg.Source.Dir) == "" {
			errs = append(errs, invalid("source.dir", "directory is required for the dir source"))
		}
	case SourceS3:
		if strings.TrimSpace(cfg.Source.S3.Bucket) == "" {
			errs = append(errs, invalid("source.s3.bucket", "bucket is required for the s3 source"))
		}
	case SourceGit:
		if strings.TrimSpace(cfg.Source.Git.Repo) == "" {
			errs = append(errs, invalid("source.git.repo", "repository is required for the git source"))
		}
	default:
		errs = append(errs, invalid("source.kind", fmt.Sprintf("unknown source %q, expected %q, %q or %q", cfg.Source.Kind, SourceDir, SourceS3, SourceGit)))
	}

	if _, err := graph.ParseSyntax(cfg.Links.Syntax); err != nil {
		errs = append(errs, invalid("links.syntax", err.Error()))
	}

	if err := cfg.PageRankOptions().Validate(); err != nil {
		errs = append(errs, invalid("ranking", err.Error()))
	}
	if cfg.Ranking.Top < 0 {
		errs = append(errs, invalid("ranking.top", "must not be negative"))
	}

	if _, err := logger.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, invalid("log.level", err.Error()))
	}

	if cfg.Redis.URL != "" && strings.TrimSpace(cfg.Redis.Channel) == "" {
		errs = append(errs, invalid("redis.channel", "channel is required when redis.url is set"))
	}

	return errors.Join(errs...)
}

// GraphConfig returns the graph builder settings.
func (cfg *Config) GraphConfig() graph.Config {
	syntax, err := graph.ParseSyntax(cfg.Links.Syntax)
	if err != nil {
		syntax = graph.SyntaxHTML
	}
	return graph.Config{
		Syntax:   syntax,
		Suffixes: append([]string(nil), cfg.Links.Suffixes...),
		Workers:  cfg.Ranking.Workers,
	}
}

// PageRankOptions returns the solver settings.
func (cfg *Config) PageRankOptions() pagerank.Options {
	return pagerank.Options{
		Damping:       cfg.Ranking.Damping,
		MaxIterations: cfg.Ranking.MaxIterations,
		Tolerance:     cfg.Ranking.Tolerance,
		Workers:       cfg.Ranking.Workers,
	}
}

// LoggerConfig returns the logger settings.
func (cfg *Config) LoggerConfig() logger.Config {
	return logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}
}
