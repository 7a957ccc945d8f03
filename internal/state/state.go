package state

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Paintersrp/linkrank/internal/cache"
	"github.com/Paintersrp/linkrank/internal/config"
	"github.com/Paintersrp/linkrank/internal/logger"
	"github.com/Paintersrp/linkrank/internal/metrics"
	"github.com/Paintersrp/linkrank/internal/notify"
	"github.com/Paintersrp/linkrank/internal/services/rank"
	"github.com/Paintersrp/linkrank/internal/source"
	"github.com/Paintersrp/linkrank/internal/store"
)

// linkCacheSize bounds how many document bodies keep their extracted links
// between runs.
const linkCacheSize = 8192

type State struct {
	Config  *config.Config
	Home    string
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Source  source.Source
	Ranker  *rank.Service
	Store   *store.Store
	Notify  *notify.Publisher
}

// Options tunes how the state is assembled.
type Options struct {
	// LogOutput receives log lines. Nil writes to stderr.
	LogOutput io.Writer
	// NoSinks skips the database and pub/sub connections, for commands that
	// only inspect documents.
	NoSinks bool
}

// NewState wires the configured source, sinks and ranking service.
func NewState(ctx context.Context, cfg *config.Config, opts Options) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}

	logCfg := cfg.LoggerConfig()
	logCfg.Output = opts.LogOutput
	log := logger.New(logCfg)

	src, err := NewSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := &State{
		Config:  cfg,
		Home:    home,
		Logger:  log,
		Metrics: metrics.New(),
		Source:  src,
	}

	var sinks []rank.Sink
	if !opts.NoSinks {
		if cfg.Postgres.DSN != "" {
			st, err := store.New(ctx, cfg.Postgres.DSN)
			if err != nil {
				return nil, errors.Join(err, s.Close())
			}
			s.Store = st
			if err := st.Migrate(ctx); err != nil {
				return nil, errors.Join(err, s.Close())
			}
			sinks = append(sinks, st)
			storeLog := logger.Component(log, "store")
			storeLog.Debug().Msg("postgres sink enabled")
		}

		if cfg.Redis.URL != "" {
			pub, err := notify.NewPublisher(notify.Options{
				URL:     cfg.Redis.URL,
				Channel: cfg.Redis.Channel,
				Top:     cfg.Ranking.Top,
			})
			if err != nil {
				return nil, errors.Join(err, s.Close())
			}
			s.Notify = pub
			sinks = append(sinks, pub)
			notifyLog := logger.Component(log, "notify")
			notifyLog.Debug().Str("channel", cfg.Redis.Channel).Msg("redis sink enabled")
		}
	}

	graphCfg := cfg.GraphConfig()
	graphCfg.Cache = cache.NewLRUCache[[sha256.Size]byte, []string](linkCacheSize)

	s.Ranker = rank.NewService(src, rank.Options{
		Graph:    graphCfg,
		PageRank: cfg.PageRankOptions(),
		Logger:   log,
		Metrics:  s.Metrics,
		Sinks:    sinks,
	})

	return s, nil
}

// NewSource builds the document source named by cfg.Source.Kind.
func NewSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceDir:
		dir := source.NewDir(cfg.Source.Dir, cfg.Source.Extensions)
		dir.IgnoredFolders = append([]string(nil), cfg.Source.IgnoredFolders...)
		dir.Workers = cfg.Ranking.Workers
		return dir, nil
	case config.SourceS3:
		s3cfg := cfg.Source.S3
		src, err := source.NewS3(ctx, s3cfg.Bucket, s3cfg.Prefix, cfg.Source.Extensions, source.S3Options{
			Region:          s3cfg.Region,
			Endpoint:        s3cfg.Endpoint,
			AccessKeyID:     s3cfg.AccessKeyID,
			SecretAccessKey: s3cfg.SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		src.Workers = cfg.Ranking.Workers
		return src, nil
	case config.SourceGit:
		g := cfg.Source.Git
		return source.NewGit(g.Repo, g.Revision, g.Prefix, cfg.Source.Extensions), nil
	default:
		return nil, fmt.Errorf("%w: %q", source.ErrUnknownSource, cfg.Source.Kind)
	}
}

func GetHomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory. err: %s", err)
	}

	return home, nil
}

// LoadConfig reads the config file and applies the overrides held by v. An
// empty path reads the default file under home, which may be absent.
func LoadConfig(home, path string, v *viper.Viper) (*config.Config, error) {
	required := path != ""
	if !required {
		path = config.GetConfigPath(home)
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(v)
	return cfg, nil
}

// Close releases the ranking service and sink connections.
func (s *State) Close() error {
	if s == nil {
		return nil
	}

	var errs []error
	if s.Ranker != nil {
		if err := s.Ranker.Close(); err != nil && !errors.Is(err, rank.ErrClosed) {
			errs = append(errs, err)
		}
		s.Ranker = nil
	}
	if s.Notify != nil {
		if err := s.Notify.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Notify = nil
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, err)
		}
		s.Store = nil
	}

	return errors.Join(errs...)
}
