package state

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Paintersrp/linkrank/internal/config"
)

// Loader defers building the State until a command runs, after flags have
// been parsed and bound.
type Loader struct {
	V *viper.Viper
	// ConfigPath is the --config flag value. Empty uses the default file.
	ConfigPath string
	NoColor    bool
	LogOutput  io.Writer

	mu    sync.Mutex
	cfg   *config.Config
	state *State
}

func NewLoader(v *viper.Viper) *Loader {
	if v == nil {
		v = viper.New()
	}
	return &Loader{V: v}
}

// Bind maps flags onto config keys, e.g. "top" onto "ranking.top". Only
// flags present in fs are bound.
func (l *Loader) Bind(fs *pflag.FlagSet, keys map[string]string) error {
	for flagName, key := range keys {
		flag := fs.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := l.V.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", flagName, err)
		}
	}
	return nil
}

// UseDir points the source at a local directory, overriding the config file.
func (l *Loader) UseDir(dir string) {
	l.V.Set("source.kind", config.SourceDir)
	l.V.Set("source.dir", dir)
}

// Config loads and caches the merged configuration.
func (l *Loader) Config() (*config.Config, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg != nil {
		return l.cfg, nil
	}

	home, err := GetHomeDir()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(home, l.ConfigPath, l.V)
	if err != nil {
		return nil, err
	}
	l.cfg = cfg
	return cfg, nil
}

// State builds the State on first call and returns the cached one after.
func (l *Loader) State(ctx context.Context, opts Options) (*State, error) {
	cfg, err := l.Config()
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != nil {
		return l.state, nil
	}
	if opts.LogOutput == nil {
		opts.LogOutput = l.LogOutput
	}
	s, err := NewState(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	l.state = s
	return s, nil
}

// Close releases the State if one was built.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == nil {
		return nil
	}
	err := l.state.Close()
	l.state = nil
	return err
}
