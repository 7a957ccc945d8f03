package state

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"

	"github.com/Paintersrp/linkrank/internal/config"
	"github.com/Paintersrp/linkrank/internal/source"
)

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"A.html": `<a href="B.html">b</a><a href="C.html">c</a>`,
		"B.html": `<a href="C.html">c</a>`,
		"C.html": `end`,
	}
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestNewStateRanksDirectory(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg := config.Default()
	cfg.Source.Dir = writeSite(t)

	var logs bytes.Buffer
	s, err := NewState(context.Background(), cfg, Options{LogOutput: &logs})
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	run, err := s.Ranker.Run(context.Background())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if top := run.Top(1); len(top) != 1 || top[0].Name != "C" {
		t.Fatalf("expected C to rank first, got %+v", top)
	}
	if logs.Len() == 0 {
		t.Fatalf("expected run to be logged")
	}
}

func TestNewStateWiresRedisSink(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	mr := miniredis.RunT(t)

	cfg := config.Default()
	cfg.Source.Dir = writeSite(t)
	cfg.Redis.URL = fmt.Sprintf("redis://%s", mr.Addr())
	cfg.Log.Level = "debug"

	var logs bytes.Buffer
	s, err := NewState(context.Background(), cfg, Options{LogOutput: &logs})
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	if s.Notify == nil {
		t.Fatalf("expected redis publisher")
	}
	if !strings.Contains(logs.String(), `"component":"notify"`) || !strings.Contains(logs.String(), "redis sink enabled") {
		t.Fatalf("expected notify component log, got %s", logs.String())
	}
	if _, err := s.Ranker.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if s.Notify != nil || s.Ranker != nil {
		t.Fatalf("expected resources released on Close")
	}

	s, err = NewState(context.Background(), cfg, Options{NoSinks: true, LogOutput: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("NewState returned error: %v", err)
	}
	defer s.Close()
	if s.Notify != nil {
		t.Fatalf("expected sinks to be skipped")
	}
}

func TestNewStateRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Ranking.Damping = 0

	if _, err := NewState(context.Background(), cfg, Options{}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestNewSourceUnknownKind(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Kind = "ftp"

	if _, err := NewSource(context.Background(), cfg); !errors.Is(err, source.ErrUnknownSource) {
		t.Fatalf("expected ErrUnknownSource, got %v", err)
	}
}

func TestNewSourceGit(t *testing.T) {
	cfg := config.Default()
	cfg.Source.Kind = config.SourceGit
	cfg.Source.Git = config.GitConfig{Repo: "/srv/site", Revision: "main", Prefix: "/public/"}

	src, err := NewSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewSource returned error: %v", err)
	}
	g, ok := src.(*source.Git)
	if !ok {
		t.Fatalf("expected *source.Git, got %T", src)
	}
	if g.Repo != "/srv/site" || g.Revision != "main" || g.Prefix != "public" {
		t.Fatalf("unexpected git source: %+v", g)
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	home := t.TempDir()
	if _, _, err := config.EnsureConfigExists(home); err != nil {
		t.Fatalf("EnsureConfigExists returned error: %v", err)
	}

	v := viper.New()
	v.Set("ranking.top", 25)

	cfg, err := LoadConfig(home, "", v)
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Ranking.Top != 25 {
		t.Fatalf("expected override, got %d", cfg.Ranking.Top)
	}

	if _, err := LoadConfig(home, filepath.Join(home, "missing.yaml"), v); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}
