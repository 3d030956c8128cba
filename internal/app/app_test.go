package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/server"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.TickRate != 20 || cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if len(cfg.LogSinks) != 1 || cfg.LogSinks[0] != "console" {
		t.Fatalf("expected console sink by default, got %v", cfg.LogSinks)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ITEMCREATOR_ADDR", ":9000")
	t.Setenv("ITEMCREATOR_TICK_RATE", "10")
	t.Setenv("ITEMCREATOR_LOG_SINKS", "console,json")
	t.Setenv("ITEMCREATOR_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.TickRate != 10 || len(cfg.LogSinks) != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := loggingConfig(cfg).MinimumSeverity; got != logging.SeverityDebug {
		t.Fatalf("expected debug severity, got %v", got)
	}
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	t.Setenv("ITEMCREATOR_TICK_RATE", "fast")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestBuildSinks(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.EnabledSinks = []string{"console", "json", "memory"}
	cfg.JSON.FilePath = filepath.Join(t.TempDir(), "logs", "events.jsonl")
	sinks, err := buildSinks(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sinks) != 3 || sinks[1].Name != "json" {
		t.Fatalf("unexpected sinks %+v", sinks)
	}
	for _, named := range sinks {
		named.Sink.Close(context.Background())
	}

	cfg.EnabledSinks = []string{"carrier-pigeon"}
	if _, err := buildSinks(cfg); err == nil {
		t.Fatalf("expected unknown sink to fail")
	}
}

func TestSeedFloor(t *testing.T) {
	grid := world.NewGrid(server.DefaultWorldName)
	seedFloor(grid, 2)
	if !grid.IsSolid(world.BlockPos{X: 2, Y: 63, Z: -2}) {
		t.Fatalf("expected floor under spawn")
	}
	if grid.IsSolid(world.BlockPos{X: 3, Y: 63, Z: 0}) {
		t.Fatalf("expected floor to stop at the radius")
	}
}

func TestExampleConfigLoadsCleanly(t *testing.T) {
	hub := server.NewHub(server.Config{Store: config.NewFileStore(filepath.Join("..", "..", "config.example.json"))})
	report, err := hub.Reload(context.Background())
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if report.Templates != 6 || report.Dropped != 0 || len(report.Skipped) != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Bundles != 2 || report.Recipes != 2 {
		t.Fatalf("expected two bundles and two recipes, got %+v", report)
	}
}
