// Package app wires the process: logging router, hub, tick loop and HTTP
// server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/WolfTailVale/ItemCreator/internal/config"
	"github.com/WolfTailVale/ItemCreator/internal/items"
	"github.com/WolfTailVale/ItemCreator/internal/loop"
	servernet "github.com/WolfTailVale/ItemCreator/internal/net"
	"github.com/WolfTailVale/ItemCreator/internal/server"
	"github.com/WolfTailVale/ItemCreator/internal/telemetry"
	"github.com/WolfTailVale/ItemCreator/internal/world"
	"github.com/WolfTailVale/ItemCreator/logging"
	loggingSinks "github.com/WolfTailVale/ItemCreator/logging/sinks"
)

func Run(ctx context.Context, cfg Config) error {
	telemetryLogger := cfg.Logger
	if telemetryLogger == nil {
		telemetryLogger = telemetry.WrapLogger(log.Default())
	}

	metrics := &logging.Metrics{}
	logConfig := loggingConfig(cfg)
	if logConfig.HasSink("json") && logConfig.JSON.FilePath == "" {
		return errors.New("ITEMCREATOR_LOG_JSON_PATH is required for the json sink")
	}
	sinks, err := buildSinks(logConfig)
	if err != nil {
		return err
	}
	router, err := logging.NewRouterWithMetrics(logging.ClockFunc(time.Now), logConfig, sinks, metrics)
	if err != nil {
		return fmt.Errorf("failed to construct logging router: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if cerr := router.Close(closeCtx); cerr != nil {
			telemetryLogger.Printf("failed to close logging router: %v", cerr)
		}
	}()

	hubMetrics := telemetry.WrapMetrics(metrics)
	hub := server.NewHub(server.Config{
		Store:     config.NewFileStore(cfg.ConfigPath),
		Publisher: router,
		Logger:    telemetryLogger,
		Metrics:   hubMetrics,
	})
	seedFloor(hub.World(), cfg.FloorRadius)
	if _, err := hub.Reload(ctx); err != nil {
		return err
	}

	ticker := loop.New(hub, loop.Config{
		TickRate:        cfg.TickRate,
		CommandCapacity: cfg.CommandCapacity,
		PerActorLimit:   cfg.PerActorLimit,
	}, loop.Deps{Logger: telemetryLogger, Metrics: hubMetrics}, loop.Hooks{})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go ticker.Run(runCtx)

	handler := servernet.NewHTTPHandler(hub, servernet.HTTPHandlerConfig{
		Logger:   telemetryLogger,
		Metrics:  metrics,
		TickRate: cfg.TickRate,
		Loop:     ticker,
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}
	go func() {
		<-runCtx.Done()
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancelShutdown()
		srv.Shutdown(shutdownCtx)
	}()

	telemetryLogger.Printf("server listening on %s (config %s)", srv.Addr, cfg.ConfigPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func loggingConfig(cfg Config) logging.Config {
	logConfig := logging.DefaultConfig()
	if len(cfg.LogSinks) > 0 {
		logConfig.EnabledSinks = cfg.LogSinks
	}
	logConfig.MinimumSeverity = logging.ParseSeverity(cfg.LogLevel)
	logConfig.JSON.FilePath = cfg.LogJSONPath
	logConfig.Zap.Development = cfg.ZapDevelopment
	logConfig.Fields = map[string]any{"service": "itemcreator"}
	return logConfig
}

func buildSinks(cfg logging.Config) ([]logging.NamedSink, error) {
	var out []logging.NamedSink
	for _, name := range cfg.EnabledSinks {
		name = strings.ToLower(strings.TrimSpace(name))
		switch name {
		case "console":
			out = append(out, logging.NamedSink{Name: name, Sink: loggingSinks.NewConsoleSink(os.Stdout, cfg.Console)})
		case "json":
			sink, err := loggingSinks.OpenJSONFile(cfg.JSON.FilePath, cfg.JSON.FlushInterval)
			if err != nil {
				return nil, err
			}
			out = append(out, logging.NamedSink{Name: name, Sink: sink})
		case "zap":
			sink, err := loggingSinks.NewZapFromConfig(cfg.Zap)
			if err != nil {
				return nil, err
			}
			out = append(out, logging.NamedSink{Name: name, Sink: sink})
		case "memory":
			out = append(out, logging.NamedSink{Name: name, Sink: loggingSinks.NewMemorySink()})
		case "":
		default:
			return nil, fmt.Errorf("unknown log sink %q", name)
		}
	}
	return out, nil
}

// seedFloor lays a stone platform under the spawn point so blocks can be
// placed and teleports have somewhere to land.
func seedFloor(grid *world.Grid, radius int) {
	if radius <= 0 {
		return
	}
	y := int(server.DefaultSpawn.Y) - 1
	grid.Fill(world.BlockPos{X: -radius, Y: y, Z: -radius}, world.BlockPos{X: radius, Y: y, Z: radius}, items.MustMaterial(items.MaterialStone))
}
