package sinks

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/WolfTailVale/ItemCreator/logging"
)

// Zap forwards events to a zap logger, one structured entry per event.
type Zap struct {
	logger *zap.Logger
}

func NewZap(logger *zap.Logger) *Zap {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Zap{logger: logger}
}

// NewZapFromConfig builds the logger itself, using the development preset when
// requested.
func NewZapFromConfig(cfg logging.ZapConfig) (*Zap, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("sinks: build zap logger: %w", err)
	}
	return NewZap(logger), nil
}

func (s *Zap) Write(event logging.Event) error {
	fields := []zap.Field{
		zap.Uint64("tick", event.Tick),
		zap.String("actor", formatEntity(event.Actor)),
	}
	if event.Category != "" {
		fields = append(fields, zap.String("category", event.Category))
	}
	if len(event.Targets) > 0 {
		targets := make([]string, 0, len(event.Targets))
		for _, target := range event.Targets {
			targets = append(targets, formatEntity(target))
		}
		fields = append(fields, zap.Strings("targets", targets))
	}
	if event.Payload != nil {
		fields = append(fields, zap.Any("payload", event.Payload))
	}
	for k, v := range event.Extra {
		fields = append(fields, zap.Any(k, v))
	}
	if ce := s.logger.Check(zapLevel(event.Severity), string(event.Type)); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (s *Zap) Close(context.Context) error {
	// Sync reports EINVAL on terminals; nothing useful can be done with it.
	_ = s.logger.Sync()
	return nil
}

func zapLevel(sev logging.Severity) zapcore.Level {
	switch sev {
	case logging.SeverityDebug:
		return zapcore.DebugLevel
	case logging.SeverityWarn:
		return zapcore.WarnLevel
	case logging.SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
