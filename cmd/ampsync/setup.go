package main

import (
	"fmt"
	"time"

	"github.com/newthinker/ampsync/internal/config"
	"github.com/newthinker/ampsync/internal/core"
	"github.com/newthinker/ampsync/internal/export"
	"github.com/newthinker/ampsync/internal/logger"
	"github.com/newthinker/ampsync/internal/metrics"
	"github.com/newthinker/ampsync/internal/partition"
	"github.com/newthinker/ampsync/internal/pipeline"
	"github.com/newthinker/ampsync/internal/storage/remote"
	"go.uber.org/zap"
)

// runtime bundles everything a workflow command needs, constructed once per
// process and passed down explicitly.
type runtime struct {
	cfg  *config.Config
	log  *zap.Logger
	met  *metrics.Registry
	pipe *pipeline.Pipeline
}

func setup() (*runtime, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
	}

	if devMode {
		cfg.Remote.Type = "localfs"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	log := logger.Must(debug, cfg.Logging.Dir)
	if cfgFile == "" {
		log.Warn("no config file specified, using defaults")
	}
	if devMode {
		log.Info("dev mode: using local dev tree instead of S3",
			zap.String("path", cfg.Remote.Path))
	}

	met := metrics.NewRegistry()

	rs, err := remote.New(cfg.Remote, log)
	if err != nil {
		return nil, fmt.Errorf("creating remote store: %w", err)
	}

	local := partition.New(cfg.Local.DataDir, log)

	delay := time.Duration(cfg.Export.DelaySeconds * float64(time.Second))
	client := export.New(cfg.Export.URL, delay, cfg.Export.MaxAttempts, log, met)

	pipe := pipeline.New(pipeline.Options{
		Credentials: export.Credentials{
			APIKey:    cfg.Export.APIKey,
			SecretKey: cfg.Export.SecretKey,
		},
		LookbackHours: cfg.Range.LookbackHours,
		LagHours:      cfg.Range.LagHours,
	}, client, local, rs, log, met)

	return &runtime{cfg: cfg, log: log, met: met, pipe: pipe}, nil
}

// finish pushes metrics if a gateway is configured and flushes logs.
// Push failures never change the command's outcome.
func (rt *runtime) finish() {
	if rt.cfg.Metrics.PushURL != "" {
		if err := rt.met.Push(rt.cfg.Metrics.PushURL, rt.cfg.Metrics.Job); err != nil {
			rt.log.Warn("metrics push failed", zap.Error(err))
		}
	}
	rt.log.Sync()
}

// resolveRange parses the --start/--end flags, falling back to the
// configured lookback window behind the availability lag.
func (rt *runtime) resolveRange(startFlag, endFlag string) (core.Hour, core.Hour, error) {
	defStart, defEnd := rt.pipe.DefaultRange(time.Now())

	start, end := defStart, defEnd
	var err error
	if startFlag != "" {
		if start, err = core.ParseHour(startFlag); err != nil {
			return core.Hour{}, core.Hour{}, fmt.Errorf("invalid --start: %w", err)
		}
	}
	if endFlag != "" {
		if end, err = core.ParseHour(endFlag); err != nil {
			return core.Hour{}, core.Hour{}, fmt.Errorf("invalid --end: %w", err)
		}
	}

	if end.Before(start) {
		return core.Hour{}, core.Hour{}, fmt.Errorf("end %s is before start %s",
			end.Timestamp(), start.Timestamp())
	}
	return start, end, nil
}
