package main

import (
	"context"
	"fmt"
	"github.com/litetable/litetable-scheme/internal/app"
	"github.com/litetable/litetable-scheme/internal/config"
	"github.com/litetable/litetable-scheme/internal/job"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/rowstore/litetable"
	"github.com/litetable/litetable-scheme/internal/rowstore/memory"
	"github.com/litetable/litetable-scheme/internal/scheme"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"os"
	"time"
)

const createFamilyTimeout = 10 * time.Second

func main() {
	application, err := initialize()
	if err != nil {
		panic(err)
	}

	if err = application.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("Job failed")
		os.Exit(1)
	}
}

func initialize() (*app.App, error) {
	var deps []app.Dependency

	// the configuration path may be passed as the only argument
	var path string
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.NewConfig(path)
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	sourceMapping, err := cfg.Mapping()
	if err != nil {
		return nil, fmt.Errorf("invalid source columns: %w", err)
	}
	sinkMapping, err := cfg.SinkMapping()
	if err != nil {
		return nil, fmt.Errorf("invalid sink columns: %w", err)
	}

	source, err := scheme.New(&scheme.Config{
		Mapping:         sourceMapping,
		TimeRange:       cfg.TimeRange,
		TimestampField:  cfg.TimestampField,
		LoggingInterval: cfg.LoggingInterval,
	})
	if err != nil {
		return nil, err
	}

	sink, err := scheme.New(&scheme.Config{
		Mapping:         sinkMapping,
		TimestampField:  cfg.SinkTimestampField,
		LoggingInterval: cfg.LoggingInterval,
	})
	if err != nil {
		return nil, err
	}

	var (
		reader  rowstore.Reader
		store   rowstore.Store
		backend app.Dependency
	)
	switch cfg.Backend {
	case config.BackendMemory:
		mem, err := memory.New(&memory.Config{
			Families: sink.DataRequest().Families(),
			DataFile: cfg.MemoryDataFile,
		})
		if err != nil {
			return nil, err
		}
		reader, store, backend = mem, mem, mem
	default:
		client, err := litetable.New(&litetable.Config{
			Address:    cfg.ServerAddress,
			Port:       cfg.ServerPort,
			CDCAddress: cfg.CDCAddress,
			CDCPort:    cfg.CDCPort,
			Retries:    cfg.Retries,
		})
		if err != nil {
			return nil, err
		}

		// the sink families have to exist before anything is written to them
		ctx, cancel := context.WithTimeout(context.Background(), createFamilyTimeout)
		defer cancel()
		if err = client.CreateFamilies(ctx, sink.DataRequest().Families()...); err != nil {
			return nil, err
		}

		reader, store, backend = client, client, client
		if cfg.Follow {
			reader = client.ChangeFeedReader()
		}
	}

	runner, err := job.New(&job.Config{
		Source:      source,
		Sink:        sink,
		Reader:      reader,
		Store:       store,
		Partitions:  cfg.Partitions,
		Parallelism: cfg.Parallelism,
	})
	if err != nil {
		return nil, err
	}

	// the job is stopped before the backend it uses
	deps = append(deps, runner, backend)

	application, err := app.CreateApp(&app.Config{
		ServiceName: "LiteTable Scheme",
		StopTimeout: 5 * time.Second,
	}, deps...)
	if err != nil {
		return nil, err
	}

	return application, nil
}
