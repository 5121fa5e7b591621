// Package job runs a copy job locally: every partition is read through a source scheme and
// written through a sink scheme, with partitions processed in parallel.
package job

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/litetable/litetable-scheme/internal/rowstore"
	"github.com/litetable/litetable-scheme/internal/scheme"
	"github.com/litetable/litetable-scheme/internal/tuple"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"io"
	"sync"
	"time"
)

// Runner implements the app.Dependency interface for a finite job. Done is signaled once the
// job finishes, successfully or not.
type Runner struct {
	source      *scheme.Scheme
	sink        *scheme.Scheme
	reader      rowstore.Reader
	store       rowstore.Store
	partitions  []rowstore.Partition
	parallelism int

	conf     *Conf
	counters *Counters

	cancel context.CancelFunc
	done   chan error
	wg     sync.WaitGroup
}

type Config struct {
	Source *scheme.Scheme
	Sink   *scheme.Scheme
	Reader rowstore.Reader
	Store  rowstore.Store
	// Partitions split the key space. Defaults to a single partition over every row.
	Partitions []rowstore.Partition
	// Parallelism caps concurrent tasks. Zero means one task per partition.
	Parallelism int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Source == nil {
		errGrp = append(errGrp, errors.New("source scheme is required"))
	}
	if c.Sink == nil {
		errGrp = append(errGrp, errors.New("sink scheme is required"))
	}
	if c.Reader == nil {
		errGrp = append(errGrp, errors.New("reader is required"))
	}
	if c.Store == nil {
		errGrp = append(errGrp, errors.New("store is required"))
	}
	if c.Parallelism < 0 {
		errGrp = append(errGrp, errors.New("parallelism cannot be negative"))
	}
	if c.Source != nil && c.Sink != nil {
		source := c.Source.SourceFields()
		for _, name := range c.Sink.SinkFields() {
			if source.Index(name) < 0 {
				errGrp = append(errGrp, fmt.Errorf("sink field %s is not produced by the source",
					name))
			}
		}
	}
	return errors.Join(errGrp...)
}

// New validates the job. The source data request is stored in the job configuration here, the
// way a job submitter would before any task starts.
func New(cfg *Config) (*Runner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	partitions := cfg.Partitions
	if len(partitions) == 0 {
		partitions = []rowstore.Partition{{}}
	}
	parallelism := cfg.Parallelism
	if parallelism == 0 {
		parallelism = len(partitions)
	}

	conf := NewConf()
	if err := cfg.Source.SourceConfInit(conf); err != nil {
		return nil, fmt.Errorf("failed to initialize job configuration: %w", err)
	}

	return &Runner{
		source:      cfg.Source,
		sink:        cfg.Sink,
		reader:      cfg.Reader,
		store:       cfg.Store,
		partitions:  partitions,
		parallelism: parallelism,
		conf:        conf,
		counters:    NewCounters(),
		done:        make(chan error, 1),
	}, nil
}

// Conf returns the job configuration shared with every task.
func (r *Runner) Conf() *Conf {
	return r.conf
}

// Counters returns the counters aggregated across tasks.
func (r *Runner) Counters() *Counters {
	return r.counters
}

// Run processes every partition and returns the first task error. Remaining tasks are
// canceled after a failure.
func (r *Runner) Run(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for _, p := range r.partitions {
		g.Go(func() error {
			return r.runTask(gctx, p)
		})
	}

	err := g.Wait()

	counters := r.counters.Snapshot()[scheme.CounterGroup]
	log.Info().
		Int64("read", counters[scheme.CounterRowsRead]).
		Int64("skipped", counters[scheme.CounterRowsSkipped]).
		Int64("written", counters[scheme.CounterRowsWritten]).
		Msgf("Job finished in %v", time.Since(start))
	return err
}

func (r *Runner) runTask(ctx context.Context, p rowstore.Partition) error {
	taskID := uuid.NewString()
	logger := log.With().Str("task", taskID).Str("partition", p.Prefix).Logger()
	ctx = logger.WithContext(ctx)

	logger.Debug().Msg("task starting")

	src, err := r.source.OpenSource(ctx, r.conf, r.reader, p, r.counters)
	if err != nil {
		return fmt.Errorf("task %s: %w", taskID, err)
	}
	defer func() {
		if err := src.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close source")
		}
	}()

	from := src.Fields()
	err = r.sink.WithSink(ctx, r.store, r.counters, func(sink *scheme.Sink) error {
		to := sink.Fields()
		for {
			t, err := src.Next(ctx)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}

			projected, err := tuple.Project(t, from, to)
			if err != nil {
				return err
			}
			if err = sink.Put(ctx, projected); err != nil {
				return err
			}
		}
	})
	if err != nil {
		return fmt.Errorf("task %s: %w", taskID, err)
	}

	logger.Debug().Int("skipped", src.Skipped()).Msg("task finished")
	return nil
}

func (r *Runner) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.done <- r.Run(ctx)
	}()
	return nil
}

// Stop cancels a running job and waits for its tasks to return.
func (r *Runner) Stop() error {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
	return nil
}

func (r *Runner) Name() string {
	return "Copy Job"
}

// Done delivers the result of the job started by Start.
func (r *Runner) Done() <-chan error {
	return r.done
}
