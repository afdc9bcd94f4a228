// Package pipeline sequences the export fetch, local partitioning and
// durable-store sync into the three operator-facing workflows.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/ampsync/internal/archive"
	"github.com/newthinker/ampsync/internal/core"
	"github.com/newthinker/ampsync/internal/export"
	"github.com/newthinker/ampsync/internal/partition"
	"github.com/newthinker/ampsync/internal/resolver"
	"github.com/newthinker/ampsync/internal/storage/remote"
	"go.uber.org/zap"
)

// Fetcher is the export client capability the pipeline needs.
// *export.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, creds export.Credentials, start, end string) ([]byte, error)
}

// Metrics receives pipeline-level counters. *metrics.Registry satisfies it.
type Metrics interface {
	RecordPartitionWrite(n int)
	RecordUpload()
	RecordLocalDelete(n int)
	RecordWorkflowRun(workflow, outcome string, seconds float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordPartitionWrite(int)                  {}
func (nopMetrics) RecordUpload()                             {}
func (nopMetrics) RecordLocalDelete(int)                     {}
func (nopMetrics) RecordWorkflowRun(string, string, float64) {}

// Options configures a Pipeline.
type Options struct {
	Credentials   export.Credentials
	LookbackHours int
	LagHours      int
}

// Pipeline is the workflow orchestrator. All collaborators are injected at
// construction; the pipeline holds no hidden process-wide state.
type Pipeline struct {
	opts    Options
	fetcher Fetcher
	local   *partition.Store
	remote  remote.Store
	log     *zap.Logger
	met     Metrics
}

// New creates a pipeline. met may be nil.
func New(opts Options, fetcher Fetcher, local *partition.Store, rs remote.Store, log *zap.Logger, met Metrics) *Pipeline {
	if met == nil {
		met = nopMetrics{}
	}
	return &Pipeline{
		opts:    opts,
		fetcher: fetcher,
		local:   local,
		remote:  rs,
		log:     log,
		met:     met,
	}
}

// DefaultRange computes the fetch window used when no explicit range is
// given: the end backs off from now by the data-availability lag, the
// start looks back the configured number of hours from there.
func (p *Pipeline) DefaultRange(now time.Time) (core.Hour, core.Hour) {
	end := core.HourOf(now.UTC().Add(-time.Duration(p.opts.LagHours) * time.Hour))
	start := end.Add(-time.Duration(p.opts.LookbackHours) * time.Hour)
	return start, end
}

// Fetch closes the gap between what [start, end] requires and what exists
// locally: probe the remote store for an already-synced prefix, diff the
// required hours against local partitions, then fetch and decode each
// missing hour. The first failing hour aborts the rest of the plan.
func (p *Pipeline) Fetch(ctx context.Context, start, end core.Hour) error {
	return p.run("fetch", func(log *zap.Logger) error {
		return p.fetch(ctx, log, start, end)
	})
}

func (p *Pipeline) fetch(ctx context.Context, log *zap.Logger, start, end core.Hour) error {
	start = p.continuityAdvance(ctx, log, start, end)

	required := resolver.RequiredSet(start, end)
	log.Info("computed required partitions",
		zap.Int("count", len(required)),
		zap.String("start", start.Timestamp()), zap.String("end", end.Timestamp()))

	local, err := p.local.List()
	if err != nil {
		return err
	}

	missing := resolver.Missing(required, local)
	if len(missing) == 0 {
		log.Info("all required partitions exist locally, nothing to fetch")
		return nil
	}

	plan, err := resolver.FetchPlan(missing)
	if err != nil {
		return err
	}
	log.Info("fetching missing partitions", zap.Int("count", len(plan)))

	for _, instr := range plan {
		data, err := p.fetcher.Fetch(ctx, p.opts.Credentials, instr.Start, instr.End)
		if err != nil {
			return err
		}

		err = archive.Decode(data, func(hourKey string, content []byte) error {
			if err := p.local.Append(hourKey, content); err != nil {
				return err
			}
			p.met.RecordPartitionWrite(len(content))
			return nil
		})
		if err != nil {
			return err
		}
		log.Info("stored partition", zap.String("key", instr.Key))
	}

	log.Info("fetch workflow complete", zap.Int("fetched", len(plan)))
	return nil
}

// continuityAdvance moves the effective start past the longest unbroken
// prefix of hours already in the remote store. Any failure reaching the
// store is neutralized: durability is an optimization for the fetch path,
// never a dependency.
func (p *Pipeline) continuityAdvance(ctx context.Context, log *zap.Logger, start, end core.Hour) core.Hour {
	remoteSet, err := p.remote.List(ctx)
	if err != nil {
		log.Warn("remote probe failed, keeping original start", zap.Error(err))
		return start
	}
	if len(remoteSet) == 0 {
		return start
	}

	last, ok := resolver.LongestPrefix(start, end, remoteSet)
	if !ok {
		log.Info("no synced prefix in remote store, keeping original start")
		return start
	}

	adjusted := last.Next()
	log.Info("advancing start past synced prefix",
		zap.String("last_synced", last.Key()), zap.String("new_start", adjusted.Timestamp()))
	return adjusted
}

// Sync uploads every local partition not already in the remote store, then
// deletes local files. Overlapping partitions are dropped locally before
// upload so nothing is uploaded twice; local cleanup only runs after every
// upload in the batch succeeded.
func (p *Pipeline) Sync(ctx context.Context) error {
	return p.run("sync", func(log *zap.Logger) error {
		return p.sync(ctx, log)
	})
}

func (p *Pipeline) sync(ctx context.Context, log *zap.Logger) error {
	local, err := p.local.List()
	if err != nil {
		return err
	}
	if len(local) == 0 {
		log.Info("no local partitions to sync")
		return nil
	}

	remoteSet, err := p.remote.List(ctx)
	if err != nil {
		return err
	}

	overlap := make(map[string]struct{})
	for key := range local {
		if _, ok := remoteSet[key]; ok {
			overlap[key] = struct{}{}
		}
	}
	if len(overlap) > 0 {
		log.Info("dropping partitions already in remote store", zap.Int("count", len(overlap)))
		if err := p.local.Delete(overlap); err != nil {
			return err
		}
		p.met.RecordLocalDelete(len(overlap))
	}

	remaining := resolver.Missing(local, overlap)
	if len(remaining) == 0 {
		log.Info("all local partitions already in remote store")
		return nil
	}

	keys := make([]string, 0, len(remaining))
	for key := range remaining {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	log.Info("uploading partitions", zap.Int("count", len(keys)))
	for _, key := range keys {
		if err := p.remote.Put(ctx, key, p.local.Path(key)); err != nil {
			// Cleanup must not run: never delete unconfirmed-uploaded data.
			return err
		}
		p.met.RecordUpload()
	}

	if err := p.local.DeleteAll(); err != nil {
		return err
	}
	p.met.RecordLocalDelete(len(keys))

	log.Info("sync workflow complete", zap.Int("uploaded", len(keys)))
	return nil
}

// Complete runs the fetch workflow then the sync workflow. There is no
// rollback between them: a sync failure leaves fetched partitions on disk
// for the next run.
func (p *Pipeline) Complete(ctx context.Context, start, end core.Hour) error {
	if err := p.Fetch(ctx, start, end); err != nil {
		return err
	}
	return p.Sync(ctx)
}

func (p *Pipeline) run(workflow string, fn func(log *zap.Logger) error) error {
	log := p.log.With(
		zap.String("workflow", workflow),
		zap.String("run_id", uuid.NewString()),
	)
	started := time.Now()
	log.Info("workflow starting")

	err := fn(log)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error("workflow failed", zap.Error(err))
	}
	p.met.RecordWorkflowRun(workflow, outcome, time.Since(started).Seconds())
	return err
}
