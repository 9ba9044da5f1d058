package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"faculty-sync/internal/concurrency"
	"faculty-sync/internal/config"
	"faculty-sync/internal/domain"
	"faculty-sync/internal/mappers"
	"faculty-sync/internal/providers"
	"faculty-sync/internal/providers/drupal"
)

// Report summarizes one run. A completed run is a success at the process
// level regardless of Failed; only pre-flight failures abort.
type Report struct {
	Total   int
	Created int
	Failed  int
	NodeIDs []string
}

func (r Report) String() string {
	return fmt.Sprintf("%d/%d", r.Created, r.Total)
}

// Runner wires the source provider and the Drupal client into the
// one-shot pipeline. The Drupal session is established once and is
// read-only afterwards, so workers share it without locking.
type Runner struct {
	Cfg    config.Config
	Source providers.FacultyProvider
	Target *drupal.Client
	Log    *zap.Logger
}

// Run executes the pipeline: fetch, authenticate, then transform+create
// per record. An empty (or failed) fetch is a no-op, not an error; an
// authentication failure aborts the whole run. Per-record failures are
// counted and logged, never fatal.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	records, err := r.Source.ListFaculty(ctx)
	if err != nil {
		// Indistinguishable from "legitimately zero records" by design.
		r.Log.Warn("source fetch failed, nothing to sync",
			zap.String("provider", r.Source.Name()),
			zap.Error(err))
		return Report{}, nil
	}
	if len(records) == 0 {
		r.Log.Info("no data from source, exiting",
			zap.String("provider", r.Source.Name()))
		return Report{}, nil
	}
	r.Log.Info("fetched faculty records",
		zap.String("provider", r.Source.Name()),
		zap.Int("count", len(records)))

	if err := r.Target.Authenticate(ctx, r.Cfg.DrupalUsername, r.Cfg.DrupalPassword); err != nil {
		return Report{}, fmt.Errorf("authentication failed: %w", err)
	}
	r.Log.Info("authenticated against drupal", zap.String("base_url", r.Cfg.DrupalBaseURL))

	limit := rate.Inf
	if r.Cfg.RecordDelay > 0 {
		limit = rate.Every(r.Cfg.RecordDelay)
	}
	limiter := rate.NewLimiter(limit, 1)

	nodeIDs := make([]string, len(records))
	errs := concurrency.ForEach(ctx, records, r.Cfg.SyncWorkers,
		func(ctx context.Context, i int, rec domain.FacultyRecord) error {
			payload, err := mappers.ToNodePayload(r.Cfg.DrupalContentType, rec)
			if err != nil {
				// Rejected before any network call is made for it.
				r.Log.Warn("skipping invalid record",
					zap.Int("index", i),
					zap.Error(err))
				return err
			}

			// Throttles load on the target; shared across workers.
			if err := limiter.Wait(ctx); err != nil {
				return err
			}

			id, err := r.Target.CreateNode(ctx, payload)
			if err != nil {
				r.Log.Error("node creation failed",
					zap.Int("index", i),
					zap.String("name", rec.Name),
					zap.Error(err))
				return err
			}

			nodeIDs[i] = id
			r.Log.Info("created node",
				zap.String("name", rec.Name),
				zap.String("nid", id))
			return nil
		})

	report := Report{Total: len(records)}
	for i, err := range errs {
		if err != nil {
			report.Failed++
			continue
		}
		report.Created++
		if nodeIDs[i] != "" {
			report.NodeIDs = append(report.NodeIDs, nodeIDs[i])
		}
	}

	r.Log.Info("sync complete",
		zap.Int("created", report.Created),
		zap.Int("failed", report.Failed),
		zap.Int("total", report.Total))
	return report, nil
}
