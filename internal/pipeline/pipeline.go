// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"fmt"
	"time"

	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/common/metrics"
	"wanted-applier/internal/common/observability"
	"wanted-applier/internal/common/progress"
	"wanted-applier/internal/models"
	applylistings "wanted-applier/internal/workers/listing/apply-listings"
	filterlistings "wanted-applier/internal/workers/listing/filter-listings"
	retrievelistings "wanted-applier/internal/workers/listing/retrieve-listings"

	"github.com/google/uuid"
)

type Retriever interface {
	Execute(ctx context.Context, input *retrievelistings.Input) (*retrievelistings.Output, error)
}

type Filter interface {
	Execute(ctx context.Context, input *filterlistings.Input) (*filterlistings.Output, error)
}

type Applier interface {
	Execute(ctx context.Context, input *applylistings.Input) (*applylistings.Output, error)
}

// Result is the outcome of one run.
type Result struct {
	RunID     string
	State     State
	Retrieved int
	Accepted  int
	Applied   int
	// Empty is set when retrieval found nothing and the run stopped early.
	Empty    bool
	Err      error
	Started  time.Time
	Finished time.Time
}

// ExitCode maps the run to a process exit status.
func (r *Result) ExitCode() int {
	if r.State == StateAborted {
		return 1
	}
	return apperrors.ExitCode(r.Err)
}

func (r *Result) Summary() models.RunSummary {
	s := models.RunSummary{
		RunID:     r.RunID,
		State:     r.State.String(),
		Retrieved: r.Retrieved,
		Accepted:  r.Accepted,
		Applied:   r.Applied,
		Duration:  r.Finished.Sub(r.Started),
	}
	if r.Err != nil {
		s.Error = r.Err.Error()
	}
	return s
}

// Orchestrator runs retrieve, filter and apply one after the other. Each stage
// finishes completely before the next begins.
type Orchestrator struct {
	retriever Retriever
	filter    Filter
	applier   Applier
	sink      progress.Sink
	obs       *observability.Observability
	logger    logger.Logger
	now       func() time.Time
	newRunID  func() string
}

// New builds an orchestrator. obs may be nil.
func New(retriever Retriever, filter Filter, applier Applier, sink progress.Sink, obs *observability.Observability, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		filter:    filter,
		applier:   applier,
		sink:      sink,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "pipeline"}),
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
}

type run struct {
	o      *Orchestrator
	result *Result
	logger logger.Logger
}

// Run executes one pipeline run for criteria on behalf of profile.
func (o *Orchestrator) Run(ctx context.Context, criteria []models.Criterion, profile *models.Profile) *Result {
	result := &Result{
		RunID:   o.newRunID(),
		State:   StateIdle,
		Started: o.now(),
	}
	r := &run{o: o, result: result, logger: o.logger.WithFields(map[string]interface{}{"runId": result.RunID})}
	defer func() {
		result.Finished = o.now()
		metrics.RunListings.WithLabelValues("retrieved").Set(float64(result.Retrieved))
		metrics.RunListings.WithLabelValues("accepted").Set(float64(result.Accepted))
		metrics.RunListings.WithLabelValues("applied").Set(float64(result.Applied))
		r.logger.Info("Pipeline finished", map[string]interface{}{
			"state":     result.State.String(),
			"retrieved": result.Retrieved,
			"accepted":  result.Accepted,
			"applied":   result.Applied,
			"duration":  result.Finished.Sub(result.Started).String(),
		})
	}()

	// Retrieving
	r.transition(StateRetrieving)
	o.sink.Start(retrievelistings.Stage, len(criteria), 0)
	started := o.now()
	retrieved, err := o.retriever.Execute(ctx, &retrievelistings.Input{Criteria: criteria})
	if err != nil {
		r.abort(ctx, retrievelistings.TaskType, retrievelistings.Stage, "Failed to retrieve listings", started, err)
		return result
	}
	result.Retrieved = retrieved.Listings.Len()
	if result.Retrieved == 0 {
		r.finishStage(ctx, retrievelistings.TaskType, retrievelistings.Stage, "empty", false, "No new listings found", started, 0)
		result.Empty = true
		r.transition(StateDone)
		return result
	}
	r.finishStage(ctx, retrievelistings.TaskType, retrievelistings.Stage, "ok", true,
		fmt.Sprintf("Retrieved %d listings", result.Retrieved), started, result.Retrieved)

	// Filtering
	r.transition(StateFiltering)
	o.sink.Start(filterlistings.Stage, result.Retrieved, 0)
	started = o.now()
	filtered, err := o.filter.Execute(ctx, &filterlistings.Input{Listings: retrieved.Listings})
	if err != nil {
		r.abort(ctx, filterlistings.TaskType, filterlistings.Stage, "Failed to filter listings", started, err)
		return result
	}
	result.Accepted = filtered.Accepted.Len()
	if result.Accepted == 0 {
		r.finishStage(ctx, filterlistings.TaskType, filterlistings.Stage, "empty", false, "No suitable listings found", started, 0)
	} else {
		r.finishStage(ctx, filterlistings.TaskType, filterlistings.Stage, "ok", true,
			fmt.Sprintf("Successfully filtered %d listings", result.Accepted), started, result.Accepted)
	}

	// Applying runs even with nothing accepted.
	r.transition(StateApplying)
	o.sink.Start(applylistings.Stage, result.Accepted, 0)
	started = o.now()
	applied, err := o.applier.Execute(ctx, &applylistings.Input{
		RunID:    result.RunID,
		Listings: filtered.Accepted,
		Profile:  profile,
	})
	if err != nil {
		r.abort(ctx, applylistings.TaskType, applylistings.Stage, "Failed to apply to listings", started, err)
		return result
	}
	result.Applied = applied.Applied.Len()
	if result.Applied == 0 {
		r.finishStage(ctx, applylistings.TaskType, applylistings.Stage, "empty", false, "Failed to apply to any listings", started, 0)
	} else {
		r.finishStage(ctx, applylistings.TaskType, applylistings.Stage, "ok", true,
			fmt.Sprintf("Successfully applied to %d listings", result.Applied), started, result.Applied)
	}

	r.transition(StateDone)
	return result
}

func (r *run) transition(to State) {
	r.logger.Debug("Pipeline state change", map[string]interface{}{
		"from": r.result.State.String(),
		"to":   to.String(),
	})
	r.result.State = to
}

func (r *run) finishStage(ctx context.Context, taskType, stage, outcome string, ok bool, message string, started time.Time, produced int) {
	r.o.sink.Finish(stage, ok, message)
	metrics.StageRuns.WithLabelValues(taskType, outcome).Inc()
	r.o.obs.RecordStage(ctx, taskType, outcome, r.o.now().Sub(started), produced)
}

func (r *run) abort(ctx context.Context, taskType, stage, message string, started time.Time, err error) {
	code := apperrors.CodeOf(err)
	r.finishStage(ctx, taskType, stage, "failed", false, message, started, 0)
	metrics.StageFailures.WithLabelValues(taskType, string(code)).Inc()

	r.logger.Error(message, map[string]interface{}{
		"stage":     taskType,
		"error":     err.Error(),
		"errorCode": string(code),
		"category":  apperrors.GetErrorCategory(code),
	})
	r.result.Err = err
	r.transition(StateAborted)
}
