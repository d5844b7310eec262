package pipeline

import (
	"bytes"
	"context"
	"testing"

	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/common/metrics"
	"wanted-applier/internal/common/progress"
	"wanted-applier/internal/models"
	applylistings "wanted-applier/internal/workers/listing/apply-listings"
	filterlistings "wanted-applier/internal/workers/listing/filter-listings"
	retrievelistings "wanted-applier/internal/workers/listing/retrieve-listings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type retrieveFunc func(ctx context.Context, in *retrievelistings.Input) (*retrievelistings.Output, error)

func (f retrieveFunc) Execute(ctx context.Context, in *retrievelistings.Input) (*retrievelistings.Output, error) {
	return f(ctx, in)
}

type filterFunc func(ctx context.Context, in *filterlistings.Input) (*filterlistings.Output, error)

func (f filterFunc) Execute(ctx context.Context, in *filterlistings.Input) (*filterlistings.Output, error) {
	return f(ctx, in)
}

type applyFunc func(ctx context.Context, in *applylistings.Input) (*applylistings.Output, error)

func (f applyFunc) Execute(ctx context.Context, in *applylistings.Input) (*applylistings.Output, error) {
	return f(ctx, in)
}

func ids(n int) models.ListingSet {
	s := models.NewListingSet()
	for i := 1; i <= n; i++ {
		s.Add(models.ListingID(i))
	}
	return s
}

func retrieving(n int) retrieveFunc {
	return func(context.Context, *retrievelistings.Input) (*retrievelistings.Output, error) {
		return &retrievelistings.Output{Listings: ids(n)}, nil
	}
}

func passThrough(keep int) filterFunc {
	return func(_ context.Context, in *filterlistings.Input) (*filterlistings.Output, error) {
		accepted := models.NewListingSet()
		for _, id := range in.Listings.Sorted()[:keep] {
			accepted.Add(id)
		}
		return &filterlistings.Output{Accepted: accepted}, nil
	}
}

func applyingAll() applyFunc {
	return func(_ context.Context, in *applylistings.Input) (*applylistings.Output, error) {
		return &applylistings.Output{Applied: in.Listings}, nil
	}
}

func newOrchestrator(t *testing.T, r Retriever, f Filter, a Applier) (*Orchestrator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	log := logger.NewTestLogger(t)
	sink := progress.MultiSink{progress.NewConsoleSink(&buf), progress.NewLogSink(log)}
	return New(r, f, a, sink, nil, log), &buf
}

var profile = &models.Profile{Email: "dev@example.com", Name: "Dev", ResumeID: "resume-1"}

func TestRun_HappyPath(t *testing.T) {
	var gotRunID string
	apply := func(ctx context.Context, in *applylistings.Input) (*applylistings.Output, error) {
		gotRunID = in.RunID
		assert.Same(t, profile, in.Profile)
		return applyingAll()(ctx, in)
	}
	o, out := newOrchestrator(t, retrieving(110), passThrough(12), applyFunc(apply))

	result := o.Run(context.Background(), []models.Criterion{{Category: "899", Years: 3}}, profile)

	require.NoError(t, result.Err)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 0, result.ExitCode())
	assert.Equal(t, 110, result.Retrieved)
	assert.Equal(t, 12, result.Accepted)
	assert.Equal(t, 12, result.Applied)
	assert.Equal(t, result.RunID, gotRunID)
	_, err := uuid.Parse(result.RunID)
	assert.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "✓ Retrieved 110 listings")
	assert.Contains(t, text, "✓ Successfully filtered 12 listings")
	assert.Contains(t, text, "✓ Successfully applied to 12 listings")
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.RunListings.WithLabelValues("applied")))
}

func TestRun_NoListingsStopsEarly(t *testing.T) {
	filter := func(context.Context, *filterlistings.Input) (*filterlistings.Output, error) {
		t.Fatal("filter must not run without listings")
		return nil, nil
	}
	o, out := newOrchestrator(t, retrieving(0), filterFunc(filter), applyingAll())

	result := o.Run(context.Background(), nil, profile)

	assert.Equal(t, StateDone, result.State)
	assert.True(t, result.Empty)
	assert.Equal(t, 0, result.ExitCode())
	assert.Contains(t, out.String(), "x No new listings found")
}

func TestRun_RetrieveFailureAborts(t *testing.T) {
	retrieve := func(context.Context, *retrievelistings.Input) (*retrievelistings.Output, error) {
		return nil, apperrors.NewRequestError("GET", "https://example.test/api/v4/jobs", 401, "expired")
	}
	filter := func(context.Context, *filterlistings.Input) (*filterlistings.Output, error) {
		t.Fatal("filter must not run after an aborted retrieval")
		return nil, nil
	}
	o, out := newOrchestrator(t, retrieveFunc(retrieve), filterFunc(filter), applyingAll())

	result := o.Run(context.Background(), nil, profile)

	assert.Equal(t, StateAborted, result.State)
	assert.Equal(t, 1, result.ExitCode())
	assert.True(t, apperrors.IsRequestError(result.Err))
	assert.Contains(t, out.String(), "x Failed to retrieve listings")
	assert.Equal(t, "Aborted", result.Summary().State)
}

func TestRun_NothingAcceptedStillReachesApply(t *testing.T) {
	var applyCalled bool
	apply := func(ctx context.Context, in *applylistings.Input) (*applylistings.Output, error) {
		applyCalled = true
		assert.Equal(t, 0, in.Listings.Len())
		return applyingAll()(ctx, in)
	}
	o, out := newOrchestrator(t, retrieving(5), passThrough(0), applyFunc(apply))

	result := o.Run(context.Background(), nil, profile)

	assert.True(t, applyCalled)
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 0, result.ExitCode())
	assert.Contains(t, out.String(), "x No suitable listings found")
	assert.Contains(t, out.String(), "x Failed to apply to any listings")
}

func TestRun_FilterFailureAborts(t *testing.T) {
	filter := func(context.Context, *filterlistings.Input) (*filterlistings.Output, error) {
		return nil, apperrors.NewInvariantError("bookmark flag must be truthy", "listing 42")
	}
	apply := func(context.Context, *applylistings.Input) (*applylistings.Output, error) {
		t.Fatal("apply must not run after an aborted filter")
		return nil, nil
	}
	o, out := newOrchestrator(t, retrieving(3), filterFunc(filter), applyFunc(apply))

	result := o.Run(context.Background(), nil, profile)

	assert.Equal(t, StateAborted, result.State)
	assert.Equal(t, 3, result.Retrieved)
	assert.True(t, apperrors.IsInvariantError(result.Err))
	assert.Contains(t, out.String(), "x Failed to filter listings")
}

func TestRun_ApplyFailureAborts(t *testing.T) {
	apply := func(context.Context, *applylistings.Input) (*applylistings.Output, error) {
		return nil, apperrors.NewRequestError("POST", "https://example.test/api/v3/applications", 500, "")
	}
	o, out := newOrchestrator(t, retrieving(3), passThrough(2), applyFunc(apply))

	result := o.Run(context.Background(), nil, profile)

	assert.Equal(t, StateAborted, result.State)
	assert.Equal(t, 1, result.ExitCode())
	assert.Equal(t, 2, result.Accepted)
	assert.Equal(t, 0, result.Applied)
	assert.Contains(t, out.String(), "x Failed to apply to listings")
	assert.Contains(t, result.Summary().Error, "500")
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Retrieving", StateRetrieving.String())
	assert.True(t, StateAborted.Terminal())
	assert.False(t, StateApplying.Terminal())
}
