// internal/workers/listing/apply-listings/handler.go
package applylistings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wanted-applier/internal/common/board"
	apperrors "wanted-applier/internal/common/errors"
	"wanted-applier/internal/common/fanout"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/common/metrics"
	"wanted-applier/internal/common/progress"
	"wanted-applier/internal/models"
)

const (
	TaskType = "apply-listings"
	Stage    = "Applying to listings"
)

var (
	ErrApplyFailed = errors.New("APPLY_FAILED")
)

type Handler struct {
	config   *Config
	client   *apphttp.Client
	recorder models.ApplicationRecorder
	sink     progress.Sink
	logger   logger.Logger
	now      func() time.Time
}

// NewHandler builds the apply stage. recorder may be nil when no ledger is
// configured.
func NewHandler(config *Config, client *apphttp.Client, recorder models.ApplicationRecorder, sink progress.Sink, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		client:   client,
		recorder: recorder,
		sink:     sink,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:      time.Now,
	}
}

// Execute applies to every listing concurrently. Each listing runs init,
// submit and bookmark in order; the first listing to fail at any step fails
// the whole call and no partial result is returned.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Profile == nil {
		return nil, fmt.Errorf("%w: %w", ErrApplyFailed, apperrors.NewInvariantError("profile must be loaded before applying", ""))
	}

	ids := input.Listings.Sorted()
	h.logger.Info("Applying to listings", map[string]interface{}{
		"listings": len(ids),
		"runId":    input.RunID,
	})

	err := fanout.Each(ctx, h.config.Workers, ids, func(ctx context.Context, id models.ListingID) error {
		return h.applyListing(ctx, input.RunID, id, input.Profile)
	})
	if err != nil {
		h.logger.Error("Applying to listings failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, fmt.Errorf("%w: %w", ErrApplyFailed, err)
	}

	h.logger.Info("Applied to listings", map[string]interface{}{
		"applied": len(ids),
	})
	return &Output{Applied: models.NewListingSet(ids...)}, nil
}

func (h *Handler) applyListing(ctx context.Context, runID string, id models.ListingID, profile *models.Profile) error {
	metrics.ListingsInFlight.WithLabelValues(TaskType).Inc()
	defer metrics.ListingsInFlight.WithLabelValues(TaskType).Dec()

	instanceID, err := h.initApplication(ctx, id, profile)
	if err != nil {
		return err
	}

	if err := h.client.Put(ctx, board.ApplicationURL(h.config.BaseURL, instanceID, h.now()), newSubmitRequest(profile), nil); err != nil {
		return fmt.Errorf("listing %d submit application %s: %w", id, instanceID, err)
	}

	flag, err := board.Bookmark(ctx, h.client, h.config.BaseURL, id, h.now())
	if err != nil {
		return fmt.Errorf("listing %d bookmark: %w", id, err)
	}
	if !flag {
		return apperrors.NewInvariantError("bookmark must be confirmed after applying", fmt.Sprintf("listing %d, application %s", id, instanceID))
	}

	h.record(ctx, &models.Application{
		RunID:      runID,
		ListingID:  id,
		InstanceID: instanceID,
		Email:      profile.Email,
		ResumeID:   profile.ResumeID,
		AppliedAt:  h.now().UTC(),
	})

	h.logger.Debug("Applied to listing", map[string]interface{}{
		"listingId":  int64(id),
		"instanceId": instanceID,
	})
	metrics.StageItems.WithLabelValues(TaskType).Inc()
	h.sink.Increment(Stage)
	return nil
}

func (h *Handler) initApplication(ctx context.Context, id models.ListingID, profile *models.Profile) (string, error) {
	req := initRequest{Email: profile.Email, JobID: id, Name: profile.Name}

	var resp initResponse
	if err := h.client.Post(ctx, board.ApplicationsURL(h.config.BaseURL, h.now()), req, &resp); err != nil {
		return "", fmt.Errorf("listing %d init application: %w", id, err)
	}

	instanceID := strings.TrimSpace(resp.instanceID())
	if instanceID == "" {
		return "", apperrors.NewInvariantError("init application must return an id", fmt.Sprintf("listing %d", id))
	}
	return instanceID, nil
}

// record writes the ledger row. The board already holds the application, so a
// failed write is only logged.
func (h *Handler) record(ctx context.Context, app *models.Application) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Record(ctx, app); err != nil {
		h.logger.Warn("Failed to record application", map[string]interface{}{
			"listingId": int64(app.ListingID),
			"error":     err.Error(),
		})
	}
}
