// internal/workers/listing/filter-listings/handler.go
package filterlistings

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
	TaskType = "filter-listings"
	Stage    = "Filtering listings"
)

var (
	ErrFilterFailed = errors.New("FILTER_FAILED")
)

type Handler struct {
	config *Config
	client *apphttp.Client
	sink   progress.Sink
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, client *apphttp.Client, sink progress.Sink, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		sink:   sink,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// Execute fetches every listing's detail concurrently and returns the accepted
// subset. Listings already applied to are bookmarked when needed and always
// excluded. Any request failure or unconfirmed bookmark fails the whole call.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ids := input.Listings.Sorted()

	h.logger.Info("Filtering listings", map[string]interface{}{
		"listings":      len(ids),
		"filterWords":   len(h.config.FilterWords),
		"requiredWords": len(h.config.RequiredWords),
	})

	decisions, err := fanout.Map(ctx, h.config.Workers, ids, h.filterListing)
	if err != nil {
		h.logger.Error("Listing filtering failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, fmt.Errorf("%w: %w", ErrFilterFailed, err)
	}

	out := &Output{Accepted: models.NewListingSet()}
	for i, d := range decisions {
		switch d {
		case DecisionAccepted:
			out.Accepted.Add(ids[i])
		case DecisionAlreadyApplied:
			out.AlreadyApplied++
		default:
			out.Rejected++
		}
	}

	h.logger.Info("Listings filtered", map[string]interface{}{
		"accepted":       out.Accepted.Len(),
		"alreadyApplied": out.AlreadyApplied,
		"rejected":       out.Rejected,
	})
	return out, nil
}

func (h *Handler) filterListing(ctx context.Context, id models.ListingID) (Decision, error) {
	metrics.ListingsInFlight.WithLabelValues(TaskType).Inc()
	defer metrics.ListingsInFlight.WithLabelValues(TaskType).Dec()

	var resp detailResponse
	if err := h.client.Get(ctx, board.DetailURL(h.config.BaseURL, id), &resp); err != nil {
		return DecisionRejected, fmt.Errorf("listing %d detail: %w", id, err)
	}
	detail := resp.toDetail(id)

	decision := DecisionAccepted
	if detail.HasApplication {
		decision = DecisionAlreadyApplied
		if !detail.IsBookmark {
			if err := h.bookmark(ctx, id); err != nil {
				return DecisionRejected, err
			}
		}
	} else if !Evaluate(detail.Text(), h.config.FilterWords, h.config.RequiredWords) {
		decision = DecisionRejected
	}

	metrics.StageItems.WithLabelValues(TaskType).Inc()
	h.sink.Increment(Stage)
	return decision, nil
}

// bookmark marks an already-applied listing so later runs skip it at
// retrieval. The board must confirm the flag.
func (h *Handler) bookmark(ctx context.Context, id models.ListingID) error {
	flag, err := board.Bookmark(ctx, h.client, h.config.BaseURL, id, h.now())
	if err != nil {
		return fmt.Errorf("listing %d bookmark: %w", id, err)
	}
	if !flag {
		return apperrors.NewInvariantError("bookmark must be confirmed for an applied listing", fmt.Sprintf("listing %d", id))
	}
	return nil
}

// Evaluate applies the keyword rules to a listing's text: any filter word
// rejects it, and when required words are set at least one must appear.
// Matching is case-sensitive.
func Evaluate(text string, filterWords, requiredWords []string) bool {
	for _, w := range filterWords {
		if strings.Contains(text, w) {
			return false
		}
	}
	if len(requiredWords) == 0 {
		return true
	}
	for _, w := range requiredWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
