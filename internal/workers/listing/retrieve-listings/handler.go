// internal/workers/listing/retrieve-listings/handler.go
package retrievelistings

import (
	"context"
	"errors"
	"fmt"
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
	TaskType = "retrieve-listings"
	Stage    = "Retrieving listings"
)

var (
	ErrRetrieveFailed = errors.New("RETRIEVE_FAILED")
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

// Execute walks every criterion's listing pages concurrently and returns the
// union of listings the user has not bookmarked. The first failing criterion
// fails the whole call.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	h.logger.Info("Retrieving listings", map[string]interface{}{
		"criteria": len(input.Criteria),
		"workers":  h.config.Workers,
	})

	sets, err := fanout.Map(ctx, h.config.Workers, input.Criteria, h.retrieveCriterion)
	if err != nil {
		h.logger.Error("Listing retrieval failed", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, fmt.Errorf("%w: %w", ErrRetrieveFailed, err)
	}

	listings := models.NewListingSet()
	for _, s := range sets {
		listings.Union(s)
	}

	h.logger.Info("Listings retrieved", map[string]interface{}{
		"count": listings.Len(),
	})
	return &Output{Listings: listings}, nil
}

func (h *Handler) retrieveCriterion(ctx context.Context, c models.Criterion) (models.ListingSet, error) {
	metrics.ListingsInFlight.WithLabelValues(TaskType).Inc()
	defer metrics.ListingsInFlight.WithLabelValues(TaskType).Dec()

	found := models.NewListingSet()
	visited := make(map[string]struct{})
	pages := 0

	for pageURL := board.ListingsURL(h.config.BaseURL, c, h.now()); pageURL != ""; {
		if _, seen := visited[pageURL]; seen {
			return nil, apperrors.NewInvariantError("listing pages must not repeat", pageURL)
		}
		visited[pageURL] = struct{}{}

		var page models.ListingPage
		if err := h.client.Get(ctx, pageURL, &page); err != nil {
			return nil, fmt.Errorf("category %s page %d: %w", c.Category, pages+1, err)
		}
		pages++

		for _, listing := range page.Data {
			if !listing.IsBookmark {
				found.Add(listing.ID)
			}
		}

		pageURL = ""
		if next := page.Links.Next; next != nil && *next != "" {
			pageURL = board.NextURL(h.config.BaseURL, *next)
		}
	}

	h.logger.Debug("Criterion retrieved", map[string]interface{}{
		"category": c.Category,
		"years":    c.Years,
		"pages":    pages,
		"listings": found.Len(),
	})
	metrics.StageItems.WithLabelValues(TaskType).Inc()
	h.sink.Increment(Stage)
	return found, nil
}
