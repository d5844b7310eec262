// internal/workers/account/load-profile/handler.go
package loadprofile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wanted-applier/internal/common/board"
	apperrors "wanted-applier/internal/common/errors"
	apphttp "wanted-applier/internal/common/http"
	"wanted-applier/internal/common/logger"
	"wanted-applier/internal/models"
)

const (
	TaskType = "load-profile"
	Stage    = "Retrieving user details"
)

var (
	ErrProfileUnavailable = errors.New("PROFILE_UNAVAILABLE")
)

type Handler struct {
	config *Config
	client *apphttp.Client
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, client *apphttp.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:    time.Now,
	}
}

// Execute loads the applicant profile of the authenticated account: identity
// from the id API and the first resume on file.
func (h *Handler) Execute(ctx context.Context, _ *Input) (*Output, error) {
	profile, err := h.execute(ctx)
	if err != nil {
		h.logger.Error("Failed to load profile", map[string]interface{}{
			"error":     err.Error(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		return nil, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}

	h.logger.Info("Profile loaded", map[string]interface{}{
		"email": profile.Email,
	})
	return &Output{Profile: profile}, nil
}

func (h *Handler) execute(ctx context.Context) (*models.Profile, error) {
	var me meResponse
	if err := h.client.Get(ctx, board.MeURL(h.config.IDURL), &me); err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if me.User.Email == "" {
		return nil, apperrors.NewInvariantError("account must have an email", "")
	}

	var resumes resumesResponse
	if err := h.client.Get(ctx, board.ResumesURL(h.config.BaseURL, h.now()), &resumes); err != nil {
		return nil, fmt.Errorf("load resumes: %w", err)
	}
	if len(resumes.Data) == 0 || resumes.Data[0].Key == "" {
		return nil, apperrors.NewInvariantError("account must have at least one resume", me.User.Email)
	}

	return &models.Profile{
		Email:    me.User.Email,
		Name:     me.User.Username,
		Mobile:   me.User.Mobile.Number,
		ResumeID: resumes.Data[0].Key,
	}, nil
}
