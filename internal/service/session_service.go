package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/model"
	"focusflow/internal/repository"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	defaultStatsWindow  = 30 * 24 * time.Hour
)

type SessionService struct {
	repo *repository.SessionRepository
}

type CreateSessionInput struct {
	SessionType        model.SessionMode
	DurationMinutes    int
	Status             model.RemoteStatus
	StartTime          time.Time
	EndTime            time.Time
	RelatedTaskID      *string
	Notes              *string
	InterruptionReason *string
}

type UpdateSessionInput struct {
	Status             *model.RemoteStatus
	EndTime            *time.Time
	Notes              *string
	InterruptionReason *string
}

type ListSessionsInput struct {
	From        *time.Time
	To          *time.Time
	SessionType model.SessionMode
	Status      model.RemoteStatus
	Limit       int
	Skip        int
}

func NewSessionService(repo *repository.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

func (s *SessionService) Create(ctx context.Context, userID string, input CreateSessionInput) (*model.RemoteSession, *apperrors.APIError) {
	if input.Status == "" {
		input.Status = model.RemoteCompleted
	}
	if apiErr := validateSession(input.SessionType, input.Status, input.DurationMinutes); apiErr != nil {
		return nil, apiErr
	}
	if input.StartTime.IsZero() || input.EndTime.IsZero() {
		return nil, apperrors.BadRequest("invalid_time", "startTime and endTime are required")
	}
	if input.EndTime.Before(input.StartTime) {
		return nil, apperrors.BadRequest("invalid_time", "endTime must not be before startTime")
	}

	session := model.RemoteSession{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SessionType:        input.SessionType,
		DurationMinutes:    input.DurationMinutes,
		Status:             input.Status,
		StartTime:          input.StartTime.UTC(),
		EndTime:            input.EndTime.UTC(),
		RelatedTaskID:      input.RelatedTaskID,
		Notes:              input.Notes,
		InterruptionReason: input.InterruptionReason,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, &session); err != nil {
		return nil, apperrors.Internal("failed to create session")
	}
	return &session, nil
}

func (s *SessionService) List(ctx context.Context, userID string, input ListSessionsInput) ([]model.RemoteSession, *apperrors.APIError) {
	if input.SessionType != "" && !input.SessionType.Valid() {
		return nil, apperrors.BadRequest("invalid_session_type", "sessionType must be one of focus, short_break, long_break")
	}
	if input.Status != "" && !input.Status.Valid() {
		return nil, apperrors.BadRequest("invalid_status", "status must be one of completed, interrupted, skipped")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	skip := input.Skip
	if skip < 0 {
		skip = 0
	}

	sessions, err := s.repo.List(ctx, repository.SessionFilter{
		UserID:      userID,
		From:        input.From,
		To:          input.To,
		SessionType: input.SessionType,
		Status:      input.Status,
		Limit:       limit,
		Skip:        skip,
	})
	if err != nil {
		return nil, apperrors.Internal("failed to list sessions")
	}
	return sessions, nil
}

func (s *SessionService) Get(ctx context.Context, userID, id string) (*model.RemoteSession, *apperrors.APIError) {
	session, err := s.repo.Get(ctx, userID, id)
	if err == repository.ErrNotFound {
		return nil, apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get session")
	}
	return session, nil
}

func (s *SessionService) Update(ctx context.Context, userID, id string, input UpdateSessionInput) (*model.RemoteSession, *apperrors.APIError) {
	session, apiErr := s.Get(ctx, userID, id)
	if apiErr != nil {
		return nil, apiErr
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.BadRequest("invalid_status", "status must be one of completed, interrupted, skipped")
		}
		session.Status = *input.Status
	}
	if input.EndTime != nil {
		if input.EndTime.Before(session.StartTime) {
			return nil, apperrors.BadRequest("invalid_time", "endTime must not be before startTime")
		}
		session.EndTime = input.EndTime.UTC()
	}
	if input.Notes != nil {
		session.Notes = input.Notes
	}
	if input.InterruptionReason != nil {
		session.InterruptionReason = input.InterruptionReason
	}

	if err := s.repo.Update(ctx, session); err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("session_not_found", "session not found")
		}
		return nil, apperrors.Internal("failed to update session")
	}
	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, userID, id string) *apperrors.APIError {
	err := s.repo.Delete(ctx, userID, id)
	if err == repository.ErrNotFound {
		return apperrors.NotFound("session_not_found", "session not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete session")
	}
	return nil
}

// Stats aggregates the sessions started within [from, to]. A missing bound
// defaults to the last 30 days ending now.
func (s *SessionService) Stats(ctx context.Context, userID string, from, to *time.Time) (*model.SessionStats, *apperrors.APIError) {
	now := time.Now().UTC()
	end := now
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-defaultStatsWindow)
	if from != nil {
		start = from.UTC()
	}
	if end.Before(start) {
		return nil, apperrors.BadRequest("invalid_range", "to must not be before from")
	}

	sessions, err := s.repo.List(ctx, repository.SessionFilter{
		UserID: userID,
		From:   &start,
		To:     &end,
	})
	if err != nil {
		return nil, apperrors.Internal("failed to load sessions")
	}

	stats := ComputeStats(sessions, start, end)
	return &stats, nil
}

func validateSession(sessionType model.SessionMode, status model.RemoteStatus, durationMinutes int) *apperrors.APIError {
	if !sessionType.Valid() {
		return apperrors.BadRequest("invalid_session_type", "sessionType must be one of focus, short_break, long_break")
	}
	if !status.Valid() {
		return apperrors.BadRequest("invalid_status", "status must be one of completed, interrupted, skipped")
	}
	if durationMinutes <= 0 {
		return apperrors.BadRequest("invalid_duration", "durationMinutes must be positive")
	}
	return nil
}
