package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"meeting-backend/constant"
	"meeting-backend/dto"
	"meeting-backend/entities"
	"meeting-backend/repository"
)

// WaitingService is the admission gate: it queues joins that need owner
// approval and completes or rejects them on decision. Entries are durable;
// WAITING → ACCEPTED | REJECTED with both outcomes terminal.
type WaitingService struct {
	meetings     repository.MeetingRepository
	waiting      repository.WaitingRepository
	participants *ParticipantService
	dispatcher   EventDispatcher
}

func NewWaitingService(
	meetings repository.MeetingRepository,
	waiting repository.WaitingRepository,
	participants *ParticipantService,
	dispatcher EventDispatcher,
) *WaitingService {
	return &WaitingService{
		meetings:     meetings,
		waiting:      waiting,
		participants: participants,
		dispatcher:   dispatcher,
	}
}

// RequestAdmission queues the user and notifies the meeting owner. At most
// one non-terminal entry may exist per (meeting, user).
func (s *WaitingService) RequestAdmission(ctx context.Context, meeting *entities.Meeting, userID uuid.UUID, req dto.JoinRequest) error {
	pending, err := s.waiting.FindPendingWaiting(ctx, meeting.ID, userID)
	if err != nil {
		return err
	}
	if pending != nil {
		return fmt.Errorf("user %s is already waiting for meeting %s: %w", userID, meeting.ID, ErrConflict)
	}

	entry := &entities.WaitingParticipant{
		ID:        uuid.New(),
		MeetingID: meeting.ID,
		UserID:    userID,
		SessionID: req.SessionID,
		QueueID:   req.QueueID,
		Status:    constant.WaitingStatusWaiting,
		AudioOn:   req.AudioOn,
		VideoOn:   req.VideoOn,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.waiting.InsertWaiting(ctx, entry); err != nil {
		if repository.IsDuplicate(err) {
			return fmt.Errorf("user %s is already waiting for meeting %s: %w", userID, meeting.ID, ErrConflict)
		}
		return err
	}

	event := dto.Event{
		Type:      dto.EventWaitingRequested,
		MeetingID: meeting.ID,
		SessionID: req.SessionID,
		SentAt:    time.Now(),
	}
	waiterID := userID
	event.UserID = &waiterID
	if err := s.dispatcher.SendToUser(ctx, meeting.OwnerID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("meeting_id", meeting.ID.String()).Msg("failed to notify owner of admission request")
	}

	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meeting.ID.String()).
		Str("user_id", userID.String()).
		Msg("admission requested")
	return nil
}

// Decide accepts or rejects a waiting user. Owner (or moderator) only. Accept
// runs the normal join flow with the originally supplied settings.
func (s *WaitingService) Decide(ctx context.Context, meetingID, callerID, userID uuid.UUID, accept bool) (*JoinResult, error) {
	if err := s.participants.requireModerator(ctx, meetingID, callerID); err != nil {
		return nil, err
	}

	entry, err := s.waiting.FindPendingWaiting(ctx, meetingID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, fmt.Errorf("no pending admission for user %s in meeting %s: %w", userID, meetingID, ErrNotFound)
	}

	if !accept {
		return nil, s.reject(ctx, entry)
	}

	entry.Status = constant.WaitingStatusAccepted
	entry.UpdatedAt = time.Now()
	if err := s.waiting.UpdateWaiting(ctx, entry); err != nil {
		return nil, err
	}

	result, err := s.participants.JoinAdmitted(ctx, meetingID, userID, dto.JoinRequest{
		SessionID: entry.SessionID,
		QueueID:   entry.QueueID,
		AudioOn:   entry.AudioOn,
		VideoOn:   entry.VideoOn,
	})
	if err != nil {
		return nil, err
	}

	s.notifyWaiter(ctx, entry, dto.EventWaitingAccepted)
	return result, nil
}

// ListWaiting returns the queue of users still waiting on a decision. Only
// the owner or a moderator may see it.
func (s *WaitingService) ListWaiting(ctx context.Context, meetingID, callerID uuid.UUID) ([]*entities.WaitingParticipant, error) {
	if err := s.participants.requireModerator(ctx, meetingID, callerID); err != nil {
		return nil, err
	}
	return s.waiting.ListWaitingByMeetingId(ctx, meetingID, constant.WaitingStatusWaiting)
}

// RejectAll rejects every pending entry, used when the meeting ends before a
// decision.
func (s *WaitingService) RejectAll(ctx context.Context, meetingID uuid.UUID) {
	entries, err := s.waiting.ListWaitingByMeetingId(ctx, meetingID, constant.WaitingStatusWaiting)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("meeting_id", meetingID.String()).Msg("failed to list waiting participants")
		return
	}
	for _, entry := range entries {
		if err := s.reject(ctx, entry); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).
				Str("meeting_id", meetingID.String()).
				Str("user_id", entry.UserID.String()).
				Msg("failed to auto-reject waiting participant")
		}
	}
}

func (s *WaitingService) reject(ctx context.Context, entry *entities.WaitingParticipant) error {
	entry.Status = constant.WaitingStatusRejected
	entry.UpdatedAt = time.Now()
	if err := s.waiting.UpdateWaiting(ctx, entry); err != nil {
		return err
	}
	s.notifyWaiter(ctx, entry, dto.EventWaitingRejected)
	zerolog.Ctx(ctx).Info().
		Str("meeting_id", entry.MeetingID.String()).
		Str("user_id", entry.UserID.String()).
		Msg("admission rejected")
	return nil
}

func (s *WaitingService) notifyWaiter(ctx context.Context, entry *entities.WaitingParticipant, eventType string) {
	userID := entry.UserID
	event := dto.Event{
		Type:      eventType,
		MeetingID: entry.MeetingID,
		UserID:    &userID,
		SessionID: entry.SessionID,
		SentAt:    time.Now(),
	}
	if err := s.dispatcher.SendToUser(ctx, entry.UserID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("user_id", entry.UserID.String()).
			Str("event", eventType).
			Msg("failed to notify waiting user")
	}
}
