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

// MeetingService owns the meeting rows themselves. Each room hosts at most one
// active meeting.
type MeetingService struct {
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	videoServer  repository.VideoServerRepository
	rooms        *RoomOrchestrator
	waiting      *WaitingService
	recordings   *RecordingService
	dispatcher   EventDispatcher
}

func NewMeetingService(
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	videoServer repository.VideoServerRepository,
	rooms *RoomOrchestrator,
	waiting *WaitingService,
	recordings *RecordingService,
	dispatcher EventDispatcher,
) *MeetingService {
	return &MeetingService{
		meetings:     meetings,
		participants: participants,
		videoServer:  videoServer,
		rooms:        rooms,
		waiting:      waiting,
		recordings:   recordings,
		dispatcher:   dispatcher,
	}
}

func (s *MeetingService) Create(ctx context.Context, ownerID uuid.UUID, req dto.CreateMeetingRequest) (*entities.Meeting, error) {
	existing, err := s.meetings.FindMeetingByRoomId(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("room %s already has a meeting: %w", req.RoomID, ErrConflict)
	}

	meeting := &entities.Meeting{
		ID:               uuid.New(),
		RoomID:           req.RoomID,
		OwnerID:          ownerID,
		Name:             req.Name,
		Type:             req.Type,
		RequireAdmission: req.RequireAdmission,
		ExpiresAt:        req.ExpiresAt,
	}
	if meeting.Type == "" {
		meeting.Type = constant.MeetingTypePermanent
	}
	if err := s.meetings.InsertMeeting(ctx, meeting); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("room %s already has a meeting: %w", req.RoomID, ErrConflict)
		}
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meeting.ID.String()).
		Str("room_id", meeting.RoomID.String()).
		Msg("meeting created")
	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, meetingID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	return meeting, nil
}

func (s *MeetingService) GetByRoom(ctx context.Context, roomID uuid.UUID) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindMeetingByRoomId(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("room %s has no meeting: %w", roomID, ErrNotFound)
	}
	return meeting, nil
}

// Update renames the meeting. Owner only; the room descriptions on the media
// server follow the name, best effort.
func (s *MeetingService) Update(ctx context.Context, meetingID, callerID uuid.UUID, req dto.UpdateMeetingRequest) (*entities.Meeting, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if meeting.OwnerID != callerID {
		return nil, fmt.Errorf("only the owner can update meeting %s: %w", meetingID, ErrForbidden)
	}

	meeting.Name = req.Name
	if err := s.meetings.UpdateMeeting(ctx, meeting); err != nil {
		return nil, err
	}
	if err := s.rooms.EditRooms(ctx, meetingID, req.Name); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("room edit failed during meeting update")
	}

	event := dto.Event{
		Type:      dto.EventMeetingUpdated,
		MeetingID: meetingID,
		SentAt:    time.Now(),
		Data:      map[string]any{"name": meeting.Name},
	}
	if err := s.dispatcher.SendToMeeting(ctx, meetingID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("event dispatch failed")
	}
	return meeting, nil
}

/// Delete tears the meeting down completely. Media-side cleanup is best effort:
// the meeting row goes away even when the video server is unreachable.
func (s *MeetingService) Delete(ctx context.Context, meetingID, callerID uuid.UUID) error {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if meeting.OwnerID != callerID {
		return fmt.Errorf("only the owner can delete meeting %s: %w", meetingID, ErrForbidden)
	}

	logger := zerolog.Ctx(ctx)

	s.recordings.StopForMeeting(ctx, meetingID)
	s.waiting.RejectAll(ctx, meetingID)

	if err := s.rooms.TearDownRooms(ctx, meetingID); err != nil {
		logger.Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("room teardown failed during meeting delete")
	}

	if err := s.videoServer.DeleteVideoServerSessionsByMeetingId(ctx, meetingID); err != nil {
		return err
	}
	if err := s.participants.DeleteParticipantsByMeetingId(ctx, meetingID); err != nil {
		return err
	}
	if err := s.meetings.DeleteMeeting(ctx, meetingID); err != nil {
		return err
	}

	event := dto.Event{
		Type:      dto.EventMeetingDeleted,
		MeetingID: meetingID,
		SentAt:    time.Now(),
	}
	if err := s.dispatcher.SendToMeeting(ctx, meetingID, event); err != nil {
		logger.Warn().Err(err).Str("meeting_id", meetingID.String()).Msg("event dispatch failed")
	}

	logger.Info().Str("meeting_id", meetingID.String()).Msg("meeting deleted")
	return nil
}
