package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"meeting-backend/constant"
	"meeting-backend/dto"
	"meeting-backend/entities"
	"meeting-backend/pkg/janus"
	"meeting-backend/repository"
)

// RecordingService starts and stops server-side recording of the rooms and
// hands stopped recordings to the external post-processing worker. One STARTED
// recording per meeting at a time.
type RecordingService struct {
	media         MediaGateway
	meetings      repository.MeetingRepository
	recordings    repository.RecordingRepository
	videoServer   repository.VideoServerRepository
	participants  *ParticipantService
	dispatcher    EventDispatcher
	postProcessor PostProcessor
	manifests     ManifestStore
	serverID      string
}

func NewRecordingService(
	media MediaGateway,
	meetings repository.MeetingRepository,
	recordings repository.RecordingRepository,
	videoServer repository.VideoServerRepository,
	participants *ParticipantService,
	dispatcher EventDispatcher,
	postProcessor PostProcessor,
	manifests ManifestStore,
	serverID string,
) *RecordingService {
	return &RecordingService{
		media:         media,
		meetings:      meetings,
		recordings:    recordings,
		videoServer:   videoServer,
		participants:  participants,
		dispatcher:    dispatcher,
		postProcessor: postProcessor,
		manifests:     manifests,
		serverID:      serverID,
	}
}

func (s *RecordingService) Start(ctx context.Context, meetingID, starterID uuid.UUID) (*entities.Recording, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if err := s.participants.requireModerator(ctx, meetingID, starterID); err != nil {
		return nil, err
	}

	active, err := s.recordings.FindStartedRecordingByMeetingId(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, fmt.Errorf("recording already running for meeting %s: %w", meetingID, ErrConflict)
	}

	record, err := s.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("meeting %s has no live media session: %w", meetingID, ErrConflict)
	}

	if _, err := s.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeEnableRecording{
		Room:   record.AudioRoomID,
		Record: true,
	}); err != nil {
		return nil, dependencyFailure("enable audio recording", err)
	}
	if _, err := s.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomEnableRecording{
		Room:   record.VideoRoomID,
		Record: true,
	}); err != nil {
		return nil, dependencyFailure("enable video recording", err)
	}

	recording := &entities.Recording{
		ID:        uuid.New(),
		MeetingID: meetingID,
		StarterID: starterID,
		Status:    constant.RecordingStatusStarted,
		StartedAt: time.Now(),
	}
	if err := s.recordings.InsertRecording(ctx, recording); err != nil {
		return nil, err
	}

	s.notify(ctx, meetingID, dto.EventRecordingStarted, recording.ID)
	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meetingID.String()).
		Str("recording_id", recording.ID.String()).
		Msg("recording started")
	return recording, nil
}

// Stop disables recording on both rooms, marks the record STOPPED and submits
// it to post-processing in the background. The submission never blocks the
// caller and does not affect recording status.
func (s *RecordingService) Stop(ctx context.Context, recordingID, callerID uuid.UUID) (*entities.Recording, error) {
	recording, err := s.recordings.FindRecordingById(ctx, recordingID)
	if err != nil {
		return nil, err
	}
	if recording == nil {
		return nil, fmt.Errorf("recording %s: %w", recordingID, ErrNotFound)
	}
	if recording.StarterID != callerID {
		if err := s.participants.requireModerator(ctx, recording.MeetingID, callerID); err != nil {
			return nil, err
		}
	}
	if recording.Status != constant.RecordingStatusStarted {
		return nil, fmt.Errorf("recording %s is not running: %w", recordingID, ErrConflict)
	}

	record, err := s.videoServer.FindVideoServerMeetingByMeetingId(ctx, recording.MeetingID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		logger := zerolog.Ctx(ctx)
		if _, err := s.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeEnableRecording{
			Room: record.AudioRoomID,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to disable audio recording")
		}
		if _, err := s.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomEnableRecording{
			Room: record.VideoRoomID,
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to disable video recording")
		}
	}

	now := time.Now()
	recording.Status = constant.RecordingStatusStopped
	recording.StoppedAt = &now
	if err := s.recordings.UpdateRecording(ctx, recording); err != nil {
		return nil, err
	}

	go s.submitPostProcessing(context.WithoutCancel(ctx), recording, record)

	s.notify(ctx, recording.MeetingID, dto.EventRecordingStopped, recording.ID)
	zerolog.Ctx(ctx).Info().
		Str("meeting_id", recording.MeetingID.String()).
		Str("recording_id", recording.ID.String()).
		Msg("recording stopped")
	return recording, nil
}

// StopForMeeting stops a running recording during meeting teardown, if any.
func (s *RecordingService) StopForMeeting(ctx context.Context, meetingID uuid.UUID) {
	active, err := s.recordings.FindStartedRecordingByMeetingId(ctx, meetingID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("meeting_id", meetingID.String()).Msg("failed to look up running recording")
		return
	}
	if active == nil {
		return
	}
	if _, err := s.Stop(ctx, active.ID, active.StarterID); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).
			Str("meeting_id", meetingID.String()).
			Str("recording_id", active.ID.String()).
			Msg("failed to stop recording during teardown")
	}
}

// NotifyReady fans the post-processing result out to the meeting.
func (s *RecordingService) NotifyReady(ctx context.Context, message dto.RecordingReadyMessage) error {
	recording, err := s.recordings.FindRecordingById(ctx, message.RecordingID)
	if err != nil {
		return err
	}
	if recording == nil {
		return fmt.Errorf("recording %s: %w", message.RecordingID, ErrNotFound)
	}

	event := dto.Event{
		Type:      dto.EventRecordingReady,
		MeetingID: message.MeetingID,
		SentAt:    time.Now(),
		Data:      map[string]any{"recordingId": message.RecordingID.String(), "objectPath": message.ObjectPath},
	}
	if err := s.dispatcher.SendToMeeting(ctx, message.MeetingID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("recording_id", message.RecordingID.String()).Msg("failed to announce recording")
	}
	return nil
}

func (s *RecordingService) submitPostProcessing(ctx context.Context, recording *entities.Recording, record *entities.VideoServerMeeting) {
	logger := zerolog.Ctx(ctx)

	message := dto.RecordingPostProcessMessage{
		RecordingID:    recording.ID,
		MeetingID:      recording.MeetingID,
		ServerID:       s.serverID,
		ManifestObject: manifestObjectName(recording),
		StartedAt:      recording.StartedAt,
	}
	if recording.StoppedAt != nil {
		message.StoppedAt = *recording.StoppedAt
	}
	if record != nil {
		message.AudioRoomID = record.AudioRoomID
		message.VideoRoomID = record.VideoRoomID
	}

	payload, err := json.Marshal(message)
	if err != nil {
		logger.Error().Err(err).Str("recording_id", recording.ID.String()).Msg("failed to marshal recording manifest")
		return
	}
	if err := s.manifests.Put(ctx, message.ManifestObject, payload); err != nil {
		logger.Error().Err(err).
			Str("recording_id", recording.ID.String()).
			Str("object", message.ManifestObject).
			Msg("failed to store recording manifest")
	}

	if err := s.postProcessor.Submit(ctx, message); err != nil {
		logger.Error().Err(err).Str("recording_id", recording.ID.String()).Msg("post-processing submission failed")
		return
	}
	logger.Info().Str("recording_id", recording.ID.String()).Msg("recording submitted for post-processing")
}

func (s *RecordingService) notify(ctx context.Context, meetingID uuid.UUID, eventType string, recordingID uuid.UUID) {
	event := dto.Event{
		Type:      eventType,
		MeetingID: meetingID,
		SentAt:    time.Now(),
		Data:      map[string]any{"recordingId": recordingID.String()},
	}
	if err := s.dispatcher.SendToMeeting(ctx, meetingID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("meeting_id", meetingID.String()).
			Str("event", eventType).
			Msg("event dispatch failed")
	}
}

func manifestObjectName(recording *entities.Recording) string {
	return fmt.Sprintf("recordings/%s/%s.json", recording.MeetingID, recording.ID)
}
