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
	"meeting-backend/pkg/janus"
	"meeting-backend/repository"
)

const (
	JoinStatusJoined  = "joined"
	JoinStatusWaiting = "waiting"

	StreamAudio           = "audio"
	StreamVideo           = "video"
	StreamScreen          = "screen"
	StreamSubscribe       = "subscribe"
	StreamScreenSubscribe = "screenSubscribe"
)

type JoinResult struct {
	Status      string
	Participant *entities.Participant
}

// AdmissionGate queues a join request that needs owner approval. Implemented
// by the waiting room service.
type AdmissionGate interface {
	RequestAdmission(ctx context.Context, meeting *entities.Meeting, userID uuid.UUID, req dto.JoinRequest) error
}

// ParticipantService joins participants into the rooms backing a meeting,
// routes media-state changes to their handles and cleans everything up on
// leave. Join and leave for the same (meeting, session) are serialized.
type ParticipantService struct {
	media        MediaGateway
	rooms        *RoomOrchestrator
	handles      *HandleManager
	meetings     repository.MeetingRepository
	participants repository.ParticipantRepository
	videoServer  repository.VideoServerRepository
	dispatcher   EventDispatcher
	gate         AdmissionGate
	joinLocks    *keyedMutex
}

func NewParticipantService(
	media MediaGateway,
	rooms *RoomOrchestrator,
	handles *HandleManager,
	meetings repository.MeetingRepository,
	participants repository.ParticipantRepository,
	videoServer repository.VideoServerRepository,
	dispatcher EventDispatcher,
) *ParticipantService {
	return &ParticipantService{
		media:        media,
		rooms:        rooms,
		handles:      handles,
		meetings:     meetings,
		participants: participants,
		videoServer:  videoServer,
		dispatcher:   dispatcher,
		joinLocks:    newKeyedMutex(),
	}
}

// SetAdmissionGate wires the waiting room in after construction; the gate
// needs this service to complete accepted joins.
func (s *ParticipantService) SetAdmissionGate(gate AdmissionGate) {
	s.gate = gate
}

func (s *ParticipantService) Join(ctx context.Context, meetingID, userID uuid.UUID, req dto.JoinRequest) (*JoinResult, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}

	if meeting.RequireAdmission && userID != meeting.OwnerID {
		if err := s.gate.RequestAdmission(ctx, meeting, userID, req); err != nil {
			return nil, err
		}
		return &JoinResult{Status: JoinStatusWaiting}, nil
	}

	return s.admit(ctx, meeting, userID, req)
}

// JoinAdmitted completes a join that has passed the admission gate.
func (s *ParticipantService) JoinAdmitted(ctx context.Context, meetingID, userID uuid.UUID, req dto.JoinRequest) (*JoinResult, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	return s.admit(ctx, meeting, userID, req)
}

func (s *ParticipantService) admit(ctx context.Context, meeting *entities.Meeting, userID uuid.UUID, req dto.JoinRequest) (*JoinResult, error) {
	unlock := s.joinLocks.Lock(joinKey(meeting.ID, req.SessionID))
	defer unlock()

	existing, err := s.videoServer.FindVideoServerSession(ctx, meeting.ID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("session %s already joined meeting %s: %w", req.SessionID, meeting.ID, ErrConflict)
	}

	record, err := s.rooms.EnsureRooms(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}

	audioHandleID, err := s.handles.AttachParticipantHandle(ctx, record.ConnectionID, janus.PluginAudioBridge, constant.HandleRolePublisher)
	if err != nil {
		return nil, err
	}
	videoHandleID, err := s.handles.AttachParticipantHandle(ctx, record.ConnectionID, janus.PluginVideoRoom, constant.HandleRolePublisher)
	if err != nil {
		return nil, err
	}

	audioReply, err := s.media.Send(ctx, record.ConnectionID, audioHandleID, janus.AudioBridgeJoin{
		Room:    record.AudioRoomID,
		Display: userID.String(),
		Muted:   !req.AudioOn,
	})
	if err != nil {
		return nil, dependencyFailure("join audio room", err)
	}
	videoReply, err := s.media.Send(ctx, record.ConnectionID, videoHandleID, janus.VideoRoomJoin{
		Room:    record.VideoRoomID,
		PType:   "publisher",
		Display: userID.String(),
	})
	if err != nil {
		return nil, dependencyFailure("join video room", err)
	}
	if _, err := s.media.Send(ctx, record.ConnectionID, videoHandleID, janus.VideoRoomPublish{Video: req.VideoOn}); err != nil {
		return nil, dependencyFailure("publish video", err)
	}

	session := &entities.VideoServerSession{
		ID:                 uuid.New(),
		MeetingID:          meeting.ID,
		SessionID:          req.SessionID,
		UserID:             userID,
		QueueID:            req.QueueID,
		ConnectionID:       record.ConnectionID,
		AudioHandleID:      &audioHandleID,
		VideoOutHandleID:   &videoHandleID,
		AudioParticipantID: audioReply.IntValue("id"),
		VideoParticipantID: videoReply.IntValue("id"),
	}
	if err := s.videoServer.InsertVideoServerSession(ctx, session); err != nil {
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("session %s already joined meeting %s: %w", req.SessionID, meeting.ID, ErrConflict)
		}
		return nil, err
	}

	participant := &entities.Participant{
		MeetingID: meeting.ID,
		SessionID: req.SessionID,
		UserID:    userID,
		AudioOn:   req.AudioOn,
		VideoOn:   req.VideoOn,
		Moderator: userID == meeting.OwnerID,
		JoinedAt:  time.Now(),
	}
	if err := s.participants.InsertParticipant(ctx, participant); err != nil {
		// A failed join leaves no media state behind.
		s.releaseSession(ctx, session)
		if derr := s.videoServer.DeleteVideoServerSession(ctx, session.ID); derr != nil {
			zerolog.Ctx(ctx).Error().Err(derr).
				Str("meeting_id", meeting.ID.String()).
				Str("session_id", req.SessionID).
				Msg("failed to delete media session after join rollback")
		}
		if repository.IsDuplicate(err) {
			return nil, fmt.Errorf("user %s session %s is already in a meeting: %w", userID, req.SessionID, ErrConflict)
		}
		return nil, err
	}

	if !meeting.Active {
		meeting.Active = true
		if err := s.meetings.UpdateMeeting(ctx, meeting); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("meeting_id", meeting.ID.String()).Msg("failed to mark meeting active")
		}
	}

	s.notifyMeeting(ctx, meeting.ID, dto.Event{
		Type:      dto.EventParticipantJoined,
		MeetingID: meeting.ID,
		UserID:    &userID,
		SessionID: req.SessionID,
	})

	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meeting.ID.String()).
		Str("user_id", userID.String()).
		Str("session_id", req.SessionID).
		Msg("participant joined")
	return &JoinResult{Status: JoinStatusJoined, Participant: participant}, nil
}

// Leave removes the caller's own session from the meeting. Removing someone
// else's session goes through Kick.
func (s *ParticipantService) Leave(ctx context.Context, meetingID, callerID uuid.UUID, sessionID string) error {
	unlock := s.joinLocks.Lock(joinKey(meetingID, sessionID))
	defer unlock()

	session, participant, err := s.findMember(ctx, meetingID, sessionID)
	if err != nil {
		return err
	}
	memberID := uuid.Nil
	if participant != nil {
		memberID = participant.UserID
	} else if session != nil {
		memberID = session.UserID
	}
	if memberID != callerID {
		return fmt.Errorf("session %s belongs to another user: %w", sessionID, ErrForbidden)
	}

	return s.removeMember(ctx, meetingID, sessionID, session, participant)
}

func (s *ParticipantService) findMember(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.VideoServerSession, *entities.Participant, error) {
	session, err := s.videoServer.FindVideoServerSession(ctx, meetingID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	participant, err := s.participants.FindParticipant(ctx, meetingID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil && participant == nil {
		return nil, nil, fmt.Errorf("participant %s in meeting %s: %w", sessionID, meetingID, ErrNotFound)
	}
	return session, participant, nil
}

// removeMember is the shared removal path behind Leave and Kick. The caller
// holds the join lock.
func (s *ParticipantService) removeMember(ctx context.Context, meetingID uuid.UUID, sessionID string, session *entities.VideoServerSession, participant *entities.Participant) error {
	if session != nil {
		s.releaseSession(ctx, session)
		if err := s.videoServer.DeleteVideoServerSession(ctx, session.ID); err != nil {
			return err
		}
	}
	if participant != nil {
		if err := s.participants.DeleteParticipant(ctx, meetingID, sessionID); err != nil {
			return err
		}
		userID := participant.UserID
		s.notifyMeeting(ctx, meetingID, dto.Event{
			Type:      dto.EventParticipantLeft,
			MeetingID: meetingID,
			UserID:    &userID,
			SessionID: sessionID,
		})
	}

	remaining, err := s.participants.CountParticipantsByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := s.rooms.TearDownRooms(ctx, meetingID); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Str("meeting_id", meetingID.String()).Msg("teardown after last leave failed")
		}
		if meeting, err := s.meetings.FindMeetingById(ctx, meetingID); err == nil && meeting != nil && meeting.Active {
			meeting.Active = false
			if err := s.meetings.UpdateMeeting(ctx, meeting); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("meeting_id", meetingID.String()).Msg("failed to mark meeting inactive")
			}
		}
	}

	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meetingID.String()).
		Str("session_id", sessionID).
		Msg("participant left")
	return nil
}

// releaseSession leaves both rooms and detaches every participant handle.
// Remote failures are logged: the handles die with the parent session anyway.
func (s *ParticipantService) releaseSession(ctx context.Context, session *entities.VideoServerSession) {
	logger := zerolog.Ctx(ctx)
	if session.AudioHandleID != nil {
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.AudioHandleID, janus.AudioBridgeLeave{}); err != nil {
			logger.Warn().Err(err).Msg("audio room leave failed")
		}
	}
	if session.VideoOutHandleID != nil {
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.VideoOutHandleID, janus.VideoRoomLeave{}); err != nil {
			logger.Warn().Err(err).Msg("video room leave failed")
		}
	}
	for _, handleID := range []*int64{
		session.AudioHandleID,
		session.VideoOutHandleID,
		session.VideoInHandleID,
		session.ScreenOutHandleID,
		session.ScreenInHandleID,
	} {
		if handleID != nil {
			s.handles.Detach(ctx, session.ConnectionID, *handleID)
		}
	}
}

// UpdateMediaState routes a mute, camera, screen-share or subscription change
// to the correct handle. Room lifecycle is untouched.
func (s *ParticipantService) UpdateMediaState(ctx context.Context, meetingID, callerID uuid.UUID, req dto.MediaUpdateRequest) (*entities.Participant, error) {
	participant, err := s.participants.FindParticipant(ctx, meetingID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if participant == nil {
		return nil, fmt.Errorf("participant %s in meeting %s: %w", req.SessionID, meetingID, ErrNotFound)
	}
	if participant.UserID != callerID {
		return nil, fmt.Errorf("cannot update another participant's media: %w", ErrForbidden)
	}

	session, err := s.videoServer.FindVideoServerSession(ctx, meetingID, req.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("media session for %s: %w", req.SessionID, ErrNotFound)
	}
	record, err := s.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("media record for meeting %s: %w", meetingID, ErrNotFound)
	}

	switch req.Stream {
	case StreamAudio:
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.AudioHandleID, janus.AudioBridgeConfigure{Muted: !req.Enabled}); err != nil {
			return nil, dependencyFailure("configure audio", err)
		}
		participant.AudioOn = req.Enabled
	case StreamVideo:
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.VideoOutHandleID, janus.VideoRoomConfigure{Video: req.Enabled}); err != nil {
			return nil, dependencyFailure("configure video", err)
		}
		participant.VideoOn = req.Enabled
	case StreamScreen:
		if err := s.updateScreenShare(ctx, record, session, req.Enabled); err != nil {
			return nil, err
		}
		participant.ScreenOn = req.Enabled
	case StreamSubscribe:
		if err := s.updateSubscription(ctx, record, session, req); err != nil {
			return nil, err
		}
	case StreamScreenSubscribe:
		if err := s.updateScreenSubscription(ctx, record, session, req); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown stream %q: %w", req.Stream, ErrInvalid)
	}

	if err := s.participants.UpdateParticipant(ctx, participant); err != nil {
		return nil, err
	}

	userID := participant.UserID
	s.notifyMeeting(ctx, meetingID, dto.Event{
		Type:      dto.EventMediaUpdated,
		MeetingID: meetingID,
		UserID:    &userID,
		SessionID: req.SessionID,
		Data:      map[string]any{"stream": req.Stream, "enabled": req.Enabled},
	})
	return participant, nil
}

func (s *ParticipantService) updateScreenShare(ctx context.Context, record *entities.VideoServerMeeting, session *entities.VideoServerSession, enabled bool) error {
	if enabled {
		if session.ScreenOutHandleID != nil {
			return nil
		}
		handleID, err := s.handles.AttachParticipantHandle(ctx, session.ConnectionID, janus.PluginVideoRoom, constant.HandleRoleScreenShare)
		if err != nil {
			return err
		}
		reply, err := s.media.Send(ctx, session.ConnectionID, handleID, janus.VideoRoomJoin{
			Room:    record.VideoRoomID,
			PType:   "publisher",
			Display: session.UserID.String() + "/screen",
		})
		if err != nil {
			return dependencyFailure("join screen share", err)
		}
		if _, err := s.media.Send(ctx, session.ConnectionID, handleID, janus.VideoRoomPublish{Video: true}); err != nil {
			return dependencyFailure("publish screen share", err)
		}
		session.ScreenOutHandleID = &handleID
		session.ScreenParticipantID = reply.IntValue("id")
		return s.videoServer.UpdateVideoServerSession(ctx, session)
	}

	if session.ScreenOutHandleID == nil {
		return nil
	}
	if _, err := s.media.Send(ctx, session.ConnectionID, *session.ScreenOutHandleID, janus.VideoRoomUnpublish{}); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("screen share unpublish failed")
	}
	s.handles.Detach(ctx, session.ConnectionID, *session.ScreenOutHandleID)
	session.ScreenOutHandleID = nil
	session.ScreenParticipantID = 0
	return s.videoServer.UpdateVideoServerSession(ctx, session)
}

func (s *ParticipantService) updateSubscription(ctx context.Context, record *entities.VideoServerMeeting, session *entities.VideoServerSession, req dto.MediaUpdateRequest) error {
	if !req.Enabled {
		if session.VideoInHandleID == nil {
			return nil
		}
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.VideoInHandleID, janus.VideoRoomLeave{}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("subscriber leave failed")
		}
		s.handles.Detach(ctx, session.ConnectionID, *session.VideoInHandleID)
		session.VideoInHandleID = nil
		return s.videoServer.UpdateVideoServerSession(ctx, session)
	}

	target, err := s.videoServer.FindVideoServerSession(ctx, record.MeetingID, req.TargetSessionID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("publisher session %s: %w", req.TargetSessionID, ErrNotFound)
	}

	if session.VideoInHandleID == nil {
		handleID, err := s.handles.AttachParticipantHandle(ctx, session.ConnectionID, janus.PluginVideoRoom, constant.HandleRoleSubscriber)
		if err != nil {
			return err
		}
		session.VideoInHandleID = &handleID
	}
	if _, err := s.media.Send(ctx, session.ConnectionID, *session.VideoInHandleID, janus.VideoRoomJoin{
		Room:  record.VideoRoomID,
		PType: "subscriber",
		Feed:  target.VideoParticipantID,
	}); err != nil {
		return dependencyFailure("subscribe", err)
	}
	return s.videoServer.UpdateVideoServerSession(ctx, session)
}

// updateScreenSubscription follows another participant's screen feed, the
// screen counterpart of updateSubscription.
func (s *ParticipantService) updateScreenSubscription(ctx context.Context, record *entities.VideoServerMeeting, session *entities.VideoServerSession, req dto.MediaUpdateRequest) error {
	if !req.Enabled {
		if session.ScreenInHandleID == nil {
			return nil
		}
		if _, err := s.media.Send(ctx, session.ConnectionID, *session.ScreenInHandleID, janus.VideoRoomLeave{}); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("screen subscriber leave failed")
		}
		s.handles.Detach(ctx, session.ConnectionID, *session.ScreenInHandleID)
		session.ScreenInHandleID = nil
		return s.videoServer.UpdateVideoServerSession(ctx, session)
	}

	target, err := s.videoServer.FindVideoServerSession(ctx, record.MeetingID, req.TargetSessionID)
	if err != nil {
		return err
	}
	if target == nil || target.ScreenOutHandleID == nil {
		return fmt.Errorf("no active screen share on session %s: %w", req.TargetSessionID, ErrNotFound)
	}

	if session.ScreenInHandleID == nil {
		handleID, err := s.handles.AttachParticipantHandle(ctx, session.ConnectionID, janus.PluginVideoRoom, constant.HandleRoleSubscriber)
		if err != nil {
			return err
		}
		session.ScreenInHandleID = &handleID
	}
	if _, err := s.media.Send(ctx, session.ConnectionID, *session.ScreenInHandleID, janus.VideoRoomJoin{
		Room:  record.VideoRoomID,
		PType: "subscriber",
		Feed:  target.ScreenParticipantID,
	}); err != nil {
		return dependencyFailure("subscribe screen share", err)
	}
	return s.videoServer.UpdateVideoServerSession(ctx, session)
}

// SetRole promotes or demotes a participant to meeting moderator. Owner only.
func (s *ParticipantService) SetRole(ctx context.Context, meetingID, callerID uuid.UUID, sessionID string, moderator bool) error {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if callerID != meeting.OwnerID {
		return fmt.Errorf("only the owner may change roles: %w", ErrForbidden)
	}

	participant, err := s.participants.FindParticipant(ctx, meetingID, sessionID)
	if err != nil {
		return err
	}
	if participant == nil {
		return fmt.Errorf("participant %s in meeting %s: %w", sessionID, meetingID, ErrNotFound)
	}

	participant.Moderator = moderator
	if err := s.participants.UpdateParticipant(ctx, participant); err != nil {
		return err
	}

	userID := participant.UserID
	s.notifyMeeting(ctx, meetingID, dto.Event{
		Type:      dto.EventRoleChanged,
		MeetingID: meetingID,
		UserID:    &userID,
		SessionID: sessionID,
		Data:      map[string]any{"moderator": moderator},
	})
	return nil
}

// ForceMute mutes another participant's microphone. Callable by the owner or
// a moderator; the permission check happens before any media-server call.
func (s *ParticipantService) ForceMute(ctx context.Context, meetingID, callerID uuid.UUID, sessionID string) error {
	if err := s.requireModerator(ctx, meetingID, callerID); err != nil {
		return err
	}

	participant, err := s.participants.FindParticipant(ctx, meetingID, sessionID)
	if err != nil {
		return err
	}
	session, err := s.videoServer.FindVideoServerSession(ctx, meetingID, sessionID)
	if err != nil {
		return err
	}
	if participant == nil || session == nil {
		return fmt.Errorf("participant %s in meeting %s: %w", sessionID, meetingID, ErrNotFound)
	}
	record, err := s.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("media record for meeting %s: %w", meetingID, ErrNotFound)
	}

	if _, err := s.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeMute{
		Room: record.AudioRoomID,
		ID:   session.AudioParticipantID,
	}); err != nil {
		return dependencyFailure("force mute", err)
	}

	participant.AudioOn = false
	if err := s.participants.UpdateParticipant(ctx, participant); err != nil {
		return err
	}

	userID := participant.UserID
	s.notifyMeeting(ctx, meetingID, dto.Event{
		Type:      dto.EventMediaUpdated,
		MeetingID: meetingID,
		UserID:    &userID,
		SessionID: sessionID,
		Data:      map[string]any{"stream": StreamAudio, "enabled": false},
	})
	return nil
}

// Kick removes another participant from the meeting. Callable by the owner or
// a moderator; the owner cannot be kicked.
func (s *ParticipantService) Kick(ctx context.Context, meetingID, callerID uuid.UUID, req dto.KickRequest) error {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if err := s.requireModerator(ctx, meetingID, callerID); err != nil {
		return err
	}
	if req.UserID == meeting.OwnerID {
		return fmt.Errorf("the owner cannot be kicked: %w", ErrForbidden)
	}

	unlock := s.joinLocks.Lock(joinKey(meetingID, req.SessionID))
	defer unlock()

	session, participant, err := s.findMember(ctx, meetingID, req.SessionID)
	if err != nil {
		return err
	}
	record, err := s.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	if record != nil && session != nil {
		logger := zerolog.Ctx(ctx)
		if _, err := s.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeKick{
			Room: record.AudioRoomID,
			ID:   session.AudioParticipantID,
		}); err != nil {
			logger.Warn().Err(err).Msg("audio room kick failed")
		}
		if _, err := s.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomKick{
			Room: record.VideoRoomID,
			ID:   session.VideoParticipantID,
		}); err != nil {
			logger.Warn().Err(err).Msg("video room kick failed")
		}
	}

	if err := s.removeMember(ctx, meetingID, req.SessionID, session, participant); err != nil {
		return err
	}

	event := dto.Event{
		Type:      dto.EventParticipantKicked,
		MeetingID: meetingID,
		SessionID: req.SessionID,
	}
	userID := req.UserID
	event.UserID = &userID
	if err := s.dispatcher.SendToUser(ctx, req.UserID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", req.UserID.String()).Msg("failed to notify kicked user")
	}
	return nil
}

func (s *ParticipantService) ListParticipants(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	return s.participants.ListParticipantsByMeetingId(ctx, meetingID)
}

func (s *ParticipantService) requireModerator(ctx context.Context, meetingID, callerID uuid.UUID) error {
	meeting, err := s.meetings.FindMeetingById(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if callerID == meeting.OwnerID {
		return nil
	}
	participants, err := s.participants.ListParticipantsByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	for _, p := range participants {
		if p.UserID == callerID && p.Moderator {
			return nil
		}
	}
	return fmt.Errorf("owner or moderator required: %w", ErrForbidden)
}

func (s *ParticipantService) notifyMeeting(ctx context.Context, meetingID uuid.UUID, event dto.Event) {
	event.SentAt = time.Now()
	if err := s.dispatcher.SendToMeeting(ctx, meetingID, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Str("meeting_id", meetingID.String()).
			Str("event", event.Type).
			Msg("event dispatch failed")
	}
}

func joinKey(meetingID uuid.UUID, sessionID string) string {
	return meetingID.String() + "/" + sessionID
}
