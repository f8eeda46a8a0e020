package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"meeting-backend/constant"
	"meeting-backend/entities"
	"meeting-backend/pkg/janus"
	"meeting-backend/repository"
)

// RoomOrchestrator creates and destroys the audio and video rooms backing a
// meeting. Room creation for a given meeting runs in an exclusive per-meeting
// critical section; the unique constraint on videoserver_meetings.meeting_id is
// the backstop across processes.
type RoomOrchestrator struct {
	media       MediaGateway
	sessions    *SessionManager
	handles     *HandleManager
	videoServer repository.VideoServerRepository
	serverID    string
	locks       *keyedMutex
}

func NewRoomOrchestrator(
	media MediaGateway,
	sessions *SessionManager,
	handles *HandleManager,
	videoServer repository.VideoServerRepository,
	serverID string,
) *RoomOrchestrator {
	return &RoomOrchestrator{
		media:       media,
		sessions:    sessions,
		handles:     handles,
		videoServer: videoServer,
		serverID:    serverID,
		locks:       newKeyedMutex(),
	}
}

// EnsureRooms returns the media-server record for the meeting, creating the
// session, the plugin handles and both rooms on first use. At most one
// creation sequence runs concurrently per meeting.
func (o *RoomOrchestrator) EnsureRooms(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error) {
	record, err := o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if record != nil && record.State == constant.RoomStateReady && o.sessions.Healthy(record.ConnectionID) {
		return record, nil
	}

	unlock := o.locks.Lock(meetingID.String())
	defer unlock()

	// Re-check: another joiner may have finished while we waited.
	record, err = o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		if record.State == constant.RoomStateReady && o.sessions.Healthy(record.ConnectionID) {
			return record, nil
		}
		// Stale or unhealthy: tear down and recreate.
		zerolog.Ctx(ctx).Info().
			Str("meeting_id", meetingID.String()).
			Int64("connection_id", record.ConnectionID).
			Msg("recreating unhealthy media session")
		if err := o.tearDownLocked(ctx, record); err != nil {
			return nil, err
		}
	}

	return o.createRooms(ctx, meetingID)
}

func (o *RoomOrchestrator) createRooms(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error) {
	connectionID, err := o.sessions.EnsureSession(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	audioHandleID, err := o.handles.AttachPlugin(ctx, connectionID, janus.PluginAudioBridge)
	if err != nil {
		o.sessions.Destroy(ctx, connectionID)
		return nil, err
	}
	videoHandleID, err := o.handles.AttachPlugin(ctx, connectionID, janus.PluginVideoRoom)
	if err != nil {
		o.sessions.Destroy(ctx, connectionID)
		return nil, err
	}

	audioRoom := audioRoomID(meetingID)
	videoRoom := videoRoomID(meetingID)

	_, err = o.media.Send(ctx, connectionID, audioHandleID, janus.AudioBridgeCreate{
		Room:        audioRoom,
		Description: meetingID.String(),
	})
	if err != nil && !janus.IsRoomExists(err) {
		o.sessions.Destroy(ctx, connectionID)
		return nil, dependencyFailure("create audio room", err)
	}

	_, err = o.media.Send(ctx, connectionID, videoHandleID, janus.VideoRoomCreate{
		Room:        videoRoom,
		Description: meetingID.String(),
		Publishers:  32,
	})
	if err != nil && !janus.IsRoomExists(err) {
		o.sessions.Destroy(ctx, connectionID)
		return nil, dependencyFailure("create video room", err)
	}

	record := &entities.VideoServerMeeting{
		MeetingID:     meetingID,
		ServerID:      o.serverID,
		ConnectionID:  connectionID,
		AudioHandleID: audioHandleID,
		VideoHandleID: videoHandleID,
		AudioRoomID:   audioRoom,
		VideoRoomID:   videoRoom,
		State:         constant.RoomStateReady,
	}
	if err := o.videoServer.InsertVideoServerMeeting(ctx, record); err != nil {
		if repository.IsDuplicate(err) {
			// Another process won the creation race. Drop our session and use
			// theirs once it is ready.
			o.sessions.Destroy(ctx, connectionID)
			return o.awaitRecord(ctx, meetingID)
		}
		o.sessions.Destroy(ctx, connectionID)
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meetingID.String()).
		Int64("audio_room", audioRoom).
		Int64("video_room", videoRoom).
		Msg("meeting rooms created")
	return record, nil
}

// awaitRecord polls for the record the winning process is persisting.
func (o *RoomOrchestrator) awaitRecord(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error) {
	operation := func() (*entities.VideoServerMeeting, error) {
		record, err := o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		if record == nil || record.State != constant.RoomStateReady {
			return nil, fmt.Errorf("media record for meeting %s not ready", meetingID)
		}
		return record, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 50 * time.Millisecond
	bo.MaxInterval = time.Second
	record, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(10))
	if err != nil {
		return nil, dependencyFailure("await concurrent room creation", err)
	}
	return record, nil
}

// EditRooms pushes a new description to both rooms after a meeting rename. A
// missing record is a no-op: rooms are created lazily and pick up the current
// name then.
func (o *RoomOrchestrator) EditRooms(ctx context.Context, meetingID uuid.UUID, description string) error {
	record, err := o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}

	if _, err := o.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeEdit{
		Room:           record.AudioRoomID,
		NewDescription: description,
	}); err != nil && !janus.IsNoSuchRoom(err) {
		return dependencyFailure("edit audio room", err)
	}
	if _, err := o.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomEdit{
		Room:           record.VideoRoomID,
		NewDescription: description,
	}); err != nil && !janus.IsNoSuchRoom(err) {
		return dependencyFailure("edit video room", err)
	}
	return nil
}

// TearDownRooms destroys both rooms, detaches the plugin handles, destroys the
// session and deletes the record. Remote failures are logged and tolerated:
// the server garbage-collects orphans when the session expires, so the local
// record is the durability boundary.
func (o *RoomOrchestrator) TearDownRooms(ctx context.Context, meetingID uuid.UUID) error {
	unlock := o.locks.Lock(meetingID.String())
	defer unlock()

	record, err := o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	return o.tearDownLocked(ctx, record)
}

func (o *RoomOrchestrator) tearDownLocked(ctx context.Context, record *entities.VideoServerMeeting) error {
	logger := zerolog.Ctx(ctx)

	_, err := o.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeDestroy{Room: record.AudioRoomID})
	if err != nil && !janus.IsNoSuchRoom(err) && !janus.IsSessionGone(err) {
		logger.Warn().Err(err).Str("meeting_id", record.MeetingID.String()).Msg("failed to destroy audio room")
	}
	_, err = o.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomDestroy{Room: record.VideoRoomID})
	if err != nil && !janus.IsNoSuchRoom(err) && !janus.IsSessionGone(err) {
		logger.Warn().Err(err).Str("meeting_id", record.MeetingID.String()).Msg("failed to destroy video room")
	}

	o.handles.Detach(ctx, record.ConnectionID, record.AudioHandleID)
	o.handles.Detach(ctx, record.ConnectionID, record.VideoHandleID)
	o.sessions.Destroy(ctx, record.ConnectionID)

	if err := o.videoServer.DeleteVideoServerMeeting(ctx, record.MeetingID); err != nil {
		return err
	}
	logger.Info().Str("meeting_id", record.MeetingID.String()).Msg("meeting rooms torn down")
	return nil
}

// RoomExists queries the media server for the room backing the meeting. Used
// for drift detection between the local record and the server.
func (o *RoomOrchestrator) RoomExists(ctx context.Context, meetingID uuid.UUID, roomType constant.RoomType) (bool, error) {
	record, err := o.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	var reply *janus.PluginData
	switch roomType {
	case constant.RoomTypeAudio:
		reply, err = o.media.Send(ctx, record.ConnectionID, record.AudioHandleID, janus.AudioBridgeExists{Room: record.AudioRoomID})
	case constant.RoomTypeVideo:
		reply, err = o.media.Send(ctx, record.ConnectionID, record.VideoHandleID, janus.VideoRoomExists{Room: record.VideoRoomID})
	default:
		return false, fmt.Errorf("unknown room type %q", roomType)
	}
	if err != nil {
		return false, dependencyFailure("room exists", err)
	}
	return reply.BoolValue("exists"), nil
}
