package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"meeting-backend/constant"
	"meeting-backend/entities"
	"meeting-backend/pkg/janus"
)

func isAudioCreate(body janus.PluginRequest) bool {
	_, ok := body.(janus.AudioBridgeCreate)
	return ok
}

func isVideoCreate(body janus.PluginRequest) bool {
	_, ok := body.(janus.VideoRoomCreate)
	return ok
}

func TestEnsureRoomsConcurrentJoinersCreateOnce(t *testing.T) {
	ts := newTestStack()
	meetingID := uuid.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.rooms.EnsureRooms(ctx, meetingID); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("EnsureRooms: %v", err)
	}

	if got := ts.media.countSent(isAudioCreate); got != 1 {
		t.Errorf("audio room created %d times, want 1", got)
	}
	if got := ts.media.countSent(isVideoCreate); got != 1 {
		t.Errorf("video room created %d times, want 1", got)
	}
	if ts.media.created != 1 {
		t.Errorf("created %d sessions, want 1", ts.media.created)
	}

	record, err := ts.repos.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil || record == nil {
		t.Fatalf("record = %v, err = %v", record, err)
	}
	if record.State != constant.RoomStateReady {
		t.Errorf("record state = %s, want READY", record.State)
	}
	if record.AudioRoomID == record.VideoRoomID {
		t.Errorf("audio and video rooms share id %d", record.AudioRoomID)
	}
}

func TestEnsureRoomsIdempotent(t *testing.T) {
	ts := newTestStack()
	meetingID := uuid.New()
	ctx := context.Background()

	first, err := ts.rooms.EnsureRooms(ctx, meetingID)
	if err != nil {
		t.Fatalf("first EnsureRooms: %v", err)
	}
	second, err := ts.rooms.EnsureRooms(ctx, meetingID)
	if err != nil {
		t.Fatalf("second EnsureRooms: %v", err)
	}
	if first.ConnectionID != second.ConnectionID {
		t.Errorf("connection changed across calls: %d vs %d", first.ConnectionID, second.ConnectionID)
	}
	if ts.media.created != 1 {
		t.Errorf("created %d sessions, want 1", ts.media.created)
	}
}

func TestEnsureRoomsTreatsExistingRoomAsSuccess(t *testing.T) {
	ts := newTestStack()
	ts.media.sendFunc = func(sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error) {
		switch body.(type) {
		case janus.AudioBridgeCreate:
			return nil, &janus.PluginError{Plugin: janus.PluginAudioBridge, Code: janus.ErrCodeAudioRoomExists, Reason: "Room exists"}
		case janus.VideoRoomCreate:
			return nil, &janus.PluginError{Plugin: janus.PluginVideoRoom, Code: janus.ErrCodeVideoRoomExists, Reason: "Room exists"}
		default:
			return &janus.PluginData{Data: map[string]any{"id": int64(7)}}, nil
		}
	}
	meetingID := uuid.New()

	record, err := ts.rooms.EnsureRooms(context.Background(), meetingID)
	if err != nil {
		t.Fatalf("EnsureRooms with existing rooms: %v", err)
	}
	if record.State != constant.RoomStateReady {
		t.Errorf("record state = %s, want READY", record.State)
	}
}

func TestEnsureRoomsLosesInsertRace(t *testing.T) {
	ts := newTestStack()
	meetingID := uuid.New()
	winner := entities.VideoServerMeeting{
		MeetingID:    meetingID,
		ServerID:     "server-2",
		ConnectionID: 999,
		AudioRoomID:  audioRoomID(meetingID),
		VideoRoomID:  videoRoomID(meetingID),
		State:        constant.RoomStateReady,
	}
	// Another process persists its record between our create and insert.
	ts.repos.vsmInsertHook = func(r *memRepos) {
		r.mu.Lock()
		r.vsMeetings[meetingID] = winner
		r.mu.Unlock()
	}

	record, err := ts.rooms.EnsureRooms(context.Background(), meetingID)
	if err != nil {
		t.Fatalf("EnsureRooms after lost race: %v", err)
	}
	if record.ConnectionID != 999 {
		t.Errorf("connection id = %d, want the winner's 999", record.ConnectionID)
	}
	if ts.media.destroyed == 0 {
		t.Error("loser's session was not destroyed")
	}
}

func TestEnsureRoomsRecreatesUnhealthySession(t *testing.T) {
	ts := newTestStack()
	meetingID := uuid.New()
	ctx := context.Background()

	record, err := ts.rooms.EnsureRooms(ctx, meetingID)
	if err != nil {
		t.Fatalf("EnsureRooms: %v", err)
	}
	ts.sessions.MarkUnhealthy(record.ConnectionID)

	fresh, err := ts.rooms.EnsureRooms(ctx, meetingID)
	if err != nil {
		t.Fatalf("EnsureRooms after keepalive failure: %v", err)
	}
	if fresh.ConnectionID == record.ConnectionID {
		t.Errorf("unhealthy session %d was reused", record.ConnectionID)
	}
	if !ts.sessions.Healthy(fresh.ConnectionID) {
		t.Error("fresh session should be healthy")
	}
}

func TestTearDownRoomsToleratesRemoteFailures(t *testing.T) {
	ts := newTestStack()
	meetingID := uuid.New()
	ctx := context.Background()

	if _, err := ts.rooms.EnsureRooms(ctx, meetingID); err != nil {
		t.Fatalf("EnsureRooms: %v", err)
	}
	ts.media.sendFunc = func(sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error) {
		switch body.(type) {
		case janus.AudioBridgeDestroy:
			return nil, &janus.PluginError{Plugin: janus.PluginAudioBridge, Code: janus.ErrCodeAudioRoomNoSuchRoom, Reason: "No such room"}
		case janus.VideoRoomDestroy:
			return nil, &janus.ServerError{Code: janus.ErrCodeSessionNotFound, Reason: "No such session"}
		default:
			return &janus.PluginData{Data: map[string]any{}}, nil
		}
	}

	if err := ts.rooms.TearDownRooms(ctx, meetingID); err != nil {
		t.Fatalf("TearDownRooms with dead server: %v", err)
	}
	record, _ := ts.repos.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if record != nil {
		t.Error("record not deleted after teardown")
	}
}

func TestTearDownRoomsWithoutRecordIsNoop(t *testing.T) {
	ts := newTestStack()
	if err := ts.rooms.TearDownRooms(context.Background(), uuid.New()); err != nil {
		t.Fatalf("TearDownRooms on unknown meeting: %v", err)
	}
}

func TestDeriveRoomIDStable(t *testing.T) {
	meetingID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	if audioRoomID(meetingID) != audioRoomID(meetingID) {
		t.Error("room id not deterministic")
	}
	if audioRoomID(meetingID) == videoRoomID(meetingID) {
		t.Error("audio and video rooms collide")
	}
	if id := audioRoomID(meetingID); id <= 0 || id >= 1<<53 {
		t.Errorf("room id %d outside JSON-safe range", id)
	}
}
