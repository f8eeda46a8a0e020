package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"meeting-backend/constant"
	"meeting-backend/dto"
	"meeting-backend/pkg/janus"
)

func TestCreateMeetingOnePerRoom(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	roomID := uuid.New()
	ctx := context.Background()

	meeting, err := ts.meetings.Create(ctx, ownerID, dto.CreateMeetingRequest{RoomID: roomID, Name: "retro"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if meeting.Type != constant.MeetingTypePermanent {
		t.Errorf("default type = %s, want PERMANENT", meeting.Type)
	}

	if _, err := ts.meetings.Create(ctx, uuid.New(), dto.CreateMeetingRequest{RoomID: roomID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("second meeting in room err = %v, want ErrConflict", err)
	}
}

func TestGetMeeting(t *testing.T) {
	ts := newTestStack()
	meeting := ts.addMeeting(uuid.New(), false)
	ctx := context.Background()

	got, err := ts.meetings.Get(ctx, meeting.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != meeting.ID {
		t.Errorf("got meeting %s, want %s", got.ID, meeting.ID)
	}

	if _, err := ts.meetings.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id err = %v, want ErrNotFound", err)
	}
	byRoom, err := ts.meetings.GetByRoom(ctx, meeting.RoomID)
	if err != nil || byRoom.ID != meeting.ID {
		t.Fatalf("GetByRoom = %v, %v", byRoom, err)
	}
}

func TestUpdateMeetingRenamesRooms(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, false)
	ctx := context.Background()

	if _, err := ts.meetings.Update(ctx, meeting.ID, uuid.New(), dto.UpdateMeetingRequest{Name: "planning"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger update err = %v, want ErrForbidden", err)
	}

	// Rooms exist once someone joins; the rename must reach both.
	if _, err := ts.participants.Join(ctx, meeting.ID, ownerID, dto.JoinRequest{SessionID: "owner"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	updated, err := ts.meetings.Update(ctx, meeting.ID, ownerID, dto.UpdateMeetingRequest{Name: "planning"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "planning" {
		t.Errorf("name = %s, want planning", updated.Name)
	}
	stored, _ := ts.repos.FindMeetingById(ctx, meeting.ID)
	if stored.Name != "planning" {
		t.Error("rename not persisted")
	}

	audioEdits := ts.media.countSent(func(body janus.PluginRequest) bool {
		edit, ok := body.(janus.AudioBridgeEdit)
		return ok && edit.NewDescription == "planning"
	})
	videoEdits := ts.media.countSent(func(body janus.PluginRequest) bool {
		edit, ok := body.(janus.VideoRoomEdit)
		return ok && edit.NewDescription == "planning"
	})
	if audioEdits != 1 || videoEdits != 1 {
		t.Errorf("room edits = %d audio, %d video, want 1 each", audioEdits, videoEdits)
	}

	types := ts.dispatcher.meetingEventTypes()
	if len(types) == 0 || types[len(types)-1] != dto.EventMeetingUpdated {
		t.Errorf("events = %v, want meeting_updated last", types)
	}
}

func TestDeleteMeetingOwnerOnly(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, false)

	if err := ts.meetings.Delete(context.Background(), meeting.ID, uuid.New()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("stranger delete err = %v, want ErrForbidden", err)
	}
	if m, _ := ts.repos.FindMeetingById(context.Background(), meeting.ID); m == nil {
		t.Error("meeting deleted despite forbidden caller")
	}
}

func TestDeleteMeetingTearsEverythingDown(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, ownerID, dto.JoinRequest{SessionID: "owner"}); err != nil {
		t.Fatalf("owner join: %v", err)
	}
	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"}); err != nil {
		t.Fatalf("guest request: %v", err)
	}
	recording, err := ts.recordings.Start(ctx, meeting.ID, ownerID)
	if err != nil {
		t.Fatalf("Start recording: %v", err)
	}

	if err := ts.meetings.Delete(ctx, meeting.ID, ownerID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if m, _ := ts.repos.FindMeetingById(ctx, meeting.ID); m != nil {
		t.Error("meeting row survived delete")
	}
	if record, _ := ts.repos.FindVideoServerMeetingByMeetingId(ctx, meeting.ID); record != nil {
		t.Error("media record survived delete")
	}
	if participants, _ := ts.repos.ListParticipantsByMeetingId(ctx, meeting.ID); len(participants) != 0 {
		t.Errorf("%d participants survived delete", len(participants))
	}
	if sessions, _ := ts.repos.ListVideoServerSessionsByMeetingId(ctx, meeting.ID); len(sessions) != 0 {
		t.Errorf("%d media sessions survived delete", len(sessions))
	}
	if pending, _ := ts.repos.ListWaitingByMeetingId(ctx, meeting.ID, constant.WaitingStatusWaiting); len(pending) != 0 {
		t.Errorf("%d admission requests survived delete", len(pending))
	}
	stopped, _ := ts.repos.FindRecordingById(ctx, recording.ID)
	if stopped.Status != constant.RecordingStatusStopped {
		t.Errorf("recording status = %s, want STOPPED", stopped.Status)
	}
	awaitSubmission(t, ts)

	types := ts.dispatcher.meetingEventTypes()
	if len(types) == 0 || types[len(types)-1] != dto.EventMeetingDeleted {
		t.Errorf("events = %v, want meeting_deleted last", types)
	}
}

func TestDeleteMeetingWithDeadMediaServer(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, false)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, ownerID, dto.JoinRequest{SessionID: "owner"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	ts.media.sendFunc = func(sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error) {
		return nil, &janus.ServerError{Code: 500, Reason: "unreachable"}
	}

	// Media-side failures must not block local cleanup.
	if err := ts.meetings.Delete(ctx, meeting.ID, ownerID); err != nil {
		t.Fatalf("Delete with dead media server: %v", err)
	}
	if m, _ := ts.repos.FindMeetingById(ctx, meeting.ID); m != nil {
		t.Error("meeting row survived delete")
	}
}
