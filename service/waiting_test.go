package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"meeting-backend/constant"
	"meeting-backend/dto"
)

func TestGatedJoinQueuesParticipant(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	result, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest", AudioOn: true})
	if err != nil {
		t.Fatalf("gated join: %v", err)
	}
	if result.Status != JoinStatusWaiting {
		t.Fatalf("status = %s, want waiting", result.Status)
	}

	// Nothing is allocated before the decision.
	if session, _ := ts.repos.FindVideoServerSession(ctx, meeting.ID, "guest"); session != nil {
		t.Error("media session allocated for a queued participant")
	}
	entry, _ := ts.repos.FindPendingWaiting(ctx, meeting.ID, guestID)
	if entry == nil {
		t.Fatal("no waiting entry persisted")
	}
	if !entry.AudioOn {
		t.Error("requested media settings not kept with the entry")
	}
	if events := ts.dispatcher.userEvents[ownerID]; len(events) != 1 || events[0].Type != dto.EventWaitingRequested {
		t.Errorf("owner events = %v, want one waiting_requested", events)
	}
}

func TestGatedJoinOwnerBypassesGate(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)

	result, err := ts.participants.Join(context.Background(), meeting.ID, ownerID, dto.JoinRequest{SessionID: "owner"})
	if err != nil {
		t.Fatalf("owner join: %v", err)
	}
	if result.Status != JoinStatusJoined {
		t.Errorf("owner status = %s, want joined", result.Status)
	}
}

func TestDuplicateAdmissionRequestConflict(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"}); err != nil {
		t.Fatalf("first request: %v", err)
	}
	_, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("second request err = %v, want ErrConflict", err)
	}
}

func TestDecideAcceptCompletesJoin(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest", VideoOn: true}); err != nil {
		t.Fatalf("request: %v", err)
	}

	result, err := ts.waiting.Decide(ctx, meeting.ID, ownerID, guestID, true)
	if err != nil {
		t.Fatalf("Decide accept: %v", err)
	}
	if result.Status != JoinStatusJoined {
		t.Fatalf("status = %s, want joined", result.Status)
	}
	if !result.Participant.VideoOn {
		t.Error("queued media settings not applied on admission")
	}

	entry, _ := ts.repos.FindPendingWaiting(ctx, meeting.ID, guestID)
	if entry != nil {
		t.Error("entry still pending after accept")
	}
	if events := ts.dispatcher.userEvents[guestID]; len(events) != 1 || events[0].Type != dto.EventWaitingAccepted {
		t.Errorf("guest events = %v, want one waiting_accepted", events)
	}
}

func TestDecideRejectLeavesNoParticipant(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"}); err != nil {
		t.Fatalf("request: %v", err)
	}

	result, err := ts.waiting.Decide(ctx, meeting.ID, ownerID, guestID, false)
	if err != nil {
		t.Fatalf("Decide reject: %v", err)
	}
	if result != nil {
		t.Errorf("reject returned a join result: %+v", result)
	}
	if p, _ := ts.repos.FindParticipant(ctx, meeting.ID, "guest"); p != nil {
		t.Error("rejected user became a participant")
	}
	if events := ts.dispatcher.userEvents[guestID]; len(events) != 1 || events[0].Type != dto.EventWaitingRejected {
		t.Errorf("guest events = %v, want one waiting_rejected", events)
	}

	// A rejected user may ask again.
	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"}); err != nil {
		t.Errorf("re-request after rejection: %v", err)
	}
}

func TestDecideRequiresModerator(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	guestID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: "guest"}); err != nil {
		t.Fatalf("request: %v", err)
	}
	_, err := ts.waiting.Decide(ctx, meeting.ID, guestID, guestID, true)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("guest deciding for self err = %v, want ErrForbidden", err)
	}
}

func TestDecideWithoutPendingEntry(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)

	_, err := ts.waiting.Decide(context.Background(), meeting.ID, ownerID, uuid.New(), true)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRejectAllOnTeardown(t *testing.T) {
	ts := newTestStack()
	ownerID := uuid.New()
	meeting := ts.addMeeting(ownerID, true)
	ctx := context.Background()

	guests := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, guestID := range guests {
		if _, err := ts.participants.Join(ctx, meeting.ID, guestID, dto.JoinRequest{SessionID: string(rune('a' + i))}); err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
	}

	ts.waiting.RejectAll(ctx, meeting.ID)

	remaining, _ := ts.repos.ListWaitingByMeetingId(ctx, meeting.ID, constant.WaitingStatusWaiting)
	if len(remaining) != 0 {
		t.Errorf("%d entries still pending after RejectAll", len(remaining))
	}
	for _, guestID := range guests {
		if events := ts.dispatcher.userEvents[guestID]; len(events) != 1 || events[0].Type != dto.EventWaitingRejected {
			t.Errorf("guest %s events = %v, want one waiting_rejected", guestID, events)
		}
	}
}
