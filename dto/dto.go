package dto

import (
	"time"

	"github.com/google/uuid"
	"meeting-backend/constant"
)

type CreateMeetingRequest struct {
	RoomID           uuid.UUID            `json:"roomId" binding:"required"`
	Name             string               `json:"name"`
	Type             constant.MeetingType `json:"type"`
	RequireAdmission bool                 `json:"requireAdmission"`
	ExpiresAt        *time.Time           `json:"expiresAt"`
}

type UpdateMeetingRequest struct {
	Name string `json:"name" binding:"required"`
}

type JoinRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	QueueID   string `json:"queueId"`
	AudioOn   bool   `json:"audioOn"`
	VideoOn   bool   `json:"videoOn"`
}

type LeaveRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type MediaUpdateRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Stream    string `json:"stream" binding:"required"`
	Enabled   bool   `json:"enabled"`
	// TargetSessionID names the publisher to subscribe to when Stream is
	// "subscribe" or "screenSubscribe".
	TargetSessionID string `json:"targetSessionId"`
}

type KickRequest struct {
	UserID    uuid.UUID `json:"userId" binding:"required"`
	SessionID string    `json:"sessionId" binding:"required"`
}

type SetRoleRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
	Moderator bool   `json:"moderator"`
}

type ForceMuteRequest struct {
	SessionID string `json:"sessionId" binding:"required"`
}

type AdmissionDecisionRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Accept bool      `json:"accept"`
}

type StopRecordingRequest struct {
	RecordingID uuid.UUID `json:"recordingId" binding:"required"`
}

// Event is the payload fanned out to meeting and user queues via the broker.
type Event struct {
	Type      string         `json:"type"`
	MeetingID uuid.UUID      `json:"meetingId"`
	UserID    *uuid.UUID     `json:"userId,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	SentAt    time.Time      `json:"sentAt"`
	Data      map[string]any `json:"data,omitempty"`
}

const (
	EventParticipantJoined = "participant_joined"
	EventParticipantLeft   = "participant_left"
	EventParticipantKicked = "participant_kicked"
	EventMediaUpdated      = "media_updated"
	EventRoleChanged       = "role_changed"
	EventWaitingRequested  = "waiting_requested"
	EventWaitingAccepted   = "waiting_accepted"
	EventWaitingRejected   = "waiting_rejected"
	EventRecordingStarted  = "recording_started"
	EventRecordingStopped  = "recording_stopped"
	EventRecordingReady    = "recording_ready"
	EventMeetingUpdated    = "meeting_updated"
	EventMeetingDeleted    = "meeting_deleted"
)

// RecordingPostProcessMessage is published to the post-processing queue when a
// recording stops.
type RecordingPostProcessMessage struct {
	RecordingID    uuid.UUID `json:"recordingId"`
	MeetingID      uuid.UUID `json:"meetingId"`
	ServerID       string    `json:"serverId"`
	AudioRoomID    int64     `json:"audioRoomId"`
	VideoRoomID    int64     `json:"videoRoomId"`
	ManifestObject string    `json:"manifestObject"`
	StartedAt      time.Time `json:"startedAt"`
	StoppedAt      time.Time `json:"stoppedAt"`
}

// RecordingReadyMessage comes back from the post-processing worker once the
// merged recording is available in object storage.
type RecordingReadyMessage struct {
	RecordingID uuid.UUID `json:"recordingId"`
	MeetingID   uuid.UUID `json:"meetingId"`
	ObjectPath  string    `json:"objectPath"`
}
