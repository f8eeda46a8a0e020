package service

import (
	"context"
	"hash/fnv"

	"github.com/google/uuid"
	"meeting-backend/dto"
	"meeting-backend/pkg/janus"
)

// MediaGateway is the slice of the media-server client the services use.
// Implemented by *janus.Client.
type MediaGateway interface {
	CreateSession(ctx context.Context) (int64, error)
	KeepAlive(ctx context.Context, sessionID int64) error
	DestroySession(ctx context.Context, sessionID int64) error
	Attach(ctx context.Context, sessionID int64, plugin string) (int64, error)
	Detach(ctx context.Context, sessionID, handleID int64) error
	Send(ctx context.Context, sessionID, handleID int64, body janus.PluginRequest) (*janus.PluginData, error)
}

// EventDispatcher fans domain events out to meeting and user queues.
// Fire-and-forget, at-least-once; this layer expects no acknowledgment.
type EventDispatcher interface {
	SendToMeeting(ctx context.Context, meetingID uuid.UUID, event dto.Event) error
	SendToUser(ctx context.Context, userID uuid.UUID, event dto.Event) error
}

// PostProcessor submits a stopped recording to the external post-processing
// service.
type PostProcessor interface {
	Submit(ctx context.Context, message dto.RecordingPostProcessMessage) error
}

// ManifestStore persists recording manifests in object storage.
type ManifestStore interface {
	Put(ctx context.Context, objectName string, payload []byte) error
}

// Room ids are derived from the meeting id so retries after a crash recreate
// the same rooms. Masked to 53 bits to stay in the JSON-safe integer range.
func audioRoomID(meetingID uuid.UUID) int64 {
	return deriveRoomID(meetingID, "audio")
}

func videoRoomID(meetingID uuid.UUID) int64 {
	return deriveRoomID(meetingID, "video")
}

func deriveRoomID(meetingID uuid.UUID, roomType string) int64 {
	h := fnv.New64a()
	h.Write([]byte(meetingID.String()))
	h.Write([]byte("/"))
	h.Write([]byte(roomType))
	id := int64(h.Sum64() & ((1 << 53) - 1))
	if id == 0 {
		id = 1
	}
	return id
}
