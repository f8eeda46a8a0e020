package janus

import (
	"errors"
	"fmt"
)

// Error codes returned by the media server and its room plugins.
const (
	ErrCodeSessionNotFound = 458
	ErrCodeHandleNotFound  = 459

	ErrCodeAudioRoomNoSuchRoom = 485
	ErrCodeAudioRoomExists     = 486

	ErrCodeVideoRoomNoSuchRoom = 426
	ErrCodeVideoRoomExists     = 427
)

// ErrTimeout is returned when no matching response arrives within the request
// timeout.
var ErrTimeout = errors.New("no matching response from media server")

// ServerError is a top-level error envelope from the media server.
type ServerError struct {
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("media server error %d: %s", e.Code, e.Reason)
}

// PluginError is an error reported inside a plugin response payload.
type PluginError struct {
	Plugin string
	Code   int
	Reason string
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s error %d: %s", e.Plugin, e.Code, e.Reason)
}

// IsRoomExists reports whether err is a room plugin complaining that the room
// id is already taken. Creating a room with a deterministic id treats this as
// success.
func IsRoomExists(err error) bool {
	var pe *PluginError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == ErrCodeAudioRoomExists || pe.Code == ErrCodeVideoRoomExists
}

// IsNoSuchRoom reports whether err means the room is already gone.
func IsNoSuchRoom(err error) bool {
	var pe *PluginError
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Code == ErrCodeAudioRoomNoSuchRoom || pe.Code == ErrCodeVideoRoomNoSuchRoom
}

// IsSessionGone reports whether err means the server-side session or handle no
// longer exists, which teardown treats as success.
func IsSessionGone(err error) bool {
	var se *ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.Code == ErrCodeSessionNotFound || se.Code == ErrCodeHandleNotFound
}
