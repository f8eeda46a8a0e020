package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"meeting-backend/repository"
)

// SessionManager owns the server-side sessions, one per active meeting. It
// creates them lazily, keeps them alive on a fixed interval and marks them
// unhealthy when a keep-alive fails so the orchestrator recreates them on next
// use.
type SessionManager struct {
	media       MediaGateway
	videoServer repository.VideoServerRepository

	mu        sync.Mutex
	unhealthy map[int64]struct{}
}

func NewSessionManager(media MediaGateway, videoServer repository.VideoServerRepository) *SessionManager {
	return &SessionManager{
		media:       media,
		videoServer: videoServer,
		unhealthy:   make(map[int64]struct{}),
	}
}

// EnsureSession returns the connection id already recorded for the meeting, or
// creates a fresh server-side session.
func (m *SessionManager) EnsureSession(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	record, err := m.videoServer.FindVideoServerMeetingByMeetingId(ctx, meetingID)
	if err != nil {
		return 0, err
	}
	if record != nil {
		return record.ConnectionID, nil
	}

	connectionID, err := m.media.CreateSession(ctx)
	if err != nil {
		return 0, dependencyFailure("create session", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("meeting_id", meetingID.String()).
		Int64("connection_id", connectionID).
		Msg("created media server session")
	return connectionID, nil
}

func (m *SessionManager) KeepAlive(ctx context.Context, connectionID int64) error {
	if err := m.media.KeepAlive(ctx, connectionID); err != nil {
		m.MarkUnhealthy(connectionID)
		return dependencyFailure("keepalive", err)
	}
	return nil
}

// KeepAliveAll pings every live session. Driven by the background ticker in
// the server bootstrap; it only touches session ids, never room or
// participant locks.
func (m *SessionManager) KeepAliveAll(ctx context.Context) {
	records, err := m.videoServer.ListVideoServerMeetings(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list sessions for keepalive")
		return
	}
	for _, record := range records {
		if err := m.KeepAlive(ctx, record.ConnectionID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).
				Str("meeting_id", record.MeetingID.String()).
				Int64("connection_id", record.ConnectionID).
				Msg("keepalive failed, session marked unhealthy")
		}
	}
}

// Destroy tears down a server-side session. Best effort: the session expires
// on its own once keep-alives stop.
func (m *SessionManager) Destroy(ctx context.Context, connectionID int64) {
	if err := m.media.DestroySession(ctx, connectionID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("connection_id", connectionID).
			Msg("failed to destroy media server session")
	}
	m.mu.Lock()
	delete(m.unhealthy, connectionID)
	m.mu.Unlock()
}

func (m *SessionManager) MarkUnhealthy(connectionID int64) {
	m.mu.Lock()
	m.unhealthy[connectionID] = struct{}{}
	m.mu.Unlock()
}

func (m *SessionManager) Healthy(connectionID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, found := m.unhealthy[connectionID]
	return !found
}
