package service

import (
	"context"

	"github.com/rs/zerolog"
	"meeting-backend/constant"
)

// HandleManager attaches and detaches plugin handles on a session: one handle
// per room plugin for the meeting itself, plus per-participant handles for
// publish, subscribe and screen-share.
type HandleManager struct {
	media MediaGateway
}

func NewHandleManager(media MediaGateway) *HandleManager {
	return &HandleManager{media: media}
}

func (h *HandleManager) AttachPlugin(ctx context.Context, connectionID int64, plugin string) (int64, error) {
	handleID, err := h.media.Attach(ctx, connectionID, plugin)
	if err != nil {
		return 0, dependencyFailure("attach "+plugin, err)
	}
	zerolog.Ctx(ctx).Debug().
		Int64("connection_id", connectionID).
		Int64("handle_id", handleID).
		Str("plugin", plugin).
		Msg("attached plugin handle")
	return handleID, nil
}

func (h *HandleManager) AttachParticipantHandle(ctx context.Context, connectionID int64, plugin string, role constant.HandleRole) (int64, error) {
	handleID, err := h.media.Attach(ctx, connectionID, plugin)
	if err != nil {
		return 0, dependencyFailure("attach "+plugin+" as "+string(role), err)
	}
	zerolog.Ctx(ctx).Debug().
		Int64("connection_id", connectionID).
		Int64("handle_id", handleID).
		Str("plugin", plugin).
		Str("role", string(role)).
		Msg("attached participant handle")
	return handleID, nil
}

// Detach releases a handle's server resources. Failures are logged, not
// retried; a leaked handle goes away with its parent session.
func (h *HandleManager) Detach(ctx context.Context, connectionID, handleID int64) {
	if err := h.media.Detach(ctx, connectionID, handleID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).
			Int64("connection_id", connectionID).
			Int64("handle_id", handleID).
			Msg("failed to detach handle")
	}
}
