package handler

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"meeting-backend/dto"
	"meeting-backend/service"
)

type ServiceDependencies struct {
	RecordingService *service.RecordingService
}

// RecordingReadyHandler consumes completion messages from the post-processing
// worker and fans them out to the meeting.
func RecordingReadyHandler(ctx context.Context, msg amqp.Delivery, deps ServiceDependencies) error {
	var readyMsg dto.RecordingReadyMessage
	if err := json.Unmarshal(msg.Body, &readyMsg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal recording ready message")
		return err
	}

	zerolog.Ctx(ctx).Info().
		Str("recording_id", readyMsg.RecordingID.String()).
		Str("meeting_id", readyMsg.MeetingID.String()).
		Msg("received recording ready message")

	return deps.RecordingService.NotifyReady(ctx, readyMsg)
}
