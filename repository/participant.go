package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/entities"
)

type ParticipantRepository interface {
	FindParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.Participant, error)
	ListParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error)
	CountParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) (int64, error)
	InsertParticipant(ctx context.Context, participant *entities.Participant) error
	UpdateParticipant(ctx context.Context, participant *entities.Participant) error
	DeleteParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) error
	DeleteParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) error
}

func (r *repo) FindParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.Participant, error) {
	participant := &entities.Participant{}
	err := r.GetDB().WithContext(ctx).First(participant, "meeting_id = ? AND session_id = ?", meetingID, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *repo) ListParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.Participant, error) {
	var participants []*entities.Participant
	err := r.GetDB().WithContext(ctx).Where("meeting_id = ?", meetingID).Order("joined_at ASC").Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *repo) CountParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	err := r.GetDB().WithContext(ctx).Model(&entities.Participant{}).Where("meeting_id = ?", meetingID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) InsertParticipant(ctx context.Context, participant *entities.Participant) error {
	return r.GetDB().WithContext(ctx).Create(participant).Error
}

func (r *repo) UpdateParticipant(ctx context.Context, participant *entities.Participant) error {
	return r.GetDB().WithContext(ctx).Save(participant).Error
}

func (r *repo) DeleteParticipant(ctx context.Context, meetingID uuid.UUID, sessionID string) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Participant{}, "meeting_id = ? AND session_id = ?", meetingID, sessionID).Error
}

func (r *repo) DeleteParticipantsByMeetingId(ctx context.Context, meetingID uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Participant{}, "meeting_id = ?", meetingID).Error
}
