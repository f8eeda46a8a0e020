package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/constant"
	"meeting-backend/entities"
)

type WaitingRepository interface {
	FindWaitingById(ctx context.Context, id uuid.UUID) (*entities.WaitingParticipant, error)
	FindPendingWaiting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.WaitingParticipant, error)
	ListWaitingByMeetingId(ctx context.Context, meetingID uuid.UUID, status constant.WaitingStatus) ([]*entities.WaitingParticipant, error)
	InsertWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error
	UpdateWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error
	DeleteWaiting(ctx context.Context, id uuid.UUID) error
}

func (r *repo) FindWaitingById(ctx context.Context, id uuid.UUID) (*entities.WaitingParticipant, error) {
	waiting := &entities.WaitingParticipant{}
	err := r.GetDB().WithContext(ctx).First(waiting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return waiting, nil
}

func (r *repo) FindPendingWaiting(ctx context.Context, meetingID, userID uuid.UUID) (*entities.WaitingParticipant, error) {
	waiting := &entities.WaitingParticipant{}
	err := r.GetDB().WithContext(ctx).
		First(waiting, "meeting_id = ? AND user_id = ? AND status = ?", meetingID, userID, constant.WaitingStatusWaiting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return waiting, nil
}

func (r *repo) ListWaitingByMeetingId(ctx context.Context, meetingID uuid.UUID, status constant.WaitingStatus) ([]*entities.WaitingParticipant, error) {
	var waiting []*entities.WaitingParticipant
	err := r.GetDB().WithContext(ctx).
		Where("meeting_id = ? AND status = ?", meetingID, status).
		Order("created_at ASC").
		Find(&waiting).Error
	if err != nil {
		return nil, err
	}
	return waiting, nil
}

func (r *repo) InsertWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error {
	return r.GetDB().WithContext(ctx).Create(waiting).Error
}

func (r *repo) UpdateWaiting(ctx context.Context, waiting *entities.WaitingParticipant) error {
	return r.GetDB().WithContext(ctx).Save(waiting).Error
}

func (r *repo) DeleteWaiting(ctx context.Context, id uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.WaitingParticipant{}, "id = ?", id).Error
}
