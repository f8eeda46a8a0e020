package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/constant"
	"meeting-backend/entities"
)

type RecordingRepository interface {
	FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error)
	FindStartedRecordingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.Recording, error)
	InsertRecording(ctx context.Context, recording *entities.Recording) error
	UpdateRecording(ctx context.Context, recording *entities.Recording) error
}

func (r *repo) FindRecordingById(ctx context.Context, id uuid.UUID) (*entities.Recording, error) {
	recording := &entities.Recording{}
	err := r.GetDB().WithContext(ctx).First(recording, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recording, nil
}

func (r *repo) FindStartedRecordingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.Recording, error) {
	recording := &entities.Recording{}
	err := r.GetDB().WithContext(ctx).
		First(recording, "meeting_id = ? AND status = ?", meetingID, constant.RecordingStatusStarted).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recording, nil
}

func (r *repo) InsertRecording(ctx context.Context, recording *entities.Recording) error {
	return r.GetDB().WithContext(ctx).Create(recording).Error
}

func (r *repo) UpdateRecording(ctx context.Context, recording *entities.Recording) error {
	return r.GetDB().WithContext(ctx).Save(recording).Error
}
