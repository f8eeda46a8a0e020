package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/entities"
)

// MeetingRepository and the other per-entity interfaces return (nil, nil) when
// no row matches, leaving the not-found policy to the service layer.
type MeetingRepository interface {
	FindMeetingById(ctx context.Context, id uuid.UUID) (*entities.Meeting, error)
	FindMeetingByRoomId(ctx context.Context, roomID uuid.UUID) (*entities.Meeting, error)
	InsertMeeting(ctx context.Context, meeting *entities.Meeting) error
	UpdateMeeting(ctx context.Context, meeting *entities.Meeting) error
	DeleteMeeting(ctx context.Context, id uuid.UUID) error
}

func (r *repo) FindMeetingById(ctx context.Context, id uuid.UUID) (*entities.Meeting, error) {
	meeting := &entities.Meeting{}
	err := r.GetDB().WithContext(ctx).First(meeting, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func (r *repo) FindMeetingByRoomId(ctx context.Context, roomID uuid.UUID) (*entities.Meeting, error) {
	meeting := &entities.Meeting{}
	err := r.GetDB().WithContext(ctx).First(meeting, "room_id = ?", roomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func (r *repo) InsertMeeting(ctx context.Context, meeting *entities.Meeting) error {
	return r.GetDB().WithContext(ctx).Create(meeting).Error
}

func (r *repo) UpdateMeeting(ctx context.Context, meeting *entities.Meeting) error {
	return r.GetDB().WithContext(ctx).Save(meeting).Error
}

func (r *repo) DeleteMeeting(ctx context.Context, id uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.Meeting{}, "id = ?", id).Error
}
