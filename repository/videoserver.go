package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"meeting-backend/entities"
)

type VideoServerRepository interface {
	FindVideoServerMeetingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error)
	ListVideoServerMeetings(ctx context.Context) ([]*entities.VideoServerMeeting, error)
	InsertVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error
	UpdateVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error
	DeleteVideoServerMeeting(ctx context.Context, meetingID uuid.UUID) error

	FindVideoServerSession(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.VideoServerSession, error)
	ListVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.VideoServerSession, error)
	InsertVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error
	UpdateVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error
	DeleteVideoServerSession(ctx context.Context, id uuid.UUID) error
	DeleteVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) error
}

func (r *repo) FindVideoServerMeetingByMeetingId(ctx context.Context, meetingID uuid.UUID) (*entities.VideoServerMeeting, error) {
	meeting := &entities.VideoServerMeeting{}
	err := r.GetDB().WithContext(ctx).First(meeting, "meeting_id = ?", meetingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return meeting, nil
}

func (r *repo) ListVideoServerMeetings(ctx context.Context) ([]*entities.VideoServerMeeting, error) {
	var meetings []*entities.VideoServerMeeting
	err := r.GetDB().WithContext(ctx).Find(&meetings).Error
	if err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *repo) InsertVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error {
	return r.GetDB().WithContext(ctx).Create(meeting).Error
}

func (r *repo) UpdateVideoServerMeeting(ctx context.Context, meeting *entities.VideoServerMeeting) error {
	return r.GetDB().WithContext(ctx).Save(meeting).Error
}

func (r *repo) DeleteVideoServerMeeting(ctx context.Context, meetingID uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.VideoServerMeeting{}, "meeting_id = ?", meetingID).Error
}

func (r *repo) FindVideoServerSession(ctx context.Context, meetingID uuid.UUID, sessionID string) (*entities.VideoServerSession, error) {
	session := &entities.VideoServerSession{}
	err := r.GetDB().WithContext(ctx).First(session, "meeting_id = ? AND session_id = ?", meetingID, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *repo) ListVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) ([]*entities.VideoServerSession, error) {
	var sessions []*entities.VideoServerSession
	err := r.GetDB().WithContext(ctx).Where("meeting_id = ?", meetingID).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *repo) InsertVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error {
	return r.GetDB().WithContext(ctx).Create(session).Error
}

func (r *repo) UpdateVideoServerSession(ctx context.Context, session *entities.VideoServerSession) error {
	return r.GetDB().WithContext(ctx).Save(session).Error
}

func (r *repo) DeleteVideoServerSession(ctx context.Context, id uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.VideoServerSession{}, "id = ?", id).Error
}

func (r *repo) DeleteVideoServerSessionsByMeetingId(ctx context.Context, meetingID uuid.UUID) error {
	return r.GetDB().WithContext(ctx).Delete(&entities.VideoServerSession{}, "meeting_id = ?", meetingID).Error
}
