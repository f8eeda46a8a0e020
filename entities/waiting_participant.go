package entities

import (
	"time"

	"github.com/google/uuid"
	"meeting-backend/constant"
)

type WaitingParticipant struct {
	ID        uuid.UUID              `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID uuid.UUID              `json:"meeting_id" gorm:"type:uuid;not null;index:idx_waiting_participants_meeting"`
	UserID    uuid.UUID              `json:"user_id" gorm:"type:uuid;not null"`
	SessionID string                 `json:"session_id" gorm:"type:varchar(64);not null"`
	QueueID   string                 `json:"queue_id" gorm:"type:varchar(64);not null"`
	Status    constant.WaitingStatus `json:"status" gorm:"type:varchar(20);not null;default:'WAITING'"`
	AudioOn   bool                   `json:"audio_on" gorm:"not null;default:false"`
	VideoOn   bool                   `json:"video_on" gorm:"not null;default:false"`
	CreatedAt time.Time              `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time              `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (WaitingParticipant) TableName() string {
	return "waiting_participants"
}
