package entities

import (
	"time"

	"github.com/google/uuid"
	"meeting-backend/constant"
)

type Recording struct {
	ID        uuid.UUID                `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID uuid.UUID                `json:"meeting_id" gorm:"type:uuid;not null;index:idx_recordings_meeting"`
	StarterID uuid.UUID                `json:"starter_id" gorm:"type:uuid;not null"`
	Status    constant.RecordingStatus `json:"status" gorm:"type:varchar(20);not null;default:'STARTED'"`
	StartedAt time.Time                `json:"started_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	StoppedAt *time.Time               `json:"stopped_at" gorm:"type:timestamptz"`
}

func (Recording) TableName() string {
	return "recordings"
}
