package entities

import (
	"time"

	"github.com/google/uuid"
	"meeting-backend/constant"
)

type Meeting struct {
	ID               uuid.UUID            `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	RoomID           uuid.UUID            `json:"room_id" gorm:"type:uuid;not null;uniqueIndex:unique_meeting_room"`
	OwnerID          uuid.UUID            `json:"owner_id" gorm:"type:uuid;not null"`
	Name             string               `json:"name" gorm:"type:varchar(255)"`
	Type             constant.MeetingType `json:"type" gorm:"type:varchar(20);not null;default:'PERMANENT'"`
	Active           bool                 `json:"active" gorm:"not null;default:false"`
	RequireAdmission bool                 `json:"require_admission" gorm:"not null;default:false"`
	ExpiresAt        *time.Time           `json:"expires_at" gorm:"type:timestamptz"`
	CreatedAt        time.Time            `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time            `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Meeting) TableName() string {
	return "meetings"
}
