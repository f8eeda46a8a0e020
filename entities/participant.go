package entities

import (
	"time"

	"github.com/google/uuid"
)

// Participant is one user connection inside a meeting. SessionID disambiguates
// multiple concurrent connections of the same user; a (user, session) pair can be
// in at most one meeting at a time.
type Participant struct {
	MeetingID uuid.UUID `json:"meeting_id" gorm:"type:uuid;primary_key"`
	SessionID string    `json:"session_id" gorm:"type:varchar(64);primary_key;uniqueIndex:unique_user_session,priority:2"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:unique_user_session,priority:1"`
	AudioOn   bool      `json:"audio_on" gorm:"not null;default:false"`
	VideoOn   bool      `json:"video_on" gorm:"not null;default:false"`
	ScreenOn  bool      `json:"screen_on" gorm:"not null;default:false"`
	Moderator bool      `json:"moderator" gorm:"not null;default:false"`
	JoinedAt  time.Time `json:"joined_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (Participant) TableName() string {
	return "participants"
}
