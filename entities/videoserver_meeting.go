package entities

import (
	"github.com/google/uuid"
	"meeting-backend/constant"
)

// VideoServerMeeting is the media-server side of an active meeting: one janus
// session with one handle per room plugin. The unique index on meeting_id is the
// cross-process backstop against two workers creating the rooms concurrently.
type VideoServerMeeting struct {
	MeetingID     uuid.UUID          `json:"meeting_id" gorm:"type:uuid;primary_key;uniqueIndex:unique_videoserver_meeting"`
	ServerID      string             `json:"server_id" gorm:"type:varchar(64);not null"`
	ConnectionID  int64              `json:"connection_id" gorm:"type:bigint;not null"`
	AudioHandleID int64              `json:"audio_handle_id" gorm:"type:bigint;not null"`
	VideoHandleID int64              `json:"video_handle_id" gorm:"type:bigint;not null"`
	AudioRoomID   int64              `json:"audio_room_id" gorm:"type:bigint;not null"`
	VideoRoomID   int64              `json:"video_room_id" gorm:"type:bigint;not null"`
	State         constant.RoomState `json:"state" gorm:"type:varchar(20);not null;default:'CREATING'"`
}

func (VideoServerMeeting) TableName() string {
	return "videoserver_meetings"
}
