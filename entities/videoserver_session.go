package entities

import "github.com/google/uuid"

// VideoServerSession is one participant's presence on the media server. The
// handle ids are per-participant janus handles; the screen handles stay nil until
// the participant starts sharing.
type VideoServerSession struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID           uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex:unique_videoserver_session,priority:1;index:idx_videoserver_sessions_meeting"`
	SessionID           string    `json:"session_id" gorm:"type:varchar(64);not null;uniqueIndex:unique_videoserver_session,priority:2"`
	UserID              uuid.UUID `json:"user_id" gorm:"type:uuid;not null"`
	QueueID             string    `json:"queue_id" gorm:"type:varchar(64);not null"`
	ConnectionID        int64     `json:"connection_id" gorm:"type:bigint;not null"`
	AudioHandleID       *int64    `json:"audio_handle_id" gorm:"type:bigint"`
	VideoOutHandleID    *int64    `json:"video_out_handle_id" gorm:"type:bigint"`
	VideoInHandleID     *int64    `json:"video_in_handle_id" gorm:"type:bigint"`
	ScreenOutHandleID   *int64    `json:"screen_out_handle_id" gorm:"type:bigint"`
	ScreenInHandleID    *int64    `json:"screen_in_handle_id" gorm:"type:bigint"`
	AudioParticipantID  int64     `json:"audio_participant_id" gorm:"type:bigint"`
	VideoParticipantID  int64     `json:"video_participant_id" gorm:"type:bigint"`
	ScreenParticipantID int64     `json:"screen_participant_id" gorm:"type:bigint"`
}

func (VideoServerSession) TableName() string {
	return "videoserver_sessions"
}
