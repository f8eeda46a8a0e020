package constant

type MeetingType string

const (
	MeetingTypePermanent MeetingType = "PERMANENT"
	MeetingTypeScheduled MeetingType = "SCHEDULED"
)

type RoomState string

const (
	RoomStateCreating RoomState = "CREATING"
	RoomStateReady    RoomState = "READY"
)

type RoomType string

const (
	RoomTypeAudio RoomType = "audio"
	RoomTypeVideo RoomType = "video"
)

type WaitingStatus string

const (
	WaitingStatusWaiting  WaitingStatus = "WAITING"
	WaitingStatusAccepted WaitingStatus = "ACCEPTED"
	WaitingStatusRejected WaitingStatus = "REJECTED"
)

type RecordingStatus string

const (
	RecordingStatusStarted RecordingStatus = "STARTED"
	RecordingStatusStopped RecordingStatus = "STOPPED"
)

type HandleRole string

const (
	HandleRolePublisher   HandleRole = "publisher"
	HandleRoleSubscriber  HandleRole = "subscriber"
	HandleRoleScreenShare HandleRole = "screenshare"
)

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}
