package janus

import "encoding/json"

const PluginVideoRoom = "janus.plugin.videoroom"

type VideoRoomCreate struct {
	Room        int64  `json:"room"`
	Description string `json:"description,omitempty"`
	Publishers  int    `json:"publishers,omitempty"`
	Permanent   bool   `json:"permanent,omitempty"`
	Record      bool   `json:"record,omitempty"`
}

func (VideoRoomCreate) PluginName() string { return PluginVideoRoom }

func (r VideoRoomCreate) MarshalJSON() ([]byte, error) {
	type alias VideoRoomCreate
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"create", alias(r)})
}

type VideoRoomEdit struct {
	Room           int64  `json:"room"`
	NewDescription string `json:"new_description,omitempty"`
}

func (VideoRoomEdit) PluginName() string { return PluginVideoRoom }

func (r VideoRoomEdit) MarshalJSON() ([]byte, error) {
	type alias VideoRoomEdit
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"edit", alias(r)})
}

type VideoRoomDestroy struct {
	Room      int64 `json:"room"`
	Permanent bool  `json:"permanent,omitempty"`
}

func (VideoRoomDestroy) PluginName() string { return PluginVideoRoom }

func (r VideoRoomDestroy) MarshalJSON() ([]byte, error) {
	type alias VideoRoomDestroy
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"destroy", alias(r)})
}

type VideoRoomExists struct {
	Room int64 `json:"room"`
}

func (VideoRoomExists) PluginName() string { return PluginVideoRoom }

func (r VideoRoomExists) MarshalJSON() ([]byte, error) {
	type alias VideoRoomExists
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"exists", alias(r)})
}

// VideoRoomJoin enters a room either as a publisher or as a subscriber of the
// given feed.
type VideoRoomJoin struct {
	Room    int64  `json:"room"`
	PType   string `json:"ptype"`
	ID      int64  `json:"id,omitempty"`
	Display string `json:"display,omitempty"`
	Feed    int64  `json:"feed,omitempty"`
}

func (VideoRoomJoin) PluginName() string { return PluginVideoRoom }

func (r VideoRoomJoin) MarshalJSON() ([]byte, error) {
	type alias VideoRoomJoin
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"join", alias(r)})
}

type VideoRoomPublish struct {
	Audio bool `json:"audio"`
	Video bool `json:"video"`
}

func (VideoRoomPublish) PluginName() string { return PluginVideoRoom }

func (r VideoRoomPublish) MarshalJSON() ([]byte, error) {
	type alias VideoRoomPublish
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"publish", alias(r)})
}

// VideoRoomConfigure updates the caller's own published streams.
type VideoRoomConfigure struct {
	Audio bool `json:"audio"`
	Video bool `json:"video"`
}

func (VideoRoomConfigure) PluginName() string { return PluginVideoRoom }

func (r VideoRoomConfigure) MarshalJSON() ([]byte, error) {
	type alias VideoRoomConfigure
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"configure", alias(r)})
}

type VideoRoomUnpublish struct{}

func (VideoRoomUnpublish) PluginName() string { return PluginVideoRoom }

func (r VideoRoomUnpublish) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Request string `json:"request"`
	}{"unpublish"})
}

type VideoRoomKick struct {
	Room int64 `json:"room"`
	ID   int64 `json:"id"`
}

func (VideoRoomKick) PluginName() string { return PluginVideoRoom }

func (r VideoRoomKick) MarshalJSON() ([]byte, error) {
	type alias VideoRoomKick
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"kick", alias(r)})
}

type VideoRoomLeave struct{}

func (VideoRoomLeave) PluginName() string { return PluginVideoRoom }

func (r VideoRoomLeave) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Request string `json:"request"`
	}{"leave"})
}

type VideoRoomEnableRecording struct {
	Room   int64 `json:"room"`
	Record bool  `json:"record"`
}

func (VideoRoomEnableRecording) PluginName() string { return PluginVideoRoom }

func (r VideoRoomEnableRecording) MarshalJSON() ([]byte, error) {
	type alias VideoRoomEnableRecording
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"enable_recording", alias(r)})
}
