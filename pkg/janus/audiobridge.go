package janus

import "encoding/json"

const PluginAudioBridge = "janus.plugin.audiobridge"

type AudioBridgeCreate struct {
	Room        int64  `json:"room"`
	Description string `json:"description,omitempty"`
	Permanent   bool   `json:"permanent,omitempty"`
	Record      bool   `json:"record,omitempty"`
}

func (AudioBridgeCreate) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeCreate) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeCreate
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"create", alias(r)})
}

type AudioBridgeEdit struct {
	Room           int64  `json:"room"`
	NewDescription string `json:"new_description,omitempty"`
}

func (AudioBridgeEdit) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeEdit) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeEdit
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"edit", alias(r)})
}

type AudioBridgeDestroy struct {
	Room      int64 `json:"room"`
	Permanent bool  `json:"permanent,omitempty"`
}

func (AudioBridgeDestroy) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeDestroy) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeDestroy
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"destroy", alias(r)})
}

type AudioBridgeExists struct {
	Room int64 `json:"room"`
}

func (AudioBridgeExists) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeExists) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeExists
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"exists", alias(r)})
}

type AudioBridgeJoin struct {
	Room    int64  `json:"room"`
	ID      int64  `json:"id,omitempty"`
	Display string `json:"display,omitempty"`
	Muted   bool   `json:"muted"`
}

func (AudioBridgeJoin) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeJoin) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeJoin
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"join", alias(r)})
}

// AudioBridgeConfigure toggles the caller's own microphone.
type AudioBridgeConfigure struct {
	Muted bool `json:"muted"`
}

func (AudioBridgeConfigure) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeConfigure) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeConfigure
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"configure", alias(r)})
}

// AudioBridgeMute force-mutes another participant; owner-only at the caller.
type AudioBridgeMute struct {
	Room int64 `json:"room"`
	ID   int64 `json:"id"`
}

func (AudioBridgeMute) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeMute) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeMute
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"mute", alias(r)})
}

type AudioBridgeKick struct {
	Room int64 `json:"room"`
	ID   int64 `json:"id"`
}

func (AudioBridgeKick) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeKick) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeKick
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"kick", alias(r)})
}

type AudioBridgeLeave struct{}

func (AudioBridgeLeave) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeLeave) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Request string `json:"request"`
	}{"leave"})
}

type AudioBridgeEnableRecording struct {
	Room   int64 `json:"room"`
	Record bool  `json:"record"`
}

func (AudioBridgeEnableRecording) PluginName() string { return PluginAudioBridge }

func (r AudioBridgeEnableRecording) MarshalJSON() ([]byte, error) {
	type alias AudioBridgeEnableRecording
	return json.Marshal(struct {
		Request string `json:"request"`
		alias
	}{"enable_recording", alias(r)})
}
