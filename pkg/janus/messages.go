package janus

import "encoding/json"

// Actions understood by the media server at the session level.
const (
	actionCreate    = "create"
	actionAttach    = "attach"
	actionDetach    = "detach"
	actionDestroy   = "destroy"
	actionKeepAlive = "keepalive"
	actionMessage   = "message"
)

// request is the envelope every call to the media server is wrapped in. The
// transaction is generated per request and is the correlation token for the
// matching response.
type request struct {
	Janus       string `json:"janus"`
	Transaction string `json:"transaction"`
	SessionID   int64  `json:"session_id,omitempty"`
	HandleID    int64  `json:"handle_id,omitempty"`
	Plugin      string `json:"plugin,omitempty"`
	Body        any    `json:"body,omitempty"`
}

type Envelope struct {
	Janus       string       `json:"janus"`
	Transaction string       `json:"transaction,omitempty"`
	SessionID   int64        `json:"session_id,omitempty"`
	Sender      int64        `json:"sender,omitempty"`
	Data        *IDData      `json:"data,omitempty"`
	PluginData  *PluginData  `json:"plugindata,omitempty"`
	Error       *ServerError `json:"error,omitempty"`
}

type IDData struct {
	ID int64 `json:"id"`
}

// PluginData is the plugin-scoped part of a response. Plugins return loosely
// typed maps, so access goes through the typed getters below.
type PluginData struct {
	Plugin string         `json:"plugin"`
	Data   map[string]any `json:"data"`
}

func (p *PluginData) IntValue(key string) int64 {
	if p == nil {
		return 0
	}
	switch v := p.Data[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func (p *PluginData) StringValue(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p.Data[key].(string)
	return s
}

func (p *PluginData) BoolValue(key string) bool {
	if p == nil {
		return false
	}
	b, _ := p.Data[key].(bool)
	return b
}

// Err extracts a plugin-level error. Plugins report failures inside their data
// payload, not in the top-level error field.
func (p *PluginData) Err() error {
	if p == nil || p.Data == nil {
		return nil
	}
	if _, found := p.Data["error_code"]; !found {
		return nil
	}
	return &PluginError{
		Plugin: p.Plugin,
		Code:   int(p.IntValue("error_code")),
		Reason: p.StringValue("error"),
	}
}

// PluginRequest is one member of the closed set of typed plugin bodies defined
// in audiobridge.go and videoroom.go.
type PluginRequest interface {
	PluginName() string
}
