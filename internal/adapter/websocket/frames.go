package websocket

// Frame types on the wire. Outbound frames are server to browser; inbound
// frames arrive on the relay's read loop.
const (
	frameChatMessage     = "chat-message"
	frameAudioPlayInline = "audio-play-inline"
	frameAudioPlayRemote = "audio-play-remote"
	frameAudioRelease    = "audio-release"
	framePlaybackStatus  = "playback-status"
	frameVoiceStart      = "voice-start"
	frameVoiceStop       = "voice-stop"

	frameVoiceToggle   = "voice-toggle"
	frameVoiceResult   = "voice-result"
	frameVoiceError    = "voice-error"
	frameVoiceEnd      = "voice-end"
	framePlaybackEvent = "playback-event"
)

type chatMessageFrame struct {
	Type    string `json:"type"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

type audioInlineFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	MimeType  string `json:"mime_type"`
	Data      string `json:"data"`
}

type audioRemoteFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type audioReleaseFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

type voiceDirectiveFrame struct {
	Type     string `json:"type"`
	Language string `json:"language,omitempty"`
}

// inboundFrame is the union of everything the browser sends. Unknown types
// are ignored; the connection stays up.
type inboundFrame struct {
	Type       string `json:"type"`
	Transcript string `json:"transcript,omitempty"`
	Final      bool   `json:"final,omitempty"`
	Code       string `json:"code,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Event      string `json:"event,omitempty"`
}
