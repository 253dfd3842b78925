package domain

import "net/http"

// UtteranceSource records how an utterance was produced. Voice and typed
// input go through the identical send path; the source only matters for
// metrics and the stored message type.
type UtteranceSource string

const (
	SourceTyped       UtteranceSource = "typed"
	SourceTranscribed UtteranceSource = "transcribed"
)

// AgentRequest is the webhook's expected body. Field names are the upstream
// workflow's contract.
type AgentRequest struct {
	Mensaje  string `json:"mensaje"`
	UserID   string `json:"user_id"`
	ChatID   string `json:"chat_id"`
	UserName string `json:"user_name"`
}

// AgentReply is the raw transport-level reply from the webhook: either a
// JSON body, or a binary audio body with an optional companion-text header.
// Interpretation belongs to the classifier.
type AgentReply struct {
	Body        []byte
	ContentType string
	Header      http.Header
}

// AudioKind discriminates the three shapes audio arrives in.
type AudioKind string

const (
	AudioInline AudioKind = "inline"
	AudioRemote AudioKind = "remote"
	AudioBinary AudioKind = "binary"
)

// AudioRef is a classified audio payload. Exactly one of Base64, URL or
// Data is populated, per Kind. Inline payloads stay base64-encoded here;
// decoding (and decode failure) belongs to the playback negotiator.
type AudioRef struct {
	Kind     AudioKind `json:"kind"`
	MimeType string    `json:"mime_type,omitempty"`
	Base64   string    `json:"base64,omitempty"`
	URL      string    `json:"url,omitempty"`
	Data     []byte    `json:"-"`
}

// ClassifiedReply is the classifier's deterministic reading of an agent
// reply. Texts preserves emission order (canonical `output` before legacy
// `respuesta`). Nil/empty fields mean "not present", never an error.
type ClassifiedReply struct {
	Texts         []string       `json:"texts,omitempty"`
	ConfigOptions []ConfigOption `json:"config_options,omitempty"`
	Audio         *AudioRef      `json:"audio,omitempty"`
	IsEmpty       bool           `json:"is_empty"`
}
