// Package classifier turns the webhook's drifting reply shapes into a
// deterministic ClassifiedReply. The upstream workflow has shipped the same
// information under several field names and wrappings over time; this is the
// one place that knows all of them.
package classifier

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/mauriciomeseguer/configurador/internal/domain"
)

// audioFields is the fixed scan order. First field holding a recognizable
// value wins; later matches are never merged in.
var audioFields = []string{
	"data",
	"audio",
	"audioUrl",
	"audio_url",
	"audioData",
	"audio_data",
	"sound",
	"voice",
	"file",
	"attachment",
	"media",
}

// companionTextHeaders carry reply text when the transport is a raw audio
// body instead of JSON.
var companionTextHeaders = []string{
	"X-Response-Text",
	"X-Output-Text",
	"X-Agent-Message",
}

const inlineAudioPrefix = "data:audio/"

// Classify reads an arbitrary JSON reply. It never fails: unknown or
// malformed content classifies as an empty reply.
func Classify(raw []byte) domain.ClassifiedReply {
	obj := unwrap(raw)
	if obj == nil {
		return domain.ClassifiedReply{IsEmpty: true}
	}

	reply := domain.ClassifiedReply{
		ConfigOptions: extractConfig(obj),
		Texts:         extractTexts(obj),
		Audio:         extractAudio(obj),
	}
	reply.IsEmpty = len(reply.Texts) == 0 && len(reply.ConfigOptions) == 0 && reply.Audio == nil
	return reply
}

// ClassifyTransport handles the transport-level split: an audio content-type
// means the body is the audio itself and any text rides in headers;
// everything else is treated as JSON.
func ClassifyTransport(reply *domain.AgentReply) domain.ClassifiedReply {
	if reply == nil {
		return domain.ClassifiedReply{IsEmpty: true}
	}

	if strings.HasPrefix(strings.ToLower(reply.ContentType), "audio/") {
		out := domain.ClassifiedReply{
			Audio: &domain.AudioRef{
				Kind:     domain.AudioBinary,
				MimeType: mimeFromContentType(reply.ContentType),
				Data:     reply.Body,
			},
		}
		for _, h := range companionTextHeaders {
			if v := strings.TrimSpace(reply.Header.Get(h)); v != "" {
				out.Texts = []string{v}
				break
			}
		}
		return out
	}

	return Classify(reply.Body)
}

// unwrap applies the array-of-one compatibility rule and returns the working
// object, or nil when there is nothing object-shaped to read.
func unwrap(raw []byte) map[string]json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil || len(arr) == 0 {
			return nil
		}
		raw = bytes.TrimSpace(arr[0])
		if len(raw) == 0 {
			return nil
		}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

type rawOption struct {
	Nombre      string         `json:"nombre"`
	Total       string         `json:"total"`
	Componentes []rawComponent `json:"componentes"`
	Components  []rawComponent `json:"components"`
}

type rawComponent struct {
	Tipo        string `json:"tipo"`
	Nombre      string `json:"nombre"`
	Modelo      string `json:"modelo"`
	Descripcion string `json:"descripcion"`
	Precio      string `json:"precio"`
	URL         string `json:"url"`
}

func extractConfig(obj map[string]json.RawMessage) []domain.ConfigOption {
	// An explicit false gate overrides a valid config_final. Absent or
	// malformed gates do not suppress anything.
	if gate, ok := obj["isConfigFinal"]; ok {
		var b bool
		if err := json.Unmarshal(gate, &b); err == nil && !b {
			return nil
		}
	}

	raw, ok := obj["config_final"]
	if !ok {
		raw, ok = obj["configuracion_final"]
	}
	if !ok {
		return nil
	}

	var opts []rawOption
	if err := json.Unmarshal(raw, &opts); err != nil || len(opts) == 0 {
		return nil
	}

	var out []domain.ConfigOption
	for _, opt := range opts {
		comps := opt.Componentes
		if len(comps) == 0 {
			comps = opt.Components
		}
		if len(comps) == 0 {
			continue // not renderable
		}
		co := domain.ConfigOption{Name: opt.Nombre, Total: opt.Total}
		for _, c := range comps {
			co.Components = append(co.Components, domain.Component{
				Type:        c.Tipo,
				Name:        c.Nombre,
				Model:       c.Modelo,
				Description: c.Descripcion,
				Price:       c.Precio,
				URL:         c.URL,
			})
		}
		out = append(out, co)
	}
	return out
}

func extractTexts(obj map[string]json.RawMessage) []string {
	var texts []string
	// output is canonical, respuesta the legacy fallback; both may be
	// present and both are kept, in that order.
	for _, field := range []string{"output", "respuesta"} {
		if raw, ok := obj[field]; ok {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				texts = append(texts, s)
			}
		}
	}
	return texts
}

func extractAudio(obj map[string]json.RawMessage) *domain.AudioRef {
	for _, field := range audioFields {
		raw, ok := obj[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		if ref := classifyAudioValue(s); ref != nil {
			return ref
		}
	}
	return nil
}

func classifyAudioValue(s string) *domain.AudioRef {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	if strings.HasPrefix(s, inlineAudioPrefix) {
		mime, payload, ok := splitDataURI(s)
		if !ok {
			return nil
		}
		return &domain.AudioRef{Kind: domain.AudioInline, MimeType: mime, Base64: payload}
	}

	if u, err := url.Parse(s); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return &domain.AudioRef{Kind: domain.AudioRemote, URL: s}
	}
	return nil
}

// splitDataURI splits "data:audio/mpeg;base64,AAAA" into mime type and
// base64 payload. The payload is not decoded here; decode failures belong
// to the playback negotiator.
func splitDataURI(s string) (mime, payload string, ok bool) {
	meta, payload, found := strings.Cut(s, ",")
	if !found {
		return "", "", false
	}
	meta = strings.TrimPrefix(meta, "data:")
	meta = strings.TrimSuffix(meta, ";base64")
	if meta == "" {
		return "", "", false
	}
	return meta, payload, true
}

func mimeFromContentType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}
