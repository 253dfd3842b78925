package websocket

import (
	"encoding/base64"

	"github.com/mauriciomeseguer/configurador/internal/ports"
)

// Player implements ports.AudioPlayer by pushing media directives to the
// chat's room. The browser's audio stack does the actual decoding and
// playback and answers with playback-event frames.
type Player struct {
	hub *Hub
}

func NewPlayer(hub *Hub) ports.AudioPlayer {
	return &Player{hub: hub}
}

func (p *Player) PlayInline(chatID, sessionID, mimeType string, data []byte) error {
	p.hub.Push(chatID, audioInlineFrame{
		Type:      frameAudioPlayInline,
		SessionID: sessionID,
		MimeType:  mimeType,
		Data:      base64.StdEncoding.EncodeToString(data),
	})
	return nil
}

func (p *Player) PlayRemote(chatID, sessionID, url string) error {
	p.hub.Push(chatID, audioRemoteFrame{
		Type:      frameAudioPlayRemote,
		SessionID: sessionID,
		URL:       url,
	})
	return nil
}

func (p *Player) Release(chatID, sessionID string) {
	p.hub.Push(chatID, audioReleaseFrame{
		Type:      frameAudioRelease,
		SessionID: sessionID,
	})
}
