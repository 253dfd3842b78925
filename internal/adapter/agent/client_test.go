package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

func testConfig(url string) config.AgentConfig {
	return config.AgentConfig{
		WebhookURL: url,
		Timeout:    5 * time.Second,
		Breaker: config.BreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 0.6,
		},
	}
}

func TestSendForwardsRequestAndReturnsJSONReply(t *testing.T) {
	var received domain.AgentRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"output":"Hola"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())

	reply, err := client.Send(context.Background(), domain.AgentRequest{
		Mensaje:  "quiero un pc gaming",
		UserID:   "u1",
		ChatID:   "c1",
		UserName: "Ana",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if received.Mensaje != "quiero un pc gaming" || received.UserID != "u1" {
		t.Errorf("webhook saw wrong payload: %+v", received)
	}
	if string(reply.Body) != `{"output":"Hola"}` {
		t.Errorf("unexpected reply body: %s", reply.Body)
	}
	if reply.ContentType != "application/json" {
		t.Errorf("unexpected content type: %q", reply.ContentType)
	}
}

func TestSendCapturesBinaryAudioAndHeaders(t *testing.T) {
	audio := []byte{0xFF, 0xFB, 0x90, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("X-Response-Text", "Aquí tienes la respuesta")
		w.Write(audio)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())

	reply, err := client.Send(context.Background(), domain.AgentRequest{Mensaje: "hola"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if string(reply.Body) != string(audio) {
		t.Errorf("audio body mangled: %v", reply.Body)
	}
	if reply.ContentType != "audio/mpeg" {
		t.Errorf("unexpected content type: %q", reply.ContentType)
	}
	if got := reply.Header.Get("X-Response-Text"); got != "Aquí tienes la respuesta" {
		t.Errorf("companion text header lost: %q", got)
	}
}

func TestSendRejectsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())

	if _, err := client.Send(context.Background(), domain.AgentRequest{Mensaje: "hola"}); err == nil {
		t.Fatal("expected error for 502 reply")
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())

	for i := 0; i < 5; i++ {
		client.Send(context.Background(), domain.AgentRequest{Mensaje: "hola"})
	}

	server.Close()
	start := time.Now()
	_, err := client.Send(context.Background(), domain.AgentRequest{Mensaje: "hola"})
	if err == nil {
		t.Fatal("expected error while breaker is open")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("open breaker should fail fast, took %v", elapsed)
	}
}

func TestAnnouncePostsSessionPing(t *testing.T) {
	var payload map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), zap.NewNop())

	if err := client.Announce(context.Background(), "Ana", "c1"); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	if payload["user_name"] != "Ana" || payload["chat_id"] != "c1" {
		t.Errorf("unexpected announce payload: %v", payload)
	}
}
