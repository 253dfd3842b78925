// Package agent holds the client for the upstream workflow webhook. The
// webhook is opaque: it answers with JSON in drifting shapes or with a raw
// audio body. This client only moves bytes; reading them is the
// classifier's job.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mauriciomeseguer/configurador/internal/domain"
	"github.com/mauriciomeseguer/configurador/internal/observability/telemetry"
	"github.com/mauriciomeseguer/configurador/internal/ports"
	"github.com/mauriciomeseguer/configurador/pkg/config"
)

// maxReplyBytes bounds reply bodies; inline base64 audio runs to a few MB.
const maxReplyBytes = 32 << 20

type Client struct {
	httpClient *http.Client
	webhookURL string
	breaker    *gobreaker.CircuitBreaker
	log        *zap.Logger
}

func NewClient(cfg config.AgentConfig, log *zap.Logger) ports.AgentClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	threshold := cfg.Breaker.FailureThreshold
	if threshold <= 0 {
		threshold = 0.6
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "agent-webhook",
		MaxRequests: cfg.Breaker.MaxRequests,
		Interval:    cfg.Breaker.Interval,
		Timeout:     cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Agent webhook circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		webhookURL: cfg.WebhookURL,
		breaker:    breaker,
		log:        log,
	}
}

func (c *Client) Send(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error) {
	start := time.Now()
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, req)
	})
	telemetry.AgentLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		telemetry.AgentRequestsTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	telemetry.AgentRequestsTotal.WithLabelValues("success").Inc()
	return result.(*domain.AgentReply), nil
}

// Announce notifies the workflow that a session started, mirroring the
// front-end's post-login ping. The reply is deliberately ignored.
func (c *Client) Announce(ctx context.Context, userName, chatID string) error {
	body, err := json.Marshal(map[string]string{
		"user_name": userName,
		"chat_id":   chatID,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("announce session: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxReplyBytes))
	return nil
}

func (c *Client) post(ctx context.Context, req domain.AgentRequest) (*domain.AgentReply, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal agent request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send to agent webhook: %w", err)
	}
	defer resp.Body.Close()

	replyBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, fmt.Errorf("read agent reply: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("agent webhook returned status %d", resp.StatusCode)
	}

	return &domain.AgentReply{
		Body:        replyBody,
		ContentType: resp.Header.Get("Content-Type"),
		Header:      resp.Header,
	}, nil
}
