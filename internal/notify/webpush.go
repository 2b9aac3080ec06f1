package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/push"
)

// WebPushConfig holds VAPID configuration for the Web Push transport.
type WebPushConfig struct {
	// Subscriber is the contact URI sent to push services (mailto: form).
	Subscriber string

	// VAPIDPublicKey and VAPIDPrivateKey are the URL-safe base64 VAPID keys.
	VAPIDPublicKey  string
	VAPIDPrivateKey string

	// TTL is how long the push service may queue the message, in seconds.
	// Default: 60.
	TTL int
}

// Configured reports whether both VAPID keys are present.
func (c WebPushConfig) Configured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

// WebPushTransport encrypts and sends notifications to every registered
// push endpoint. Endpoints the push service reports permanently gone
// (404/410) are deregistered; any other per-endpoint failure is isolated so
// the remaining endpoints still receive the payload.
type WebPushTransport struct {
	subs   push.Repository
	cfg    WebPushConfig
	logger zerolog.Logger
}

// NewWebPush creates the Web Push transport.
func NewWebPush(subs push.Repository, cfg WebPushConfig, logger zerolog.Logger) *WebPushTransport {
	if cfg.TTL <= 0 {
		cfg.TTL = 60
	}
	return &WebPushTransport{subs: subs, cfg: cfg, logger: logger}
}

// Name identifies the transport in delivery reports.
func (t *WebPushTransport) Name() string { return "webpush" }

// Send fans the payload out to all registered endpoints.
func (t *WebPushTransport) Send(ctx context.Context, n Notification) []TargetResult {
	subs, err := t.subs.List(ctx)
	if err != nil {
		return []TargetResult{{Transport: t.Name(), Err: fmt.Errorf("list subscriptions: %w", err)}}
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return []TargetResult{{Transport: t.Name(), Err: fmt.Errorf("encode payload: %w", err)}}
	}

	results := make([]TargetResult, 0, len(subs))
	for _, sub := range subs {
		results = append(results, t.sendOne(ctx, sub, payload))
	}
	return results
}

func (t *WebPushTransport) sendOne(ctx context.Context, sub push.Subscription, payload []byte) TargetResult {
	res := TargetResult{Transport: t.Name(), Target: sub.Endpoint}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      t.cfg.Subscriber,
		VAPIDPublicKey:  t.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: t.cfg.VAPIDPrivateKey,
		TTL:             t.cfg.TTL,
	})
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		// Subscription is permanently dead; deregister it.
		if err := t.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			t.logger.Warn().Err(err).Str("endpoint", sub.Endpoint).Msg("failed to remove dead push endpoint")
		}
		res.Pruned = true
	case resp.StatusCode >= http.StatusBadRequest:
		res.Err = fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return res
}
