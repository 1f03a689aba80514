package application

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/bnema/uccx-chat-client/internal/domain"
	"github.com/bnema/uccx-chat-client/internal/ports"
	"github.com/bnema/uccx-chat-client/pkg/metrics"
	"go.uber.org/zap"
)

type messageEnvelope struct {
	XMLName xml.Name `xml:"Message"`
	Body    string   `xml:"body"`
}

// EncodeMessage builds the XML envelope the gateway expects for a customer
// message. The text is sanitized first.
func EncodeMessage(text string) ([]byte, error) {
	return xml.Marshal(messageEnvelope{Body: domain.SanitizeMessage(text)})
}

// SendMessage posts text into the chat as the customer. When the gateway
// reports the session as gone, OnSessionExpired and OnStopPolling fire and
// the session ends. Other failures are logged and returned, the session
// keeps polling.
func (c *ChatClient) SendMessage(ctx context.Context, text string) error {
	if !c.Polling() {
		return domain.ErrSessionNotActive
	}

	body, err := EncodeMessage(text)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	resp, err := c.transport.Do(ctx, ports.Request{
		Method:   http.MethodPut,
		URL:      c.params.URLBase + "/chat",
		Header:   http.Header{"Content-Type": []string{"application/xml"}},
		Body:     body,
		Affinity: c.affinity,
	})
	if err == nil {
		err = expectSuccess(resp)
	}
	if err != nil {
		if ports.IsSessionGone(err) {
			metrics.RecordSend("session_gone")
			c.log.Error("failed to send message as customer, session expired", zap.Error(err))
			c.terminate(true)
			return fmt.Errorf("send message: %w", err)
		}
		metrics.RecordSend("error")
		c.log.Error("failed to send message as customer", zap.Error(err))
		return fmt.Errorf("send message: %w", err)
	}

	metrics.RecordSend("ok")
	c.log.Debug("customer message sent", zap.Int("bytes", len(body)))

	return nil
}
