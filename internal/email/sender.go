// Package email delivers transactional mail through the external mail
// gateway. Composition happens at the call site; this package only
// transports.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// message is the mail gateway's request payload.
type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// HTTPSender posts messages to the mail gateway's send endpoint as JSON.
type HTTPSender struct {
	endpoint string
	client   *http.Client
}

var _ Sender = (*HTTPSender)(nil)

// NewHTTPSender creates an HTTPSender for the given endpoint. When client
// is nil a default with a 10 second timeout is used.
func NewHTTPSender(endpoint string, client *http.Client) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSender{endpoint: endpoint, client: client}
}

// Send posts the message and treats any non-2xx status as failure.
func (s *HTTPSender) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(message{To: to, Subject: subject, Body: body})
	if err != nil {
		return errors.Wrap(err, "marshal message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "send mail")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("mail gateway returned status %d", resp.StatusCode)
	}
	return nil
}
