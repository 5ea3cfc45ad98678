// Package webhook posts entity events to external URLs without blocking the
// caller. Deliveries are not retried; failures are only logged.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"smallbiz-crm/internal/logging"
)

// Event names.
const (
	CustomerCreated = "customer.created"
	SaleCreated     = "sale.created"
	OrderCreated    = "order.created"
)

// Envelope is the JSON body posted to every URL.
type Envelope struct {
	Event  string    `json:"event"`
	SentAt time.Time `json:"sentAt"`
	Data   any       `json:"data"`
}

// Notifier fans events out to the URLs registered for them.
type Notifier struct {
	client  *http.Client
	routes  map[string][]string
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// New builds a Notifier. routes maps an event name to its target URLs.
func New(routes map[string][]string, timeout time.Duration, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = logging.Discard()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		client:  &http.Client{},
		routes:  routes,
		timeout: timeout,
		logger:  logger.With("component", "webhook"),
	}
}

// Notify starts one delivery per URL registered for event and returns at
// once. The deliveries outlive ctx cancellation but keep its values.
func (n *Notifier) Notify(ctx context.Context, event string, data any) {
	if n == nil {
		return
	}
	urls := n.routes[event]
	if len(urls) == 0 {
		return
	}
	body, err := json.Marshal(Envelope{Event: event, SentAt: time.Now().UTC(), Data: data})
	if err != nil {
		n.logger.Error("encode webhook payload", "event", event, "error", err)
		return
	}
	base := context.WithoutCancel(ctx)
	for _, url := range urls {
		n.wg.Add(1)
		go func(url string) {
			defer n.wg.Done()
			if err := n.deliver(base, url, body); err != nil {
				n.logger.Warn("webhook delivery failed", "event", event, "url", url, "error", err)
				return
			}
			n.logger.Debug("webhook delivered", "event", event, "url", url)
		}(url)
	}
}

func (n *Notifier) deliver(ctx context.Context, url string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (n *Notifier) Wait(ctx context.Context) error {
	if n == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
