package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/common/expfmt"

	"github.com/kafkapulse/kafkapulse/internal/config"
	"github.com/kafkapulse/kafkapulse/internal/normalize"
)

// textPoller fetches text exposition payloads (JMX exporter or any
// Prometheus-compatible /metrics endpoint).
type textPoller struct {
	src    config.Source
	client *http.Client
	mode   normalize.Mode
}

// Poll GETs the exposition endpoint and returns the body untouched.
// All line interpretation belongs to the normalize engine.
func (p *textPoller) Poll(ctx context.Context) ([]byte, normalize.Mode, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.src.Endpoint, nil)
	if err != nil {
		return nil, p.mode, fmt.Errorf("poller %q: build request: %w", p.src.ID, err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, p.mode, fmt.Errorf("poller %q: %w", p.src.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, p.mode, fmt.Errorf("poller %q: unexpected status %d", p.src.ID, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, p.mode, fmt.Errorf("poller %q: read body: %w", p.src.ID, err)
	}
	return body, p.mode, nil
}
