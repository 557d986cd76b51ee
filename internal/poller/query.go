package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kafkapulse/kafkapulse/internal/config"
	"github.com/kafkapulse/kafkapulse/internal/normalize"
)

// queryEnvelope is the subset of the Prometheus query-API response the agent
// needs. Result is kept raw — decoding the entries is the engine's job.
type queryEnvelope struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string          `json:"resultType"`
		Result     json.RawMessage `json:"result"`
	} `json:"data"`
}

// queryPoller evaluates a PromQL expression against a Prometheus server's
// /api/v1/query endpoint each cycle.
type queryPoller struct {
	src    config.Source
	client *http.Client
}

// Poll issues the query and returns the raw data.result array bytes.
func (p *queryPoller) Poll(ctx context.Context) ([]byte, normalize.Mode, error) {
	u, err := url.Parse(strings.TrimRight(p.src.Endpoint, "/") + "/api/v1/query")
	if err != nil {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: parse endpoint: %w", p.src.ID, err)
	}
	q := u.Query()
	q.Set("query", p.src.Query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: build request: %w", p.src.ID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: %w", p.src.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: unexpected status %d", p.src.ID, resp.StatusCode)
	}

	var env queryEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: decode response: %w", p.src.ID, err)
	}
	if env.Status != "success" {
		return nil, normalize.ModeQuery, fmt.Errorf("poller %q: query status %q", p.src.ID, env.Status)
	}

	return env.Data.Result, normalize.ModeQuery, nil
}
