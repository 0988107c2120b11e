// file: scoring_client.go
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fertadvisor/fertilizer"

	"github.com/goccy/go-json"
)

// ScoringClient calls the remote scoring service at POST {baseURL}/recommend.
type ScoringClient struct {
	baseURL string
	http    *http.Client
}

func NewScoringClient(baseURL string, timeout time.Duration) *ScoringClient {
	return &ScoringClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Recommend implements fertilizer.Remote.
func (c *ScoringClient) Recommend(ctx context.Context, in fertilizer.Request) (fertilizer.Recommendation, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return fertilizer.Recommendation{}, fmt.Errorf("marshal scoring req: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/recommend", bytes.NewReader(body))
	if err != nil {
		return fertilizer.Recommendation{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fertilizer.Recommendation{}, fmt.Errorf("scoring call failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fertilizer.Recommendation{}, fmt.Errorf("read scoring resp: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fertilizer.Recommendation{}, fmt.Errorf("scoring non-2xx: %s, body: %s", resp.Status, string(data))
	}

	var out fertilizer.Recommendation
	if err := json.Unmarshal(data, &out); err != nil {
		return fertilizer.Recommendation{}, fmt.Errorf("decode scoring resp: %w", err)
	}
	if err := checkRemoteRecommendation(out); err != nil {
		return fertilizer.Recommendation{}, err
	}
	if out.Organic == nil {
		out.Organic = []string{}
	}
	return out, nil
}

// checkRemoteRecommendation rejects bodies that decode but are not a
// recommendation, e.g. an empty object or negative dosages.
func checkRemoteRecommendation(r fertilizer.Recommendation) error {
	s := r.Synthetic
	if s.Urea < 0 || s.DAP < 0 || s.MOP < 0 || s.Cost < 0 {
		return fmt.Errorf("malformed scoring resp: negative dosage")
	}
	if r.Schedule == "" || r.PHAdjustment == "" {
		return fmt.Errorf("malformed scoring resp: missing schedule or phAdjustment")
	}
	return nil
}
