package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/medreport-assistant-server/internal/domain"
)

// MediChatClient handles one-shot requests against the rented medical chat
// API. Retries and caching live in CachedLookupClient; this client only knows
// the wire format, the per-attempt timeout and the outbound rate limit.
type MediChatClient struct {
	baseURL        string
	apiKey         string
	apiHost        string
	specialization string
	language       string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// NewMediChatClient creates a new medical chat API client.
func NewMediChatClient(cfg *domain.LookupConfig) *MediChatClient {
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	return &MediChatClient{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		apiHost:        cfg.APIHost,
		specialization: cfg.Specialization,
		language:       cfg.Language,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// chatRequest is the JSON request body of the chat endpoint.
type chatRequest struct {
	Message        string `json:"message"`
	Specialization string `json:"specialization"`
	Language       string `json:"language"`
}

// chatResponse mirrors the structured response envelope of the chat endpoint.
type chatResponse struct {
	Result struct {
		Response struct {
			Message         string   `json:"message"`
			Recommendations []string `json:"recommendations"`
			Warnings        []string `json:"warnings"`
			References      []string `json:"references"`
			FollowUp        []string `json:"followUp"`
		} `json:"response"`
	} `json:"result"`
}

// Query issues a single lookup attempt. Transport failures and non-2xx
// responses are returned as errors for the caller's retry policy.
func (c *MediChatClient) Query(ctx context.Context, query string) (*domain.MedicalInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(chatRequest{
		Message:        query,
		Specialization: c.specialization,
		Language:       c.language,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("lookup returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	r := parsed.Result.Response
	info := &domain.MedicalInfo{
		Query:           query,
		Description:     r.Message,
		Recommendations: r.Recommendations,
		FollowUp:        r.FollowUp,
		Warnings:        r.Warnings,
		References:      r.References,
	}
	if info.Description == "" {
		info.Description = "Not available"
	}
	return info, nil
}
