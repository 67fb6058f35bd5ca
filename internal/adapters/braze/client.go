// Package braze is the adapter for the Braze bulk track endpoint.
//
// One Send call posts a single batch to POST /users/track with the bulk
// header set. Failures come back coded through platform/errors so the
// dispatch layer can tell transient from fatal without inspecting HTTP
package braze

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"net/http"
	"strings"
	"time"

	perr "brazebulk/internal/platform/errors"
	"brazebulk/internal/platform/logger"
	"brazebulk/internal/services/importer/domain"
)

const trackPath = "/users/track"

// responseBodyMax bounds how much of an error body is read for messages
const responseBodyMax = 1 << 20

// Client posts batches of track objects to the Braze REST API
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

// New constructs a Client. baseURL is the instance REST endpoint
// (e.g. https://rest.iad-01.braze.com); timeout 0 means no client timeout
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// trackRequest is the bulk track body; either list is omitted when empty
type trackRequest struct {
	Events    []domain.TrackObject `json:"events,omitempty"`
	Purchases []domain.TrackObject `json:"purchases,omitempty"`
}

// trackResponse is the subset of the track response we act on
type trackResponse struct {
	Message            string `json:"message"`
	Errors             []any  `json:"errors"`
	EventsProcessed    int    `json:"events_processed"`
	PurchasesProcessed int    `json:"purchases_processed"`
}

// Send partitions the batch into events and purchases and performs one bulk
// track call. It returns the number of objects the API reports as processed.
//
// An empty batch is a no-op: no request is made. A 2xx response carrying an
// errors field is partial per-record rejection: logged, still counted as the
// processed total the API returned. 429 and 5xx come back retryable; 400 and
// other 4xx come back fatal
func (c *Client) Send(ctx context.Context, batch domain.Batch) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	var req trackRequest
	for _, o := range batch {
		if o.IsPurchase() {
			req.Purchases = append(req.Purchases, o)
		} else {
			req.Events = append(req.Events, o)
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeJSON, "marshal track request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+trackPath, bytes.NewReader(body))
	if err != nil {
		return 0, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "build track request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-Braze-Bulk", "true")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, perr.FromTransport(err, "track call failed")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyMax))
	if err != nil {
		return 0, perr.FromTransport(err, "read track response")
	}

	var tr trackResponse
	// tolerate non-JSON bodies on error statuses; raw text still serves the message
	_ = json.Unmarshal(raw, &tr)

	log := logger.C(ctx)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		if len(tr.Errors) > 0 {
			log.Error().
				Int("status", resp.StatusCode).
				Any("errors", tr.Errors).
				Msg("braze: some objects were rejected by the API")
		}
		return tr.EventsProcessed + tr.PurchasesProcessed, nil
	}

	msg := tr.Message
	if msg == "" {
		msg = string(raw)
	}

	if resp.StatusCode == http.StatusBadRequest {
		log.Error().Int("batch_size", len(batch)).Str("body", msg).Msg("braze: bad request for batch")
	}

	return 0, perr.FromStatus(resp.StatusCode, msg)
}
