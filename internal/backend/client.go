// Package backend is the client for the yard-management REST API. It owns
// transport and serialization; callers work with plan domain types.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/harborops/stevedore/internal/plan"
	"github.com/harborops/stevedore/internal/reconcile"
	"github.com/harborops/stevedore/internal/util"
)

// DefaultTimeout bounds every API call when the caller's context carries no
// deadline of its own.
const DefaultTimeout = 15 * time.Second

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("backend: request failed with status %d", e.StatusCode)
}

// Client talks to the yard-management API.
type Client struct {
	baseURL    string
	operatorID string
	httpClient *http.Client
}

// New creates a client for the given base URL. The operator ID is sent with
// every request for attribution.
func New(baseURL, operatorID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		operatorID: operatorID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListPlans returns all plans visible to the operator.
func (c *Client) ListPlans(ctx context.Context) ([]plan.Plan, error) {
	var plans []plan.Plan
	if err := c.do(ctx, http.MethodGet, "/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// FetchPlan returns the authoritative state of one plan.
func (c *Client) FetchPlan(ctx context.Context, planID string) (*plan.Plan, error) {
	if planID == "" {
		return nil, fmt.Errorf("backend: plan id is required")
	}
	var p plan.Plan
	if err := c.do(ctx, http.MethodGet, "/plans/"+url.PathEscape(planID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListForwarderContainers returns the candidate container pool for a
// forwarder: every order container that can be assigned into its plans.
func (c *Client) ListForwarderContainers(ctx context.Context, forwarderID string) ([]plan.OrderContainer, error) {
	if forwarderID == "" {
		return nil, fmt.Errorf("backend: forwarder id is required")
	}
	var containers []plan.OrderContainer
	path := "/forwarders/" + url.PathEscape(forwarderID) + "/containers"
	if err := c.do(ctx, http.MethodGet, path, nil, &containers); err != nil {
		return nil, err
	}
	return containers, nil
}

// AssignContainers attaches containers (with their cargo units) to a plan in
// one batch call.
func (c *Client) AssignContainers(ctx context.Context, planID string, assignments []reconcile.ContainerAssignment) error {
	body := struct {
		Containers []reconcile.ContainerAssignment `json:"containers"`
	}{Containers: assignments}
	return c.do(ctx, http.MethodPost, "/plans/"+url.PathEscape(planID)+"/containers", body, nil)
}

// UnassignContainer releases one plan-container join-row.
func (c *Client) UnassignContainer(ctx context.Context, planID, planContainerID string) error {
	path := "/plans/" + url.PathEscape(planID) + "/containers/" + url.PathEscape(planContainerID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// UpdatePlanHeader saves the plan's schedule and prerequisite fields and
// returns the refreshed plan. Rejected by the backend once execution has
// started.
func (c *Client) UpdatePlanHeader(ctx context.Context, planID string, header plan.Header) (*plan.Plan, error) {
	var p plan.Plan
	if err := c.do(ctx, http.MethodPut, "/plans/"+url.PathEscape(planID), header, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdatePlanStatus moves a plan to the given lifecycle status and returns
// the refreshed plan. Guard evaluation is the caller's responsibility; the
// backend applies the change as requested.
func (c *Client) UpdatePlanStatus(ctx context.Context, planID string, status plan.Status) (*plan.Plan, error) {
	body := struct {
		Status plan.Status `json:"status"`
	}{Status: status}
	var p plan.Plan
	if err := c.do(ctx, http.MethodPut, "/plans/"+url.PathEscape(planID)+"/status", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// do issues one JSON request and decodes the response into out when out is
// non-nil. Non-2xx responses become *APIError with the body's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("backend: encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("backend: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.operatorID != "" {
		req.Header.Set("X-Operator-ID", c.operatorID)
	}
	if requestID, err := util.GenerateShortID(); err == nil {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("backend: decoding response: %w", err)
		}
	}
	return nil
}

// readErrorMessage extracts the error field from a JSON error body, falling
// back to the raw body text.
func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(bytes.TrimSpace(raw))
}
