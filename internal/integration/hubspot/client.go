package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.hubapi.com"

// Client is a thin JSON client for the HubSpot contacts API. Responses
// are consumed defensively; HubSpot's shapes are not validated beyond
// the fields we read.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New builds a HubSpot client. An empty token returns nil, which
// callers treat as "sync disabled".
func New(token string) *Client {
	if token == "" {
		return nil
	}
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithBaseURL is used by tests to point at a stub server
func NewWithBaseURL(token, baseURL string) *Client {
	c := New(token)
	if c != nil {
		c.baseURL = baseURL
	}
	return c
}

// Contact is the subset of a HubSpot contact we care about
type Contact struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
}

type searchResponse struct {
	Total   int       `json:"total"`
	Results []Contact `json:"results"`
}

// FindContactByEmail searches for a contact by email, returning nil
// when none exists.
func (c *Client) FindContactByEmail(ctx context.Context, email string) (*Contact, error) {
	body := map[string]interface{}{
		"filterGroups": []map[string]interface{}{
			{
				"filters": []map[string]interface{}{
					{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
		"limit": 1,
	}

	var result searchResponse
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", body, &result); err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, nil
	}
	return &result.Results[0], nil
}

// UpsertContact creates or updates a HubSpot contact keyed by email
// and returns its HubSpot id.
func (c *Client) UpsertContact(ctx context.Context, email string, properties map[string]string) (string, error) {
	existing, err := c.FindContactByEmail(ctx, email)
	if err != nil {
		return "", err
	}

	props := map[string]string{"email": email}
	for k, v := range properties {
		if v != "" {
			props[k] = v
		}
	}
	body := map[string]interface{}{"properties": props}

	var contact Contact
	if existing != nil {
		path := fmt.Sprintf("/crm/v3/objects/contacts/%s", existing.ID)
		if err := c.do(ctx, http.MethodPatch, path, body, &contact); err != nil {
			return "", err
		}
		return contact.ID, nil
	}

	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", body, &contact); err != nil {
		return "", err
	}
	return contact.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal hubspot request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build hubspot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hubspot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("hubspot returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode hubspot response: %w", err)
		}
	}
	return nil
}
