// Package mailer upserts subscribers into the mailing-list provider so the
// projected Zakat due dates can drive email reminders.
package mailer

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// The provider stores each due date in a named merge field. The audience is
// provisioned with fields MMERGE5 through MMERGE14, one per projected year.
const (
	mergeFieldBase  = 5
	mergeFieldCount = 10

	// mergeDateLayout is the date format the provider's date fields expect.
	mergeDateLayout = "01/02/2006" // MM/DD/YYYY

	signupTag = "Pending Payment"
)

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailing list API returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Mailchimp marketing API.
type Client struct {
	httpClient   *http.Client
	apiKey       string
	serverPrefix string
	listID       string

	// BaseURL overrides the provider URL. Empty uses the real API host
	// derived from the server prefix. Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a mailing-list client.
// An empty apiKey or listID produces a client whose Configured() is false;
// UpsertContact then fails fast without a network call.
func NewClient(apiKey, serverPrefix, listID string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		apiKey:       apiKey,
		serverPrefix: serverPrefix,
		listID:       listID,
	}
}

// Configured reports whether the client has provider credentials.
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.listID != ""
}

// SubscriberHash returns the provider's member ID for an email address:
// the md5 hex digest of the lower-cased address. This is the provider's
// documented addressing scheme, not a security measure.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(email)))
	return fmt.Sprintf("%x", sum)
}

// memberRequest is the provider's member upsert payload.
type memberRequest struct {
	EmailAddress string            `json:"email_address"`
	StatusIfNew  string            `json:"status_if_new"`
	Status       string            `json:"status"`
	MergeFields  map[string]string `json:"merge_fields"`
	Tags         []string          `json:"tags"`
}

// UpsertContact adds or updates the subscriber with the projected due dates
// as merge fields. Fields beyond the supplied date count are sent blank so a
// re-signup with fewer dates clears stale reminders.
//
// The operation is a single PUT with no retries; a non-2xx response is
// returned as *APIError and never invalidates the caller's computed dates.
func (c *Client) UpsertContact(ctx context.Context, email string, dates []time.Time) error {
	if !c.Configured() {
		return fmt.Errorf("mailing list client is not configured")
	}

	merge := make(map[string]string, mergeFieldCount)
	for i := 0; i < mergeFieldCount; i++ {
		value := ""
		if i < len(dates) {
			value = dates[i].Format(mergeDateLayout)
		}
		merge[fmt.Sprintf("MMERGE%d", mergeFieldBase+i)] = value
	}

	payload := memberRequest{
		EmailAddress: email,
		StatusIfNew:  "subscribed",
		Status:       "subscribed",
		MergeFields:  merge,
		Tags:         []string{signupTag},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal member payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/lists/%s/members/%s", c.baseURL(), c.listID, SubscriberHash(email))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create member request: %w", err)
	}
	req.Header.Set("Authorization", "apikey "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailing list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.api.mailchimp.com/3.0", c.serverPrefix)
}
