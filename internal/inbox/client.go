package inbox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	notifier "github.com/IRT-SystemX/bcm-notifier/notifier"
)

// Client talks to the notify server of an inbox project. It is the
// notification sink of the notifier and registers wallet identities.
type Client struct {
	notifyURL string
	keysURL   string
	projectID string
	domain    string
	secret    string
	http      *http.Client
}

type Option func(*Client)

func WithSecret(secret string) Option {
	return func(c *Client) {
		c.secret = secret
	}
}

func WithKeysURL(keysURL string) Option {
	return func(c *Client) {
		c.keysURL = strings.TrimSuffix(keysURL, "/")
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

func NewClient(notifyURL string, projectID string, domain string, opts ...Option) *Client {
	client := &Client{
		notifyURL: strings.TrimSuffix(notifyURL, "/"),
		projectID: projectID,
		domain:    domain,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type SendRequest struct {
	Notification notifier.Payload     `json:"notification"`
	Accounts     []notifier.Recipient `json:"accounts"`
}

type Failure struct {
	Account string `json:"account"`
	Reason  string `json:"reason"`
}

type SendResult struct {
	Sent     []string  `json:"sent"`
	Failed   []Failure `json:"failed"`
	NotFound []string  `json:"not_found"`
}

// SendNotification posts one notification for a set of accounts. Accounts
// the server reports as failed or unknown turn into a *DeliveryError; the
// result is returned either way when the server answered.
func (c *Client) SendNotification(ctx context.Context, req SendRequest) (*SendResult, error) {
	if len(req.Accounts) == 0 {
		return nil, notifier.ErrNoRecipient
	}
	var result SendResult
	status, err := c.post(ctx, c.notifyURL+"/"+c.projectID+"/notify", req, &result)
	if err != nil {
		return nil, &notifier.DeliveryError{Status: status, Err: err}
	}
	if len(result.Failed) > 0 || len(result.NotFound) > 0 {
		reasons := make([]string, 0, len(result.Failed)+len(result.NotFound))
		for _, failure := range result.Failed {
			reasons = append(reasons, failure.Account+": "+failure.Reason)
		}
		for _, account := range result.NotFound {
			reasons = append(reasons, account+": not found")
		}
		return &result, &notifier.DeliveryError{Status: status, Err: errors.New(strings.Join(reasons, "; "))}
	}
	return &result, nil
}

func (c *Client) Send(ctx context.Context, recipients []notifier.Recipient, payload notifier.Payload) error {
	_, err := c.SendNotification(ctx, SendRequest{Notification: payload, Accounts: recipients})
	return err
}

type identityRequest struct {
	Account string `json:"account"`
	Domain  string `json:"domain"`
}

type identityResponse struct {
	IdentityKey string `json:"identityKey"`
}

// RegisterIdentity registers the account's identity key for the app domain
// on the keys server and returns it.
func (c *Client) RegisterIdentity(ctx context.Context, account notifier.Recipient) (string, error) {
	if c.keysURL == "" {
		return "", errors.New("keys server not configured")
	}
	var res identityResponse
	if _, err := c.post(ctx, c.keysURL+"/identity", identityRequest{Account: account.String(), Domain: c.domain}, &res); err != nil {
		return "", err
	}
	if res.IdentityKey == "" {
		return "", errors.New("keys server returned no identity key")
	}
	return res.IdentityKey, nil
}

func (c *Client) post(ctx context.Context, url string, in interface{}, out interface{}) (int, error) {
	buf, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(buf))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("Authorization", "Bearer "+c.secret)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return res.StatusCode, fmt.Errorf("%s: %s", http.StatusText(res.StatusCode), strings.TrimSpace(string(body)))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return res.StatusCode, nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return res.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return res.StatusCode, nil
}
