package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/reshetovitsme/trend-digest-bot/internal/shared/card"
	"github.com/reshetovitsme/trend-digest-bot/internal/transport"
	"github.com/samber/lo"
	"github.com/samber/oops"
)

const (
	DefaultBaseURL = "https://open.feishu.cn"

	// refresh the tenant token this long before Feishu expires it
	tokenRefreshMargin = 5 * time.Minute
)

// Client is a minimal Feishu open platform client. Subscriber ids are user
// open_ids.
type Client struct {
	appID      string
	appSecret  string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

var _ transport.Transport = (*Client)(nil)

// NewClient creates a new Feishu client. An empty baseURL uses the public
// endpoint.
func NewClient(appID, appSecret, baseURL string, timeout time.Duration) *Client {
	return &Client{
		appID:      appID,
		appSecret:  appSecret,
		baseURL:    strings.TrimRight(lo.Ternary(baseURL != "", baseURL, DefaultBaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// apiResponse is the envelope of every Feishu API reply
type apiResponse struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) SendText(ctx context.Context, subscriberID, text string) error {
	content, _ := json.Marshal(map[string]string{"text": text})
	return c.sendMessage(ctx, subscriberID, "text", string(content))
}

func (c *Client) SendCard(ctx context.Context, subscriberID string, cd *card.Card) error {
	content, err := json.Marshal(RenderCard(cd))
	if err != nil {
		return oops.With("subscriber_id", subscriberID, "context", "failed to marshal card").Wrap(err)
	}
	return c.sendMessage(ctx, subscriberID, "interactive", string(content))
}

// GetProfile reads the user's name and timezone from the contact API
func (c *Client) GetProfile(ctx context.Context, subscriberID string) (transport.Profile, error) {
	var data struct {
		User struct {
			Name     string `json:"name"`
			TimeZone string `json:"time_zone"`
		} `json:"user"`
	}
	endpoint := "/open-apis/contact/v3/users/" + url.PathEscape(subscriberID) + "?user_id_type=open_id"
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &data); err != nil {
		return transport.Profile{}, oops.With("subscriber_id", subscriberID, "context", "failed to get user").Wrap(err)
	}
	return transport.Profile{Name: data.User.Name, Timezone: data.User.TimeZone}, nil
}

func (c *Client) sendMessage(ctx context.Context, subscriberID, msgType, content string) error {
	body := map[string]string{
		"receive_id": subscriberID,
		"msg_type":   msgType,
		"content":    content,
	}
	if err := c.do(ctx, http.MethodPost, "/open-apis/im/v1/messages?receive_id_type=open_id", body, nil); err != nil {
		return oops.With("subscriber_id", subscriberID, "msg_type", msgType, "context", "failed to send message").Wrap(err)
	}
	return nil
}

// tenantToken returns a cached tenant access token, fetching a new one when
// it is close to expiry
func (c *Client) tenantToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{"app_id": c.appID, "app_secret": c.appSecret})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/open-apis/auth/v3/tenant_access_token/internal", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", oops.With("context", "tenant token request failed").Wrap(err)
	}
	defer resp.Body.Close()

	var out struct {
		Code              int    `json:"code"`
		Msg               string `json:"msg"`
		TenantAccessToken string `json:"tenant_access_token"`
		Expire            int    `json:"expire"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", oops.With("status", resp.StatusCode, "context", "invalid tenant token response").Wrap(err)
	}
	if out.Code != 0 || out.TenantAccessToken == "" {
		return "", oops.With("code", out.Code, "status", resp.StatusCode).Errorf("tenant token rejected: %s", out.Msg)
	}

	c.token = out.TenantAccessToken
	c.tokenExpiry = c.now().Add(time.Duration(out.Expire)*time.Second - tokenRefreshMargin)
	return c.token, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	token, err := c.tenantToken(ctx)
	if err != nil {
		return err
	}

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return oops.With("status", resp.StatusCode, "endpoint", endpoint).Wrap(err)
	}
	if envelope.Code != 0 || resp.StatusCode != http.StatusOK {
		return oops.With("code", envelope.Code, "status", resp.StatusCode, "endpoint", endpoint).Errorf("feishu: %s", envelope.Msg)
	}
	if out != nil && len(envelope.Data) > 0 {
		return json.Unmarshal(envelope.Data, out)
	}
	return nil
}
