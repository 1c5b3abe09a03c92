package instagram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/AshishRam7/deploy-test-insta-bot/internal/domain"
	apperrors "github.com/AshishRam7/deploy-test-insta-bot/internal/errors"
	"github.com/AshishRam7/deploy-test-insta-bot/internal/platform/retry"
)

const defaultBaseURL = "https://graph.instagram.com/v21.0"

// Client sends replies through the Instagram Graph API. Direct messages go
// through the messaging endpoint of the account, comment replies through
// the comment's replies edge.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     domain.TokenResolver
}

var _ domain.Messenger = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API base URL, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(tokens domain.TokenResolver, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		tokens:     tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send delivers one reply. threadID is the recipient user for direct
// messages and the comment ID for comment replies. A missing account token
// is permanent: retrying cannot conjure credentials.
func (c *Client) Send(ctx context.Context, accountID, threadID string, kind domain.ChannelKind, text string) error {
	token, err := c.tokens.AccessToken(ctx, accountID)
	if errors.Is(err, domain.ErrTokenNotFound) {
		return retry.Permanent(fmt.Errorf("no access token for account %s: %w", accountID, err))
	}
	if err != nil {
		return fmt.Errorf("resolve access token: %w", err)
	}

	switch kind {
	case domain.KindDirectMessage:
		return c.sendDirectMessage(ctx, token, threadID, text)
	case domain.KindComment:
		return c.replyToComment(ctx, token, threadID, text)
	default:
		return retry.Permanent(fmt.Errorf("unknown channel kind %q", kind))
	}
}

type dmPayload struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

func (c *Client) sendDirectMessage(ctx context.Context, token, recipientID, text string) error {
	var payload dmPayload
	payload.Recipient.ID = recipientID
	payload.Message.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("encode message payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/me/messages", bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	return c.do(req)
}

func (c *Client) replyToComment(ctx context.Context, token, commentID, text string) error {
	form := url.Values{}
	form.Set("message", text)
	form.Set("access_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/"+url.PathEscape(commentID)+"/replies", bytes.NewReader([]byte(form.Encode())))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.do(req)
}

type graphErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *Client) do(req *http.Request) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.ExternalError("graph api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var graphErr graphErrorResponse
	if err := json.Unmarshal(raw, &graphErr); err == nil && graphErr.Error.Message != "" {
		apiErr := apperrors.ExternalError("graph api rejected request",
			fmt.Errorf("%s (type=%s, code=%d)", graphErr.Error.Message, graphErr.Error.Type, graphErr.Error.Code)).
			WithContext("status", resp.StatusCode)
		// Auth and permission failures do not heal on retry.
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return retry.Permanent(apiErr)
		}
		return apiErr
	}

	return apperrors.ExternalError("graph api rejected request",
		fmt.Errorf("status %d: %s", resp.StatusCode, string(raw)))
}
