// Package apiclient is the Go consumer of the leadchat HTTP API, used by the
// terminal widget and by dashboard tooling. It carries the polling loop both
// frontends share.
package apiclient

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"github.com/go-resty/resty/v2"

	"leadchat/reconcile"
)

// Message mirrors one message row on the wire.
type Message struct {
	ID              int64  `json:"id"`
	ClientID        string `json:"client_id"`
	ClientName      string `json:"client_name"`
	ClientLocation  string `json:"client_location"`
	ClientPhone     string `json:"client_phone"`
	Message         string `json:"message"`
	IsClientMessage bool   `json:"is_client_message"`
	Read            bool   `json:"read"`
	Timestamp       string `json:"timestamp"`
}

// Reconcile converts a wire row into the reconciliation model.
func (m Message) Reconcile() reconcile.Message {
	return reconcile.Message{
		ID:             m.ID,
		ClientID:       m.ClientID,
		Text:           m.Message,
		FromClient:     m.IsClientMessage,
		Read:           m.Read,
		ClientName:     m.ClientName,
		ClientLocation: m.ClientLocation,
		ClientPhone:    m.ClientPhone,
		Timestamp:      m.Timestamp,
	}
}

// ReconcileAll converts a fetched slice in place-order.
func ReconcileAll(msgs []Message) []reconcile.Message {
	out := make([]reconcile.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Reconcile()
	}
	return out
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to the leadchat server. The embedded cookie jar carries the
// operator session across dashboard calls after Login.
type Client struct {
	httpClient *resty.Client
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetCookieJar(jar).
		SetTimeout(30 * time.Second)
	return &Client{httpClient: c}, nil
}

func apiErr(op string, resp *resty.Response) error {
	if e, ok := resp.Error().(*errorResponse); ok && e != nil && e.Error != "" {
		return fmt.Errorf("%s: %s (status %s)", op, e.Error, resp.Status())
	}
	return fmt.Errorf("%s: unexpected status %s", op, resp.Status())
}

// Start opens a new conversation and returns the client token plus the
// welcome message.
func (c *Client) Start(ctx context.Context) (clientID, welcome string, err error) {
	var result struct {
		ClientID string `json:"clientId"`
		Message  string `json:"message"`
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&errorResponse{}).
		Post("/chat/start")
	if err != nil {
		return "", "", fmt.Errorf("start chat: %w", err)
	}
	if resp.IsError() {
		return "", "", apiErr("start chat", resp)
	}
	return result.ClientID, result.Message, nil
}

// Send delivers one visitor message and returns the assistant reply.
func (c *Client) Send(ctx context.Context, clientID, text string) (string, error) {
	var result struct {
		Message string `json:"message"`
	}
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"clientId": clientID, "message": text}).
		SetResult(&result).
		SetError(&errorResponse{}).
		Post("/chat/send")
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return "", apiErr("send message", resp)
	}
	return result.Message, nil
}

// Messages fetches the chronological transcript of one client.
func (c *Client) Messages(ctx context.Context, clientID string) ([]Message, error) {
	var result []Message
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&errorResponse{}).
		Get("/chat/messages/" + clientID)
	if err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr("fetch messages", resp)
	}
	return result, nil
}

// Login establishes the operator session used by the dashboard calls below.
func (c *Client) Login(ctx context.Context, username, password string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetError(&errorResponse{}).
		Post("/login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return apiErr("login", resp)
	}
	return nil
}

// Logout drops the operator session.
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorResponse{}).
		Post("/logout")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if resp.IsError() {
		return apiErr("logout", resp)
	}
	return nil
}

// Latest fetches the operator list: the newest client-authored message per
// conversation.
func (c *Client) Latest(ctx context.Context) ([]Message, error) {
	var result []Message
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&errorResponse{}).
		Get("/dashboard/messages")
	if err != nil {
		return nil, fmt.Errorf("fetch dashboard messages: %w", err)
	}
	if resp.IsError() {
		return nil, apiErr("fetch dashboard messages", resp)
	}
	return result, nil
}

// Reply sends an operator message into a conversation.
func (c *Client) Reply(ctx context.Context, clientID, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]string{"clientId": clientID, "message": text}).
		SetError(&errorResponse{}).
		Post("/dashboard/reply")
	if err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	if resp.IsError() {
		return apiErr("send reply", resp)
	}
	return nil
}

// MarkRead flags one message as read.
func (c *Client) MarkRead(ctx context.Context, messageID int64) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]int64{"messageId": messageID}).
		SetError(&errorResponse{}).
		Post("/dashboard/read")
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if resp.IsError() {
		return apiErr("mark read", resp)
	}
	return nil
}

// DeleteMessage removes one message.
func (c *Client) DeleteMessage(ctx context.Context, messageID int64) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorResponse{}).
		Delete(fmt.Sprintf("/dashboard/message/%d", messageID))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if resp.IsError() {
		return apiErr("delete message", resp)
	}
	return nil
}

// DeleteClient purges one conversation.
func (c *Client) DeleteClient(ctx context.Context, clientID string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorResponse{}).
		Delete("/dashboard/client/" + clientID)
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	if resp.IsError() {
		return apiErr("delete client", resp)
	}
	return nil
}

// DeleteAll purges every conversation.
func (c *Client) DeleteAll(ctx context.Context) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(&errorResponse{}).
		Delete("/dashboard/messages")
	if err != nil {
		return fmt.Errorf("delete all: %w", err)
	}
	if resp.IsError() {
		return apiErr("delete all", resp)
	}
	return nil
}
