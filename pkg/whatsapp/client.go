package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const jidSuffix = "@s.whatsapp.net"

// ErrNoDevice is returned by Ping when the gateway has no paired device.
var ErrNoDevice = errors.New("whatsapp: no device connected")

// Client talks to a WhatsApp multi-device REST gateway.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	Path       string
	HTTPClient *http.Client
}

type SendMessageRequest struct {
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	IsForwarded bool   `json:"is_forwarded"`
}

type SendMessageResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Results struct {
		MessageID string `json:"message_id"`
		Status    string `json:"status"`
	} `json:"results"`
}

type DevicesResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Results []struct {
		Name   string `json:"name"`
		Device string `json:"device"`
	} `json:"results"`
}

func NewClient(baseURL, username, password, path string) *Client {
	return &Client{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Username: username,
		Password: password,
		Path:     strings.Trim(path, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// JID turns a bare phone number into a WhatsApp user JID.
func JID(phone string) string {
	if strings.Contains(phone, "@") {
		return phone
	}
	return phone + jidSuffix
}

// PhoneFromJID strips the device and server parts of a JID.
func PhoneFromJID(jid string) string {
	phone := jid
	if i := strings.Index(phone, "@"); i >= 0 {
		phone = phone[:i]
	}
	if i := strings.Index(phone, ":"); i >= 0 {
		phone = phone[:i]
	}
	return phone
}

// SendMessage sends a text message to a normalized phone number.
func (c *Client) SendMessage(ctx context.Context, phone, message string) (*SendMessageResponse, error) {
	requestData := SendMessageRequest{
		Phone:   JID(phone),
		Message: message,
	}

	var response SendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/send/message", requestData, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// Ping succeeds when the gateway is reachable and has a paired device.
func (c *Client) Ping(ctx context.Context) error {
	var response DevicesResponse
	if err := c.do(ctx, http.MethodGet, "/app/devices", nil, &response); err != nil {
		return err
	}
	if len(response.Results) == 0 {
		return ErrNoDevice
	}
	return nil
}

func (c *Client) endpoint(route string) string {
	if c.Path == "" {
		return c.BaseURL + route
	}
	return c.BaseURL + "/" + c.Path + route
}

func (c *Client) do(ctx context.Context, method, route string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(route), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
		req.Header.Set("Authorization", "Basic "+auth)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
