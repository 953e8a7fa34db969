// Package sms sends order notifications through the Twilio Messages API.
// The client is a small form-POST wrapper; pulling in a full SDK for one
// endpoint is not worth it.
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/balcaohq/balcao/pkg/menu"
	"github.com/balcaohq/balcao/pkg/order"
)

// DefaultBaseURL is the Twilio REST API base URL.
const DefaultBaseURL = "https://api.twilio.com/2010-04-01"

// Config configures the Twilio SMS client.
type Config struct {
	AccountSID string
	AuthToken  string
	From       string // sending phone number
	BaseURL    string
	HTTPClient *http.Client
	Restaurant menu.Restaurant
}

// Client sends SMS through Twilio.
type Client struct {
	accountSID string
	authToken  string
	from       string
	baseURL    string
	httpClient *http.Client
	restaurant menu.Restaurant
}

// New creates a Twilio SMS client.
func New(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" {
		return nil, fmt.Errorf("sms: account sid is required")
	}
	if cfg.AuthToken == "" {
		return nil, fmt.Errorf("sms: auth token is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sms: sending number is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		from:       cfg.From,
		baseURL:    baseURL,
		httpClient: httpClient,
		restaurant: cfg.Restaurant,
	}, nil
}

// SendLink texts the checkout link to the caller.
func (c *Client) SendLink(ctx context.Context, to, orderID, link string, totalCents int64) error {
	return c.send(ctx, to, linkBody(c.restaurant, orderID, link, totalCents))
}

// SendConfirmation texts the paid-order confirmation. It fires from the
// webhook path so the customer keeps the details even if the call drops.
func (c *Client) SendConfirmation(ctx context.Context, to, orderID string, totalCents int64) error {
	return c.send(ctx, to, confirmationBody(c.restaurant, orderID, totalCents))
}

func linkBody(r menu.Restaurant, orderID, link string, totalCents int64) string {
	return fmt.Sprintf(
		"%s\nPedido #%s\nTotal: %s\n\nClique para pagar:\n%s\n\nApós o pagamento, aguarde a confirmação na ligação.",
		r.Name, orderID, order.FormatBRL(totalCents), link,
	)
}

func confirmationBody(r menu.Restaurant, orderID string, totalCents int64) string {
	address := r.Address
	if address == "" {
		address = "nosso restaurante"
	}
	return fmt.Sprintf(
		"%s\nPagamento confirmado!\nPedido #%s — %s\n\nPronto em aprox. %d min.\nRetire em: %s",
		r.Name, orderID, order.FormatBRL(totalCents), r.PrepTimeMinutes, address,
	)
}

// apiError is the Twilio REST error body.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
	Status   int    `json:"status"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("twilio error %d: %s", e.Code, e.Message)
}

func (c *Client) send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	data := url.Values{}
	data.Set("To", to)
	data.Set("From", c.from)
	data.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send to %s: %w", to, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sms: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.Unmarshal(respBody, &apiErr); err != nil {
			return fmt.Errorf("sms: twilio error: %s", string(respBody))
		}
		return &apiErr
	}
	return nil
}
