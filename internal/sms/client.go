package sms

import (
	"context"
	"fmt"

	"stayops/pkg/config"
	"stayops/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// Client talks to the SMS gateway. Recipients must already be in E.164.
type Client struct {
	httpClient *resty.Client
	sender     string
	log        *logger.Logger
}

func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.SMSGatewayBaseURL).
		SetTimeout(cfg.SMSGatewayTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("Authorization", "Bearer "+cfg.SMSGatewayAPIKey)

	return &Client{
		httpClient: httpClient,
		sender:     cfg.SMSSenderName,
		log:        cfg.Log,
	}
}

type sendRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

type sendResponse struct {
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// Send delivers one SMS and returns the gateway's message id.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	var response sendResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(sendRequest{
			To:   to,
			From: c.sender,
			Body: body,
		}).
		SetResult(&response).
		Post("/v1/messages")

	if err != nil {
		return "", fmt.Errorf("failed to call SMS gateway: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("SMS gateway returned %d: %s", resp.StatusCode(), resp.String())
	}

	if response.Error != "" {
		return "", fmt.Errorf("SMS gateway error: %s", response.Error)
	}

	c.log.Info("SMS dispatched",
		"to", to,
		"provider_id", response.MessageID,
	)

	return response.MessageID, nil
}
