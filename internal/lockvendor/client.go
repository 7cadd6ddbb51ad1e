package lockvendor

import (
	"context"
	"fmt"
	"time"

	"stayops/pkg/config"
	"stayops/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// TemporaryCode is the vendor's answer to a code-creation request.
type TemporaryCode struct {
	Code   string
	CodeID string
	Extra  map[string]string
}

// Client talks to the lock vendor's cloud API. The vendor works in
// millisecond epochs and is never assumed to succeed.
type Client struct {
	httpClient *resty.Client
	log        *logger.Logger
}

func NewClient(cfg *config.Config) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.LockVendorBaseURL).
		SetTimeout(cfg.LockVendorTimeout).
		SetRetryCount(cfg.LockVendorRetries).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("X-Api-Key", cfg.LockVendorAPIKey)

	return &Client{
		httpClient: httpClient,
		log:        cfg.Log,
	}
}

type createCodeRequest struct {
	DeviceID   string `json:"device_id"`
	ValidFrom  int64  `json:"valid_from_ms"`
	ValidUntil int64  `json:"valid_until_ms"`
}

type createCodeResponse struct {
	Code   string            `json:"code"`
	CodeID string            `json:"code_id"`
	Extra  map[string]string `json:"extra,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func (c *Client) CreateTemporaryCode(ctx context.Context, deviceID string, validFrom, validUntil time.Time) (*TemporaryCode, error) {
	request := createCodeRequest{
		DeviceID:   deviceID,
		ValidFrom:  validFrom.UnixMilli(),
		ValidUntil: validUntil.UnixMilli(),
	}

	c.log.Info("Requesting temporary code from lock vendor",
		"device_id", deviceID,
		"valid_from_ms", request.ValidFrom,
		"valid_until_ms", request.ValidUntil,
	)

	var response createCodeResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&response).
		Post("/v1/devices/" + deviceID + "/codes")

	if err != nil {
		return nil, fmt.Errorf("failed to call lock vendor API: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("lock vendor returned %d: %s", resp.StatusCode(), resp.String())
	}

	if response.Error != "" {
		return nil, fmt.Errorf("lock vendor error: %s", response.Error)
	}

	if response.Code == "" {
		return nil, fmt.Errorf("lock vendor returned an empty code for device %s", deviceID)
	}

	c.log.Info("Lock vendor created temporary code",
		"device_id", deviceID,
		"code_id", response.CodeID,
	)

	return &TemporaryCode{
		Code:   response.Code,
		CodeID: response.CodeID,
		Extra:  response.Extra,
	}, nil
}

func (c *Client) DeleteCode(ctx context.Context, deviceID, codeID string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		Delete("/v1/devices/" + deviceID + "/codes/" + codeID)

	if err != nil {
		return fmt.Errorf("failed to call lock vendor API: %w", err)
	}

	if resp.IsError() {
		return fmt.Errorf("lock vendor returned %d deleting code %s: %s", resp.StatusCode(), codeID, resp.String())
	}

	c.log.Info("Lock vendor deleted code",
		"device_id", deviceID,
		"code_id", codeID,
	)

	return nil
}
