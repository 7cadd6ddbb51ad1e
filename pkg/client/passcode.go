package client

import (
	"net/url"
)

type PasscodeClient struct {
	httpClient *HttpClient
}

func NewPasscodeClient(baseUrl string) *PasscodeClient {
	return &PasscodeClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *PasscodeClient) Generate(reservationID string) (*Response, error) {
	path := "/api/v1/passcodes/" + url.PathEscape(reservationID) + "/generate"
	return c.httpClient.POST(path, nil)
}

func (c *PasscodeClient) Get(reservationID string) (*Response, error) {
	path := "/api/v1/passcodes/" + url.PathEscape(reservationID)
	return c.httpClient.GET(path)
}

func (c *PasscodeClient) RecordManualCode(entryID, code string) (*Response, error) {
	path := "/api/v1/passcodes/entries/" + url.PathEscape(entryID) + "/code"
	return c.httpClient.PUT(path, map[string]string{"code": code})
}

func (c *PasscodeClient) Revoke(reservationID string) (*Response, error) {
	path := "/api/v1/passcodes/" + url.PathEscape(reservationID)
	return c.httpClient.DELETE(path)
}

func (c *PasscodeClient) SweepStatus() (*Response, error) {
	return c.httpClient.GET("/api/v1/sweep/status")
}
