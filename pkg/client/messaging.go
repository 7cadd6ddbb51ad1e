package client

import (
	"fmt"
	"net/url"
)

type MessagingClient struct {
	httpClient *HttpClient
}

func NewMessagingClient(baseUrl string) *MessagingClient {
	return &MessagingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

func (c *MessagingClient) GuestVerified(guestID string, headers map[string]string) (*Response, error) {
	path := "/api/v1/hooks/guests/" + url.PathEscape(guestID) + "/verified"
	return c.httpClient.POSTRaw(path, []byte("{}"), headers)
}

func (c *MessagingClient) GuestEvent(guestID string, rawBody []byte, headers map[string]string) (*Response, error) {
	path := "/api/v1/hooks/guests/" + url.PathEscape(guestID) + "/events"
	return c.httpClient.POSTRaw(path, rawBody, headers)
}

func (c *MessagingClient) Variables(reservationID string) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(reservationID) + "/variables"
	return c.httpClient.GET(path)
}

func (c *MessagingClient) Render(body any) (*Response, error) {
	return c.httpClient.POST("/api/v1/messages/render", body)
}

func (c *MessagingClient) ListScheduled(limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/messages/scheduled?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(path)
}

func (c *MessagingClient) MessagesForReservation(reservationID string) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(reservationID) + "/messages"
	return c.httpClient.GET(path)
}

func (c *MessagingClient) CancelForReservation(reservationID string) (*Response, error) {
	path := "/api/v1/reservations/" + url.PathEscape(reservationID) + "/messages"
	return c.httpClient.DELETE(path)
}
