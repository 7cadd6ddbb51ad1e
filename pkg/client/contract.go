package client

import (
	"fmt"
	"net/http"
)

// ContractClient talks to the rental agreement service. Scheduling treats
// contract creation as best effort, so callers only need the error.
type ContractClient struct {
	httpClient *HttpClient
}

func NewContractClient(baseUrl string) *ContractClient {
	return &ContractClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

type createContractRequest struct {
	GuestID       string `json:"guest_id"`
	ReservationID string `json:"reservation_id"`
}

func (c *ContractClient) Create(guestID, reservationID string) error {
	resp, err := c.httpClient.POST("/api/v1/contracts", createContractRequest{
		GuestID:       guestID,
		ReservationID: reservationID,
	})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("contract service returned %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}
	return nil
}
