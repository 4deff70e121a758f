// internal/clients/fleet_client.go
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"fleetbook/internal/booking"
	"fleetbook/internal/fleet"
)

// FleetClient calls the fleet catalog service over HTTP. A circuit breaker
// sheds load when the catalog is unhealthy so booking requests fail fast
// instead of piling up on a dead dependency.
type FleetClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewFleetClient(baseURL string) *FleetClient {
	return &FleetClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "fleet",
			Timeout: 10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
}

// Vehicle implements booking.Catalog.
func (c *FleetClient) Vehicle(ctx context.Context, id string) (*fleet.Vehicle, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/vehicles/%s", c.baseURL, url.PathEscape(id)), nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// A miss is a valid answer, not a breaker-tripping failure.
			return nil, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var v fleet.Vehicle
		if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fleet service: %w", err)
	}
	if result == nil {
		return nil, booking.ErrVehicleNotFound
	}
	return result.(*fleet.Vehicle), nil
}

// Vehicles implements booking.Catalog.
func (c *FleetClient) Vehicles(ctx context.Context, vehicleType string) ([]fleet.Vehicle, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		endpoint := c.baseURL + "/vehicles"
		if vehicleType != "" {
			endpoint += "?type=" + url.QueryEscape(vehicleType)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		var body struct {
			Vehicles []fleet.Vehicle `json:"vehicles"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, err
		}
		return body.Vehicles, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fleet service: %w", err)
	}
	return result.([]fleet.Vehicle), nil
}
