package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService is an in-memory fleet.Service for handler tests. addErr, when
// set, simulates a storage failure on AddVehicle.
type fakeService struct {
	vehicles map[string]*Vehicle
	nextID   int
	addErr   error
}

func newFakeService(vehicles ...Vehicle) *fakeService {
	s := &fakeService{vehicles: make(map[string]*Vehicle)}
	for i := range vehicles {
		v := vehicles[i]
		s.vehicles[v.ID] = &v
	}
	return s
}

func (s *fakeService) AddVehicle(_ context.Context, in AddVehicleInput) (*Vehicle, error) {
	if in.Type == "" || in.Model == "" {
		return nil, &ValidationError{Reason: "type and model are required"}
	}
	if s.addErr != nil {
		return nil, s.addErr
	}
	s.nextID++
	v := &Vehicle{
		ID:                 fmt.Sprintf("veh-%d", s.nextID),
		Type:               in.Type,
		Model:              in.Model,
		HourlyRate:         in.HourlyRate,
		BatteryLife:        in.BatteryLife,
		Features:           in.Features,
		AccessCodeTemplate: in.AccessCodeTemplate,
		Status:             StatusAvailable,
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
	s.vehicles[v.ID] = v
	return v, nil
}

func (s *fakeService) GetVehicle(_ context.Context, id string) (*Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok || v.Status == StatusRetired {
		return nil, ErrVehicleNotFound
	}
	return v, nil
}

func (s *fakeService) ListVehicles(_ context.Context, vehicleType string) ([]Vehicle, error) {
	var out []Vehicle
	for _, v := range s.vehicles {
		if v.Status == StatusRetired {
			continue
		}
		if vehicleType != "" && v.Type != vehicleType {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *fakeService) UpdateVehicle(_ context.Context, id string, in UpdateVehicleInput) (*Vehicle, error) {
	v, ok := s.vehicles[id]
	if !ok {
		return nil, ErrVehicleNotFound
	}
	if in.Status != nil {
		v.Status = *in.Status
	}
	if in.Model != nil {
		v.Model = *in.Model
	}
	if in.HourlyRate != nil {
		v.HourlyRate = *in.HourlyRate
	}
	return v, nil
}

func (s *fakeService) RemoveVehicle(_ context.Context, id string) error {
	v, ok := s.vehicles[id]
	if !ok {
		return ErrVehicleNotFound
	}
	v.Status = StatusRetired
	return nil
}

func newFleetServer(t *testing.T, vehicles ...Vehicle) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(NewHandler(newFakeService(vehicles...)).Routes())
	t.Cleanup(server.Close)
	return server
}

func fleetRequest(t *testing.T, method, url string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFleetHandlerAddVehicle(t *testing.T) {
	server := newFleetServer(t)

	resp := fleetRequest(t, http.MethodPost, server.URL+"/vehicles",
		`{"type":"escooter","model":"Volt S2","hourly_rate_cents":1200,"features":["gps","helmet"]}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var v Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "escooter", v.Type)
	assert.Equal(t, StatusAvailable, v.Status)
	assert.Equal(t, []string{"gps", "helmet"}, v.Features)
}

func TestFleetHandlerAddVehicleRejectsMissingFields(t *testing.T) {
	server := newFleetServer(t)

	resp := fleetRequest(t, http.MethodPost, server.URL+"/vehicles", `{"model":"Volt S2"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFleetHandlerAddVehicleStorageFailure(t *testing.T) {
	svc := newFakeService()
	svc.addErr = errors.New("insert vehicle: connection refused")
	server := httptest.NewServer(NewHandler(svc).Routes())
	t.Cleanup(server.Close)

	// A storage failure is not the caller's fault.
	resp := fleetRequest(t, http.MethodPost, server.URL+"/vehicles",
		`{"type":"escooter","model":"Volt S2","hourly_rate_cents":1200}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestFleetHandlerGetVehicle(t *testing.T) {
	server := newFleetServer(t, Vehicle{ID: "scooter-1", Type: "escooter", Model: "Volt S2", Status: StatusAvailable})

	resp := fleetRequest(t, http.MethodGet, server.URL+"/vehicles/scooter-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, "scooter-1", v.ID)

	resp = fleetRequest(t, http.MethodGet, server.URL+"/vehicles/no-such", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFleetHandlerListVehicles(t *testing.T) {
	server := newFleetServer(t,
		Vehicle{ID: "scooter-1", Type: "escooter", Status: StatusAvailable},
		Vehicle{ID: "bike-1", Type: "ebike", Status: StatusAvailable},
	)

	resp := fleetRequest(t, http.MethodGet, server.URL+"/vehicles?type=ebike", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Vehicles []Vehicle `json:"vehicles"`
		Count    int       `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "bike-1", body.Vehicles[0].ID)
}

func TestFleetHandlerUpdateVehicle(t *testing.T) {
	server := newFleetServer(t, Vehicle{ID: "scooter-1", Type: "escooter", Status: StatusAvailable})

	resp := fleetRequest(t, http.MethodPut, server.URL+"/vehicles/scooter-1", `{"status":"maintenance"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v Vehicle
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, StatusMaintenance, v.Status)

	resp = fleetRequest(t, http.MethodPut, server.URL+"/vehicles/no-such", `{"status":"maintenance"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFleetHandlerRemoveVehicle(t *testing.T) {
	server := newFleetServer(t, Vehicle{ID: "scooter-1", Type: "escooter", Status: StatusAvailable})

	resp := fleetRequest(t, http.MethodDelete, server.URL+"/vehicles/scooter-1", "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Retired vehicles disappear from reads.
	resp = fleetRequest(t, http.MethodGet, server.URL+"/vehicles/scooter-1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
