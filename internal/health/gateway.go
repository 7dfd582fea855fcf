package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/clearbrook/driplog/internal/measure"
	"github.com/google/uuid"
)

// Status is the vault's sharing-authorization state for water-intake
// samples. Once a consent request resolves, the state is terminal for
// the lifetime of the process.
type Status string

const (
	StatusNotDetermined Status = "not_determined"
	StatusDenied        Status = "denied"
	StatusAuthorized    Status = "authorized"
)

var (
	ErrVaultUnavailable = errors.New("health vault unavailable")
	ErrNotAuthorized    = errors.New("health vault write not authorized")
	ErrConsentRequest   = errors.New("health vault consent request failed")
	ErrSampleWrite      = errors.New("health vault sample write failed")
)

// VaultGateway mirrors intake samples into an external health vault
// over HTTP. Writes are permission-gated and best-effort; the gateway
// guarantees nothing about idempotency, so callers issue at most one
// write per logical intake.
type VaultGateway struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	status Status
}

// NewVaultGateway builds a gateway for the vault at baseURL. An empty
// baseURL means no vault is present; such a gateway reports itself
// unavailable and behaves as denied for writes.
//
// The client carries no global timeout: the consent flow blocks for a
// user-controlled duration, so deadlines belong to the caller's
// context.
func NewVaultGateway(baseURL string) *VaultGateway {
	return &VaultGateway{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{},
		status:  StatusNotDetermined,
	}
}

func (gateway *VaultGateway) Available() bool {
	return gateway.baseURL != ""
}

func (gateway *VaultGateway) Status() Status {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return gateway.status
}

func (gateway *VaultGateway) CanRequestPermission() bool {
	return gateway.Available() && gateway.Status() == StatusNotDetermined
}

func (gateway *VaultGateway) IsAuthorized() bool {
	return gateway.Available() && gateway.Status() == StatusAuthorized
}

type consentResponse struct {
	Granted bool `json:"granted"`
}

// RequestAuthorization runs the vault's one-time consent flow. It may
// block until the user answers. A transport or protocol failure leaves
// the state undetermined and returns ErrConsentRequest; callers treat
// that as a denial for the operation at hand.
func (gateway *VaultGateway) RequestAuthorization(ctx context.Context) (bool, error) {
	if !gateway.Available() {
		return false, nil
	}
	if status := gateway.Status(); status != StatusNotDetermined {
		return status == StatusAuthorized, nil
	}

	response, err := gateway.postJSON(ctx, "/v1/consent", map[string]string{"scope": "water_intake"})
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrConsentRequest, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: vault answered %d", ErrConsentRequest, response.StatusCode)
	}

	consent := consentResponse{}
	if err := json.NewDecoder(response.Body).Decode(&consent); err != nil {
		return false, fmt.Errorf("%w: %v", ErrConsentRequest, err)
	}

	gateway.mu.Lock()
	if consent.Granted {
		gateway.status = StatusAuthorized
	} else {
		gateway.status = StatusDenied
	}
	gateway.mu.Unlock()

	return consent.Granted, nil
}

type samplePayload struct {
	QuantityOz float64   `json:"quantity_oz"`
	Unit       string    `json:"unit"`
	Timestamp  time.Time `json:"timestamp"`
}

type sampleResponse struct {
	ID uuid.UUID `json:"id"`
}

// WriteSample records one water-intake sample and returns the vault's
// opaque identifier for it.
func (gateway *VaultGateway) WriteSample(ctx context.Context, volume measure.Volume, at time.Time) (uuid.UUID, error) {
	if !gateway.IsAuthorized() {
		return uuid.UUID{}, ErrNotAuthorized
	}

	payload := samplePayload{
		QuantityOz: volume.FluidOunces(),
		Unit:       string(measure.FluidOunces),
		Timestamp:  at,
	}
	response, err := gateway.postJSON(ctx, "/v1/samples", payload)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %v", ErrSampleWrite, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusCreated {
		return uuid.UUID{}, fmt.Errorf("%w: vault answered %d", ErrSampleWrite, response.StatusCode)
	}

	sample := sampleResponse{}
	if err := json.NewDecoder(response.Body).Decode(&sample); err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: %v", ErrSampleWrite, err)
	}
	return sample.ID, nil
}

type bodyMassResponse struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ReadLatestBodyMass fetches the vault's most recent body-mass sample.
// Missing data and read failures both degrade to "no mass known".
func (gateway *VaultGateway) ReadLatestBodyMass(ctx context.Context) (measure.Mass, bool, error) {
	if !gateway.Available() {
		return measure.Mass{}, false, nil
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, gateway.baseURL+"/v1/body-mass/latest", nil)
	if err != nil {
		return measure.Mass{}, false, err
	}
	response, err := gateway.client.Do(request)
	if err != nil {
		return measure.Mass{}, false, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusNotFound || response.StatusCode == http.StatusNoContent {
		return measure.Mass{}, false, nil
	}
	if response.StatusCode != http.StatusOK {
		return measure.Mass{}, false, fmt.Errorf("vault answered %d", response.StatusCode)
	}

	body := bodyMassResponse{}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		return measure.Mass{}, false, err
	}

	unit := measure.Pounds
	if body.Unit == string(measure.Kilograms) {
		unit = measure.Kilograms
	}
	return measure.Mass{Value: body.Value, Unit: unit}, true, nil
}

func (gateway *VaultGateway) postJSON(ctx context.Context, path string, payload any) (*http.Response, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, gateway.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	return gateway.client.Do(request)
}
