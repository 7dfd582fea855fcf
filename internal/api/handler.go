package api

import (
	"context"
	"time"

	"github.com/clearbrook/driplog/internal/health"
	"github.com/clearbrook/driplog/internal/measure"
	"github.com/clearbrook/driplog/internal/services"
)

// HealthStatusReader is the slice of the vault gateway the API needs
// for its status and recommendation endpoints.
type HealthStatusReader interface {
	Available() bool
	Status() health.Status
	CanRequestPermission() bool
	IsAuthorized() bool
	ReadLatestBodyMass(ctx context.Context) (measure.Mass, bool, error)
}

type Handler struct {
	tracking     *services.TrackingService
	vault        HealthStatusReader
	location     *time.Location
	secretKey    []byte
	passwordHash []byte
	cookieSecure bool
}

func NewHandler(tracking *services.TrackingService, vault HealthStatusReader, location *time.Location, secretKey string, passwordHash []byte, cookieSecure bool) *Handler {
	if location == nil {
		location = time.UTC
	}
	return &Handler{
		tracking:     tracking,
		vault:        vault,
		location:     location,
		secretKey:    []byte(secretKey),
		passwordHash: passwordHash,
		cookieSecure: cookieSecure,
	}
}
