package cache

import (
	"context"

	"github.com/susp3kt93/myfleet-sub000/internal/models"
)

// VehicleCache is a read-through cache in front of the vehicle repository.
// A miss returns (nil, nil). Entries are scoped by company.
type VehicleCache interface {
	GetVehicle(ctx context.Context, companyID, vehicleID string) (*models.Vehicle, error)
	SetVehicle(ctx context.Context, vehicle *models.Vehicle) error
	InvalidateVehicle(ctx context.Context, companyID, vehicleID string) error

	GetVehicleList(ctx context.Context, companyID, key string) ([]*models.Vehicle, error)
	SetVehicleList(ctx context.Context, companyID, key string, vehicles []*models.Vehicle) error
	// InvalidateCompany drops every cached list for the company.
	InvalidateCompany(ctx context.Context, companyID string) error

	Stats() Stats
	HealthCheck(ctx context.Context) error
}

type Stats struct {
	HitRate       float64 `json:"hitRate"`
	MissRate      float64 `json:"missRate"`
	TotalHits     int64   `json:"totalHits"`
	TotalMisses   int64   `json:"totalMisses"`
	EvictionCount int64   `json:"evictionCount"`
}
