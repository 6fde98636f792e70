package model

import "github.com/m-mizutani/drover/pkg/domain/types"

// HealthStatus represents the health check status
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// NewHealthStatus returns the health response for the running service
func NewHealthStatus() HealthStatus {
	return HealthStatus{
		Status:  "healthy",
		Service: "drover",
		Version: types.Version,
	}
}
