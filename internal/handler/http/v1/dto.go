package v1

import (
	"time"

	"github.com/google/uuid"
)

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Note      *string   `json:"note,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncidentListResponse DTO для синхронизированного набора активных инцидентов
// @Description DTO для синхронизированного набора активных инцидентов
type IncidentListResponse struct {
	Count     int                 `json:"count"`
	Incidents []*IncidentResponse `json:"incidents"`
}

// ResolveIncidentRequest DTO для закрытия инцидента оператором
// @Description DTO для закрытия инцидента оператором
type ResolveIncidentRequest struct {
	Status string `json:"status" validate:"required,oneof=resolved dismissed"`
}

// ConfirmDispatchRequest DTO для подтверждения вызова помощи
// @Description DTO для подтверждения вызова помощи
type ConfirmDispatchRequest struct {
	Category string `json:"category" validate:"required,incident_category"`
	Note     string `json:"note,omitempty" validate:"max=1000"`
}

// HealthResponse DTO для health-check
// @Description DTO для health-check
type HealthResponse struct {
	Status    string `json:"status"`
	Incidents int    `json:"incidents"`
}
