package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusActive    = "active"
	StatusResolved  = "resolved"
	StatusDismissed = "dismissed"
)

// Incident - запись об экстренном вызове
type Incident struct {
	ID        uuid.UUID `json:"id"`
	Category  Category  `json:"category"`
	Note      *string   `json:"note,omitempty"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActive сообщает, виден ли инцидент в наборе активных
func (i *Incident) IsActive() bool {
	return i != nil && i.Status == StatusActive
}

// Coordinates возвращает точку инцидента
func (i *Incident) Coordinates() Coordinates {
	return Coordinates{Latitude: i.Latitude, Longitude: i.Longitude}
}

// Equal сравнивает два наблюдения одного инцидента по всем полям
func (i *Incident) Equal(other *Incident) bool {
	if i == nil || other == nil {
		return i == other
	}
	if (i.Note == nil) != (other.Note == nil) {
		return false
	}
	if i.Note != nil && *i.Note != *other.Note {
		return false
	}
	return i.ID == other.ID &&
		i.Category == other.Category &&
		i.Latitude == other.Latitude &&
		i.Longitude == other.Longitude &&
		i.Status == other.Status &&
		i.CreatedAt.Equal(other.CreatedAt) &&
		i.UpdatedAt.Equal(other.UpdatedAt)
}

// Clone возвращает независимую копию, чтобы наружу не утекали внутренние ссылки
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	if i.Note != nil {
		note := *i.Note
		c.Note = &note
	}
	return &c
}
