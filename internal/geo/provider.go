package geo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shenikar/radius/internal/models"
)

// ErrNoSource - источник местоположения не настроен
var ErrNoSource = errors.New("no location source configured")

// Provider выдает текущее местоположение устройства.
// Реализация не должна возвращать фикс, полученный раньше вызова.
type Provider interface {
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// GeoError - местоположение не получено. Timeout выставлен, если истек срок ожидания.
type GeoError struct {
	Timeout bool
	Err     error
}

func (e *GeoError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("location timeout: %v", e.Err)
	}
	return fmt.Sprintf("location unavailable: %v", e.Err)
}

func (e *GeoError) Unwrap() error { return e.Err }

// newGeoError классифицирует ошибку по состоянию контекста запроса
func newGeoError(ctx context.Context, err error) *GeoError {
	return &GeoError{
		Timeout: errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded),
		Err:     err,
	}
}

// Unavailable - Provider для устройств без источника местоположения
type Unavailable struct{}

func (Unavailable) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, &GeoError{Err: ErrNoSource}
}
