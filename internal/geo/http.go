package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shenikar/radius/internal/models"
	"github.com/sirupsen/logrus"
)

// fix - ответ демона местоположения устройства
type fix struct {
	Latitude  *float64  `json:"lat"`
	Longitude *float64  `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// HTTPProvider запрашивает свежий фикс у локального демона местоположения
type HTTPProvider struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
	now        func() time.Time
}

// NewHTTPProvider создает новый HTTPProvider. Ожидание ограничивает контекст вызывающего.
func NewHTTPProvider(url string, logger *logrus.Logger) *HTTPProvider {
	return &HTTPProvider{
		url:        url,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
}

// CurrentPosition просит демон о новом фиксе и отвергает фиксы старше запроса
func (p *HTTPProvider) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	requestedAt := p.now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.Coordinates{}, &GeoError{Err: fmt.Errorf("build location request: %w", err)}
	}
	// Кэшированный фикс не годится
	req.Header.Set("Cache-Control", "no-cache, max-age=0")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return models.Coordinates{}, newGeoError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return models.Coordinates{}, &GeoError{Err: fmt.Errorf("location source responded with status %d", resp.StatusCode)}
	}

	var f fix
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return models.Coordinates{}, newGeoError(ctx, fmt.Errorf("decode location fix: %w", err))
	}
	if f.Latitude == nil || f.Longitude == nil {
		return models.Coordinates{}, &GeoError{Err: fmt.Errorf("location fix without coordinates")}
	}
	if !validCoordinates(*f.Latitude, *f.Longitude) {
		return models.Coordinates{}, &GeoError{Err: fmt.Errorf("location fix out of range: %f, %f", *f.Latitude, *f.Longitude)}
	}
	if f.Timestamp.IsZero() || f.Timestamp.Before(requestedAt.Add(-clockSkewTolerance)) {
		p.logger.WithFields(logrus.Fields{
			"component":    "geo",
			"fix_time":     f.Timestamp,
			"requested_at": requestedAt,
		}).Warn("Rejecting stale location fix")
		return models.Coordinates{}, &GeoError{Err: fmt.Errorf("stale location fix from %s", f.Timestamp.Format(time.RFC3339))}
	}

	return models.Coordinates{Latitude: *f.Latitude, Longitude: *f.Longitude}, nil
}

// clockSkewTolerance допускает расхождение часов демона и сервиса
const clockSkewTolerance = time.Second

func validCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}
