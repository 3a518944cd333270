package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/radius/internal/models"
	"github.com/shenikar/radius/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestIncidentService - вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (*incidentService, *mocks.MockIncidentRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	service := NewIncidentService(repoMock, logger)
	return service.(*incidentService), repoMock
}

func TestGetIncident_Success_FromCache(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:       incidentID,
		Category: models.CategoryMedical,
	}

	// Ожидания
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_Success_FromDB(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{
		ID:       incidentID,
		Category: models.CategoryFire,
	}

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	// 2. Попадание в БД
	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(expectedIncident, nil).
		Times(1)

	// 3. Запись в кеш
	repoMock.EXPECT().
		SetIncidentCache(ctx, expectedIncident).
		Return(nil).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_CacheErrorFallsBackToDB(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	expectedIncident := &models.Incident{ID: incidentID}

	// Ожидания
	repoMock.EXPECT().GetIncidentFromCache(ctx, incidentID).Return(nil, fmt.Errorf("redis down")).Times(1)
	repoMock.EXPECT().GetByID(ctx, incidentID).Return(expectedIncident, nil).Times(1)
	repoMock.EXPECT().SetIncidentCache(ctx, expectedIncident).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, expectedIncident, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	dbError := fmt.Errorf("incident with id %s: %w", incidentID, ErrIncidentNotFound)

	// Ожидания
	// 1. Промах кеша
	repoMock.EXPECT().
		GetIncidentFromCache(ctx, incidentID).
		Return(nil, nil).
		Times(1)

	// 2. Промах в БД
	repoMock.EXPECT().
		GetByID(ctx, incidentID).
		Return(nil, dbError).
		Times(1)

	// Действие
	incident, err := service.GetIncident(ctx, incidentID)

	// Проверки
	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, ErrIncidentNotFound)
	assert.ErrorContains(t, err, "could not get incident")
}

func TestCreateIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	note := "Room 204"
	coords := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	// Ожидания
	repoMock.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(ctx context.Context, inc *models.Incident) error {
			// Проверяем, что сервис принудительно ставит статус active
			assert.Equal(t, models.StatusActive, inc.Status)
			assert.Equal(t, coords, inc.Coordinates())
			// Симулируем, что БД присвоила ID
			inc.ID = uuid.New()
			inc.CreatedAt = time.Now()
			inc.UpdatedAt = inc.CreatedAt
			return nil
		}).Times(1)

	// Действие
	incident, err := service.CreateIncident(ctx, models.CategoryMedical, &note, coords)

	// Проверки
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, incident.ID)
	assert.Equal(t, models.CategoryMedical, incident.Category)
	require.NotNil(t, incident.Note)
	assert.Equal(t, note, *incident.Note)
	assert.True(t, incident.IsActive())
}

func TestCreateIncident_RepositoryError(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	repoError := errors.New("connection refused")

	// Ожидания
	repoMock.EXPECT().Create(ctx, gomock.Any()).Return(repoError).Times(1)

	// Действие
	incident, err := service.CreateIncident(ctx, models.CategorySafety, nil, models.Coordinates{})

	// Проверки
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, repoError)
	assert.ErrorContains(t, err, "could not create incident")
}

func TestCreateIncident_UnknownCategory(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)

	// Ожидания
	repoMock.EXPECT().Create(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.CreateIncident(context.Background(), models.Category("Flood"), nil, models.Coordinates{})

	// Проверки
	assert.ErrorContains(t, err, "unknown category")
}

func TestResolveIncident_Success(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	resolved := &models.Incident{ID: incidentID, Status: models.StatusResolved}

	// Ожидания
	repoMock.EXPECT().UpdateStatus(ctx, incidentID, models.StatusResolved).Return(resolved, nil).Times(1)
	repoMock.EXPECT().InvalidateIncidentCache(ctx, incidentID).Return(nil).Times(1)

	// Действие
	incident, err := service.ResolveIncident(ctx, incidentID, models.StatusResolved)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, resolved, incident)
}

func TestResolveIncident_InvalidStatus(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)

	// Ожидания
	repoMock.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.ResolveIncident(context.Background(), uuid.New(), models.StatusActive)

	// Проверки
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestResolveIncident_NotFound(t *testing.T) {
	// Подготовка
	service, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	incidentID := uuid.New()
	repoError := fmt.Errorf("incident with id %s not found for update: %w", incidentID, ErrIncidentNotFound)

	// Ожидания
	repoMock.EXPECT().UpdateStatus(ctx, incidentID, models.StatusDismissed).Return(nil, repoError).Times(1)
	repoMock.EXPECT().InvalidateIncidentCache(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	_, err := service.ResolveIncident(ctx, incidentID, models.StatusDismissed)

	// Проверки
	assert.ErrorIs(t, err, ErrIncidentNotFound)
	assert.ErrorContains(t, err, "could not resolve incident")
}
