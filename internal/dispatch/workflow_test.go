package dispatch

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/radius/internal/dispatch/mocks"
	geomocks "github.com/shenikar/radius/internal/geo/mocks"
	"github.com/shenikar/radius/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testGeoTimeout  = 50 * time.Millisecond
	testSentDisplay = 30 * time.Millisecond
	waitTimeout     = 2 * time.Second
)

var fallback = models.Coordinates{Latitude: 17.5945, Longitude: 78.4403}

// newTestWorkflow - вспомогательная функция для создания процесса с моками и журналом переходов
func newTestWorkflow(t *testing.T) (*Workflow, *geomocks.MockProvider, *mocks.MockCommitter, <-chan State) {
	ctrl := gomock.NewController(t)
	locator := geomocks.NewMockProvider(ctrl)
	committer := mocks.NewMockCommitter(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	w := NewWorkflow(locator, committer, logger, Options{
		GeoTimeout:          testGeoTimeout,
		WriteTimeout:        time.Second,
		SentDisplayInterval: testSentDisplay,
		Fallback:            fallback,
	})
	states := make(chan State, 64)
	w.OnStateChanged(func(s State) { states <- s })
	return w, locator, committer, states
}

// waitFor читает переходы до состояния с нужным именем
func waitFor(t *testing.T, states <-chan State, name StateName) State {
	t.Helper()
	deadline := time.After(waitTimeout)
	for {
		select {
		case s := <-states:
			if s.Name() == name {
				return s
			}
		case <-deadline:
			t.Fatalf("timed out waiting for state %s", name)
		}
	}
}

func newIncident(category models.Category, note *string, coords models.Coordinates) *models.Incident {
	return &models.Incident{
		ID:        uuid.New(),
		Category:  category,
		Note:      note,
		Latitude:  coords.Latitude,
		Longitude: coords.Longitude,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}
}

func blockUntilDone(ctx context.Context) (models.Coordinates, error) {
	<-ctx.Done()
	return models.Coordinates{}, ctx.Err()
}

func TestConfirm_GeoTimeoutUsesFallback(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)

	locator.EXPECT().CurrentPosition(gomock.Any()).DoAndReturn(blockUntilDone).Times(1)
	committer.EXPECT().
		CreateIncident(gomock.Any(), models.CategoryMedical, gomock.Nil(), fallback).
		DoAndReturn(func(ctx context.Context, category models.Category, note *string, coords models.Coordinates) (*models.Incident, error) {
			return newIncident(category, note, coords), nil
		}).Times(1)

	require.NoError(t, w.Confirm(models.CategoryMedical, ""))

	locating := waitFor(t, states, StateLocating).(Locating)
	assert.Equal(t, models.CategoryMedical, locating.Draft.Category)

	dispatching := waitFor(t, states, StateDispatching).(Dispatching)
	assert.True(t, dispatching.Fallback)
	assert.Equal(t, fallback, dispatching.Coordinates)

	sent := waitFor(t, states, StateSent).(Sent)
	assert.True(t, sent.Fallback)
	assert.Equal(t, fallback, sent.Coordinates)
	require.NotNil(t, sent.Incident)

	// sent сам возвращается в idle
	waitFor(t, states, StateIdle)
	assert.Equal(t, StateIdle, w.State().Name())
}

func TestConfirm_ProgressesPastLocatingWhenProviderIgnoresDeadline(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	locator.EXPECT().CurrentPosition(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (models.Coordinates, error) {
			<-release
			return models.Coordinates{Latitude: 1, Longitude: 1}, nil
		}).Times(1)
	committer.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any(), fallback).
		Return(newIncident(models.CategoryFire, nil, fallback), nil).Times(1)

	started := time.Now()
	require.NoError(t, w.Confirm(models.CategoryFire, ""))

	waitFor(t, states, StateDispatching)
	assert.Less(t, time.Since(started), testGeoTimeout+500*time.Millisecond)
	waitFor(t, states, StateSent)
}

func TestConfirm_RealLocationUsed(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	here := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	locator.EXPECT().CurrentPosition(gomock.Any()).Return(here, nil).Times(1)
	committer.EXPECT().CreateIncident(gomock.Any(), models.CategorySafety, gomock.Any(), here).
		DoAndReturn(func(ctx context.Context, category models.Category, note *string, coords models.Coordinates) (*models.Incident, error) {
			if assert.NotNil(t, note) {
				assert.Equal(t, "Library entrance", *note)
			}
			return newIncident(category, note, coords), nil
		}).Times(1)

	require.NoError(t, w.Confirm(models.CategorySafety, "  Library entrance \n"))

	sent := waitFor(t, states, StateSent).(Sent)
	assert.False(t, sent.Fallback)
	assert.Equal(t, here, sent.Coordinates)
	waitFor(t, states, StateIdle)
}

func TestConfirm_WriteFailureThenRetry(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	note := "Room 204"
	here := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	locator.EXPECT().CurrentPosition(gomock.Any()).Return(here, nil).Times(2)
	gomock.InOrder(
		committer.EXPECT().CreateIncident(gomock.Any(), models.CategoryMedical, gomock.Any(), here).
			Return(nil, errors.New("network unreachable")),
		committer.EXPECT().CreateIncident(gomock.Any(), models.CategoryMedical, gomock.Any(), here).
			DoAndReturn(func(ctx context.Context, category models.Category, n *string, coords models.Coordinates) (*models.Incident, error) {
				if assert.NotNil(t, n) {
					assert.Equal(t, note, *n)
				}
				return newIncident(category, n, coords), nil
			}),
	)

	require.NoError(t, w.Confirm(models.CategoryMedical, note))

	failed := waitFor(t, states, StateError).(Failed)
	assert.Equal(t, models.CategoryMedical, failed.Draft.Category)
	assert.Equal(t, FailureMessage, failed.Message)
	var writeErr *WriteError
	require.ErrorAs(t, failed.Err, &writeErr)

	// Ошибка записи не повторяется автоматически
	assert.Equal(t, StateError, w.State().Name())

	require.NoError(t, w.Retry())
	locating := waitFor(t, states, StateLocating).(Locating)
	assert.Equal(t, failed.Draft, locating.Draft)

	sent := waitFor(t, states, StateSent).(Sent)
	assert.Equal(t, models.CategoryMedical, sent.Draft.Category)
	waitFor(t, states, StateIdle)
}

func TestConfirm_NilIncidentIsWriteFailure(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	here := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	locator.EXPECT().CurrentPosition(gomock.Any()).Return(here, nil).Times(1)
	committer.EXPECT().CreateIncident(gomock.Any(), models.CategoryFire, gomock.Any(), here).
		Return(nil, nil).Times(1)

	require.NoError(t, w.Confirm(models.CategoryFire, ""))

	failed := waitFor(t, states, StateError).(Failed)
	assert.Equal(t, FailureMessage, failed.Message)
	var writeErr *WriteError
	require.ErrorAs(t, failed.Err, &writeErr)
	assert.ErrorIs(t, failed.Err, ErrNoIncident)
	assert.Equal(t, StateError, w.State().Name())
}

func TestConfirm_RejectsSecondConfirmWhileLocating(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	release := make(chan struct{})
	here := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	locator.EXPECT().CurrentPosition(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (models.Coordinates, error) {
			<-release
			return here, nil
		}).Times(1)
	committer.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(newIncident(models.CategoryMedical, nil, here), nil).Times(1)

	require.NoError(t, w.Confirm(models.CategoryMedical, ""))
	assert.ErrorIs(t, w.Confirm(models.CategoryMedical, ""), ErrAttemptInProgress)

	close(release)
	waitFor(t, states, StateSent)
	waitFor(t, states, StateIdle)
}

func TestCancel_WhileLocatingDiscardsAttempt(t *testing.T) {
	w, locator, _, states := newTestWorkflow(t)
	located := make(chan struct{})

	locator.EXPECT().CurrentPosition(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (models.Coordinates, error) {
			defer close(located)
			return blockUntilDone(ctx)
		}).Times(1)
	// CreateIncident не ожидается: gomock провалит тест при вызове

	require.NoError(t, w.Confirm(models.CategoryOther, ""))
	waitFor(t, states, StateLocating)

	require.NoError(t, w.Cancel())
	waitFor(t, states, StateIdle)

	<-located
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, StateIdle, w.State().Name())
}

func TestCancel_WhileDispatchingIsRefused(t *testing.T) {
	w, locator, committer, states := newTestWorkflow(t)
	release := make(chan struct{})
	here := models.Coordinates{Latitude: 17.5948, Longitude: 78.4405}

	locator.EXPECT().CurrentPosition(gomock.Any()).Return(here, nil).Times(1)
	committer.EXPECT().CreateIncident(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, category models.Category, note *string, coords models.Coordinates) (*models.Incident, error) {
			<-release
			return newIncident(category, note, coords), nil
		}).Times(1)

	require.NoError(t, w.Confirm(models.CategoryFire, ""))
	waitFor(t, states, StateDispatching)

	assert.ErrorIs(t, w.Cancel(), ErrCannotCancel)
	assert.ErrorIs(t, w.Confirm(models.CategoryFire, ""), ErrAttemptInProgress)

	close(release)
	waitFor(t, states, StateSent)
	waitFor(t, states, StateIdle)
}

func TestConfirm_InvalidCategory(t *testing.T) {
	w, _, _, _ := newTestWorkflow(t)

	err := w.Confirm(models.Category("Flood"), "")

	assert.ErrorIs(t, err, ErrInvalidCategory)
	assert.Equal(t, StateIdle, w.State().Name())
}

func TestRetry_WithoutFailure(t *testing.T) {
	w, _, _, _ := newTestWorkflow(t)

	assert.ErrorIs(t, w.Retry(), ErrNothingToRetry)
}

func TestCancel_IdleIsNoop(t *testing.T) {
	w, _, _, _ := newTestWorkflow(t)

	assert.NoError(t, w.Cancel())
	assert.Equal(t, StateIdle, w.State().Name())
}

func TestNewDraft_NormalizesNote(t *testing.T) {
	d, err := NewDraft(models.CategoryOther, "   ")
	require.NoError(t, err)
	assert.Nil(t, d.Note)

	d, err = NewDraft(models.CategoryOther, " floor 2 ")
	require.NoError(t, err)
	require.NotNil(t, d.Note)
	assert.Equal(t, "floor 2", *d.Note)
}

func TestViewOf(t *testing.T) {
	note := "gate B"
	incident := newIncident(models.CategoryMedical, &note, fallback)

	v := ViewOf(Sent{
		Draft:       Draft{Category: models.CategoryMedical, Note: &note},
		Coordinates: fallback,
		Fallback:    true,
		Incident:    incident,
	})

	assert.Equal(t, StateSent, v.State)
	assert.Equal(t, models.CategoryMedical, v.Category)
	require.NotNil(t, v.Coordinates)
	assert.Equal(t, fallback, *v.Coordinates)
	assert.True(t, v.Fallback)
	assert.Equal(t, incident.ID.String(), v.IncidentID)

	v = ViewOf(Failed{Draft: Draft{Category: models.CategoryFire}, Message: FailureMessage})
	assert.Equal(t, StateError, v.State)
	assert.Equal(t, FailureMessage, v.Message)
	assert.Nil(t, v.Coordinates)
}
