package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/shenikar/radius/internal/geo"
	"github.com/shenikar/radius/internal/models"
	"github.com/sirupsen/logrus"
)

// FailureMessage показывается пользователю, когда запись не удалась
const FailureMessage = "Could not dispatch help. Check your connection and try again."

// Committer записывает новый активный инцидент в удаленное хранилище
type Committer interface {
	CreateIncident(ctx context.Context, category models.Category, note *string, coords models.Coordinates) (*models.Incident, error)
}

// Options - параметры процесса вызова
type Options struct {
	GeoTimeout          time.Duration
	WriteTimeout        time.Duration
	SentDisplayInterval time.Duration
	Fallback            models.Coordinates
}

// Workflow ведет кнопку SOS через состояния
// idle -> locating -> dispatching -> sent | error.
// Одновременно выполняется не более одной попытки.
type Workflow struct {
	locator   geo.Provider
	committer Committer
	logger    *logrus.Logger
	opts      Options

	mu             sync.Mutex
	state          State
	attempt        uint64
	sentTimer      *time.Timer
	nextObserverID int
	observers      map[int]func(State)
	pending        []State

	// emitMu сериализует доставку, чтобы наблюдатели видели переходы по порядку
	emitMu sync.Mutex
}

// NewWorkflow создает новый Workflow в состоянии idle
func NewWorkflow(locator geo.Provider, committer Committer, logger *logrus.Logger, opts Options) *Workflow {
	return &Workflow{
		locator:   locator,
		committer: committer,
		logger:    logger,
		opts:      opts,
		state:     Idle{},
		observers: make(map[int]func(State)),
	}
}

// State возвращает текущее состояние
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// OnStateChanged регистрирует наблюдателя переходов. Наблюдатели вызываются
// по одному и в порядке переходов. Возвращает функцию отписки.
func (w *Workflow) OnStateChanged(callback func(State)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextObserverID
	w.nextObserverID++
	w.observers[id] = callback
	return func() {
		w.mu.Lock()
		delete(w.observers, id)
		w.mu.Unlock()
	}
}

// Confirm начинает попытку вызова. Пока идет поиск местоположения или запись,
// новая попытка отклоняется с ErrAttemptInProgress.
func (w *Workflow) Confirm(category models.Category, note string) error {
	draft, err := NewDraft(category, note)
	if err != nil {
		return err
	}

	w.mu.Lock()
	switch w.state.(type) {
	case Locating, Dispatching:
		w.mu.Unlock()
		w.logger.WithFields(logrus.Fields{
			"component": "dispatch",
			"method":    "Confirm",
			"category":  category,
		}).Warn("Rejecting confirm while an attempt is in progress")
		return ErrAttemptInProgress
	}
	w.begin(draft)
	w.mu.Unlock()

	w.emit()
	return nil
}

// Retry повторяет неудавшуюся попытку с тем же черновиком и новым поиском местоположения
func (w *Workflow) Retry() error {
	w.mu.Lock()
	failed, ok := w.state.(Failed)
	if !ok {
		w.mu.Unlock()
		return ErrNothingToRetry
	}
	w.begin(failed.Draft)
	w.mu.Unlock()

	w.emit()
	return nil
}

// Cancel возвращает процесс в idle. Во время записи отмена невозможна:
// исход уже отправленной записи неизвестен.
func (w *Workflow) Cancel() error {
	w.mu.Lock()
	switch w.state.(type) {
	case Idle:
		w.mu.Unlock()
		return nil
	case Dispatching:
		w.mu.Unlock()
		return ErrCannotCancel
	}
	// Результат уже запущенного поиска местоположения будет отброшен
	w.attempt++
	w.stopSentTimer()
	w.transition(Idle{})
	w.mu.Unlock()

	w.logger.WithField("component", "dispatch").Info("Dispatch cancelled by user")
	w.emit()
	return nil
}

// begin вызывается с захваченным mu
func (w *Workflow) begin(draft Draft) {
	w.stopSentTimer()
	w.attempt++
	w.transition(Locating{Draft: draft})
	go w.run(w.attempt, draft)
}

func (w *Workflow) run(attempt uint64, draft Draft) {
	log := w.logger.WithFields(logrus.Fields{
		"component": "dispatch",
		"attempt":   attempt,
		"category":  draft.Category,
	})

	coords, fallback := w.locate(log)

	w.mu.Lock()
	if w.attempt != attempt {
		w.mu.Unlock()
		log.Info("Attempt cancelled before dispatch, discarding location")
		return
	}
	w.transition(Dispatching{Draft: draft, Coordinates: coords, Fallback: fallback})
	w.mu.Unlock()
	w.emit()

	ctx, cancel := context.WithTimeout(context.Background(), w.opts.WriteTimeout)
	incident, err := w.committer.CreateIncident(ctx, draft.Category, draft.Note, coords)
	cancel()
	if err == nil && incident == nil {
		err = ErrNoIncident
	}

	w.mu.Lock()
	if err != nil {
		writeErr := &WriteError{Err: err}
		log.WithError(writeErr).Error("Failed to dispatch incident")
		w.transition(Failed{Draft: draft, Message: FailureMessage, Err: writeErr})
	} else {
		log.WithFields(logrus.Fields{
			"incident_id": incident.ID,
			"fallback":    fallback,
		}).Info("Incident dispatched")
		w.transition(Sent{Draft: draft, Coordinates: coords, Fallback: fallback, Incident: incident})
		w.sentTimer = time.AfterFunc(w.opts.SentDisplayInterval, func() { w.expireSent(attempt) })
	}
	w.mu.Unlock()
	w.emit()
}

// locate никогда не завершается ошибкой: при неудаче или таймауте
// подставляется резервная точка. Ожидание ограничено только GeoTimeout.
func (w *Workflow) locate(log *logrus.Entry) (models.Coordinates, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.GeoTimeout)
	defer cancel()

	type result struct {
		coords models.Coordinates
		err    error
	}
	done := make(chan result, 1)
	go func() {
		coords, err := w.locator.CurrentPosition(ctx)
		done <- result{coords: coords, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res.err = &geo.GeoError{Timeout: true, Err: ctx.Err()}
	}
	if res.err != nil {
		log.WithError(res.err).WithField("fallback", w.opts.Fallback).Warn("Location unavailable, using fallback coordinates")
		return w.opts.Fallback, true
	}
	return res.coords, false
}

func (w *Workflow) expireSent(attempt uint64) {
	w.mu.Lock()
	if _, ok := w.state.(Sent); !ok || w.attempt != attempt {
		w.mu.Unlock()
		return
	}
	w.sentTimer = nil
	w.transition(Idle{})
	w.mu.Unlock()
	w.emit()
}

// stopSentTimer вызывается с захваченным mu
func (w *Workflow) stopSentTimer() {
	if w.sentTimer != nil {
		w.sentTimer.Stop()
		w.sentTimer = nil
	}
}

// transition вызывается с захваченным mu
func (w *Workflow) transition(state State) {
	w.logger.WithFields(logrus.Fields{
		"component": "dispatch",
		"from":      w.state.Name(),
		"to":        state.Name(),
	}).Debug("Dispatch state changed")
	w.state = state
	w.pending = append(w.pending, state)
}

// emit доставляет накопленные переходы наблюдателям вне mu
func (w *Workflow) emit() {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	for {
		w.mu.Lock()
		if len(w.pending) == 0 {
			w.mu.Unlock()
			return
		}
		state := w.pending[0]
		w.pending = w.pending[1:]
		observers := make([]func(State), 0, len(w.observers))
		for _, observer := range w.observers {
			observers = append(observers, observer)
		}
		w.mu.Unlock()

		for _, observer := range observers {
			observer(state)
		}
	}
}
