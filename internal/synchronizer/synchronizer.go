package synchronizer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shenikar/radius/internal/feed"
	"github.com/shenikar/radius/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyStarted = errors.New("synchronizer already started")
	ErrStopped        = errors.New("synchronizer stopped before the initial snapshot")
)

// Subscriber - источник потока уведомлений, обычно *feed.Client
type Subscriber interface {
	Subscribe(ctx context.Context) *feed.Subscription
}

// Synchronizer владеет набором активных инцидентов и единственный его меняет.
// Уведомления применяются по одному, в порядке поступления, в одной горутине;
// наблюдатели вызываются из той же горутины после каждого изменения.
type Synchronizer struct {
	feed   Subscriber
	logger *logrus.Logger

	mu             sync.RWMutex
	set            *Set
	nextObserverID int
	observers      map[int]func([]*models.Incident)
	errObservers   map[int]func(error)

	lifecycle sync.Mutex
	sub       *feed.Subscription
	loopDone  chan struct{}
}

// New создает новый Synchronizer
func New(subscriber Subscriber, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		feed:         subscriber,
		logger:       logger,
		set:          NewSet(),
		observers:    make(map[int]func([]*models.Incident)),
		errObservers: make(map[int]func(error)),
	}
}

// Start открывает подписку и ждет исхода первого снимка.
// Если снимок не получен, возвращается *feed.FetchError, набор остается пустым,
// а подписка продолжает работать. Подписка освобождается по Stop или
// при отмене ctx.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.lifecycle.Lock()
	if s.sub != nil {
		s.lifecycle.Unlock()
		return ErrAlreadyStarted
	}
	sub := s.feed.Subscribe(ctx)
	initial := make(chan error, 1)
	done := make(chan struct{})
	s.sub = sub
	s.loopDone = done
	s.lifecycle.Unlock()

	s.logger.WithField("component", "synchronizer").Info("Starting incident synchronization")
	go s.loop(sub, initial, done)

	select {
	case err := <-initial:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop освобождает подписку. Повторный вызов безопасен.
func (s *Synchronizer) Stop() {
	s.lifecycle.Lock()
	sub, done := s.sub, s.loopDone
	s.lifecycle.Unlock()
	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

// Done закрывается, когда цикл синхронизации завершен
func (s *Synchronizer) Done() <-chan struct{} {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	return s.loopDone
}

// OnIncidentsChanged регистрирует наблюдателя полного списка активных инцидентов.
// Возвращает функцию отписки.
func (s *Synchronizer) OnIncidentsChanged(callback func([]*models.Incident)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserverID
	s.nextObserverID++
	s.observers[id] = callback
	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// OnError регистрирует наблюдателя ошибок синхронизации
func (s *Synchronizer) OnError(callback func(error)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserverID
	s.nextObserverID++
	s.errObservers[id] = callback
	return func() {
		s.mu.Lock()
		delete(s.errObservers, id)
		s.mu.Unlock()
	}
}

// Incidents возвращает копию текущего набора, новые первыми
func (s *Synchronizer) Incidents() []*models.Incident {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.List()
}

// Count - число активных инцидентов
func (s *Synchronizer) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set.Len()
}

func (s *Synchronizer) loop(sub *feed.Subscription, initial chan<- error, done chan<- struct{}) {
	log := s.logger.WithField("component", "synchronizer")
	defer close(done)

	reported := false
	report := func(err error) {
		if !reported {
			reported = true
			initial <- err
		}
	}
	defer report(ErrStopped)

	notifications := sub.Notifications()
	errs := sub.Errors()
	for notifications != nil || errs != nil {
		select {
		case n, ok := <-notifications:
			if !ok {
				notifications = nil
				continue
			}
			s.apply(log, n)
			if n.Kind == feed.KindSnapshot {
				report(nil)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			var fetchErr *feed.FetchError
			if errors.As(err, &fetchErr) {
				report(err)
			}
			s.publishError(err)
		}
	}
	log.Info("Incident synchronization stopped")
}

func (s *Synchronizer) apply(log *logrus.Entry, n feed.Notification) {
	s.mu.Lock()
	changed := s.set.Apply(n)
	var incidents []*models.Incident
	var observers []func([]*models.Incident)
	if changed {
		incidents = s.set.List()
		for _, observer := range s.observers {
			observers = append(observers, observer)
		}
	}
	s.mu.Unlock()

	entry := log.WithFields(logrus.Fields{
		"kind":    n.Kind.String(),
		"changed": changed,
	})
	if incident := n.Incident(); incident != nil && n.Kind != feed.KindSnapshot {
		entry = entry.WithField("incident_id", incident.ID)
	}
	entry.Debug("Notification applied")

	for _, observer := range observers {
		observer(cloneList(incidents))
	}
}

func (s *Synchronizer) publishError(err error) {
	s.mu.RLock()
	observers := make([]func(error), 0, len(s.errObservers))
	for _, observer := range s.errObservers {
		observers = append(observers, observer)
	}
	s.mu.RUnlock()

	for _, observer := range observers {
		observer(fmt.Errorf("synchronizer: %w", err))
	}
}

func cloneList(incidents []*models.Incident) []*models.Incident {
	out := make([]*models.Incident, len(incidents))
	for i, incident := range incidents {
		out[i] = incident.Clone()
	}
	return out
}
