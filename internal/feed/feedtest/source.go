// Package feedtest содержит управляемую реализацию feed.Source для тестов.
package feedtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/radius/internal/feed"
	"github.com/shenikar/radius/internal/models"
)

// ErrConnectionLost возвращается слушателем после Drop
var ErrConnectionLost = errors.New("feedtest: connection lost")

type fetchResult struct {
	incidents []*models.Incident
	err       error
}

// Source - feed.Source, управляемый из теста. Ответы FetchActive и ошибки
// Listen берутся из очередей; при пустой очереди снимок пуст, а Listen успешен.
// Каждый открытый слушатель публикуется в Listeners.
type Source struct {
	Listeners chan *Listener

	mu         sync.Mutex
	fetches    []fetchResult
	listenErrs []error
	fetchCalls int
}

func NewSource() *Source {
	return &Source{Listeners: make(chan *Listener, 16)}
}

// QueueFetch ставит в очередь ответ на следующий FetchActive
func (s *Source) QueueFetch(incidents []*models.Incident, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches = append(s.fetches, fetchResult{incidents: incidents, err: err})
}

// QueueListenError заставляет следующий Listen завершиться ошибкой
func (s *Source) QueueListenError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenErrs = append(s.listenErrs, err)
}

func (s *Source) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *Source) FetchActive(ctx context.Context) ([]*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if len(s.fetches) == 0 {
		return nil, nil
	}
	next := s.fetches[0]
	s.fetches = s.fetches[1:]
	return next.incidents, next.err
}

func (s *Source) Listen(ctx context.Context) (feed.Listener, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	if len(s.listenErrs) > 0 {
		err := s.listenErrs[0]
		s.listenErrs = s.listenErrs[1:]
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	l := &Listener{
		changes: make(chan feed.Change, 64),
		dropped: make(chan struct{}),
		closed:  make(chan struct{}),
	}
	s.Listeners <- l
	return l, nil
}

// Listener - открытый канал изменений, управляемый из теста
type Listener struct {
	changes   chan feed.Change
	dropped   chan struct{}
	closed    chan struct{}
	dropOnce  sync.Once
	closeOnce sync.Once
}

// Push доставляет изменение в канал
func (l *Listener) Push(op feed.Op, incident *models.Incident) {
	l.changes <- feed.Change{Op: op, Incident: incident}
}

// Drop обрывает канал: после уже доставленных изменений WaitForChange вернет ошибку
func (l *Listener) Drop() {
	l.dropOnce.Do(func() { close(l.dropped) })
}

// Closed закрывается, когда клиент освободил слушателя
func (l *Listener) Closed() <-chan struct{} {
	return l.closed
}

func (l *Listener) WaitForChange(ctx context.Context) (feed.Change, error) {
	select {
	case change := <-l.changes:
		return change, nil
	default:
	}
	select {
	case change := <-l.changes:
		return change, nil
	case <-l.dropped:
		return feed.Change{}, ErrConnectionLost
	case <-ctx.Done():
		return feed.Change{}, ctx.Err()
	}
}

func (l *Listener) Close(ctx context.Context) error {
	l.closeOnce.Do(func() { close(l.closed) })
	return nil
}

// NewIncident создает инцидент с новым id
func NewIncident(status string) *models.Incident {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Incident{
		ID:        uuid.New(),
		Category:  models.CategoryMedical,
		Latitude:  17.5948,
		Longitude: 78.4405,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithStatus возвращает копию инцидента с другим статусом
func WithStatus(incident *models.Incident, status string) *models.Incident {
	c := incident.Clone()
	c.Status = status
	c.UpdatedAt = c.UpdatedAt.Add(time.Second)
	return c
}
