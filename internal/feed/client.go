package feed

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	listenerCloseTimeout = 5 * time.Second
	notificationBuffer   = 64
)

// Options - параметры переподключения
type Options struct {
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// Client сводит снимок и живой канал изменений в один типизированный поток
type Client struct {
	source Source
	logger *logrus.Logger
	opts   Options
}

// NewClient создает новый Client
func NewClient(source Source, logger *logrus.Logger, opts Options) *Client {
	if opts.ReconnectBaseDelay <= 0 {
		opts.ReconnectBaseDelay = time.Second
	}
	if opts.ReconnectMaxDelay < opts.ReconnectBaseDelay {
		opts.ReconnectMaxDelay = opts.ReconnectBaseDelay
	}
	return &Client{
		source: source,
		logger: logger,
		opts:   opts,
	}
}

// Subscription - захваченная подписка на поток уведомлений.
// Оба канала закрываются после освобождения подписки.
type Subscription struct {
	notifications chan Notification
	errs          chan error
	cancel        context.CancelFunc
	done          chan struct{}
	closeOnce     sync.Once
}

// Notifications возвращает поток уведомлений в порядке поступления
func (s *Subscription) Notifications() <-chan Notification { return s.notifications }

// Errors возвращает поток FetchError и SubscriptionError
func (s *Subscription) Errors() <-chan error { return s.errs }

// Done закрывается, когда канал изменений освобожден
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close освобождает подписку и дожидается закрытия канала изменений
func (s *Subscription) Close() {
	s.closeOnce.Do(s.cancel)
	<-s.done
}

// Subscribe открывает подписку. Подписка живет, пока не отменен ctx или
// не вызван Close; обрывы канала восстанавливаются с экспоненциальной задержкой.
//
// После каждого успешного подключения сначала отдается Snapshot, затем
// изменения, накопленные каналом с момента подключения.
func (c *Client) Subscribe(ctx context.Context) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		notifications: make(chan Notification, notificationBuffer),
		errs:          make(chan error, notificationBuffer),
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	go c.run(ctx, s)
	return s
}

func (c *Client) run(ctx context.Context, s *Subscription) {
	log := c.logger.WithField("component", "feed")
	defer func() {
		close(s.notifications)
		close(s.errs)
		close(s.done)
	}()

	delay := c.opts.ReconnectBaseDelay
	failures := 0
	snapshotDelivered := false

	for {
		listener, err := c.source.Listen(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			log.WithError(err).WithField("attempt", failures).Warn("Failed to open change subscription")
			if !c.emitError(ctx, s, &SubscriptionError{Attempt: failures, Err: err}) {
				return
			}
			// Снимок нужен даже без живого канала
			if !snapshotDelivered {
				snapshotDelivered = true
				if _, ok := c.deliverSnapshot(ctx, s); !ok {
					return
				}
			}
		} else {
			failures = 0
			delay = c.opts.ReconnectBaseDelay
			snapshotDelivered = true
			log.Info("Change subscription opened")

			err = c.consume(ctx, s, listener)
			c.closeListener(ctx, listener)
			if ctx.Err() != nil {
				log.Info("Change subscription released")
				return
			}
			failures++
			log.WithError(err).Warn("Change subscription dropped")
			if !c.emitError(ctx, s, &SubscriptionError{Attempt: failures, Err: err}) {
				return
			}
		}

		log.WithField("retry_in", delay).Info("Reconnecting change subscription")
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.opts.ReconnectMaxDelay {
			delay = c.opts.ReconnectMaxDelay
		}
	}
}

// consume отдает снимок и затем изменения до первой ошибки канала.
// Если снимок не получен, он повторяется с экспоненциальной задержкой,
// пока канал жив; изменения между попытками доставляются как обычно.
func (c *Client) consume(ctx context.Context, s *Subscription, listener Listener) error {
	fetched, ok := c.deliverSnapshot(ctx, s)
	if !ok {
		return ctx.Err()
	}
	retryDelay := c.opts.ReconnectBaseDelay
	for {
		waitCtx, cancel := ctx, context.CancelFunc(func() {})
		if !fetched {
			waitCtx, cancel = context.WithTimeout(ctx, retryDelay)
		}
		change, err := listener.WaitForChange(waitCtx)
		expired := waitCtx.Err() != nil && ctx.Err() == nil
		cancel()
		if err != nil {
			if !fetched && expired {
				c.logger.WithField("retry_in", retryDelay).Info("Retrying active incidents snapshot")
				if fetched, ok = c.deliverSnapshot(ctx, s); !ok {
					return ctx.Err()
				}
				retryDelay *= 2
				if retryDelay > c.opts.ReconnectMaxDelay {
					retryDelay = c.opts.ReconnectMaxDelay
				}
				continue
			}
			return err
		}
		var n Notification
		switch change.Op {
		case OpInsert:
			n = Created(change.Incident)
		case OpUpdate:
			n = Updated(change.Incident)
		default:
			c.logger.WithField("op", change.Op).Warn("Skipping change with unknown operation")
			continue
		}
		if change.Incident == nil {
			c.logger.WithField("op", change.Op).Warn("Skipping change without record")
			continue
		}
		if !c.emit(ctx, s, n) {
			return ctx.Err()
		}
	}
}

// deliverSnapshot сообщает, получен ли снимок; ok == false только если подписка освобождается
func (c *Client) deliverSnapshot(ctx context.Context, s *Subscription) (fetched, ok bool) {
	incidents, err := c.source.FetchActive(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false, false
		}
		c.logger.WithError(err).Error("Failed to fetch active incidents snapshot")
		return false, c.emitError(ctx, s, &FetchError{Err: err})
	}
	c.logger.WithField("count", len(incidents)).Debug("Active incidents snapshot fetched")
	return true, c.emit(ctx, s, Snapshot(incidents))
}

func (c *Client) closeListener(ctx context.Context, listener Listener) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), listenerCloseTimeout)
	defer cancel()
	if err := listener.Close(closeCtx); err != nil {
		c.logger.WithError(err).Warn("Failed to close change listener")
	}
}

func (c *Client) emit(ctx context.Context, s *Subscription, n Notification) bool {
	select {
	case s.notifications <- n:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) emitError(ctx context.Context, s *Subscription, err error) bool {
	select {
	case s.errs <- err:
		return true
	case <-ctx.Done():
		return false
	}
}
