package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shenikar/radius/internal/feed"
	"github.com/sirupsen/logrus"
)

// Listen открывает канал изменений на выделенном соединении.
// Соединение изымается из пула и закрывается вместе со слушателем.
func (r *IncidentRepository) Listen(ctx context.Context) (feed.Listener, error) {
	pooled, err := r.db.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	conn := pooled.Hijack()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{ChangeChannel}.Sanitize()); err != nil {
		_ = conn.Close(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("failed to listen on %s: %w", ChangeChannel, err)
	}

	return &changeListener{
		conn:    conn,
		channel: ChangeChannel,
		logger:  r.logger,
	}, nil
}

// changeListener разбирает NOTIFY от триггера incidents_notify_change
type changeListener struct {
	conn    *pgx.Conn
	channel string
	logger  *logrus.Logger
}

func (l *changeListener) WaitForChange(ctx context.Context) (feed.Change, error) {
	for {
		notification, err := l.conn.WaitForNotification(ctx)
		if err != nil {
			return feed.Change{}, fmt.Errorf("failed to wait for notification: %w", err)
		}
		if notification.Channel != l.channel {
			continue
		}

		change, err := decodeChange(notification.Payload)
		if err != nil {
			l.logger.WithError(err).WithField("channel", l.channel).Error("Skipping malformed change payload")
			continue
		}
		return change, nil
	}
}

func decodeChange(payload string) (feed.Change, error) {
	var change feed.Change
	if err := json.Unmarshal([]byte(payload), &change); err != nil {
		return feed.Change{}, fmt.Errorf("decode change payload: %w", err)
	}
	if change.Incident == nil {
		return feed.Change{}, fmt.Errorf("change payload without record")
	}
	return change, nil
}

func (l *changeListener) Close(ctx context.Context) error {
	if err := l.conn.Close(ctx); err != nil {
		return fmt.Errorf("failed to close listen connection: %w", err)
	}
	return nil
}
