package feed

import (
	"context"
	"fmt"

	"github.com/shenikar/radius/internal/models"
)

// Kind - тип нормализованного уведомления
type Kind int

const (
	KindSnapshot Kind = iota
	KindCreated
	KindUpdated
)

func (k Kind) String() string {
	switch k {
	case KindSnapshot:
		return "snapshot"
	case KindCreated:
		return "created"
	case KindUpdated:
		return "updated"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Notification - единица потока изменений.
// Snapshot несет полный список, Created и Updated - ровно один инцидент.
type Notification struct {
	Kind      Kind
	Incidents []*models.Incident
}

func Snapshot(incidents []*models.Incident) Notification {
	return Notification{Kind: KindSnapshot, Incidents: incidents}
}

func Created(incident *models.Incident) Notification {
	return Notification{Kind: KindCreated, Incidents: []*models.Incident{incident}}
}

func Updated(incident *models.Incident) Notification {
	return Notification{Kind: KindUpdated, Incidents: []*models.Incident{incident}}
}

// Incident возвращает инцидент одиночного уведомления
func (n Notification) Incident() *models.Incident {
	if len(n.Incidents) == 0 {
		return nil
	}
	return n.Incidents[0]
}

// Op - операция над записью в хранилище
type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
)

// Change - сырое событие канала изменений хранилища
type Change struct {
	Op       Op               `json:"op"`
	Incident *models.Incident `json:"record"`
}

// Source - то, что требуется от удаленного хранилища
type Source interface {
	// FetchActive возвращает все активные инциденты, новые первыми
	FetchActive(ctx context.Context) ([]*models.Incident, error)
	// Listen открывает долгоживущий канал изменений
	Listen(ctx context.Context) (Listener, error)
}

// Listener - открытый канал изменений. Close обязан освободить ресурс
// даже если ctx уже отменен.
type Listener interface {
	WaitForChange(ctx context.Context) (Change, error)
	Close(ctx context.Context) error
}
