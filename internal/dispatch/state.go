package dispatch

import (
	"strings"

	"github.com/shenikar/radius/internal/models"
)

// StateName - имя состояния процесса вызова помощи
type StateName string

const (
	StateIdle        StateName = "idle"
	StateLocating    StateName = "locating"
	StateDispatching StateName = "dispatching"
	StateSent        StateName = "sent"
	StateError       StateName = "error"
)

// State - одно из состояний Idle, Locating, Dispatching, Sent, Failed.
// Каждое несет только относящиеся к нему данные.
type State interface {
	Name() StateName
}

// Draft - то, что пользователь подтвердил: категория и необязательная заметка
type Draft struct {
	Category models.Category
	Note     *string
}

// NewDraft проверяет категорию и нормализует заметку: пробелы обрезаются,
// пустая строка становится отсутствующей заметкой.
func NewDraft(category models.Category, note string) (Draft, error) {
	if !category.Valid() {
		return Draft{}, ErrInvalidCategory
	}
	d := Draft{Category: category}
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		d.Note = &trimmed
	}
	return d, nil
}

type Idle struct{}

type Locating struct {
	Draft Draft
}

type Dispatching struct {
	Draft       Draft
	Coordinates models.Coordinates
	Fallback    bool
}

// Sent - инцидент записан. Coordinates - фактически использованные,
// Fallback сообщает, что это резервная точка.
type Sent struct {
	Draft       Draft
	Coordinates models.Coordinates
	Fallback    bool
	Incident    *models.Incident
}

// Failed - запись не удалась; Draft сохранен для повтора
type Failed struct {
	Draft   Draft
	Message string
	Err     error
}

func (Idle) Name() StateName        { return StateIdle }
func (Locating) Name() StateName    { return StateLocating }
func (Dispatching) Name() StateName { return StateDispatching }
func (Sent) Name() StateName        { return StateSent }
func (Failed) Name() StateName      { return StateError }

// View - плоское представление состояния для отображения
type View struct {
	State       StateName           `json:"state"`
	Category    models.Category     `json:"category,omitempty"`
	Note        *string             `json:"note,omitempty"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
	Fallback    bool                `json:"fallback,omitempty"`
	IncidentID  string              `json:"incident_id,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// ViewOf строит View для любого состояния
func ViewOf(state State) View {
	v := View{State: state.Name()}
	switch s := state.(type) {
	case Locating:
		v.Category, v.Note = s.Draft.Category, s.Draft.Note
	case Dispatching:
		v.Category, v.Note = s.Draft.Category, s.Draft.Note
		coords := s.Coordinates
		v.Coordinates, v.Fallback = &coords, s.Fallback
	case Sent:
		v.Category, v.Note = s.Draft.Category, s.Draft.Note
		coords := s.Coordinates
		v.Coordinates, v.Fallback = &coords, s.Fallback
		if s.Incident != nil {
			v.IncidentID = s.Incident.ID.String()
		}
	case Failed:
		v.Category, v.Note = s.Draft.Category, s.Draft.Note
		v.Message = s.Message
	}
	return v
}
