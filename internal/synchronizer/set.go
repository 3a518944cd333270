package synchronizer

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shenikar/radius/internal/feed"
	"github.com/shenikar/radius/internal/models"
)

// Set - отображение id -> инцидент, содержащее ровно активные инциденты.
// Все правила идемпотентны и работают по принципу "последняя запись побеждает".
// Set не потокобезопасен: его владелец применяет уведомления строго по одному.
type Set struct {
	byID map[uuid.UUID]*models.Incident
}

// NewSet создает пустой набор
func NewSet() *Set {
	return &Set{byID: make(map[uuid.UUID]*models.Incident)}
}

// Apply применяет одно уведомление и сообщает, изменился ли набор
func (s *Set) Apply(n feed.Notification) bool {
	switch n.Kind {
	case feed.KindSnapshot:
		return s.replace(n.Incidents)
	case feed.KindCreated:
		incident := n.Incident()
		if !incident.IsActive() {
			return false
		}
		return s.put(incident)
	case feed.KindUpdated:
		incident := n.Incident()
		if incident == nil {
			return false
		}
		if !incident.IsActive() {
			return s.remove(incident.ID)
		}
		return s.put(incident)
	}
	return false
}

// replace заменяет набор целиком. Неактивные записи снимка пропускаются.
func (s *Set) replace(incidents []*models.Incident) bool {
	next := make(map[uuid.UUID]*models.Incident, len(incidents))
	for _, incident := range incidents {
		if incident.IsActive() {
			next[incident.ID] = incident.Clone()
		}
	}

	changed := len(next) != len(s.byID)
	if !changed {
		for id, incident := range next {
			if !incident.Equal(s.byID[id]) {
				changed = true
				break
			}
		}
	}
	s.byID = next
	return changed
}

func (s *Set) put(incident *models.Incident) bool {
	if incident.Equal(s.byID[incident.ID]) {
		return false
	}
	s.byID[incident.ID] = incident.Clone()
	return true
}

// remove отсутствующего id - не ошибка
func (s *Set) remove(id uuid.UUID) bool {
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// Get возвращает копию инцидента по id
func (s *Set) Get(id uuid.UUID) (*models.Incident, bool) {
	incident, ok := s.byID[id]
	return incident.Clone(), ok
}

// Len - число активных инцидентов
func (s *Set) Len() int {
	return len(s.byID)
}

// List возвращает копии инцидентов, новые первыми.
// Порядок производный и на корректность не влияет.
func (s *Set) List() []*models.Incident {
	out := make([]*models.Incident, 0, len(s.byID))
	for _, incident := range s.byID {
		out = append(out, incident.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
