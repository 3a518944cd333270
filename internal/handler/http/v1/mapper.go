package v1

import "github.com/shenikar/radius/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:        model.ID,
		Category:  string(model.Category),
		Note:      model.Note,
		Latitude:  model.Latitude,
		Longitude: model.Longitude,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// ModelsToIncidentList преобразует набор моделей в DTO списка
func ModelsToIncidentList(models []*models.Incident) *IncidentListResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return &IncidentListResponse{Count: len(responses), Incidents: responses}
}
