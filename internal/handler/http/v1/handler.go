package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/radius/internal/config"
	"github.com/shenikar/radius/internal/dispatch"
	"github.com/shenikar/radius/internal/models"
	"github.com/shenikar/radius/internal/service"
	"github.com/sirupsen/logrus"
)

// IncidentLister - синхронизированный набор активных инцидентов
type IncidentLister interface {
	Incidents() []*models.Incident
	Count() int
}

// Dispatcher - процесс вызова помощи
type Dispatcher interface {
	State() dispatch.State
	Confirm(category models.Category, note string) error
	Retry() error
	Cancel() error
}

type Handler struct {
	incidentService service.IncidentService
	incidents       IncidentLister
	dispatcher      Dispatcher
	ws              http.Handler
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	incidentService service.IncidentService,
	incidents IncidentLister,
	dispatcher Dispatcher,
	ws http.Handler,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	validate := validator.New()
	_ = validate.RegisterValidation("incident_category", func(fl validator.FieldLevel) bool {
		_, err := models.ParseCategory(fl.Field().String())
		return err == nil
	})

	return &Handler{
		incidentService: incidentService,
		incidents:       incidents,
		dispatcher:      dispatcher,
		ws:              ws,
		logger:          logger,
		validate:        validate,
		cfg:             cfg,
	}
}

// @Summary Get active incidents
// @Description Get the synchronized set of active incidents, newest first
// @Tags Incidents
// @Produce json
// @Success 200 {object} IncidentListResponse
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	c.JSON(http.StatusOK, ModelsToIncidentList(h.incidents.Incidents()))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID, including resolved ones
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrIncidentNotFound) {
			log.WithError(err).Warn("Incident not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
			return
		}
		log.WithError(err).Error("Failed to get incident from service")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Resolve an incident
// @Description Mark an incident as resolved or dismissed. It leaves the active set of every subscriber. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param request body ResolveIncidentRequest true "Target status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid incident ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /incidents/{id}/resolve [post]
func (h *Handler) resolveIncident(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid incident ID"})
		return
	}
	log := h.logger.WithField("method", "resolveIncident").WithField("id", id)

	var input ResolveIncidentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.ResolveIncident(c.Request.Context(), id, input.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIncidentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		case errors.Is(err, service.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.WithError(err).Error("Failed to resolve incident in service")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get dispatch state
// @Description Get the current state of the SOS button
// @Tags Dispatch
// @Produce json
// @Success 200 {object} dispatch.View
// @Router /dispatch [get]
func (h *Handler) getDispatch(c *gin.Context) {
	c.JSON(http.StatusOK, dispatch.ViewOf(h.dispatcher.State()))
}

// @Summary Confirm an emergency dispatch
// @Description Start a dispatch attempt: locate, then write a new active incident. The result arrives over the websocket.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Param request body ConfirmDispatchRequest true "Category and optional note"
// @Success 202 {object} dispatch.View
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 409 {object} map[string]string "Attempt already in progress"
// @Router /dispatch [post]
func (h *Handler) confirmDispatch(c *gin.Context) {
	var input ConfirmDispatchRequest
	log := h.logger.WithField("method", "confirmDispatch")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Формат уже проверен валидатором
	category, _ := models.ParseCategory(input.Category)
	if err := h.dispatcher.Confirm(category, input.Note); err != nil {
		h.writeDispatchError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, dispatch.ViewOf(h.dispatcher.State()))
}

// @Summary Retry a failed dispatch
// @Description Re-run the failed attempt with the same category and note and a fresh location
// @Tags Dispatch
// @Produce json
// @Success 202 {object} dispatch.View
// @Failure 409 {object} map[string]string "Nothing to retry"
// @Router /dispatch/retry [post]
func (h *Handler) retryDispatch(c *gin.Context) {
	log := h.logger.WithField("method", "retryDispatch")
	if err := h.dispatcher.Retry(); err != nil {
		h.writeDispatchError(c, log, err)
		return
	}
	c.JSON(http.StatusAccepted, dispatch.ViewOf(h.dispatcher.State()))
}

// @Summary Cancel a dispatch
// @Description Return the SOS button to idle. Refused while the incident write is in flight.
// @Tags Dispatch
// @Produce json
// @Success 200 {object} dispatch.View
// @Failure 409 {object} map[string]string "Write already in flight"
// @Router /dispatch/cancel [post]
func (h *Handler) cancelDispatch(c *gin.Context) {
	log := h.logger.WithField("method", "cancelDispatch")
	if err := h.dispatcher.Cancel(); err != nil {
		h.writeDispatchError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, dispatch.ViewOf(h.dispatcher.State()))
}

func (h *Handler) writeDispatchError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, dispatch.ErrInvalidCategory):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dispatch.ErrAttemptInProgress),
		errors.Is(err, dispatch.ErrNothingToRetry),
		errors.Is(err, dispatch.ErrCannotCancel):
		log.WithError(err).Info("Dispatch request conflicts with current state")
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.WithError(err).Error("Dispatch request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Incidents: h.incidents.Count()})
}
