package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/config"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	alertService  service.AlertService
	fanoutService service.FanoutService
	statsService  service.StatsService
	intentQueue   service.IntentQueue
	logger        *logrus.Logger
	validate      *validator.Validate
	cfg           *config.Config
}

func NewHandler(
	alertService service.AlertService,
	fanoutService service.FanoutService,
	statsService service.StatsService,
	intentQueue service.IntentQueue,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		alertService:  alertService,
		fanoutService: fanoutService,
		statsService:  statsService,
		intentQueue:   intentQueue,
		logger:        logger,
		validate:      validator.New(),
		cfg:           cfg,
	}
}

// respondError переводит типизированные ошибки сервисного слоя в HTTP-статусы
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var transitionErr *service.InvalidTransitionError
	var notFoundErr *service.NotFoundError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{"error": transitionErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// @Summary Create a new alert
// @Description Create a new community alert. Initial status is always pending. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param alert body CreateAlertRequest true "Alert creation request"
// @Success 201 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid request body or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [post]
func (h *Handler) createAlert(c *gin.Context) {
	var input CreateAlertRequest
	log := h.logger.WithField("method", "createAlert")

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

	model := DTOToAlertModel(input)
	if err := h.alertService.CreateAlert(c.Request.Context(), model); err != nil {
		log.WithError(err).Error("Failed to create alert in service")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToAlertResponse(model))
}

// @Summary Get a list of alerts
// @Description Get a paginated list of alerts with optional status and category filters. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Number of items per page" default(20)
// @Param status query string false "Filter by status"
// @Param category query string false "Filter by category"
// @Success 200 {array} AlertResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	log := h.logger.WithField("method", "listAlerts")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	status := models.AlertStatus(c.Query("status"))
	category := models.AlertCategory(c.Query("category"))

	alerts, err := h.alertService.ListAlerts(c.Request.Context(), page, pageSize, status, category)
	if err != nil {
		log.WithError(err).Error("Failed to list alerts from service")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToAlertResponses(alerts))
}

// @Summary Get alert by ID
// @Description Get a single alert by its ID. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "getAlert").WithField("id", id)

	alert, err := h.alertService.GetAlert(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get alert from service")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Transition alert status
// @Description Move an alert to a new lifecycle status. Illegal transitions return 409. Requires API key.
// @Tags Alerts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Param transition body TransitionStatusRequest true "Status transition request"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 409 {object} map[string]string "Transition not allowed"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/status [post]
func (h *Handler) transitionStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "transitionStatus").WithField("id", id)

	var input TransitionStatusRequest
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

	var actorID *uuid.UUID
	if input.ActingUserID != "" {
		parsed, _ := uuid.Parse(input.ActingUserID)
		actorID = &parsed
	}

	alert, err := h.alertService.TransitionStatus(c.Request.Context(), id, models.AlertStatus(input.Status), actorID)
	if err != nil {
		log.WithError(err).Warn("Failed to transition alert status")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Submit a veracity report
// @Description Submit or replace the caller's report about an alert. Recomputes the reliability score. Requires API key.
// @Tags Reports
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Param report body SubmitReportRequest true "Report submission request"
// @Success 200 {object} AlertResponse
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/reports [post]
func (h *Handler) submitReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "submitReport").WithField("id", id)

	var input SubmitReportRequest
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

	reporterID, _ := uuid.Parse(input.ReporterID)
	report := &models.Report{
		AlertID:    id,
		ReporterID: reporterID,
		Type:       models.ReportType(input.Type),
		Reason:     input.Reason,
	}

	alert, err := h.alertService.SubmitReport(c.Request.Context(), report)
	if err != nil {
		log.WithError(err).Error("Failed to submit report in service")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToAlertResponse(alert))
}

// @Summary Offer help with an alert
// @Description Submit or replace the caller's help offer; the alert author gets a notification. Requires API key.
// @Tags HelpOffers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Param offer body SubmitHelpOfferRequest true "Help offer request"
// @Success 201 "Created"
// @Failure 400 {object} map[string]string "Invalid alert ID or request body"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/help-offers [post]
func (h *Handler) submitHelpOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "submitHelpOffer").WithField("id", id)

	var input SubmitHelpOfferRequest
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

	helperID, _ := uuid.Parse(input.HelperID)
	offer := &models.HelpOffer{
		AlertID:     id,
		HelperID:    helperID,
		OfferType:   input.OfferType,
		Description: input.Description,
		Contact:     input.Contact,
	}

	intent, err := h.alertService.SubmitHelpOffer(c.Request.Context(), offer)
	if err != nil {
		log.WithError(err).Error("Failed to submit help offer in service")
		respondError(c, err)
		return
	}

	if intent != nil {
		if err := h.intentQueue.Enqueue(c.Request.Context(), []*models.NotificationIntent{intent}); err != nil {
			log.WithError(err).Error("Failed to enqueue help offer notification")
		}
	}
	c.Status(http.StatusCreated)
}

// @Summary Accept a help offer
// @Description Mark a helper's offer as accepted by the alert author. Requires API key.
// @Tags HelpOffers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Param helperId path string true "Helper user ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid identifiers"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Offer not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/help-offers/{helperId}/accept [post]
func (h *Handler) acceptHelpOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	helperID, err := uuid.Parse(c.Param("helperId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid helper ID"})
		return
	}
	log := h.logger.WithField("method", "acceptHelpOffer").WithField("id", id)

	if err := h.alertService.AcceptHelpOffer(c.Request.Context(), id, helperID); err != nil {
		log.WithError(err).Warn("Failed to accept help offer")
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Compute notification fan-out
// @Description Compute the recipient set and notification payloads for an alert and enqueue them for delivery. Requires API key.
// @Tags Notifications
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Alert ID"
// @Success 200 {array} NotificationIntentResponse
// @Failure 400 {object} map[string]string "Invalid alert ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Alert not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /alerts/{id}/fanout [post]
func (h *Handler) fanout(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert ID"})
		return
	}
	log := h.logger.WithField("method", "fanout").WithField("id", id)

	intents, err := h.fanoutService.Fanout(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Error("Failed to compute fan-out")
		respondError(c, err)
		return
	}

	if len(intents) > 0 {
		if err := h.intentQueue.Enqueue(c.Request.Context(), intents); err != nil {
			log.WithError(err).Error("Failed to enqueue notification intents")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue notifications"})
			return
		}
	}

	c.JSON(http.StatusOK, IntentsToResponses(intents))
}

// @Summary Aggregate alert statistics
// @Description Compute an idempotent statistics rollup for a time bucket. Requires API key.
// @Tags Statistics
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param bucket query string true "Bucket type: daily, weekly or monthly"
// @Param start query string true "Period start, RFC3339"
// @Param end query string true "Period end, RFC3339"
// @Success 200 {object} StatisticResponse
// @Failure 400 {object} map[string]string "Invalid bucket or period"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /stats/aggregate [get]
func (h *Handler) aggregateStats(c *gin.Context) {
	log := h.logger.WithField("method", "aggregateStats")

	bucket := models.BucketType(c.Query("bucket"))
	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start time, expected RFC3339"})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end time, expected RFC3339"})
		return
	}

	stat, err := h.statsService.Aggregate(c.Request.Context(), bucket, start, end)
	if err != nil {
		log.WithError(err).Error("Failed to aggregate statistics")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StatisticToResponse(stat))
}

// @Summary Get author trust score
// @Description Compute the derived trust aggregate over all of a user's authored alerts. Requires API key.
// @Tags Users
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "User ID"
// @Success 200 {object} AuthorTrustResponse
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /users/{id}/trust [get]
func (h *Handler) authorTrust(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user ID"})
		return
	}
	log := h.logger.WithField("method", "authorTrust").WithField("id", id)

	trust, err := h.alertService.AuthorTrust(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Error("Failed to compute author trust")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthorTrustResponse{
		AlertCount:       trust.AlertCount,
		FalseAlarmRate:   trust.FalseAlarmRate,
		ConfirmationRate: trust.ConfirmationRate,
		Score:            trust.Score,
	})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
