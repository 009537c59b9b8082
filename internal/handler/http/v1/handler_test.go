package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/config"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
	"github.com/shenikar/community_alert_engine/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerMocks struct {
	alertService  *mocks.MockAlertService
	fanoutService *mocks.MockFanoutService
	statsService  *mocks.MockStatsService
	intentQueue   *mocks.MockIntentQueue
}

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*Handler, *handlerMocks, *gin.Engine) {
	ctrl := gomock.NewController(t)
	m := &handlerMocks{
		alertService:  mocks.NewMockAlertService(ctrl),
		fanoutService: mocks.NewMockFanoutService(ctrl),
		statsService:  mocks.NewMockStatsService(ctrl),
		intentQueue:   mocks.NewMockIntentQueue(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(m.alertService, m.fanoutService, m.statsService, m.intentQueue, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return handler, m, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func authHeader() map[string]string {
	return map[string]string{"X-API-Key": "test-api-key"}
}

func TestCreateAlertHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	authorID := uuid.New()
	lat, lon := 9.5370, -13.6785
	reqBody := CreateAlertRequest{
		Category:  "fire",
		Title:     "Warehouse fire",
		AuthorID:  authorID.String(),
		Latitude:  &lat,
		Longitude: &lon,
		City:      "Conakry",
	}

	m.alertService.EXPECT().
		CreateAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, alert *models.Alert) error {
			// Симулируем работу сервиса: ID, статус и рейтинг по умолчанию
			alert.ID = alertID
			alert.Status = models.StatusPending
			alert.ReliabilityScore = 100
			return nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/alerts", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, alertID, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 100.0, resp.ReliabilityScore)
}

func TestCreateAlertHandler_InvalidJSON(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.alertService.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "POST", "/api/v1/alerts", bytes.NewBufferString(`{"category": "fire"`), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestCreateAlertHandler_ValidationError(t *testing.T) {
	_, m, router := newTestHandler(t)
	reqBody := CreateAlertRequest{ // Отсутствует Title
		Category: "fire",
		AuthorID: uuid.New().String(),
	}

	m.alertService.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/alerts", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Title' failed on the 'required' tag")
}

func TestCreateAlertHandler_ServiceValidationError(t *testing.T) {
	_, m, router := newTestHandler(t)
	reqBody := CreateAlertRequest{
		Category: "fire",
		Title:    "Warehouse fire",
		AuthorID: uuid.New().String(),
	}

	m.alertService.EXPECT().
		CreateAlert(gomock.Any(), gomock.Any()).
		Return(&service.ValidationError{Field: "coordinates", Reason: "latitude and longitude must be provided together"}).
		Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/alerts", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation failed")
}

func TestCreateAlertHandler_ServiceError(t *testing.T) {
	_, m, router := newTestHandler(t)
	reqBody := CreateAlertRequest{
		Category: "fire",
		Title:    "Warehouse fire",
		AuthorID: uuid.New().String(),
	}
	serviceError := errors.New("failed to create alert in service")

	m.alertService.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Return(serviceError).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", "/api/v1/alerts", bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestGetAlertHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	expected := &models.Alert{
		ID:       alertID,
		Category: models.CategoryFlood,
		Status:   models.StatusConfirmed,
		Title:    "Flooded street",
	}

	m.alertService.EXPECT().GetAlert(gomock.Any(), alertID).Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, alertID, resp.ID)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestGetAlertHandler_InvalidID(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.alertService.EXPECT().GetAlert(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/alerts/invalid-uuid", nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid alert ID")
}

func TestGetAlertHandler_NotFound(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()

	m.alertService.EXPECT().
		GetAlert(gomock.Any(), alertID).
		Return(nil, &service.NotFoundError{Entity: "alert", ID: alertID}).
		Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/alerts/%s", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}

func TestListAlertsHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	expected := []*models.Alert{
		{ID: uuid.New(), Title: "Alert 1", Status: models.StatusPending},
		{ID: uuid.New(), Title: "Alert 2", Status: models.StatusResolved},
	}

	m.alertService.EXPECT().
		ListAlerts(gomock.Any(), 1, 10, models.AlertStatus(""), models.AlertCategory("")).
		Return(expected, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts?page=1&pageSize=10", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Len(t, resp, 2)
	assert.Equal(t, expected[0].Title, resp[0].Title)
}

func TestListAlertsHandler_WithFilters(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.alertService.EXPECT().
		ListAlerts(gomock.Any(), 1, 20, models.StatusPending, models.CategoryFire).
		Return([]*models.Alert{}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/alerts?status=pending&category=fire", nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTransitionStatusHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	reqBody := TransitionStatusRequest{Status: "confirmed"}
	updated := &models.Alert{ID: alertID, Status: models.StatusConfirmed, Title: "Alert"}

	m.alertService.EXPECT().
		TransitionStatus(gomock.Any(), alertID, models.StatusConfirmed, nil).
		Return(updated, nil).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/status", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
}

func TestTransitionStatusHandler_Conflict(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	reqBody := TransitionStatusRequest{Status: "resolved"}

	// Запрещенный переход транслируется в 409 Conflict
	m.alertService.EXPECT().
		TransitionStatus(gomock.Any(), alertID, models.StatusResolved, nil).
		Return(nil, &service.InvalidTransitionError{
			AlertID: alertID,
			From:    models.StatusPending,
			To:      models.StatusResolved,
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/status", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "invalid transition")
}

func TestTransitionStatusHandler_UnknownStatus(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()

	m.alertService.EXPECT().TransitionStatus(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/status", alertID.String()),
		bytes.NewBufferString(`{"status":"archived"}`), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Status' failed on the 'oneof' tag")
}

func TestSubmitReportHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	reporterID := uuid.New()
	reqBody := SubmitReportRequest{ReporterID: reporterID.String(), Type: "false_alarm", Reason: "nothing here"}
	updated := &models.Alert{ID: alertID, Status: models.StatusPending, ReliabilityScore: 80}

	m.alertService.EXPECT().
		SubmitReport(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, report *models.Report) (*models.Alert, error) {
			assert.Equal(t, alertID, report.AlertID)
			assert.Equal(t, reporterID, report.ReporterID)
			assert.Equal(t, models.ReportFalseAlarm, report.Type)
			return updated, nil
		}).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/reports", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AlertResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 80.0, resp.ReliabilityScore)
}

func TestSubmitReportHandler_UnknownType(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	reqBody := SubmitReportRequest{ReporterID: uuid.New().String(), Type: "spam"}

	m.alertService.EXPECT().SubmitReport(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/reports", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Type' failed on the 'oneof' tag")
}

func TestSubmitHelpOfferHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	helperID := uuid.New()
	reqBody := SubmitHelpOfferRequest{HelperID: helperID.String(), OfferType: "transport"}
	intent := &models.NotificationIntent{
		AlertID:     alertID,
		RecipientID: uuid.New(),
		Kind:        models.IntentHelpOffer,
	}

	m.alertService.EXPECT().SubmitHelpOffer(gomock.Any(), gomock.Any()).Return(intent, nil).Times(1)
	// Уведомление автору ставится в очередь доставки
	m.intentQueue.EXPECT().
		Enqueue(gomock.Any(), []*models.NotificationIntent{intent}).
		Return(nil).Times(1)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/help-offers", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitHelpOfferHandler_SelfOfferSkipsQueue(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	reqBody := SubmitHelpOfferRequest{HelperID: uuid.New().String(), OfferType: "transport"}

	// Предложение самому себе не порождает намерения - очередь не трогаем
	m.alertService.EXPECT().SubmitHelpOffer(gomock.Any(), gomock.Any()).Return(nil, nil).Times(1)
	m.intentQueue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Times(0)

	bodyBytes, _ := json.Marshal(reqBody)
	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/help-offers", alertID.String()), bytes.NewBuffer(bodyBytes), authHeader())

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAcceptHelpOfferHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	helperID := uuid.New()

	m.alertService.EXPECT().AcceptHelpOffer(gomock.Any(), alertID, helperID).Return(nil).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/help-offers/%s/accept", alertID.String(), helperID.String()), nil, authHeader())

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestFanoutHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	intents := []*models.NotificationIntent{
		{AlertID: alertID, RecipientID: uuid.New(), Kind: models.IntentNewAlert, DistanceKm: 1.2, Urgent: true},
		{AlertID: alertID, RecipientID: uuid.New(), Kind: models.IntentNewAlert, DistanceKm: 4.8, Urgent: true},
	}

	m.fanoutService.EXPECT().Fanout(gomock.Any(), alertID).Return(intents, nil).Times(1)
	m.intentQueue.EXPECT().Enqueue(gomock.Any(), intents).Return(nil).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/fanout", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []NotificationIntentResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, intents[0].RecipientID, resp[0].RecipientID)
	assert.Equal(t, "new_alert", resp[0].Kind)
}

func TestFanoutHandler_EmptyResultSkipsQueue(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()

	// Пустая рассылка не обращается к очереди
	m.fanoutService.EXPECT().Fanout(gomock.Any(), alertID).Return([]*models.NotificationIntent{}, nil).Times(1)
	m.intentQueue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/fanout", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestFanoutHandler_EnqueueError(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()
	intents := []*models.NotificationIntent{{AlertID: alertID, RecipientID: uuid.New()}}

	m.fanoutService.EXPECT().Fanout(gomock.Any(), alertID).Return(intents, nil).Times(1)
	m.intentQueue.EXPECT().Enqueue(gomock.Any(), intents).Return(errors.New("redis down")).Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/fanout", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to enqueue notifications")
}

func TestFanoutHandler_NotFound(t *testing.T) {
	_, m, router := newTestHandler(t)
	alertID := uuid.New()

	m.fanoutService.EXPECT().
		Fanout(gomock.Any(), alertID).
		Return(nil, &service.NotFoundError{Entity: "alert", ID: alertID}).
		Times(1)

	w := makeRequest(router, "POST", fmt.Sprintf("/api/v1/alerts/%s/fanout", alertID.String()), nil, authHeader())

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAggregateStatsHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	stat := &models.AggregatedStatistic{
		BucketType:     models.BucketDaily,
		PeriodStart:    start,
		PeriodEnd:      end,
		TotalCount:     5,
		ResolvedCount:  2,
		CategoryCounts: map[models.AlertCategory]int{models.CategoryFire: 3},
		AvgReliability: 88.0,
	}

	m.statsService.EXPECT().
		Aggregate(gomock.Any(), models.BucketDaily, start, end).
		Return(stat, nil).Times(1)

	url := fmt.Sprintf("/api/v1/stats/aggregate?bucket=daily&start=%s&end=%s",
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	w := makeRequest(router, "GET", url, nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatisticResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 5, resp.TotalCount)
	assert.Equal(t, 3, resp.CategoryCounts["fire"])
}

func TestAggregateStatsHandler_InvalidPeriod(t *testing.T) {
	_, m, router := newTestHandler(t)

	m.statsService.EXPECT().Aggregate(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/stats/aggregate?bucket=daily&start=yesterday&end=today", nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid start time")
}

func TestAggregateStatsHandler_InvalidBucket(t *testing.T) {
	_, m, router := newTestHandler(t)
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	m.statsService.EXPECT().
		Aggregate(gomock.Any(), models.BucketType("hourly"), start, end).
		Return(nil, &service.ValidationError{Field: "bucket_type", Reason: "must be one of daily, weekly, monthly"}).
		Times(1)

	url := fmt.Sprintf("/api/v1/stats/aggregate?bucket=hourly&start=%s&end=%s",
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	w := makeRequest(router, "GET", url, nil, authHeader())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bucket_type")
}

func TestAuthorTrustHandler_Success(t *testing.T) {
	_, m, router := newTestHandler(t)
	authorID := uuid.New()
	trust := &models.AuthorTrust{AlertCount: 4, FalseAlarmRate: 25, ConfirmationRate: 50, Score: 85}

	m.alertService.EXPECT().AuthorTrust(gomock.Any(), authorID).Return(trust, nil).Times(1)

	w := makeRequest(router, "GET", fmt.Sprintf("/api/v1/users/%s/trust", authorID.String()), nil, authHeader())

	assert.Equal(t, http.StatusOK, w.Code)
	var resp AuthorTrustResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, 4, resp.AlertCount)
	assert.Equal(t, 85.0, resp.Score)
}

func TestHealthCheck_Success(t *testing.T) {
	_, _, router := newTestHandler(t)

	// Health-check открыт и не требует API ключа
	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAPIKeyAuthMiddleware_Success(t *testing.T) {
	// Создаем Gin-роутер и добавляем middleware
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "valid-key"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyAuthMiddleware_MissingKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil) // Нет API ключа
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
}

func TestAPIKeyAuthMiddleware_InvalidKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	cfg := &config.Config{
		APIKeys: []string{"valid-key"},
	}

	router.Use(APIKeyAuthMiddleware(cfg, logger))
	router.GET("/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := makeRequest(router, "GET", "/test", nil, map[string]string{"X-API-Key": "invalid-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")
}
