package service

import (
	"bytes"
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fanoutMocks struct {
	alerts     *mocks.MockAlertRepository
	helpOffers *mocks.MockHelpOfferRepository
	prefs      *mocks.MockPreferenceRepository
	locations  *mocks.MockLocationRepository
	notifLog   *mocks.MockNotificationLogRepository
	index      *mocks.MockGeoIndex
}

// newTestFanoutService — вспомогательная функция для создания сервиса рассылки с моками.
func newTestFanoutService(t *testing.T) (FanoutService, *fanoutMocks) {
	ctrl := gomock.NewController(t)
	m := &fanoutMocks{
		alerts:     mocks.NewMockAlertRepository(ctrl),
		helpOffers: mocks.NewMockHelpOfferRepository(ctrl),
		prefs:      mocks.NewMockPreferenceRepository(ctrl),
		locations:  mocks.NewMockLocationRepository(ctrl),
		notifLog:   mocks.NewMockNotificationLogRepository(ctrl),
		index:      mocks.NewMockGeoIndex(ctrl),
	}

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	service := NewFanoutService(m.alerts, m.helpOffers, m.prefs, m.locations, m.notifLog, m.index, logger)
	return service, m
}

// allEnabled строит карту настроек, в которой уведомления включены у всех переданных пользователей
func allEnabled(ids []uuid.UUID) map[uuid.UUID]bool {
	enabled := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		enabled[id] = true
	}
	return enabled
}

func testAlert(status models.AlertStatus, category models.AlertCategory, score float64) *models.Alert {
	return &models.Alert{
		ID:               uuid.New(),
		Category:         category,
		Status:           status,
		Title:            "Пожар на рынке",
		AuthorID:         uuid.New(),
		Latitude:         floatPtr(9.5370),
		Longitude:        floatPtr(-13.6785),
		Neighborhood:     "Kaloum",
		ReliabilityScore: score,
	}
}

func TestFanout_UrgentReliableUsesWideRadius(t *testing.T) {
	// Подготовка: срочная категория с рейтингом выше порога - радиус 10 км
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFire, 100)
	near := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 3.2}
	far := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 8.0}

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{near, far}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, gomock.Any()).
		DoAndReturn(func(ctx context.Context, category models.AlertCategory, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			return allEnabled(ids), nil
		}).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: сосед на 8 км попал в срочный радиус, порядок по дистанции
	require.NoError(t, err)
	require.Len(t, intents, 2)
	assert.Equal(t, near.UserID, intents[0].RecipientID)
	assert.Equal(t, far.UserID, intents[1].RecipientID)
	assert.Equal(t, models.IntentNewAlert, intents[0].Kind)
	assert.True(t, intents[0].Urgent)
	assert.Contains(t, intents[0].Message, "Fire")
	assert.Contains(t, intents[0].Message, "Kaloum")
}

func TestFanout_StandardRadiusForNonUrgentCategory(t *testing.T) {
	// Подготовка
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryNoise, 100)

	// Ожидания: обычная категория всегда получает радиус 5 км
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, StandardRadiusKm).
		Return([]*models.CandidateUser{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestFanout_UnreliableUrgentLosesWideRadius(t *testing.T) {
	// Подготовка: срочная категория, но рейтинг ниже порога
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryGasLeak, 60)

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, StandardRadiusKm).
		Return([]*models.CandidateUser{}, nil).Times(1)

	// Действие
	_, err := service.Fanout(ctx, alert.ID)

	// Проверки
	require.NoError(t, err)
}

func TestFanout_NoCoordinates(t *testing.T) {
	// Подготовка: тревога без координат не дает рассылки и не трогает гео-индекс
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := &models.Alert{ID: uuid.New(), Category: models.CategoryFire, Status: models.StatusPending, AuthorID: uuid.New()}

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().FindWithinRadius(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestFanout_ExcludesAuthor(t *testing.T) {
	// Подготовка: автор оказался в радиусе собственной тревоги
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFlood, 100)
	neighbor := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 1.0}
	author := &models.CandidateUser{UserID: alert.AuthorID, DistanceKm: 0.1}

	// Ожидания: настройки запрашиваются только для соседа
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, StandardRadiusKm).
		Return([]*models.CandidateUser{author, neighbor}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, []uuid.UUID{neighbor.UserID}).
		Return(allEnabled([]uuid.UUID{neighbor.UserID}), nil).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: автор не получает уведомлений о своей тревоге
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, neighbor.UserID, intents[0].RecipientID)
}

func TestFanout_OnlyAuthorInRadius(t *testing.T) {
	// Подготовка
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFlood, 100)

	// Ожидания: после фильтрации получателей не осталось, настройки не читаются
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, StandardRadiusKm).
		Return([]*models.CandidateUser{{UserID: alert.AuthorID, DistanceKm: 0.5}}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки
	require.NoError(t, err)
	assert.Empty(t, intents)
}

func TestFanout_SkipsDisabledPreference(t *testing.T) {
	// Подготовка
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFire, 100)
	wants := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 2.0}
	optedOut := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 1.0}

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{optedOut, wants}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, gomock.Any()).
		Return(map[uuid.UUID]bool{wants.UserID: true, optedOut.UserID: false}, nil).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: отключивший категорию пользователь отфильтрован
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, wants.UserID, intents[0].RecipientID)
}

func TestFanout_SkipsAlreadyNotified(t *testing.T) {
	// Подготовка: повторная рассылка для той же пары (тревога, статус)
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFire, 100)
	fresh := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 2.0}
	delivered := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 1.0}

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{delivered, fresh}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, gomock.Any()).
		DoAndReturn(func(ctx context.Context, category models.AlertCategory, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			return allEnabled(ids), nil
		}).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{delivered.UserID: true}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: уже уведомленный получатель не дублируется
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, fresh.UserID, intents[0].RecipientID)
}

func TestFanout_StatusUpdateIncludesHelpers(t *testing.T) {
	// Подготовка: смена статуса адресуется соседям и помощникам
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusConfirmed, models.CategoryFire, 100)
	neighbor := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 2.0}
	helperID := uuid.New()

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{neighbor}, nil).Times(1)
	m.helpOffers.EXPECT().
		ListActiveByAlert(ctx, alert.ID).
		Return([]*models.HelpOffer{{AlertID: alert.ID, HelperID: helperID, Active: true}}, nil).Times(1)
	m.locations.EXPECT().
		GetByUserID(ctx, helperID).
		Return(&models.UserLocation{UserID: helperID, Latitude: 9.6, Longitude: -13.62}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, gomock.Any()).
		DoAndReturn(func(ctx context.Context, category models.AlertCategory, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			return allEnabled(ids), nil
		}).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: помощник вне радиуса тоже уведомлен, вид status_update
	require.NoError(t, err)
	require.Len(t, intents, 2)
	recipients := []uuid.UUID{intents[0].RecipientID, intents[1].RecipientID}
	assert.Contains(t, recipients, neighbor.UserID)
	assert.Contains(t, recipients, helperID)
	for _, intent := range intents {
		assert.Equal(t, models.IntentStatusUpdate, intent.Kind)
		assert.Contains(t, intent.Message, "is now confirmed")
	}
}

func TestFanout_HelperWithoutLocation(t *testing.T) {
	// Подготовка: помощник без сохраненной позиции уведомляется с нулевой дистанцией
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusResolved, models.CategoryMedical, 100)
	helperID := uuid.New()

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{}, nil).Times(1)
	m.helpOffers.EXPECT().
		ListActiveByAlert(ctx, alert.ID).
		Return([]*models.HelpOffer{{AlertID: alert.ID, HelperID: helperID, Active: true}}, nil).Times(1)
	m.locations.EXPECT().GetByUserID(ctx, helperID).Return(nil, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, []uuid.UUID{helperID}).
		Return(allEnabled([]uuid.UUID{helperID}), nil).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки
	require.NoError(t, err)
	require.Len(t, intents, 1)
	assert.Equal(t, helperID, intents[0].RecipientID)
	assert.Equal(t, 0.0, intents[0].DistanceKm)
}

func TestFanout_SortedByDistanceThenID(t *testing.T) {
	// Подготовка: двое на одинаковой дистанции и один ближе
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alert := testAlert(models.StatusPending, models.CategoryFire, 100)
	closest := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 0.5}
	tiedA := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 3.0}
	tiedB := &models.CandidateUser{UserID: uuid.New(), DistanceKm: 3.0}

	// Ожидания
	m.alerts.EXPECT().GetByID(ctx, alert.ID).Return(alert, nil).Times(1)
	m.index.EXPECT().
		FindWithinRadius(ctx, *alert.Latitude, *alert.Longitude, UrgentRadiusKm).
		Return([]*models.CandidateUser{tiedB, closest, tiedA}, nil).Times(1)
	m.prefs.EXPECT().
		EnabledForCategory(ctx, alert.Category, gomock.Any()).
		DoAndReturn(func(ctx context.Context, category models.AlertCategory, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
			return allEnabled(ids), nil
		}).Times(1)
	m.notifLog.EXPECT().
		NotifiedRecipients(ctx, alert.ID, alert.Status).
		Return(map[uuid.UUID]bool{}, nil).Times(1)

	// Действие
	intents, err := service.Fanout(ctx, alert.ID)

	// Проверки: дистанция по возрастанию, ничья разрешается по id
	require.NoError(t, err)
	require.Len(t, intents, 3)
	assert.Equal(t, closest.UserID, intents[0].RecipientID)
	tied := []string{intents[1].RecipientID.String(), intents[2].RecipientID.String()}
	assert.True(t, sort.StringsAreSorted(tied))
}

func TestFanout_NotFound(t *testing.T) {
	// Подготовка
	service, m := newTestFanoutService(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания
	m.alerts.EXPECT().
		GetByID(ctx, alertID).
		Return(nil, &NotFoundError{Entity: "alert", ID: alertID}).
		Times(1)

	// Действие
	_, err := service.Fanout(ctx, alertID)

	// Проверки
	require.Error(t, err)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}
