package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// newTestScorer — вспомогательная функция для создания Scorer с моками.
func newTestScorer(t *testing.T) (*Scorer, *mocks.MockAlertRepository, *mocks.MockReportRepository) {
	ctrl := gomock.NewController(t)
	alertsMock := mocks.NewMockAlertRepository(ctrl)
	reportsMock := mocks.NewMockReportRepository(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	return NewScorer(alertsMock, reportsMock, logger), alertsMock, reportsMock
}

func TestComputeScore(t *testing.T) {
	cases := []struct {
		name       string
		total      int
		falseAlarm int
		expected   float64
	}{
		{"ноль сигналов - презумпция достоверности", 0, 0, 100},
		{"сигналы без false_alarm", 5, 0, 100},
		{"30% false_alarm - ровно на пороге", 10, 3, 70},
		{"40% false_alarm - ниже порога", 10, 4, 60},
		{"все сигналы false_alarm", 1, 1, 0},
		{"половина false_alarm", 4, 2, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			score := ComputeScore(tc.total, tc.falseAlarm)
			assert.InDelta(t, tc.expected, score, 1e-9)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		})
	}
}

func TestIsReliable_BoundaryInclusive(t *testing.T) {
	// Порог 70 включительно
	assert.True(t, IsReliable(70.0))
	assert.True(t, IsReliable(100.0))
	assert.False(t, IsReliable(69.99))
	assert.False(t, IsReliable(0))
}

func TestRecompute_Success(t *testing.T) {
	// Подготовка
	scorer, alertsMock, reportsMock := newTestScorer(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания
	reportsMock.EXPECT().CountByAlert(ctx, alertID).Return(10, 3, nil).Times(1)
	alertsMock.EXPECT().UpdateScore(ctx, alertID, 70.0).Return(nil).Times(1)
	alertsMock.EXPECT().InvalidateAlertCache(ctx, alertID).Return(nil).Times(1)

	// Действие
	score, err := scorer.Recompute(ctx, alertID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 70.0, score)
}

func TestRecompute_Idempotent(t *testing.T) {
	// Подготовка
	scorer, alertsMock, reportsMock := newTestScorer(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания: те же данные при повторном вызове дают тот же рейтинг
	reportsMock.EXPECT().CountByAlert(ctx, alertID).Return(8, 2, nil).Times(2)
	alertsMock.EXPECT().UpdateScore(ctx, alertID, 75.0).Return(nil).Times(2)
	alertsMock.EXPECT().InvalidateAlertCache(ctx, alertID).Return(nil).Times(2)

	// Действие
	first, err := scorer.Recompute(ctx, alertID)
	require.NoError(t, err)
	second, err := scorer.Recompute(ctx, alertID)
	require.NoError(t, err)

	// Проверки
	assert.Equal(t, first, second)
}

func TestRecompute_NoReportsResetsToHundred(t *testing.T) {
	// Подготовка
	scorer, alertsMock, reportsMock := newTestScorer(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания
	reportsMock.EXPECT().CountByAlert(ctx, alertID).Return(0, 0, nil).Times(1)
	alertsMock.EXPECT().UpdateScore(ctx, alertID, 100.0).Return(nil).Times(1)
	alertsMock.EXPECT().InvalidateAlertCache(ctx, alertID).Return(nil).Times(1)

	// Действие
	score, err := scorer.Recompute(ctx, alertID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 100.0, score)
}

func TestRecompute_CacheFailureIsNotFatal(t *testing.T) {
	// Подготовка
	scorer, alertsMock, reportsMock := newTestScorer(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания: сбой инвалидации кеша не откатывает пересчет
	reportsMock.EXPECT().CountByAlert(ctx, alertID).Return(10, 3, nil).Times(1)
	alertsMock.EXPECT().UpdateScore(ctx, alertID, 70.0).Return(nil).Times(1)
	alertsMock.EXPECT().InvalidateAlertCache(ctx, alertID).Return(fmt.Errorf("redis down")).Times(1)

	// Действие
	score, err := scorer.Recompute(ctx, alertID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 70.0, score)
}

func TestRecompute_CountError(t *testing.T) {
	// Подготовка
	scorer, _, reportsMock := newTestScorer(t)
	ctx := context.Background()
	alertID := uuid.New()

	// Ожидания
	reportsMock.EXPECT().CountByAlert(ctx, alertID).Return(0, 0, fmt.Errorf("query timeout")).Times(1)

	// Действие
	_, err := scorer.Recompute(ctx, alertID)

	// Проверки
	require.Error(t, err)
	var repoError *RepositoryError
	assert.ErrorAs(t, err, &repoError)
}

func TestComputeAuthorTrust_NoHistory(t *testing.T) {
	trust := ComputeAuthorTrust(nil)

	assert.Equal(t, 0, trust.AlertCount)
	assert.Equal(t, 100.0, trust.Score)
}

func TestComputeAuthorTrust_MixedHistory(t *testing.T) {
	// Подготовка: 1 false_alarm, 2 resolved, 1 pending из четырех тревог
	alerts := []*models.Alert{
		{Status: models.StatusFalseAlarm},
		{Status: models.StatusResolved},
		{Status: models.StatusResolved},
		{Status: models.StatusPending},
	}

	// Действие
	trust := ComputeAuthorTrust(alerts)

	// Проверки: база 100-25=75, бонус за подтверждения 50*0.2=10
	assert.Equal(t, 4, trust.AlertCount)
	assert.InDelta(t, 25.0, trust.FalseAlarmRate, 1e-9)
	assert.InDelta(t, 50.0, trust.ConfirmationRate, 1e-9)
	assert.InDelta(t, 85.0, trust.Score, 1e-9)
}

func TestComputeAuthorTrust_CappedAtHundred(t *testing.T) {
	// Вся история подтверждена - бонус не выводит рейтинг за 100
	alerts := []*models.Alert{
		{Status: models.StatusResolved},
		{Status: models.StatusConfirmed},
		{Status: models.StatusInProgress},
	}

	trust := ComputeAuthorTrust(alerts)

	assert.Equal(t, 100.0, trust.Score)
}

func TestComputeAuthorTrust_AllFalseAlarms(t *testing.T) {
	alerts := []*models.Alert{
		{Status: models.StatusFalseAlarm},
		{Status: models.StatusFalseAlarm},
	}

	trust := ComputeAuthorTrust(alerts)

	assert.InDelta(t, 100.0, trust.FalseAlarmRate, 1e-9)
	assert.Equal(t, 0.0, trust.Score)
}
