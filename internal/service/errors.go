package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shenikar/community_alert_engine/internal/models"
)

// ValidationError - некорректный ввод; вызывающему, без повторов
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// InvalidTransitionError - запрошенный переход статуса не разрешен таблицей переходов
type InvalidTransitionError struct {
	AlertID uuid.UUID
	From    models.AlertStatus
	To      models.AlertStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition for alert %s: %s -> %s", e.AlertID, e.From, e.To)
}

// NotFoundError - неизвестный идентификатор тревоги/отчета/пользователя
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s not found", e.Entity, e.ID)
}

// RepositoryError - сбой хранилища; пробрасывается наверх, операции пересчета
// безопасно повторять после устранения сбоя
type RepositoryError struct {
	Op  string
	Err error
}

func (e *RepositoryError) Error() string {
	return fmt.Sprintf("repository: %s: %v", e.Op, e.Err)
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func repoErr(op string, err error) error {
	return &RepositoryError{Op: op, Err: err}
}
