package service

import (
	"sync"

	"github.com/google/uuid"
)

// keyedMutex сериализует операции по одной тревоге: смена статуса и пересчет
// рейтинга для одного id выполняются по очереди, разные id идут параллельно.
// Записи освобождаются по счетчику ссылок, чтобы карта не росла бесконечно.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uuid.UUID]*lockEntry)}
}

// Lock захватывает мьютекс для конкретного id
func (k *keyedMutex) Lock(id uuid.UUID) {
	k.mu.Lock()
	entry, ok := k.locks[id]
	if !ok {
		entry = &lockEntry{}
		k.locks[id] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

// Unlock освобождает мьютекс и удаляет запись, если ждущих больше нет
func (k *keyedMutex) Unlock(id uuid.UUID) {
	k.mu.Lock()
	entry := k.locks[id]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, id)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}
