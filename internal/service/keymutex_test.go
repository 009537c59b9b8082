package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	// Подготовка
	km := newKeyedMutex()
	id := uuid.New()
	const workers = 50

	counter := 0
	var wg sync.WaitGroup
	wg.Add(workers)

	// Действие: инкременты без собственной синхронизации, только под замком ключа
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			km.Lock(id)
			counter++
			km.Unlock(id)
		}()
	}
	wg.Wait()

	// Проверки: замок сериализовал все инкременты и запись освобождена
	assert.Equal(t, workers, counter)
	assert.Empty(t, km.locks)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	// Подготовка: захваченный замок одного id не блокирует другой id
	km := newKeyedMutex()
	first, second := uuid.New(), uuid.New()

	km.Lock(first)
	done := make(chan struct{})
	go func() {
		km.Lock(second)
		km.Unlock(second)
		close(done)
	}()

	// Действие и проверки
	<-done // Зависнет здесь, если ключи не независимы
	km.Unlock(first)
	assert.Empty(t, km.locks)
}
