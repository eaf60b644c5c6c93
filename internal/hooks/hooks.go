// Package hooks содержит реестр обработчиков, выполняемых перед удалением записи.
package hooks

import (
	"context"
	"fmt"
	"sync"
)

// BeforeDeleteHook вызывается перед удалением записи. Ошибка прерывает удаление.
type BeforeDeleteHook[T any] interface {
	Name() string
	OnBeforeDelete(ctx context.Context, record T) error
}

// HookFunc адаптирует функцию к BeforeDeleteHook.
type HookFunc[T any] struct {
	HookName string
	Fn       func(ctx context.Context, record T) error
}

// Name возвращает имя обработчика.
func (h HookFunc[T]) Name() string { return h.HookName }

// OnBeforeDelete вызывает функцию обработчика.
func (h HookFunc[T]) OnBeforeDelete(ctx context.Context, record T) error {
	return h.Fn(ctx, record)
}

// Registry хранит обработчики в порядке регистрации.
type Registry[T any] struct {
	mu    sync.RWMutex
	hooks []BeforeDeleteHook[T]
}

// NewRegistry создает пустой реестр.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{}
}

// Register добавляет обработчик в конец цепочки.
func (r *Registry[T]) Register(h BeforeDeleteHook[T]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, h)
}

// RunBeforeDelete вызывает обработчики по порядку и останавливается на первой ошибке.
func (r *Registry[T]) RunBeforeDelete(ctx context.Context, record T) error {
	const op = "hooks.RunBeforeDelete"
	r.mu.RLock()
	hooks := make([]BeforeDeleteHook[T], len(r.hooks))
	copy(hooks, r.hooks)
	r.mu.RUnlock()

	for _, h := range hooks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := h.OnBeforeDelete(ctx, record); err != nil {
			return fmt.Errorf("%s: hook %s: %w", op, h.Name(), err)
		}
	}
	return nil
}

// Len возвращает число зарегистрированных обработчиков.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hooks)
}
