// Package retry оборачивает обращения к внешним хранилищам в ограниченное
// число повторов с экспоненциальной задержкой и общим таймаутом вызова.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Do выполняет fn не более maxRetries+1 раз с экспоненциальной задержкой.
// Весь вызов ограничен таймаутом timeout; по его истечении возвращается
// последняя полученная ошибка.
func Do[T any](ctx context.Context, timeout time.Duration, maxRetries uint64, fn func(ctx context.Context) (T, error)) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = time.Second

	return backoff.RetryWithData(
		func() (T, error) { return fn(callCtx) },
		backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), callCtx),
	)
}

// Permanent помечает ошибку как неповторяемую: Do вернет её сразу,
// без дальнейших попыток. Используется для "нет такой строки" и подобных.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
