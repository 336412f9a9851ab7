package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

func TestBackoff_CrecimientoConTope(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 6, BaseBackoff: 10 * time.Millisecond, MaxBackoff: 40 * time.Millisecond}, logger.Nop())

	for attempt := 1; attempt <= 6; attempt++ {
		want := 10 * time.Millisecond << (attempt - 1)
		if want > 40*time.Millisecond {
			want = 40 * time.Millisecond
		}
		got := r.backoff(attempt)
		assert.GreaterOrEqual(t, got, want/2, "intento %d", attempt)
		assert.LessOrEqual(t, got, want, "intento %d", attempt)
	}
}

func TestDo_NoReintentaErroresDeNegocio(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 5}, logger.Nop())
	calls := 0
	attempts, err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return &domain.InsufficientStockError{ProductID: "p1"}
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestDo_ReintentaHastaExito(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Millisecond}, logger.Nop())
	var waits []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error { waits = append(waits, d); return nil }

	calls := 0
	attempts, err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return domain.ErrConcurrencyConflict
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Len(t, waits, 2)
}

func TestDo_SleepCanceladoEsUnavailable(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 5, BaseBackoff: time.Millisecond}, logger.Nop())
	r.sleep = func(context.Context, time.Duration) error { return context.DeadlineExceeded }

	_, err := r.Do(context.Background(), func(context.Context) error { return domain.ErrConcurrencyConflict })
	var cu *domain.CommitUnavailableError
	assert.True(t, errors.As(err, &cu))
	assert.Equal(t, 1, cu.Attempts)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
}

func TestDo_ErrorDeNegocioGanaAlPlazoVencido(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 5}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts, err := r.Do(ctx, func(context.Context) error {
		cancel()
		return &domain.InsufficientStockError{ProductID: "p3", Requested: 3, Available: 2}
	})
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	var cu *domain.CommitUnavailableError
	assert.False(t, errors.As(err, &cu))
}

func TestDo_ContextoCanceladoEsUnavailable(t *testing.T) {
	r := newRetrier(RetryPolicy{MaxAttempts: 5}, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	var cu *domain.CommitUnavailableError
	assert.True(t, errors.As(err, &cu))
	assert.ErrorIs(t, err, context.Canceled)
}
