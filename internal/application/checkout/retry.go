package checkout

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jhoicas/pdv-api/internal/domain"
	"github.com/jhoicas/pdv-api/pkg/logger"
)

// RetryPolicy política de reintentos del commit.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Timeout     time.Duration // tope total del commit, 0 = sin tope
}

// DefaultRetryPolicy valores usados si no se configura otra cosa.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseBackoff: 25 * time.Millisecond, MaxBackoff: 400 * time.Millisecond, Timeout: 10 * time.Second}
}

// retrier reintenta conflictos y fallas transitorias con backoff exponencial.
// El breaker se abre tras fallas seguidas del almacén y corta los commits mientras dura.
type retrier struct {
	policy RetryPolicy
	cb     *gobreaker.CircuitBreaker[struct{}]
	sleep  func(ctx context.Context, d time.Duration) error
	log    *logger.Logger
}

func newRetrier(policy RetryPolicy, log *logger.Logger) *retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "sale-commit",
		MaxRequests: 1,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		// solo las fallas del almacén cuentan; stock insuficiente o validación son respuestas normales
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrStoreUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("cambio de estado del circuit breaker")
		},
	})
	return &retrier{policy: policy, cb: cb, sleep: sleepCtx, log: log}
}

// Do ejecuta fn hasta que tenga éxito, falle con un error no reintentable o se agoten los intentos.
// Devuelve el número de intentos realizados.
func (r *retrier) Do(ctx context.Context, fn func(ctx context.Context) error) (int, error) {
	var last error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		_, err := r.cb.Execute(func() (struct{}, error) {
			return struct{}{}, fn(ctx)
		})
		if err == nil {
			return attempt, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return attempt, &domain.CommitUnavailableError{Attempts: attempt, Cause: err}
		}
		// los errores de negocio se reportan tal cual aunque el plazo haya vencido
		if !domain.IsRetryable(err) && !isContextErr(err) {
			return attempt, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, &domain.CommitUnavailableError{Attempts: attempt, Cause: ctxErr}
		}
		if !domain.IsRetryable(err) {
			return attempt, &domain.CommitUnavailableError{Attempts: attempt, Cause: err}
		}
		last = err
		if attempt == r.policy.MaxAttempts {
			break
		}
		wait := r.backoff(attempt)
		r.log.Debug().Err(err).Int("attempt", attempt).Dur("backoff", wait).Msg("reintentando commit de venta")
		if err := r.sleep(ctx, wait); err != nil {
			return attempt, &domain.CommitUnavailableError{Attempts: attempt, Cause: last}
		}
	}
	return r.policy.MaxAttempts, &domain.CommitUnavailableError{Attempts: r.policy.MaxAttempts, Cause: last}
}

// backoff base·2^(n-1) con tope y jitter de hasta 50%.
func (r *retrier) backoff(attempt int) time.Duration {
	d := r.policy.BaseBackoff << (attempt - 1)
	if r.policy.MaxBackoff > 0 && (d > r.policy.MaxBackoff || d <= 0) {
		d = r.policy.MaxBackoff
	}
	if d <= 0 {
		return 0
	}
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
