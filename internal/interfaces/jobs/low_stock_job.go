// Package jobs tareas periódicas del servicio.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jhoicas/pdv-api/pkg/logger"
)

// LowStockJob ejecuta la verificación de stock bajo cada Every.
type LowStockJob struct {
	scheduler *gocron.Scheduler
	check     func(ctx context.Context) error
	every     time.Duration
	log       *logger.Logger
}

// NewLowStockJob construye el job. every <= 0 lo deshabilita.
func NewLowStockJob(check func(ctx context.Context) error, every time.Duration, log *logger.Logger) *LowStockJob {
	return &LowStockJob{
		scheduler: gocron.NewScheduler(time.Local),
		check:     check,
		every:     every,
		log:       log.Component("jobs"),
	}
}

// Start agenda el job y lo detiene cuando ctx termina.
func (j *LowStockJob) Start(ctx context.Context) error {
	if j.every <= 0 {
		j.log.Info().Msg("job de stock bajo deshabilitado por configuración")
		return nil
	}
	_, err := j.scheduler.Every(j.every).SingletonMode().Do(func() {
		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := j.check(runCtx); err != nil {
			j.log.Error().Err(err).Msg("error en verificación de stock bajo")
		}
	})
	if err != nil {
		return fmt.Errorf("agendar job de stock bajo: %w", err)
	}
	j.log.Info().Dur("every", j.every).Msg("job de stock bajo iniciado")
	j.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
	return nil
}

// Stop detiene el scheduler.
func (j *LowStockJob) Stop() {
	if j.scheduler.IsRunning() {
		j.scheduler.Stop()
		j.log.Info().Msg("job de stock bajo detenido")
	}
}
