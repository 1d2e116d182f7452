package infra

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}

// Janitor agenda as varreduras periódicas (sessões expiradas, registros de abuso)
// num cron próprio. Um job que ainda está rodando não é reexecutado em paralelo.
type Janitor struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

func NewJanitor(logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{l: logger}
	return &Janitor{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Every agenda sweep a cada intervalo. Intervalo <= 0 desativa o job.
func (j *Janitor) Every(name string, every time.Duration, sweep func() int) error {
	if every <= 0 {
		j.logger.Info("sweep disabled", "job", name)
		return nil
	}
	_, err := j.cron.AddFunc("@every "+every.String(), func() {
		if n := sweep(); n > 0 {
			j.logger.Debug("sweep completed", "job", name, "removed", n)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	return nil
}

// Start inicia o cron e o para quando ctx terminar.
func (j *Janitor) Start(ctx DoneContext) {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.cron.Start()
	j.running = true
	j.mu.Unlock()

	go func() {
		<-ctx.Done()
		j.Stop()
	}()
}

// Stop para o agendador e espera os jobs em execução terminarem.
func (j *Janitor) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return
	}
	<-j.cron.Stop().Done()
	j.running = false
}

func (j *Janitor) Jobs() int { return len(j.cron.Entries()) }

// cronLogger adapta slog para cron.Logger; as mensagens de rotina do cron vão para debug.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error(msg, append(keysAndValues, "error", err)...)
}
