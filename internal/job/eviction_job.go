package job

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Evictor drops workspaces that have been idle for longer than maxIdle.
type Evictor interface {
	EvictIdle(maxIdle time.Duration) int
	Resident() int
}

// EvictionJob frees the memory held by workspaces nobody is using. Their
// boards stay in the database and are reloaded on next access.
type EvictionJob struct {
	store   Evictor
	maxIdle time.Duration
	logger  *zap.Logger
}

func NewEvictionJob(store Evictor, maxIdle time.Duration, logger *zap.Logger) *EvictionJob {
	return &EvictionJob{
		store:   store,
		maxIdle: maxIdle,
		logger:  logger,
	}
}

// Run implements cron.Job.
func (j *EvictionJob) Run() {
	evicted := j.store.EvictIdle(j.maxIdle)
	if evicted == 0 {
		j.logger.Debug("No idle workspaces to evict")
		return
	}

	j.logger.Info("Evicted idle workspaces",
		zap.Int("evicted", evicted),
		zap.Int("resident", j.store.Resident()),
		zap.Duration("max_idle", j.maxIdle),
	)
}

// Schedule registers the job on a new cron scheduler. The caller starts
// and stops it.
func Schedule(spec string, job cron.Job, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", spec, err)
	}
	return c, nil
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
