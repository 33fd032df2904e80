// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// HandlerFunc is the job handler signature shared by all discovery workers.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// WorkerOptions tunes a single job worker subscription.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// Worker is one open job worker subscription.
type Worker struct {
	taskType string
	jw       worker.JobWorker
	logger   *zap.Logger
}

// OpenWorker subscribes handler to taskType on the given client.
func (c *Client) OpenWorker(taskType string, opts WorkerOptions, handler HandlerFunc, log *zap.Logger) *Worker {
	builder := c.client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(opts.MaxJobsActive)
	if opts.Timeout > 0 {
		builder = builder.Timeout(opts.Timeout)
	}
	jw := builder.Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", opts.MaxJobsActive),
		zap.Duration("timeout", opts.Timeout),
	)

	return &Worker{taskType: taskType, jw: jw, logger: log}
}

// Close drains in-flight jobs and closes the subscription.
func (w *Worker) Close() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.jw.Close()
}

// Group tracks open workers so shutdown can close them in order.
type Group struct {
	workers []*Worker
}

func (g *Group) Add(w *Worker) {
	g.workers = append(g.workers, w)
}

// CloseAll closes every worker in registration order.
func (g *Group) CloseAll() {
	for _, w := range g.workers {
		w.Close()
	}
}
