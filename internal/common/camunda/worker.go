package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"loan-intake/internal/common/config"
	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/common/observability"
)

// Manager opens and closes the job workers of one process.
type Manager struct {
	client  zbc.Client
	workers map[string]worker.JobWorker
	logger  logger.Logger
}

func NewManager(client zbc.Client, log logger.Logger) *Manager {
	return &Manager{
		client:  client,
		workers: map[string]worker.JobWorker{},
		logger:  log.WithFields(map[string]interface{}{"component": "worker-manager"}),
	}
}

// Register opens a job worker for taskType unless it is disabled. It reports
// whether a worker was opened.
func (m *Manager) Register(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) bool {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return false
	}

	step := m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler)

	builder := step.MaxJobsActive(wcfg.MaxJobsActive)
	if wcfg.Timeout > 0 {
		builder = builder.Timeout(time.Duration(wcfg.Timeout) * time.Millisecond)
	}
	m.workers[taskType] = builder.Open()

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
	return true
}

func (m *Manager) Count() int {
	return len(m.workers)
}

// Close stops polling and waits for in-flight jobs.
func (m *Manager) Close() {
	for taskType, w := range m.workers {
		w.Close()
		w.AwaitClose()
		m.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
}

// Runner completes or fails one job from the result of a worker function and
// records job metrics.
type Runner struct {
	taskType string
	timeout  time.Duration
	errors   *apperrors.ErrorHandler
	obs      *observability.Observability
	logger   logger.Logger
}

func NewRunner(taskType string, timeout time.Duration, obs *observability.Observability, log logger.Logger) *Runner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	log = log.WithFields(map[string]interface{}{"taskType": taskType})
	return &Runner{
		taskType: taskType,
		timeout:  timeout,
		errors:   apperrors.NewErrorHandler(log),
		obs:      obs,
		logger:   log,
	}
}

// Run calls fn with a context bounded by the runner timeout. A nil error
// completes the job with fn's output as variables; an error goes through the
// ErrorHandler.
func (r *Runner) Run(client worker.JobClient, job entities.Job, fn func(ctx context.Context) (interface{}, error)) {
	start := time.Now()
	r.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	ctx, span := r.obs.StartSpan(ctx, "job "+r.taskType,
		attribute.Int64("job.key", job.Key),
		attribute.Int64("job.process_instance_key", job.ProcessInstanceKey),
	)
	defer span.End()

	output, err := fn(ctx)
	metrics.WorkerJobDuration.WithLabelValues(r.taskType).Observe(time.Since(start).Seconds())

	if err != nil {
		code := string(apperrors.ErrCodeInternal)
		if stdErr, ok := apperrors.AsStandardError(err); ok {
			code = string(stdErr.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, code).Inc()
		r.obs.RecordJob(ctx, r.taskType, time.Since(start), "failed")
		r.errors.HandleJobError(context.Background(), client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		r.errors.HandleJobError(context.Background(), client, job, err)
		return
	}
	if _, err := cmd.Send(context.Background()); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
	r.obs.RecordJob(ctx, r.taskType, time.Since(start), "completed")
	r.logger.Info("job completed successfully", map[string]interface{}{"jobKey": job.Key})
}
