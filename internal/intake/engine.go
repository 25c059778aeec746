// Package intake implements the slot-filling state machine that turns free
// text into a home-loan application, one turn at a time.
package intake

import (
	"context"
	"time"

	"loan-intake/internal/common/logger"
	"loan-intake/internal/common/metrics"
	"loan-intake/internal/intake/oracle"
	"loan-intake/internal/models"
	"loan-intake/pkg/registry"
)

// Engine runs the extraction tasks for a turn and folds their answers into
// the application.
type Engine struct {
	registry *registry.TaskRegistry
	oracle   oracle.Oracle
	offers   OfferSource
	logger   logger.Logger
}

func NewEngine(reg *registry.TaskRegistry, o oracle.Oracle, offers OfferSource, log logger.Logger) *Engine {
	return &Engine{
		registry: reg,
		oracle:   o,
		offers:   offers,
		logger:   log.WithFields(map[string]interface{}{"component": "intake-engine"}),
	}
}

// Registry returns the task catalog the engine runs.
func (e *Engine) Registry() *registry.TaskRegistry {
	return e.registry
}

// Advance runs one turn of extraction against app and reports whether any
// slot changed. Tasks run sequentially in a fixed order because the branch
// tasks read slots written earlier in the same turn. A failing task never
// aborts the turn.
func (e *Engine) Advance(ctx context.Context, app *models.Application, text string) bool {
	changed := false
	run := func(name, input string) {
		if e.extract(ctx, app, name, input) {
			changed = true
		}
	}

	run(registry.TaskIncomeType, text)
	switch app.Employment {
	case models.EmploymentSalaried:
		run(registry.TaskSalaried, text)
	case models.EmploymentBusiness:
		run(registry.TaskBusiness, text)
	}

	run(registry.TaskPersonalInfo, collapseNewlines(text))

	run(registry.TaskPropertyType, text)
	switch app.PropertyType {
	case models.PropertyNew:
		run(registry.TaskNewProperty, text)
	case models.PropertyResale:
		run(registry.TaskResaleProperty, text)
	}

	run(registry.TaskCredit, text)

	return changed
}

func (e *Engine) extract(ctx context.Context, app *models.Application, name, text string) bool {
	log := e.logger.WithFields(map[string]interface{}{"task": name})

	task, ok := e.registry.Task(name)
	if !ok {
		log.Error("Extraction task not registered", nil)
		return false
	}

	outcome := metrics.OutcomeOK
	start := time.Now()
	answer, err := e.oracle.Extract(ctx, task, text)
	metrics.OracleDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	fields := Fields{}
	if err != nil {
		outcome = metrics.OutcomeOracleError
		log.Warn("Oracle call failed, continuing without its answer", map[string]interface{}{
			"error": err,
		})
	} else {
		var diag *Diagnostic
		fields, diag = Parse(answer)
		if diag != nil {
			outcome = metrics.OutcomeParseError
			log.Debug("Oracle answer not parsed", map[string]interface{}{
				"reason": diag.Reason,
				"detail": diag.Detail,
			})
		}
	}

	if violations := registry.ValidateOutput(task, fields); len(violations) > 0 {
		metrics.SchemaViolations.WithLabelValues(name).Inc()
		log.Debug("Oracle answer does not match task schema", map[string]interface{}{
			"violations": violations,
		})
	}

	res := merge(app, task, fields)
	if len(res.rejected) > 0 {
		log.Debug("Dropped values that did not coerce", map[string]interface{}{
			"fields": res.rejected,
		})
	}
	if len(res.written) > 0 {
		log.Debug("Merged fields", map[string]interface{}{
			"fields": res.written,
		})
	} else if outcome == metrics.OutcomeOK {
		outcome = metrics.OutcomeEmpty
	}

	metrics.ExtractionTasks.WithLabelValues(name, outcome).Inc()
	return len(res.written) > 0
}
