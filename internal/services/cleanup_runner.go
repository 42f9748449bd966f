package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
	"github.com/SAP-F-2025/training-service/internal/repositories"
)

// cleanupRunner executes named deletion steps inside one transaction and
// records what each step touched.
type cleanupRunner struct {
	ctx    context.Context
	tx     *gorm.DB
	req    *models.DeleteRequest
	result *models.DeleteResult
	prefix string
}

func (s *deletionOrchestrator) newRunner(ctx context.Context, tx *gorm.DB, req *models.DeleteRequest, result *models.DeleteResult) *cleanupRunner {
	result.Steps = result.Steps[:0]
	return &cleanupRunner{ctx: ctx, tx: tx, req: req, result: result}
}

// scoped returns a runner sharing the step log whose step names carry prefix.
func (r *cleanupRunner) scoped(prefix string) *cleanupRunner {
	child := *r
	child.prefix = r.prefix + prefix
	return &child
}

func (r *cleanupRunner) step(name string, fn func() (int64, error)) error {
	rows, err := fn()
	if err != nil {
		return r.fail(name, err)
	}
	r.result.Steps = append(r.result.Steps, models.CleanupStep{Name: r.prefix + name, Rows: rows})
	return nil
}

// fail classifies a step failure. Forced cleanups report the failed step;
// a plain delete that trips a reference added after the dependency check
// reports the dependency instead.
func (r *cleanupRunner) fail(name string, err error) error {
	if r.req.Force {
		return &CleanupError{Step: r.prefix + name, Err: err}
	}
	if repositories.IsForeignKeyViolation(err) {
		return &DependencyError{Target: r.req.TargetKind, ID: r.req.ID}
	}
	return storeErr(r.prefix+name, err)
}
