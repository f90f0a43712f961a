// Package saga runs a sequence of steps and undoes the completed ones when a
// later step fails.
package saga

import (
	"context"
	"errors"
	"fmt"
)

type Step struct {
	Name    string
	Execute func(ctx context.Context) error
	// Compensate undoes Execute; nil means the step needs no undo.
	Compensate func(ctx context.Context) error
}

// Failure reports the step that failed and, if any, the first error raised
// while compensating.
type Failure struct {
	Step         string
	Err          error
	Compensation error
}

func (f *Failure) Error() string {
	if f.Compensation != nil {
		return fmt.Sprintf("saga step %s: %v (compensation: %v)", f.Step, f.Err, f.Compensation)
	}
	return fmt.Sprintf("saga step %s: %v", f.Step, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Run executes steps in order. On the first failure the steps that already
// completed are compensated in reverse order and a *Failure is returned.
func Run(ctx context.Context, steps ...Step) error {
	for i, step := range steps {
		err := step.Execute(ctx)
		if err == nil {
			continue
		}
		f := &Failure{Step: step.Name, Err: err}
		for j := i - 1; j >= 0; j-- {
			if steps[j].Compensate == nil {
				continue
			}
			if cerr := steps[j].Compensate(ctx); cerr != nil && f.Compensation == nil {
				f.Compensation = fmt.Errorf("%s: %w", steps[j].Name, cerr)
			}
		}
		return f
	}
	return nil
}

// FailedAt reports whether err is a *Failure raised by the named step.
func FailedAt(err error, step string) bool {
	var f *Failure
	return errors.As(err, &f) && f.Step == step
}
