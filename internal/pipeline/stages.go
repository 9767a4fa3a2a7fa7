package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Stage is a discrete unit of work in the pre-build run.
type Stage func(ctx context.Context, rs *runState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal   StageErrorKind = "fatal"   // Run must abort.
	StageErrorWarning StageErrorKind = "warning" // Non-fatal; record and continue.
)

// StageError is a structured error carrying category and underlying cause.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Warnings are recorded and execution continues.
func runStages(ctx context.Context, rs *runState, stages []struct {
	name string
	fn   Stage
}) error {
	for _, st := range stages {
		rs.report.FinalState = State(st.name)
		t0 := time.Now()
		err := st.fn(ctx, rs)
		rs.report.StageDurations[st.name] = time.Since(t0)
		if err == nil {
			continue
		}
		var se *StageError
		if !errors.As(err, &se) {
			// Wrap unknown errors as fatal by default.
			se = newFatalStageError(st.name, err)
		}
		rs.report.StageErrorKinds[st.name] = string(se.Kind)
		if se.Kind == StageErrorWarning {
			rs.report.Warnings = append(rs.report.Warnings, se)
			continue
		}
		rs.report.FinalState = StateAborted
		return se
	}
	rs.report.FinalState = StateDone
	return nil
}
