package filter

import (
	"fmt"

	"github.com/s0up4200/jnetcce/cce"
)

type (
	// CompilationError indicates a filter expression could not be compiled
	CompilationError struct {
		Expression string
		Reason     string
		Err        error
	}

	// EvaluationError indicates a filter failed on one status
	EvaluationError struct {
		Expression string
		FileID     cce.FileID
		Err        error
	}
)

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation error in '%s': %s: %v", e.Expression, e.Reason, e.Err)
	}
	return fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation error for '%s' on file %s: %v", e.Expression, e.FileID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
