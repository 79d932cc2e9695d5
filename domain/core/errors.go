package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrPlanNotFound    = fmt.Errorf("%w: plan", ErrNotFound)
	ErrTaskNotFound    = fmt.Errorf("%w: task", ErrNotFound)
	ErrPromptNotFound  = fmt.Errorf("%w: prompt", ErrNotFound)
	ErrConcernNotFound = fmt.Errorf("%w: concern", ErrNotFound)

	// Execution errors
	ErrTaskValidation  = errors.New("task output validation failed")
	ErrEmptyNarrative  = errors.New("required case narrative is empty")
	ErrCycleDetected   = errors.New("task graph contains a cycle")
	ErrDuplicateTask   = errors.New("duplicate task id in graph")
	ErrUnknownTaskType = errors.New("unknown task type")

	// Generation errors
	ErrGenerationTimeout   = errors.New("generation call timed out")
	ErrGenerationTransport = errors.New("generation transport failure")
	ErrMalformedOutput     = errors.New("malformed structured output")
	ErrStrictNoAutoFill    = errors.New("strict mode: generation failed, no auto-fill permitted")

	// Plan shape errors
	ErrUnknownPlanVersion = errors.New("unknown plan schema version")
)

// TaskExecutionError identifies the task and the first failing structural check.
// It is fatal to the current execution run and never silently ignored.
type TaskExecutionError struct {
	TaskID TaskID
	Check  string
	Cause  error
}

func (e *TaskExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("task %s failed check %q: %v", e.TaskID, e.Check, e.Cause)
	}
	return fmt.Sprintf("task %s failed check %q", e.TaskID, e.Check)
}

func (e *TaskExecutionError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrTaskValidation
}

// NewTaskExecutionError constructs a TaskExecutionError for the given check.
func NewTaskExecutionError(taskID TaskID, check string) *TaskExecutionError {
	return &TaskExecutionError{TaskID: taskID, Check: check}
}

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTaskExecutionError(err error) bool {
	var te *TaskExecutionError
	return errors.As(err, &te)
}

func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGenerationTimeout) ||
		errors.Is(err, ErrGenerationTransport) ||
		errors.Is(err, ErrMalformedOutput)
}
