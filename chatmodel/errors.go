package chatmodel

import (
	"fmt"
	"strings"
)

// UnknownFunctionError reports a function name with no registered
// callback, either in the enabled set before a run or requested by the
// model mid-run. Never retried; the run is aborted.
type UnknownFunctionError struct {
	Name string
}

func (e *UnknownFunctionError) Error() string {
	return fmt.Sprintf("chatmodel: no function registered under %q", e.Name)
}

// FunctionExecutionError reports a callback failure. The run is aborted
// and partial conversation state is discarded.
type FunctionExecutionError struct {
	Name  string
	Cause error
}

func (e *FunctionExecutionError) Error() string {
	return fmt.Sprintf("chatmodel: function %q failed: %v", e.Name, e.Cause)
}

func (e *FunctionExecutionError) Unwrap() error {
	return e.Cause
}

// DirectiveError reports a response that the extractor flagged as a
// function call but whose directives could not be parsed.
type DirectiveError struct {
	Cause error
}

func (e *DirectiveError) Error() string {
	return fmt.Sprintf("chatmodel: malformed function-call directive: %v", e.Cause)
}

func (e *DirectiveError) Unwrap() error {
	return e.Cause
}

// TooManyFunctionCallsError reports an orchestration run that hit its
// iteration cap without the model producing a final answer.
type TooManyFunctionCallsError struct {
	Limit int
}

func (e *TooManyFunctionCallsError) Error() string {
	return fmt.Sprintf("chatmodel: function-call loop exceeded %d iterations", e.Limit)
}

// RepeatedFunctionCallsError reports a run aborted by the loop guard:
// the model kept requesting the same call pattern.
type RepeatedFunctionCallsError struct {
	Pattern []string
}

func (e *RepeatedFunctionCallsError) Error() string {
	return fmt.Sprintf("chatmodel: model is repeating function calls [%s]", strings.Join(e.Pattern, ", "))
}
