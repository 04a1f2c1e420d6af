package rules

import (
	"errors"
	"fmt"
)

// ErrNoEvaluator is returned when the requested engine is not built in.
var ErrNoEvaluator = errors.New("rules: evaluator not configured")

// ErrEmptyExpression is returned when a rule has no source.
var ErrEmptyExpression = errors.New("rules: expression must not be empty")

var errCallName = errors.New("rules: call needs a function name as first argument")

// ErrNotBoolean is returned when a predicate rule yields a non-bool value.
var ErrNotBoolean = errors.New("rules: expression did not return a bool")

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Label  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("rules: %s evaluator %s label=%s: %v", e.Engine, describeExpression(e.Expr), e.Label, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluationError(engine, expr, label string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Label == "" {
			evalErr.Label = label
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Label:  label,
		Err:    err,
	}
}
