package rules

import (
	"fmt"
	"time"
)

// Predicate is a compiled boolean rule bound to an evaluator.
type Predicate struct {
	expr      string
	label     string
	engine    string
	variables []string
	compiled  CompiledRule
	logger    EvaluatorLogger
}

// PredicateOption configures a Predicate.
type PredicateOption func(*Predicate)

// WithLabel names the predicate in errors and logs.
func WithLabel(label string) PredicateOption {
	return func(p *Predicate) {
		p.label = label
	}
}

// WithVariables declares the snapshot keys the predicate is checked against.
func WithVariables(names ...string) PredicateOption {
	return func(p *Predicate) {
		p.variables = append(p.variables, names...)
	}
}

// WithEvaluatorLogger attaches an evaluator logger to the predicate.
func WithEvaluatorLogger(logger EvaluatorLogger) PredicateOption {
	return func(p *Predicate) {
		if logger == nil {
			logger = noopEvaluatorLogger{}
		}
		p.logger = logger
	}
}

// NewPredicate compiles expr with evaluator. A nil evaluator falls back to expr.
func NewPredicate(evaluator Evaluator, expr string, opts ...PredicateOption) (*Predicate, error) {
	if expr == "" {
		return nil, ErrEmptyExpression
	}
	if evaluator == nil {
		evaluator = NewExprEvaluator()
	}
	p := &Predicate{
		expr:   expr,
		engine: EngineName(evaluator),
		logger: noopEvaluatorLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	compiled, err := evaluator.Compile(expr, Variables(p.variables...))
	if err != nil {
		return nil, wrapEvaluationError(p.engine, expr, p.label, err)
	}
	p.compiled = compiled
	return p, nil
}

// Expr returns the source expression.
func (p *Predicate) Expr() string {
	return p.expr
}

// Check evaluates the predicate against ctx and requires a bool result.
func (p *Predicate) Check(ctx RuleContext) (bool, error) {
	if ctx.Label == "" {
		ctx.Label = p.label
	}
	start := time.Now()
	value, err := p.compiled.Evaluate(ctx)
	allowed, isBool := value.(bool)
	if err == nil && !isBool {
		err = fmt.Errorf("%w: got %T", ErrNotBoolean, value)
	}
	err = wrapEvaluationError(p.engine, p.expr, ctx.label(), err)
	p.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   p.engine,
		Expr:     p.expr,
		Label:    ctx.label(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}
