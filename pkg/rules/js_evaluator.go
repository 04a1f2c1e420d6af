//go:build js_eval

package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsEvaluator runs rules as JavaScript expressions in a fresh goja runtime
// per evaluation.
type jsEvaluator struct {
	engineConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...Option) Evaluator {
	return &jsEvaluator{engineConfig: newEngineConfig(opts)}
}

func jsEvaluatorAvailable() bool {
	return true
}

func (e *jsEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string, _ ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if cached, ok := e.cached(expression); ok {
		if program, ok := cached.(*goja.Program); ok {
			return jsRule{evaluator: e, program: program, expression: expression}, nil
		}
	}
	// Wrapping keeps statements out and yields the expression's value.
	program, err := goja.Compile("rule", fmt.Sprintf("(function(){ return (%s); })()", expression), true)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	e.store(expression, program)
	return jsRule{evaluator: e, program: program, expression: expression}, nil
}

type jsRule struct {
	evaluator  *jsEvaluator
	program    *goja.Program
	expression string
}

func (r jsRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	runtime := goja.New()
	for name, value := range ctx.bindings() {
		if err := runtime.Set(name, value); err != nil {
			return nil, wrapEvaluationError("js", r.expression, ctx.label(), err)
		}
	}
	if registry := r.evaluator.registry; registry != nil {
		_ = runtime.Set("call", r.evaluator.call)
		for _, name := range registry.Names() {
			_ = runtime.Set(name, registry.bound(name))
		}
	}
	value, err := runtime.RunProgram(r.program)
	if err != nil {
		return nil, wrapEvaluationError("js", r.expression, ctx.label(), err)
	}
	return value.Export(), nil
}
