package rules

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// maxCallArgs bounds call(name, ...) in CEL, which has no variadic functions.
const maxCallArgs = 4

// celEvaluator runs rules with cel-go. CEL type-checks against declared
// variables, so a program is compiled for the variables first seen and
// recompiled when a snapshot brings new ones.
type celEvaluator struct {
	engineConfig
}

type celProgram struct {
	program celgo.Program
	vars    variables
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...Option) Evaluator {
	return &celEvaluator{engineConfig: newEngineConfig(opts)}
}

func (e *celEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	return e.run(ctx.withDefaults(), expression, nil)
}

// Compile checks syntax up front. With Variables declared it also type-checks.
func (e *celEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	declared := applyCompileOptions(opts).variables
	if len(declared) > len(reservedNames) {
		if _, err := e.program(expression, declared); err != nil {
			return nil, err
		}
		return celRule{evaluator: e, expression: expression, declared: declared}, nil
	}
	env, err := celgo.NewEnv()
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	if _, issues := env.Parse(expression); issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	return celRule{evaluator: e, expression: expression, declared: declared}, nil
}

func (e *celEvaluator) run(ctx RuleContext, expression string, declared variables) (any, error) {
	program, err := e.program(expression, ctx.names().union(declared))
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.label(), err)
	}
	out, _, err := program.program.Eval(ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, ctx.label(), err)
	}
	return out.Value(), nil
}

func (e *celEvaluator) program(expression string, vars variables) (*celProgram, error) {
	if cached, ok := e.cached(expression); ok {
		if program, ok := cached.(*celProgram); ok {
			if program.vars.covers(vars) {
				return program, nil
			}
			vars = vars.union(program.vars)
		}
	}

	env, err := celgo.NewEnv(e.envOptions(vars)...)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}
	program := &celProgram{program: prg, vars: vars}
	e.store(expression, program)
	return program, nil
}

func (e *celEvaluator) envOptions(vars variables) []celgo.EnvOption {
	opts := []celgo.EnvOption{celgo.CrossTypeNumericComparisons(true)}
	// Everything is dyn: a snapshot key may shadow now with any type.
	for _, name := range vars.sorted() {
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call", e.callOverloads()...))
	}
	return opts
}

func (e *celEvaluator) callOverloads() []celgo.FunctionOpt {
	binding := celgo.FunctionBinding(func(values ...ref.Val) ref.Val {
		args := make([]any, len(values))
		for i, val := range values {
			args[i] = val.Value()
		}
		result, err := e.call(args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	})

	overloads := make([]celgo.FunctionOpt, 0, maxCallArgs+1)
	argTypes := []*celgo.Type{celgo.StringType}
	for arity := 0; arity <= maxCallArgs; arity++ {
		overloads = append(overloads, celgo.Overload(
			fmt.Sprintf("call_string_dyn%d", arity),
			append([]*celgo.Type(nil), argTypes...),
			celgo.DynType,
			binding,
		))
		argTypes = append(argTypes, celgo.DynType)
	}
	return overloads
}

type celRule struct {
	evaluator  *celEvaluator
	expression string
	declared   variables
}

func (r celRule) Evaluate(ctx RuleContext) (any, error) {
	return r.evaluator.run(ctx.withDefaults(), r.expression, r.declared)
}
