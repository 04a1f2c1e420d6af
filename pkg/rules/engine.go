package rules

import (
	"fmt"
	"strings"
)

// Engine names a rule evaluation backend.
type Engine string

const (
	EngineExpr Engine = "expr"
	EngineCEL  Engine = "cel"
	EngineJS   Engine = "js"
)

// Config selects and wires an evaluator.
type Config struct {
	Engine    Engine
	Cache     ProgramCache
	Functions *FunctionRegistry
}

// NewEvaluator builds the evaluator named by cfg.Engine. An empty engine picks
// expr. The JS engine is only available when built with the js_eval tag.
func NewEvaluator(cfg Config) (Evaluator, error) {
	switch Engine(strings.ToLower(strings.TrimSpace(string(cfg.Engine)))) {
	case "", EngineExpr:
		return NewExprEvaluator(cfg.options()...), nil
	case EngineCEL:
		return NewCELEvaluator(cfg.options()...), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(cfg.options()...), nil
	default:
		return nil, fmt.Errorf("rules: unknown engine %q", cfg.Engine)
	}
}

func (cfg Config) options() []Option {
	var opts []Option
	if cfg.Cache != nil {
		opts = append(opts, WithProgramCache(cfg.Cache))
	}
	if cfg.Functions != nil {
		opts = append(opts, WithFunctions(cfg.Functions))
	}
	return opts
}

// EngineName reports which backend e is.
func EngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*rules.exprEvaluator":
		return string(EngineExpr)
	case "*rules.celEvaluator":
		return string(EngineCEL)
	case "*rules.jsEvaluator":
		return string(EngineJS)
	default:
		return "custom"
	}
}
