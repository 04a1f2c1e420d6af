package rules

import (
	"sort"
	"time"
)

// RuleContext carries inputs needed when evaluating an expression. Snapshot
// keys are exposed as top-level variables when Snapshot is a map[string]any.
type RuleContext struct {
	Snapshot any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	Label    string
}

// reservedNames are bound for every rule, whatever the snapshot holds.
var reservedNames = []string{"now", "args", "metadata"}

func (ctx RuleContext) withDefaults() RuleContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) label() string {
	if ctx.Label != "" {
		return ctx.Label
	}
	return "unknown"
}

func (ctx RuleContext) snapshot() map[string]any {
	if m, ok := ctx.Snapshot.(map[string]any); ok {
		return m
	}
	return nil
}

// bindings returns every variable a rule can read. Snapshot keys shadow the
// reserved names. ctx must already carry defaults.
func (ctx RuleContext) bindings() map[string]any {
	snapshot := ctx.snapshot()
	out := make(map[string]any, len(snapshot)+len(reservedNames))
	out["now"] = *ctx.Now
	out["args"] = ctx.Args
	out["metadata"] = ctx.Metadata
	for key, value := range snapshot {
		out[key] = value
	}
	return out
}

// names lists the variables bindings will provide.
func (ctx RuleContext) names() variables {
	vars := newVariables(reservedNames...)
	for key := range ctx.snapshot() {
		vars[key] = struct{}{}
	}
	return vars
}

// variables is the set of identifiers a program was compiled against.
type variables map[string]struct{}

func newVariables(names ...string) variables {
	vars := make(variables, len(names))
	for _, name := range names {
		if name != "" {
			vars[name] = struct{}{}
		}
	}
	return vars
}

func (v variables) covers(other variables) bool {
	for name := range other {
		if _, ok := v[name]; !ok {
			return false
		}
	}
	return true
}

func (v variables) union(other variables) variables {
	out := make(variables, len(v)+len(other))
	for name := range v {
		out[name] = struct{}{}
	}
	for name := range other {
		out[name] = struct{}{}
	}
	return out
}

func (v variables) sorted() []string {
	names := make([]string, 0, len(v))
	for name := range v {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption func(*compileConfig)

type compileConfig struct {
	variables variables
}

// Variables declares snapshot keys the rule will be evaluated with, so
// engines that type-check at compile time can resolve them up front.
func Variables(names ...string) CompileOption {
	return func(cfg *compileConfig) {
		cfg.variables = cfg.variables.union(newVariables(names...))
	}
}

func applyCompileOptions(opts []CompileOption) compileConfig {
	cfg := compileConfig{variables: newVariables(reservedNames...)}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}
