package rules

import (
	exprlang "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/types"
	"github.com/expr-lang/expr/vm"
)

// exprEvaluator runs rules with expr-lang. Every bare identifier in a rule is
// declared as a variable, so snapshot keys win over expr builtins of the same
// name (count, sum, max...).
type exprEvaluator struct {
	engineConfig
}

// NewExprEvaluator constructs the default Evaluator.
func NewExprEvaluator(opts ...Option) Evaluator {
	return &exprEvaluator{engineConfig: newEngineConfig(opts)}
}

func (e *exprEvaluator) Evaluate(ctx RuleContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string, opts ...CompileOption) (CompiledRule, error) {
	if expression == "" {
		return nil, ErrEmptyExpression
	}
	if cached, ok := e.cached(expression); ok {
		if program, ok := cached.(*vm.Program); ok {
			return exprRule{program: program, expression: expression}, nil
		}
	}

	idents, err := bareIdentifiers(expression)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	declared := applyCompileOptions(opts).variables.union(idents)
	env := types.Map{}
	for name := range declared {
		env[name] = types.Any
	}
	options := []exprlang.Option{
		exprlang.Env(env),
		exprlang.AllowUndefinedVariables(),
	}
	if e.registry != nil {
		options = append(options, exprlang.Function("call", e.call))
		for _, name := range e.registry.Names() {
			options = append(options, exprlang.Function(name, e.registry.bound(name)))
		}
	}

	program, err := exprlang.Compile(expression, options...)
	if err != nil {
		return nil, wrapEvaluationError("expr", expression, "", err)
	}
	e.store(expression, program)
	return exprRule{program: program, expression: expression}, nil
}

type exprRule struct {
	program    *vm.Program
	expression string
}

func (r exprRule) Evaluate(ctx RuleContext) (any, error) {
	ctx = ctx.withDefaults()
	out, err := exprlang.Run(r.program, ctx.bindings())
	if err != nil {
		return nil, wrapEvaluationError("expr", r.expression, ctx.label(), err)
	}
	return out, nil
}

// bareIdentifiers parses expression and returns the identifiers it reads as
// values. Call targets such as call(...) are left out.
func bareIdentifiers(expression string) (variables, error) {
	tree, err := parser.Parse(expression)
	if err != nil {
		return nil, err
	}
	collector := &identCollector{callees: map[*ast.IdentifierNode]bool{}}
	ast.Walk(&tree.Node, collector)

	vars := variables{}
	for _, ident := range collector.idents {
		if !collector.callees[ident] && ident.Value != "$env" {
			vars[ident.Value] = struct{}{}
		}
	}
	return vars, nil
}

type identCollector struct {
	idents  []*ast.IdentifierNode
	callees map[*ast.IdentifierNode]bool
}

func (c *identCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		c.idents = append(c.idents, n)
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.callees[callee] = true
		}
	}
}
