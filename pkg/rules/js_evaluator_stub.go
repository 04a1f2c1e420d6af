//go:build !js_eval

package rules

// NewJSEvaluator returns nil: the JS engine needs the js_eval build tag.
func NewJSEvaluator(...Option) Evaluator {
	return nil
}

func jsEvaluatorAvailable() bool {
	return false
}
