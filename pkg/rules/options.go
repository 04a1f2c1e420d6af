package rules

// Option configures the built-in evaluators.
type Option func(*engineConfig)

type engineConfig struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// WithProgramCache reuses compiled programs across evaluations.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// WithFunctions exposes registry functions to rules. The registry is copied;
// later registrations are not seen.
func WithFunctions(registry *FunctionRegistry) Option {
	return func(cfg *engineConfig) {
		cfg.registry = registry.Clone()
	}
}

func newEngineConfig(opts []Option) engineConfig {
	var cfg engineConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg engineConfig) cached(expression string) (any, bool) {
	if cfg.cache == nil {
		return nil, false
	}
	return cfg.cache.Get(expression)
}

func (cfg engineConfig) store(expression string, program any) {
	if cfg.cache != nil {
		cfg.cache.Set(expression, program)
	}
}

// call dispatches call(name, args...) to the registry.
func (cfg engineConfig) call(arguments ...any) (any, error) {
	if len(arguments) == 0 {
		return nil, errCallName
	}
	name, ok := arguments[0].(string)
	if !ok {
		return nil, errCallName
	}
	return cfg.registry.Call(name, arguments[1:]...)
}
