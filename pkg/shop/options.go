package shop

import (
	"time"

	"github.com/goliatone/go-cart/pkg/activity"
	"github.com/goliatone/go-cart/pkg/rules"
	"github.com/goliatone/go-cart/pkg/state"
	"go.uber.org/zap"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	presenter    Presenter
	confirmer    Confirmer
	logger       *zap.Logger
	hooks        activity.Hooks
	channel      string
	purchaseRule string
	evaluator    rules.Evaluator
	saveDebounce time.Duration
	actorID      string
	cartID       string
	messages     Messages
}

func defaultConfig() config {
	return config{
		presenter: NopPresenter{},
		confirmer: NeverConfirm,
		logger:    zap.NewNop(),
		cartID:    state.DefaultKey,
		messages:  DefaultMessages(),
	}
}

// WithPresenter sets where views and notices go.
func WithPresenter(presenter Presenter) Option {
	return func(c *config) {
		if presenter != nil {
			c.presenter = presenter
		}
	}
}

// WithConfirmer sets who decides clear and purchase prompts. Without one every
// prompt is declined.
func WithConfirmer(confirmer Confirmer) Option {
	return func(c *config) {
		if confirmer != nil {
			c.confirmer = confirmer
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithActivityHooks fans cart events out to hooks.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(c *config) {
		c.hooks = append(c.hooks, hooks...)
	}
}

// WithActivityChannel overrides activity.DefaultChannel.
func WithActivityChannel(channel string) Option {
	return func(c *config) {
		c.channel = channel
	}
}

// WithPurchaseRule gates purchases on a boolean rule over the cart snapshot:
// total (float64, approximate), total_exact (decimal string such as "7.1"),
// count (units), lines and empty. Snapshot names take precedence over engine
// builtins of the same name.
func WithPurchaseRule(expr string) Option {
	return func(c *config) {
		c.purchaseRule = expr
	}
}

// WithEvaluator selects the rule engine. Defaults to expr-lang.
func WithEvaluator(evaluator rules.Evaluator) Option {
	return func(c *config) {
		c.evaluator = evaluator
	}
}

// WithSaveDebounce coalesces saves that happen within d of each other. Zero
// keeps save-after-every-mutation.
func WithSaveDebounce(d time.Duration) Option {
	return func(c *config) {
		c.saveDebounce = d
	}
}

// WithActor stamps activity events with an actor id.
func WithActor(id string) Option {
	return func(c *config) {
		c.actorID = id
	}
}

// WithCartID sets the cart id stamped on activity events. It does not pick
// the persistence slot; that is the store's Ref (state.WithRef).
func WithCartID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.cartID = id
		}
	}
}

// WithMessages overrides the user-facing copy. Empty fields keep defaults.
func WithMessages(messages Messages) Option {
	return func(c *config) {
		c.messages = messages.withDefaults()
	}
}
