package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"

	cart "github.com/goliatone/go-cart"
	"github.com/goliatone/go-cart/pkg/activity"
	"github.com/goliatone/go-cart/pkg/catalog"
	"github.com/goliatone/go-cart/pkg/rules"
	"github.com/goliatone/go-cart/pkg/state"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome reports how a purchase attempt ended.
type Outcome string

const (
	OutcomeEmpty     Outcome = "empty"
	OutcomeRejected  Outcome = "rejected"
	OutcomePurchased Outcome = "purchased"
	OutcomeDeclined  Outcome = "declined"
)

// recordSaver is implemented by stores that can write a captured snapshot
// without a live cart.
type recordSaver interface {
	SaveRecords(ctx context.Context, records []cart.Record) error
}

// Session drives one shopper's cart: it owns the cart, the loaded catalog and
// the collaborators around them. Calls are serialized.
type Session struct {
	mu sync.Mutex

	source    catalog.Source
	store     state.CartStore
	catalog   *catalog.Catalog
	cart      *cart.Cart
	presenter Presenter
	confirmer Confirmer
	logger    *zap.Logger
	emitter   *activity.Emitter
	saver     *DebouncedSaver
	cfg       config
	purchase  *rules.Predicate
}

// New builds a session. Nothing is fetched or restored until Start.
func New(source catalog.Source, store state.CartStore, opts ...Option) *Session {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	s := &Session{
		source:    source,
		store:     store,
		catalog:   catalog.New(),
		cart:      cart.New(),
		presenter: cfg.presenter,
		confirmer: cfg.confirmer,
		logger:    cfg.logger,
		emitter: activity.NewEmitter(activity.Config{
			Channel: cfg.channel,
			CartID:  cfg.cartID,
			ActorID: cfg.actorID,
		}, cfg.hooks...),
		cfg:       cfg,
	}
	if cfg.saveDebounce > 0 && store != nil {
		s.saver = NewDebouncedSaver(s.saveRecords, cfg.saveDebounce, cfg.logger)
	}
	return s
}

// Start compiles the purchase rule, loads the catalog and restores the saved
// cart. A catalog failure is shown to the user and returned as a
// *catalog.LoadError; the session stays usable with an empty catalog. A
// malformed saved cart is logged and replaced by an empty one.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.purchaseRule != "" {
		predicate, err := rules.NewPredicate(s.cfg.evaluator, s.cfg.purchaseRule,
			rules.WithLabel("purchase"),
			rules.WithVariables(purchaseVariables...),
			rules.WithEvaluatorLogger(rules.ZapEvaluatorLogger(s.logger)),
		)
		if err != nil {
			return fmt.Errorf("shop: purchase rule: %w", err)
		}
		s.purchase = predicate
	}

	var errs []error
	loaded, err := catalog.Load(ctx, s.source)
	if err != nil {
		s.logger.Error("catalog load failed", zap.Error(err))
		s.notify(ctx, Notice{Level: NoticeError, Title: s.cfg.messages.CatalogErrorTitle, Text: s.cfg.messages.CatalogErrorText})
		loaded = catalog.New()
		errs = append(errs, err)
	} else {
		s.logger.Info("catalog loaded", zap.Int("items", loaded.Len()))
	}
	s.catalog = loaded

	if err := s.restore(ctx); err != nil {
		errs = append(errs, err)
	}
	s.render(ctx)
	return errors.Join(errs...)
}

func (s *Session) restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	restored, report, err := s.store.LoadCart(ctx)
	switch {
	case errors.Is(err, state.ErrMalformed):
		s.logger.Warn("saved cart is malformed, starting empty", zap.Error(err))
		s.cart = cart.New()
		return nil
	case err != nil:
		s.logger.Error("saved cart could not be loaded", zap.Error(err))
		return fmt.Errorf("shop: restore cart: %w", err)
	}
	s.cart = restored
	if report.Skipped > 0 || report.Merged > 0 {
		s.logger.Warn("saved cart had invalid records",
			zap.Int("skipped", report.Skipped),
			zap.Int("merged", report.Merged),
		)
	}
	if report.Restored > 0 {
		s.logger.Info("cart restored",
			zap.Int("lines", restored.Len()),
			zap.Stringer("total", restored.Total()),
		)
		s.emit(ctx, cart.Change{Kind: cart.ChangeRestored, Quantity: restored.Len()}, "")
	}
	return nil
}

// AddByIndex adds the catalog item at position i.
func (s *Session) AddByIndex(ctx context.Context, i int) (cart.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.catalog.At(i)
	if err != nil {
		return cart.Change{Kind: cart.ChangeNone}, err
	}
	return s.add(ctx, item)
}

// AddByName adds the catalog item called name.
func (s *Session) AddByName(ctx context.Context, name string) (cart.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, err := s.catalog.Find(name)
	if err != nil {
		return cart.Change{Kind: cart.ChangeNone, Name: name}, err
	}
	return s.add(ctx, item)
}

func (s *Session) add(ctx context.Context, item cart.CatalogItem) (cart.Change, error) {
	change := s.cart.Add(item)
	s.logger.Debug("item added", zap.String("item", item.Name), zap.Int("quantity", change.Quantity))
	return change, s.commit(ctx, change, "")
}

// Remove takes one unit of name out of the cart. An absent name changes
// nothing and writes nothing.
func (s *Session) Remove(ctx context.Context, name string) (cart.Change, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	change := s.cart.Remove(name)
	if change.Changed() {
		s.logger.Debug("item removed", zap.String("item", name), zap.Int("quantity", change.Quantity))
	}
	return change, s.commit(ctx, change, "")
}

// Clear empties the cart once the confirmer agrees. It reports whether the
// cart was cleared.
func (s *Session) Clear(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.confirmer.Confirm(ctx, Prompt{
		Kind:  PromptClear,
		Title: s.cfg.messages.ClearPromptTitle,
		Text:  s.cfg.messages.ClearPromptText,
		Total: s.cart.Total(),
	})
	if err != nil {
		return false, fmt.Errorf("shop: confirm clear: %w", err)
	}
	if !ok {
		return false, nil
	}
	change := s.cart.Clear()
	s.logger.Info("cart cleared", zap.Int("lines", change.Quantity))
	err = s.commit(ctx, change, "")
	s.notify(ctx, Notice{Level: NoticeSuccess, Title: s.cfg.messages.ClearedTitle, Text: s.cfg.messages.ClearedText})
	return true, err
}

// Purchase checks out the cart. An empty cart only warns: the confirmer is
// not asked and nothing is saved.
func (s *Session) Purchase(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.cfg.messages

	if s.cart.IsEmpty() {
		s.notify(ctx, Notice{Level: NoticeWarning, Title: msgs.EmptyCartTitle, Text: msgs.EmptyCartText})
		return OutcomeEmpty, nil
	}

	total := s.cart.Total()
	if s.purchase != nil {
		allowed, err := s.purchase.Check(rules.RuleContext{Snapshot: s.snapshot(), Label: "purchase"})
		if err != nil {
			return OutcomeRejected, fmt.Errorf("shop: purchase rule: %w", err)
		}
		if !allowed {
			s.logger.Info("purchase rejected by rule", zap.String("rule", s.purchase.Expr()), zap.Stringer("total", total))
			s.notify(ctx, Notice{Level: NoticeWarning, Title: msgs.RejectedTitle, Text: msgs.RejectedText, Total: total})
			return OutcomeRejected, nil
		}
	}

	ok, err := s.confirmer.Confirm(ctx, Prompt{
		Kind:  PromptPurchase,
		Title: msgs.PurchasePromptTitle,
		Text:  fmt.Sprintf(msgs.PurchasePromptText, total.StringFixed(2)),
		Total: total,
	})
	if err != nil {
		return OutcomeDeclined, fmt.Errorf("shop: confirm purchase: %w", err)
	}
	if !ok {
		return OutcomeDeclined, nil
	}

	change := s.cart.Clear()
	s.logger.Info("cart purchased", zap.Stringer("total", total), zap.Int("lines", change.Quantity))
	err = s.commitPurchase(ctx, change, total)
	s.notify(ctx, Notice{
		Level: NoticeSuccess,
		Title: msgs.PurchasedTitle,
		Text:  fmt.Sprintf(msgs.PurchasedText, total.StringFixed(2)),
		Total: total,
	})
	return OutcomePurchased, err
}

// Cart returns a restored copy of the current cart.
func (s *Session) Cart() *cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := cart.Restore(s.cart.Records())
	return c
}

// Catalog returns the loaded catalog.
func (s *Session) Catalog() *catalog.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// View returns what a presenter would currently render.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Close writes any debounced snapshot.
func (s *Session) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.Close(ctx)
}

// commit is the single path every mutation takes: persist, render, emit. A
// change that moved nothing is dropped.
func (s *Session) commit(ctx context.Context, change cart.Change, verb string) error {
	if !change.Changed() {
		return nil
	}
	err := s.persist(ctx)
	s.render(ctx)
	s.emit(ctx, change, verb)
	return err
}

func (s *Session) commitPurchase(ctx context.Context, change cart.Change, total decimal.Decimal) error {
	err := s.persist(ctx)
	s.render(ctx)
	s.emitWith(ctx, activity.CartEventInput{
		Verb:   activity.VerbPurchased,
		Change: change,
		Amount: total,
	})
	return err
}

func (s *Session) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if s.saver != nil {
		s.saver.Schedule(s.cart.Records())
		return nil
	}
	if err := s.store.SaveCart(ctx, s.cart); err != nil {
		s.logger.Error("cart save failed", zap.Error(err))
		return fmt.Errorf("shop: save cart: %w", err)
	}
	return nil
}

func (s *Session) saveRecords(ctx context.Context, records []cart.Record) error {
	if saver, ok := s.store.(recordSaver); ok {
		return saver.SaveRecords(ctx, records)
	}
	snapshot, _ := cart.Restore(records)
	return s.store.SaveCart(ctx, snapshot)
}

func (s *Session) render(ctx context.Context) {
	if err := s.presenter.Render(ctx, s.view()); err != nil {
		s.logger.Warn("render failed", zap.Error(err))
	}
}

func (s *Session) notify(ctx context.Context, notice Notice) {
	if err := s.presenter.Notify(ctx, notice); err != nil {
		s.logger.Warn("notify failed", zap.String("title", notice.Title), zap.Error(err))
	}
}

func (s *Session) emit(ctx context.Context, change cart.Change, verb string) {
	s.emitWith(ctx, activity.CartEventInput{Verb: verb, Change: change})
}

func (s *Session) emitWith(ctx context.Context, input activity.CartEventInput) {
	if !s.emitter.Enabled() {
		return
	}
	input.Total = s.cart.Total()
	input.Count = s.cart.Count()
	if event, err := s.emitter.EmitChange(ctx, input); err != nil {
		s.logger.Warn("activity hook failed", zap.String("verb", event.Verb), zap.Error(err))
	}
}

func (s *Session) view() View {
	return View{
		Catalog: s.catalog.Items(),
		Lines:   s.cart.Lines(),
		Total:   s.cart.Total(),
		Count:   s.cart.Count(),
	}
}

// purchaseVariables are the keys snapshot exposes to the purchase rule.
var purchaseVariables = []string{"total", "total_exact", "count", "lines", "empty"}

func (s *Session) snapshot() map[string]any {
	total := s.cart.Total()
	return map[string]any{
		"total":       total.InexactFloat64(),
		"total_exact": total.String(),
		"count":       s.cart.Count(),
		"lines":       s.cart.Len(),
		"empty":       s.cart.IsEmpty(),
	}
}
