package shop

import (
	"context"

	"github.com/shopspring/decimal"
)

// PromptKind names the action awaiting confirmation.
type PromptKind string

const (
	PromptClear    PromptKind = "clear"
	PromptPurchase PromptKind = "purchase"
)

// Prompt is the question put to the user before a destructive action.
type Prompt struct {
	Kind  PromptKind
	Title string
	Text  string
	Total decimal.Decimal
}

// Confirmer asks the user to decide a prompt. The session only ever sees the
// decided bool.
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt Prompt) (bool, error)

// Confirm implements Confirmer.
func (fn ConfirmerFunc) Confirm(ctx context.Context, prompt Prompt) (bool, error) {
	if fn == nil {
		return false, nil
	}
	return fn(ctx, prompt)
}

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm Confirmer = ConfirmerFunc(func(context.Context, Prompt) (bool, error) { return true, nil })

// NeverConfirm declines every prompt.
var NeverConfirm Confirmer = ConfirmerFunc(func(context.Context, Prompt) (bool, error) { return false, nil })
