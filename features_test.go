package cart_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	cart "github.com/goliatone/go-cart"
	"github.com/shopspring/decimal"
)

type cartTestContext struct {
	cart  *cart.Cart
	saved string
}

func (c *cartTestContext) reset() {
	c.cart = cart.New()
	c.saved = ""
}

func (c *cartTestContext) anEmptyCart() error {
	c.cart = cart.New()
	return nil
}

func (c *cartTestContext) aSavedCart(payload *godog.DocString) error {
	c.saved = payload.Content
	return nil
}

func (c *cartTestContext) iAddPriced(name string, price int) error {
	c.cart.Add(cart.NewCatalogItem(name, decimal.NewFromInt(int64(price))))
	return nil
}

func (c *cartTestContext) iRemove(name string) error {
	c.cart.Remove(name)
	return nil
}

func (c *cartTestContext) iClearTheCart() error {
	c.cart.Clear()
	return nil
}

func (c *cartTestContext) iRestoreTheSavedCart() error {
	var records []cart.Record
	if err := json.Unmarshal([]byte(c.saved), &records); err != nil {
		return fmt.Errorf("decode saved cart: %w", err)
	}
	c.cart, _ = cart.Restore(records)
	return nil
}

func (c *cartTestContext) iSaveAndRestoreTheCart() error {
	raw, err := json.Marshal(c.cart.Records())
	if err != nil {
		return err
	}
	c.saved = string(raw)
	return c.iRestoreTheSavedCart()
}

func (c *cartTestContext) theCartHasLines(count int) error {
	if c.cart.Len() != count {
		return fmt.Errorf("expected %d lines, got %d", count, c.cart.Len())
	}
	return nil
}

func (c *cartTestContext) theLineHasQuantityAndPrice(name string, quantity, price int) error {
	line, ok := c.cart.Line(name)
	if !ok {
		return fmt.Errorf("line %q not found", name)
	}
	if line.Quantity != quantity {
		return fmt.Errorf("expected %q quantity %d, got %d", name, quantity, line.Quantity)
	}
	if !line.UnitPrice.Equal(decimal.NewFromInt(int64(price))) {
		return fmt.Errorf("expected %q price %d, got %s", name, price, line.UnitPrice)
	}
	return nil
}

func (c *cartTestContext) theTotalIs(total int) error {
	if got := c.cart.Total(); !got.Equal(decimal.NewFromInt(int64(total))) {
		return fmt.Errorf("expected total %d, got %s", total, got)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^an empty cart$`, tc.anEmptyCart)
	ctx.Step(`^a saved cart:$`, tc.aSavedCart)

	// When steps
	ctx.Step(`^I add "([^"]*)" priced (\d+)$`, tc.iAddPriced)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I clear the cart$`, tc.iClearTheCart)
	ctx.Step(`^I restore the saved cart$`, tc.iRestoreTheSavedCart)
	ctx.Step(`^I save and restore the cart$`, tc.iSaveAndRestoreTheCart)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the line "([^"]*)" has quantity (\d+) and price (\d+)$`, tc.theLineHasQuantityAndPrice)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"testdata/cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
