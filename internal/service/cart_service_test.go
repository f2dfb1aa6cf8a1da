package service

import (
	"errors"
	"math"
	"testing"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/models"
)

func TestCartGetOrCreateReturnsSameCart(t *testing.T) {
	f := newServiceFixture(t)
	svc := NewCartService(f.cartRepo, f.productRepo)

	first, err := svc.GetOrCreate(5)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if first.ID == 0 || len(first.Items) != 0 {
		t.Fatalf("expected new empty cart, got %+v", first)
	}
	second, err := svc.GetOrCreate(5)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same cart, got %d and %d", first.ID, second.ID)
	}
	if _, err := svc.GetOrCreate(0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for empty user, got %v", err)
	}
}

func TestCartAddItemAccumulatesQuantityAndKeepsSnapshot(t *testing.T) {
	f := newServiceFixture(t)
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Vintas Mule", Price: "200", Discount: 50, Stock: 10})
	svc := NewCartService(f.cartRepo, f.productRepo)

	if _, err := svc.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", money("300")).Error; err != nil {
		t.Fatalf("change catalog price failed: %v", err)
	}
	item, err := svc.AddItem(1, product.ID, 3)
	if err != nil {
		t.Fatalf("second add failed: %v", err)
	}
	if item.Quantity != 5 {
		t.Fatalf("expected accumulated quantity 5, got %d", item.Quantity)
	}

	cart, err := svc.GetOrCreate(1)
	if err != nil {
		t.Fatalf("load cart failed: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected a single cart item, got %d", len(cart.Items))
	}
	if !cart.Items[0].UnitPrice.Decimal.Equal(money("100").Decimal) {
		t.Fatalf("expected snapshot price 100.00, got %s", cart.Items[0].UnitPrice)
	}
	if !cart.TotalAmount().Decimal.Equal(money("500").Decimal) {
		t.Fatalf("expected total 500.00, got %s", cart.TotalAmount())
	}
	count, err := svc.Count(1)
	if err != nil || count != 5 {
		t.Fatalf("expected count 5, got %d (%v)", count, err)
	}
}

func TestCartAddItemRejectsMissingOrInactiveProduct(t *testing.T) {
	f := newServiceFixture(t)
	shoes := f.category(t, "Shoes")
	inactive := f.product(t, productSeed{Category: shoes.ID, Name: "Hidden", Price: "100", Stock: 1, Inactive: true})
	svc := NewCartService(f.cartRepo, f.productRepo)

	if _, err := svc.AddItem(1, 9999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing product, got %v", err)
	}
	if _, err := svc.AddItem(1, inactive.ID, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
	if _, err := svc.AddItem(1, inactive.ID, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
	if got := f.countRows(t, &models.CartItem{}); got != 0 {
		t.Fatalf("expected no cart items, got %d", got)
	}
}

func TestCartUpdateQuantity(t *testing.T) {
	f := newServiceFixture(t)
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Urbas", Price: "150", Stock: 10})
	svc := NewCartService(f.cartRepo, f.productRepo)

	item, err := svc.AddItem(1, product.ID, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.UpdateQuantity(1, item.ID, 4); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	cart, _ := svc.GetOrCreate(1)
	if cart.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", cart.Items[0].Quantity)
	}

	if err := svc.UpdateQuantity(2, item.ID, 9); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("expected not found for another user's item, got %v", err)
	}

	if err := svc.UpdateQuantity(1, item.ID, 0); err != nil {
		t.Fatalf("update to zero failed: %v", err)
	}
	cart, _ = svc.GetOrCreate(1)
	if len(cart.Items) != 0 {
		t.Fatalf("expected item removed, got %d items", len(cart.Items))
	}
}

func TestCartQuantityIsCapped(t *testing.T) {
	f := newServiceFixture(t)
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Vintas Saigon", Price: "100", Stock: 10})
	svc := NewCartService(f.cartRepo, f.productRepo)

	if _, err := svc.AddItem(1, product.ID, math.MaxInt); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for huge quantity, got %v", err)
	}
	if got := f.countRows(t, &models.CartItem{}); got != 0 {
		t.Fatalf("expected no cart items, got %d", got)
	}

	item, err := svc.AddItem(1, product.ID, constants.CartItemMaxQuantity-1)
	if err != nil {
		t.Fatalf("add below cap failed: %v", err)
	}
	if _, err := svc.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add up to cap failed: %v", err)
	}
	_, err = svc.AddItem(1, product.ID, math.MaxInt-10)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error when accumulating past cap, got %v", err)
	}
	if _, ok := verr.Fields["quantity"]; !ok {
		t.Fatalf("expected quantity field, got %v", verr.Fields)
	}
	if _, err := svc.AddItem(1, product.ID, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error one past cap, got %v", err)
	}
	if err := svc.UpdateQuantity(1, item.ID, constants.CartItemMaxQuantity+1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for update past cap, got %v", err)
	}

	cart, err := svc.GetOrCreate(1)
	if err != nil {
		t.Fatalf("load cart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != constants.CartItemMaxQuantity {
		t.Fatalf("expected quantity to stay at %d, got %+v", constants.CartItemMaxQuantity, cart.Items)
	}
}

func TestCartRemoveItemIsIdempotent(t *testing.T) {
	f := newServiceFixture(t)
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Urbas", Price: "150", Stock: 10})
	svc := NewCartService(f.cartRepo, f.productRepo)

	item, err := svc.AddItem(1, product.ID, 1)
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.RemoveItem(2, item.ID); err != nil {
		t.Fatalf("remove from another user should be a no-op: %v", err)
	}
	if got := f.countRows(t, &models.CartItem{}); got != 1 {
		t.Fatalf("another user's remove must not delete the item, got %d rows", got)
	}
	for i := 0; i < 2; i++ {
		if err := svc.RemoveItem(1, item.ID); err != nil {
			t.Fatalf("remove #%d failed: %v", i+1, err)
		}
	}
	if got := f.countRows(t, &models.CartItem{}); got != 0 {
		t.Fatalf("expected item removed, got %d rows", got)
	}
}

func TestNewCartViewFlagsStock(t *testing.T) {
	cart := &models.Cart{
		ID: 3,
		Items: []models.CartItem{
			{ID: 1, ProductID: 7, Quantity: 2, UnitPrice: money("100"), Product: &models.Product{Name: "A", StockQuantity: 1}},
			{ID: 2, ProductID: 9, Quantity: 1, UnitPrice: money("50"), Product: &models.Product{Name: "B", StockQuantity: 5}},
		},
	}
	view := NewCartView(cart)
	if view.TotalQuantity != 3 || !view.TotalAmount.Decimal.Equal(money("250").Decimal) {
		t.Fatalf("unexpected totals: %+v", view)
	}
	if view.Items[0].InStock || !view.Items[1].InStock {
		t.Fatalf("unexpected stock flags: %+v", view.Items)
	}
	empty := NewCartView(nil)
	if len(empty.Items) != 0 || !empty.TotalAmount.Decimal.IsZero() {
		t.Fatalf("unexpected empty view: %+v", empty)
	}
}
