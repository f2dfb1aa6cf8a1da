package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ananas-next/internal/constants"
	"github.com/ananas-next/internal/models"

	"gorm.io/gorm"
)

func newCheckoutFixture(t *testing.T, options CheckoutOptions) (*serviceFixture, *CartService, *CheckoutService, *recordingPublisher) {
	t.Helper()
	f := newServiceFixture(t)
	publisher := &recordingPublisher{}
	carts := NewCartService(f.cartRepo, f.productRepo)
	checkout := NewCheckoutService(f.cartRepo, f.orderRepo, f.productRepo, nil, publisher, options)
	return f, carts, checkout, publisher
}

func validCheckoutInput() CheckoutInput {
	return CheckoutInput{
		ShippingAddress: "12 Nguyen Trai, District 1, Ho Chi Minh City",
		PhoneNumber:     "0901234567",
	}
}

func TestProcessOrderConvertsCartToOrder(t *testing.T) {
	f, carts, checkout, publisher := newCheckoutFixture(t, CheckoutOptions{})
	shoes := f.category(t, "Shoes")
	f.product(t, productSeed{ID: 7, Category: shoes.ID, Name: "Urbas SC Low", Price: "100", Stock: 10})
	f.product(t, productSeed{ID: 9, Category: shoes.ID, Name: "Urbas SC Mule", Price: "50", Stock: 4})

	if _, err := carts.AddItem(1, 7, 2); err != nil {
		t.Fatalf("add product 7 failed: %v", err)
	}
	if _, err := carts.AddItem(1, 9, 1); err != nil {
		t.Fatalf("add product 9 failed: %v", err)
	}
	cart, err := checkout.Preview(1)
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	if !cart.TotalAmount().Decimal.Equal(money("250").Decimal) {
		t.Fatalf("expected cart total 250.00, got %s", cart.TotalAmount())
	}

	orderID, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput())
	if err != nil {
		t.Fatalf("process order failed: %v", err)
	}
	if orderID == 0 {
		t.Fatalf("expected order id")
	}

	order, err := f.orderRepo.GetByID(orderID)
	if err != nil || order == nil {
		t.Fatalf("load order failed: %v", err)
	}
	if order.TotalAmount.String() != "250.00" {
		t.Fatalf("expected order total 250.00, got %s", order.TotalAmount)
	}
	if order.Status != constants.OrderStatusPending {
		t.Fatalf("expected pending order, got %s", order.Status)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if !strings.HasPrefix(order.OrderNo, "AN") {
		t.Fatalf("unexpected order no: %s", order.OrderNo)
	}

	after, err := carts.GetOrCreate(1)
	if err != nil {
		t.Fatalf("reload cart failed: %v", err)
	}
	if len(after.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(after.Items))
	}
	if got := f.stockOf(t, 7); got != 8 {
		t.Fatalf("expected product 7 stock 8, got %d", got)
	}
	if got := f.stockOf(t, 9); got != 3 {
		t.Fatalf("expected product 9 stock 3, got %d", got)
	}

	types := publisher.types()
	if len(types) != 1 || types[0] != constants.EventOrderPlaced {
		t.Fatalf("expected order placed event, got %v", types)
	}
}

func TestProcessOrderUsesSnapshotPrice(t *testing.T) {
	f, carts, checkout, _ := newCheckoutFixture(t, CheckoutOptions{})
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Track 6", Price: "200", Discount: 25, Stock: 5})

	if _, err := carts.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", money("999")).Error; err != nil {
		t.Fatalf("change price failed: %v", err)
	}
	orderID, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput())
	if err != nil {
		t.Fatalf("process order failed: %v", err)
	}
	order, _ := f.orderRepo.GetByID(orderID)
	if order.TotalAmount.String() != "150.00" || order.Items[0].UnitPrice.String() != "150.00" {
		t.Fatalf("expected snapshot price 150.00, got total=%s unit=%s", order.TotalAmount, order.Items[0].UnitPrice)
	}
	if order.Items[0].ProductName != "Track 6" {
		t.Fatalf("expected product name copied, got %q", order.Items[0].ProductName)
	}
}

func TestProcessOrderEmptyCart(t *testing.T) {
	f, carts, checkout, publisher := newCheckoutFixture(t, CheckoutOptions{})

	if _, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput()); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected cart empty without a cart, got %v", err)
	}
	if _, err := carts.GetOrCreate(1); err != nil {
		t.Fatalf("create cart failed: %v", err)
	}
	if _, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput()); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected cart empty for empty cart, got %v", err)
	}
	if _, err := checkout.Preview(1); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected preview cart empty, got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("expected no orders, got %d", got)
	}
	if len(publisher.types()) != 0 {
		t.Fatalf("expected no events, got %v", publisher.types())
	}
}

func TestProcessOrderValidationLeavesStateUntouched(t *testing.T) {
	cases := []struct {
		name  string
		input CheckoutInput
		field string
	}{
		{name: "missing_address", input: CheckoutInput{PhoneNumber: "0901234567"}, field: "shipping_address"},
		{name: "address_too_long", input: CheckoutInput{ShippingAddress: strings.Repeat("a", 501), PhoneNumber: "0901234567"}, field: "shipping_address"},
		{name: "missing_phone", input: CheckoutInput{ShippingAddress: "1 Le Loi"}, field: "phone_number"},
		{name: "bad_phone", input: CheckoutInput{ShippingAddress: "1 Le Loi", PhoneNumber: "call me"}, field: "phone_number"},
		{name: "notes_too_long", input: CheckoutInput{ShippingAddress: "1 Le Loi", PhoneNumber: "0901234567", Notes: strings.Repeat("n", 501)}, field: "notes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, carts, checkout, _ := newCheckoutFixture(t, CheckoutOptions{})
			shoes := f.category(t, "Shoes")
			product := f.product(t, productSeed{Category: shoes.ID, Name: "Basas", Price: "100", Stock: 3})
			if _, err := carts.AddItem(1, product.ID, 1); err != nil {
				t.Fatalf("add failed: %v", err)
			}

			_, err := checkout.ProcessOrder(context.Background(), 1, tc.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %s in %v", tc.field, verr.Fields)
			}
			if got := f.countRows(t, &models.Order{}); got != 0 {
				t.Fatalf("expected no orders, got %d", got)
			}
			if got := f.stockOf(t, product.ID); got != 3 {
				t.Fatalf("expected stock untouched, got %d", got)
			}
			if count, _ := carts.Count(1); count != 1 {
				t.Fatalf("expected cart untouched, got %d", count)
			}
		})
	}
}

func TestProcessOrderAllowsNegativeStockByDefault(t *testing.T) {
	f, carts, checkout, _ := newCheckoutFixture(t, CheckoutOptions{})
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Pattas", Price: "100", Stock: 1})

	if _, err := carts.AddItem(1, product.ID, 3); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput()); err != nil {
		t.Fatalf("process order failed: %v", err)
	}
	if got := f.stockOf(t, product.ID); got != -2 {
		t.Fatalf("expected stock -2, got %d", got)
	}
}

func TestProcessOrderGuardStockRejectsOversell(t *testing.T) {
	f, carts, checkout, publisher := newCheckoutFixture(t, CheckoutOptions{GuardStock: true})
	shoes := f.category(t, "Shoes")
	plenty := f.product(t, productSeed{Category: shoes.ID, Name: "Vintas", Price: "80", Stock: 10})
	scarce := f.product(t, productSeed{Category: shoes.ID, Name: "Pattas", Price: "100", Stock: 1})

	if _, err := carts.AddItem(1, plenty.ID, 2); err != nil {
		t.Fatalf("add plenty failed: %v", err)
	}
	if _, err := carts.AddItem(1, scarce.ID, 2); err != nil {
		t.Fatalf("add scarce failed: %v", err)
	}
	_, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput())
	if !errors.Is(err, ErrInsufficientStock) || !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected insufficient stock conflict, got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("expected rollback of order, got %d", got)
	}
	if got := f.countRows(t, &models.OrderItem{}); got != 0 {
		t.Fatalf("expected rollback of order items, got %d", got)
	}
	if got := f.stockOf(t, plenty.ID); got != 10 {
		t.Fatalf("expected stock restored to 10, got %d", got)
	}
	if count, _ := carts.Count(1); count != 4 {
		t.Fatalf("expected cart intact, got %d", count)
	}
	if len(publisher.types()) != 0 {
		t.Fatalf("expected no events, got %v", publisher.types())
	}
}

func TestGetConfirmationRequiresOwner(t *testing.T) {
	f, carts, checkout, _ := newCheckoutFixture(t, CheckoutOptions{})
	orders := NewOrderService(f.orderRepo, nil, nil, "test")
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Urbas", Price: "100", Stock: 5})

	if _, err := carts.AddItem(1, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	orderID, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput())
	if err != nil {
		t.Fatalf("process order failed: %v", err)
	}

	order, err := orders.GetConfirmation(1, orderID)
	if err != nil {
		t.Fatalf("owner confirmation failed: %v", err)
	}
	if order.ID != orderID || len(order.Items) != 1 {
		t.Fatalf("unexpected confirmation: %+v", order)
	}
	if _, err := orders.GetConfirmation(2, orderID); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if _, err := orders.GetConfirmation(1, orderID+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for missing order, got %v", err)
	}
}

func TestProcessOrderRollsBackWhenCartClearFails(t *testing.T) {
	f, carts, checkout, publisher := newCheckoutFixture(t, CheckoutOptions{})
	shoes := f.category(t, "Shoes")
	product := f.product(t, productSeed{Category: shoes.ID, Name: "Vintas Public", Price: "100", Stock: 5})
	if _, err := carts.AddItem(1, product.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	err := f.db.Callback().Delete().Before("gorm:delete").Register("test:fail_cart_clear", func(tx *gorm.DB) {
		if tx.Statement.Table == "cart_items" {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback failed: %v", err)
	}

	if _, err := checkout.ProcessOrder(context.Background(), 1, validCheckoutInput()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if got := f.countRows(t, &models.Order{}); got != 0 {
		t.Fatalf("expected order insert rolled back, got %d orders", got)
	}
	if got := f.countRows(t, &models.OrderItem{}); got != 0 {
		t.Fatalf("expected order items rolled back, got %d", got)
	}
	if got := f.stockOf(t, product.ID); got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
	if got := f.countRows(t, &models.CartItem{}); got != 1 {
		t.Fatalf("expected cart item kept, got %d", got)
	}
	if len(publisher.types()) != 0 {
		t.Fatalf("no event expected on failure, got %v", publisher.types())
	}
}
