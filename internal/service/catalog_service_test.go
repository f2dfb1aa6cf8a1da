package service

import (
	"context"
	"errors"
	"testing"
)

func seedCatalog(t *testing.T, f *serviceFixture) (uint, uint) {
	t.Helper()
	shoes := f.category(t, "Shoes")
	apparel := f.category(t, "Apparel")
	f.product(t, productSeed{Category: shoes.ID, Name: "Urbas SC Low", Price: "580000", Discount: 40, Stock: 10, Status: "Sale off", Style: "Low Top", Line: "Urbas"})
	f.product(t, productSeed{Category: shoes.ID, Name: "Urbas SC High", Price: "650000", Stock: 10, Status: "Online Only", Style: "High Top", Line: "Urbas"})
	f.product(t, productSeed{Category: shoes.ID, Name: "Vintas Retired", Price: "350000", Stock: 0, Inactive: true, Status: "Sale off", Style: "Low Top", Line: "Vintas"})
	f.product(t, productSeed{Category: apparel.ID, Name: "Basic Tee", Price: "250000", Stock: 20, Style: "Tee", Line: "Basic"})
	return shoes.ID, apparel.ID
}

func TestCatalogFilterIgnoresActiveFlag(t *testing.T) {
	f := newServiceFixture(t)
	seedCatalog(t, f)
	svc := NewCatalogService(f.productRepo, f.categoryRepo)

	views, total, err := svc.Filter(CatalogFilterInput{Category: "shoes", Status: "SALE OFF"})
	if err != nil {
		t.Fatalf("filter failed: %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Fatalf("expected 2 products including inactive, got %d", total)
	}

	views, total, err = svc.Filter(CatalogFilterInput{PriceMin: "350000", PriceMax: "580000", OrderBy: "price_asc"})
	if err != nil {
		t.Fatalf("price filter failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected inclusive range to match 2 products, got %d", total)
	}
	if views[0].Name != "Vintas Retired" || views[1].Name != "Urbas SC Low" {
		t.Fatalf("unexpected order: %s, %s", views[0].Name, views[1].Name)
	}
	if views[1].EffectivePrice.String() != "348000.00" {
		t.Fatalf("expected effective price 348000.00, got %s", views[1].EffectivePrice)
	}

	_, total, err = svc.Filter(CatalogFilterInput{Style: "high top", Line: "URBAS"})
	if err != nil || total != 1 {
		t.Fatalf("expected single high top urbas, got %d (%v)", total, err)
	}
}

func TestCatalogFilterValidatesPrices(t *testing.T) {
	f := newServiceFixture(t)
	svc := NewCatalogService(f.productRepo, f.categoryRepo)

	cases := []struct {
		name string
		min  string
		max  string
		want error
	}{
		{name: "not_a_number", min: "cheap", want: ErrValidation},
		{name: "negative", max: "-1", want: ErrValidation},
		{name: "inverted", min: "500", max: "100", want: ErrInvalidPriceRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Filter(CatalogFilterInput{PriceMin: tc.min, PriceMax: tc.max})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCatalogFilterOptions(t *testing.T) {
	f := newServiceFixture(t)
	seedCatalog(t, f)
	svc := NewCatalogService(f.productRepo, f.categoryRepo)

	options, err := svc.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("filter options failed: %v", err)
	}
	if len(options.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %v", options.Categories)
	}
	if len(options.Statuses) != 2 || options.Statuses[0] != "Online Only" {
		t.Fatalf("unexpected statuses: %v", options.Statuses)
	}
	if len(options.Styles) != 3 || len(options.Lines) != 3 {
		t.Fatalf("unexpected styles %v or lines %v", options.Styles, options.Lines)
	}

	t.Run("empty_catalog", func(t *testing.T) {
		empty := newServiceFixture(t)
		options, err := NewCatalogService(empty.productRepo, empty.categoryRepo).FilterOptions(context.Background())
		if err != nil {
			t.Fatalf("empty filter options failed: %v", err)
		}
		if options.Statuses == nil || options.Lines == nil {
			t.Fatalf("expected empty slices instead of nil: %+v", options)
		}
	})
}

func TestCatalogDetailAndCategoryListing(t *testing.T) {
	f := newServiceFixture(t)
	shoesID, _ := seedCatalog(t, f)
	svc := NewCatalogService(f.productRepo, f.categoryRepo)

	views, total, err := svc.ListByCategory(shoesID, 1, 20)
	if err != nil {
		t.Fatalf("list by category failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected only active shoes, got %d", total)
	}
	for _, view := range views {
		if !view.IsActive {
			t.Fatalf("inactive product listed: %s", view.Name)
		}
	}
	if _, _, err := svc.ListByCategory(999, 1, 20); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected category not found, got %v", err)
	}

	detail, err := svc.GetDetail(views[0].ID)
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if detail.Category != "Shoes" {
		t.Fatalf("expected category name, got %q", detail.Category)
	}
	if _, err := svc.GetDetail(999); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected product not found, got %v", err)
	}
}

func TestCategoryServiceLifecycle(t *testing.T) {
	f := newServiceFixture(t)
	svc := NewCategoryService(f.categoryRepo, f.productRepo)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateCategoryInput{Name: "Limited Edition"})
	if err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	if created.Slug != "limited-edition" {
		t.Fatalf("unexpected slug: %s", created.Slug)
	}
	if _, err := svc.Create(ctx, CreateCategoryInput{Name: "Limited Edition"}); !errors.Is(err, ErrCategoryExists) {
		t.Fatalf("expected duplicate rejected, got %v", err)
	}
	if _, err := svc.Create(ctx, CreateCategoryInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected missing name rejected, got %v", err)
	}

	updated, err := svc.Update(ctx, created.ID, CreateCategoryInput{Name: "Limited", Description: "drops"})
	if err != nil || updated.Slug != "limited" {
		t.Fatalf("update failed: %v %+v", err, updated)
	}

	f.product(t, productSeed{Category: created.ID, Name: "Pattas Tomo", Price: "700000", Stock: 1})
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}

	spare, err := svc.Create(ctx, CreateCategoryInput{Name: "Spare"})
	if err != nil {
		t.Fatalf("create spare failed: %v", err)
	}
	if err := svc.Delete(ctx, spare.ID); err != nil {
		t.Fatalf("delete spare failed: %v", err)
	}
	if err := svc.Delete(ctx, spare.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}
