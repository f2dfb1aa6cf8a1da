package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/models"
)

// pngUploads 构造 multipart 表单中的 PNG 文件
func pngUploads(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()
	var pixels bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	if err := png.Encode(&pixels, img); err != nil {
		t.Fatalf("encode png failed: %v", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		if err != nil {
			t.Fatalf("create form file failed: %v", err)
		}
		if _, err := part.Write(pixels.Bytes()); err != nil {
			t.Fatalf("write form file failed: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer failed: %v", err)
	}
	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read multipart form failed: %v", err)
	}
	t.Cleanup(func() {
		_ = form.RemoveAll()
	})
	return form.File["images"]
}

func newProductFixture(t *testing.T) (*serviceFixture, *ProductService, string) {
	t.Helper()
	f := newServiceFixture(t)
	dir := t.TempDir()
	uploads := NewUploadService(&config.UploadConfig{
		Dir:               dir,
		MaxSize:           1 << 20,
		AllowedTypes:      []string{"image/png", "image/jpeg"},
		AllowedExtensions: []string{".png", ".jpg"},
		MaxWidth:          1024,
		MaxHeight:         1024,
	})
	return f, NewProductService(f.productRepo, f.categoryRepo, f.cartRepo, uploads), dir
}

func uploadedPath(dir, url string) string {
	return filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/uploads/")))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestProductCreateWithImages(t *testing.T) {
	f, svc, dir := newProductFixture(t)
	shoes := f.category(t, "Shoes")
	files := pngUploads(t, "main.png", "side.png", "back.png")

	view, err := svc.Create(context.Background(), ProductInput{
		CategoryID:         shoes.ID,
		Name:               "  Urbas SC - Mule Cosmic ",
		Price:              "580000",
		DiscountPercentage: 10,
		StockQuantity:      5,
		Style:              "Mule",
		Line:               "Urbas",
	}, ProductImageChanges{MainImage: files[0], AdditionalImages: files[1:]})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if view.Name != "Urbas SC - Mule Cosmic" || !view.IsActive || view.Version != 1 {
		t.Fatalf("unexpected product view: %+v", view)
	}
	if view.EffectivePrice.String() != "522000.00" {
		t.Fatalf("expected effective price 522000.00, got %s", view.EffectivePrice)
	}
	if len(view.Images) != 3 {
		t.Fatalf("expected 3 images, got %d", len(view.Images))
	}
	if !view.Images[0].IsMain || view.Images[0].ImageURL != view.ImageURL {
		t.Fatalf("expected first image to be main: %+v", view.Images[0])
	}
	for i, image := range view.Images {
		if image.DisplayOrder != i {
			t.Fatalf("expected display order %d, got %d", i, image.DisplayOrder)
		}
		if !strings.HasPrefix(image.ImageURL, "/uploads/products/") {
			t.Fatalf("unexpected image url: %s", image.ImageURL)
		}
		if !fileExists(uploadedPath(dir, image.ImageURL)) {
			t.Fatalf("expected stored file for %s", image.ImageURL)
		}
	}
}

func TestProductCreateValidation(t *testing.T) {
	f, svc, _ := newProductFixture(t)
	shoes := f.category(t, "Shoes")

	cases := []struct {
		name  string
		input ProductInput
		field string
	}{
		{name: "missing_name", input: ProductInput{CategoryID: shoes.ID, Price: "1"}, field: "name"},
		{name: "long_name", input: ProductInput{CategoryID: shoes.ID, Name: strings.Repeat("x", 201), Price: "1"}, field: "name"},
		{name: "missing_price", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "  "}, field: "price"},
		{name: "bad_price", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "abc"}, field: "price"},
		{name: "negative_price", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "-5"}, field: "price"},
		{name: "discount_range", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "1", DiscountPercentage: 101}, field: "discount_percentage"},
		{name: "negative_stock", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "1", StockQuantity: -1}, field: "stock_quantity"},
		{name: "long_style", input: ProductInput{CategoryID: shoes.ID, Name: "A", Price: "1", Style: strings.Repeat("s", 51)}, field: "style"},
		{name: "unknown_category", input: ProductInput{CategoryID: 999, Name: "A", Price: "1"}, field: "category_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input, ProductImageChanges{})
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %s in %v", tc.field, verr.Fields)
			}
		})
	}
	if got := f.countRows(t, &models.Product{}); got != 0 {
		t.Fatalf("expected no products created, got %d", got)
	}
}

func TestProductCreateRejectsInvalidUpload(t *testing.T) {
	f, svc, _ := newProductFixture(t)
	shoes := f.category(t, "Shoes")
	files := pngUploads(t, "main.gif")

	_, err := svc.Create(context.Background(), ProductInput{CategoryID: shoes.ID, Name: "A", Price: "1"}, ProductImageChanges{MainImage: files[0]})
	if !errors.Is(err, ErrUploadInvalid) {
		t.Fatalf("expected upload invalid, got %v", err)
	}
	if got := f.countRows(t, &models.Product{}); got != 0 {
		t.Fatalf("expected no products created, got %d", got)
	}
}

func TestProductUpdateImagesAndVersion(t *testing.T) {
	f, svc, dir := newProductFixture(t)
	shoes := f.category(t, "Shoes")
	files := pngUploads(t, "main.png", "side.png")
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{CategoryID: shoes.ID, Name: "Vintas Soda", Price: "450000", StockQuantity: 3},
		ProductImageChanges{MainImage: files[0], AdditionalImages: files[1:]})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	oldMain := created.Images[0].ImageURL
	side := created.Images[1]

	replacement := pngUploads(t, "new-main.png", "extra.png")
	updated, err := svc.Update(ctx, created.ID, ProductInput{
		CategoryID:    shoes.ID,
		Name:          "Vintas Soda Mule",
		Price:         "400000",
		StockQuantity: 7,
		Version:       created.Version,
	}, ProductImageChanges{
		MainImage:        replacement[0],
		AdditionalImages: replacement[1:],
		ImagesToDelete:   []string{fmt.Sprintf("%d", side.ID)},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Vintas Soda Mule" || updated.StockQuantity != 7 || updated.Version != created.Version+1 {
		t.Fatalf("unexpected updated view: %+v", updated)
	}
	if len(updated.Images) != 2 {
		t.Fatalf("expected new main and extra image, got %+v", updated.Images)
	}
	if !updated.Images[0].IsMain || updated.Images[0].ImageURL == oldMain || updated.ImageURL != updated.Images[0].ImageURL {
		t.Fatalf("expected replaced main image, got %+v", updated.Images[0])
	}
	if fileExists(uploadedPath(dir, oldMain)) || fileExists(uploadedPath(dir, side.ImageURL)) {
		t.Fatalf("expected obsolete files removed")
	}

	if _, err := svc.Update(ctx, created.ID, ProductInput{CategoryID: shoes.ID, Name: "Stale", Price: "1", Version: created.Version}, ProductImageChanges{}); !errors.Is(err, ErrConcurrencyConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}

	byURL, err := svc.Update(ctx, created.ID, ProductInput{CategoryID: shoes.ID, Name: "Vintas Soda Mule", Price: "400000", IsActive: boolPtr(false)},
		ProductImageChanges{ImagesToDelete: []string{updated.Images[0].ImageURL}})
	if err != nil {
		t.Fatalf("delete main by url failed: %v", err)
	}
	if byURL.IsActive || len(byURL.Images) != 1 || byURL.Images[0].IsMain {
		t.Fatalf("unexpected view after deleting main: %+v", byURL)
	}
	if byURL.ImageURL != "" {
		t.Fatalf("expected main image url cleared, got %s", byURL.ImageURL)
	}
	if fileExists(uploadedPath(dir, updated.Images[0].ImageURL)) {
		t.Fatalf("expected deleted main file removed")
	}

	if _, err := svc.Update(ctx, 999, ProductInput{CategoryID: shoes.ID, Name: "A", Price: "1"}, ProductImageChanges{}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProductDeleteRemovesImagesCartItemsAndFiles(t *testing.T) {
	f, svc, dir := newProductFixture(t)
	shoes := f.category(t, "Shoes")
	files := pngUploads(t, "main.png")
	ctx := context.Background()

	created, err := svc.Create(ctx, ProductInput{CategoryID: shoes.ID, Name: "Pattas Polka", Price: "650000", StockQuantity: 2},
		ProductImageChanges{MainImage: files[0]})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	carts := NewCartService(f.cartRepo, f.productRepo)
	if _, err := carts.AddItem(1, created.ID, 1); err != nil {
		t.Fatalf("add to cart failed: %v", err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetAdmin(created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if got := f.countRows(t, &models.ProductImage{}); got != 0 {
		t.Fatalf("expected image records removed, got %d", got)
	}
	if got := f.countRows(t, &models.CartItem{}); got != 0 {
		t.Fatalf("expected cart items removed, got %d", got)
	}
	if fileExists(uploadedPath(dir, created.ImageURL)) {
		t.Fatalf("expected stored file removed")
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestProductSeedSampleIsIdempotent(t *testing.T) {
	f, svc, _ := newProductFixture(t)
	ctx := context.Background()

	created, err := svc.SeedSample(ctx)
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if created != len(sampleProducts) {
		t.Fatalf("expected %d products, got %d", len(sampleProducts), created)
	}
	again, err := svc.SeedSample(ctx)
	if err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if again != 0 {
		t.Fatalf("expected idempotent seed, got %d", again)
	}
	if got := f.countRows(t, &models.Category{}); got != int64(len(sampleCategories)) {
		t.Fatalf("expected %d categories, got %d", len(sampleCategories), got)
	}

	views, total, err := svc.ListAdmin(AdminProductListInput{Search: "High Top", PageSize: 50})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 6 || len(views) != 6 {
		t.Fatalf("expected 6 high top shoes, got %d", total)
	}
}

func boolPtr(value bool) *bool {
	return &value
}
