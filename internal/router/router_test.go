package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ananas-next/internal/config"
	"github.com/ananas-next/internal/models"
	"github.com/ananas-next/internal/provider"
	"github.com/ananas-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

type routerFixture struct {
	engine    *gin.Engine
	container *provider.Container
	uploadDir string
}

func setupRouterTest(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	models.DB = db
	require.NoError(t, models.AutoMigrate())
	require.NoError(t, models.InitDefaultAdmin("admin", "Admin@123456"))

	uploadDir := t.TempDir()
	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		JWT:     config.JWTConfig{SecretKey: "admin-test-secret", ExpireHours: 1},
		UserJWT: config.JWTConfig{SecretKey: "user-test-secret", ExpireHours: 1},
		Upload: config.UploadConfig{
			Dir:               uploadDir,
			MaxSize:           1 << 20,
			AllowedTypes:      []string{"image/png"},
			AllowedExtensions: []string{".png"},
			MaxWidth:          512,
			MaxHeight:         512,
		},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireLower: true, RequireNumber: true},
		},
		Checkout: config.CheckoutConfig{OrderNoTag: "AN"},
	}
	container := provider.NewContainer(cfg)
	t.Cleanup(container.Close)

	return &routerFixture{
		engine:    SetupRouter(cfg, container),
		container: container,
		uploadDir: uploadDir,
	}
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return f.serve(t, req)
}

func (f *routerFixture) serve(t *testing.T, req *http.Request) envelope {
	t.Helper()
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func decodeData(t *testing.T, resp envelope, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dest), string(resp.Data))
}

func (f *routerFixture) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()
	category := &models.Category{Name: "Shoes", Slug: "shoes"}
	require.NoError(t, models.DB.FirstOrCreate(category, models.Category{Slug: "shoes"}).Error)
	product := &models.Product{
		CategoryID:    category.ID,
		Name:          name,
		Price:         models.NewMoneyFromDecimal(decimal.RequireFromString(price)),
		StockQuantity: stock,
		IsActive:      true,
		Status:        "Online Only",
		Style:         "High Top",
		Line:          "Vintas",
	}
	require.NoError(t, models.DB.Create(product).Error)
	return product
}

func (f *routerFixture) registerUser(t *testing.T, email string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	require.NotEmpty(t, data.Token)
	return data.Token
}

func (f *routerFixture) adminLogin(t *testing.T, username, password string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/v1/admin/login", "", gin.H{
		"username": username,
		"password": password,
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, resp, &data)
	return data.Token
}

func TestHealth(t *testing.T) {
	f := setupRouterTest(t)
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ok"`)
}

func TestUserRoutesRequireToken(t *testing.T) {
	f := setupRouterTest(t)

	resp := f.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, 401, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/cart", "not-a-jwt", nil)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	f := setupRouterTest(t)
	cheap := f.seedProduct(t, "Vintas Saigon", "500000", 5)
	f.seedProduct(t, "Urbas Corluray", "900000", 5)

	resp := f.do(t, http.MethodGet, "/api/v1/products?style=high%20top&price_min=400000&price_max=500000", "", nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var products []service.ProductView
	decodeData(t, resp, &products)
	require.Len(t, products, 1)
	assert.Equal(t, cheap.ID, products[0].ID)

	resp = f.do(t, http.MethodGet, "/api/v1/products?price_min=abc", "", nil)
	assert.Equal(t, 400, resp.StatusCode)

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", cheap.ID), "", nil)
	assert.Equal(t, 0, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/products/99999", "", nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/products/filters", "", nil)
	require.Equal(t, 0, resp.StatusCode)
	assert.Contains(t, string(resp.Data), "High Top")
}

func TestShopCheckoutFlow(t *testing.T) {
	f := setupRouterTest(t)
	product := f.seedProduct(t, "Vintas Saigon", "100000", 3)
	token := f.registerUser(t, "buyer@example.com")

	resp := f.do(t, http.MethodGet, "/api/v1/checkout", token, nil)
	require.Equal(t, 0, resp.StatusCode)
	assert.Contains(t, string(resp.Data), `"cart_empty":true`)

	resp = f.do(t, http.MethodPost, "/api/v1/cart/add", token, gin.H{"product_id": product.ID, "quantity": 2})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	resp = f.do(t, http.MethodPost, "/api/v1/cart/add", token, gin.H{"product_id": 424242})
	assert.Equal(t, 404, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/cart/count", token, nil)
	var count struct {
		Count int `json:"count"`
	}
	decodeData(t, resp, &count)
	assert.Equal(t, 2, count.Count)

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/process", token, gin.H{"shipping_address": "12 Nguyen Trai"})
	require.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, string(resp.Data), "phone_number")

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/process", token, gin.H{
		"shipping_address": "12 Nguyen Trai, District 1",
		"phone_number":     "0901234567",
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	var placed struct {
		OrderID uint `json:"order_id"`
	}
	decodeData(t, resp, &placed)
	require.NotZero(t, placed.OrderID)

	var stored models.Product
	require.NoError(t, models.DB.First(&stored, product.ID).Error)
	assert.Equal(t, 1, stored.StockQuantity)

	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/checkout/confirmation?order_id=%d", placed.OrderID), token, nil)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)
	assert.Contains(t, string(resp.Data), "200000.00")

	other := f.registerUser(t, "other@example.com")
	resp = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/checkout/confirmation?order_id=%d", placed.OrderID), other, nil)
	assert.Equal(t, 404, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/checkout/process", token, gin.H{
		"shipping_address": "12 Nguyen Trai, District 1",
		"phone_number":     "0901234567",
	})
	require.Equal(t, 0, resp.StatusCode)
	assert.Contains(t, string(resp.Data), `"redirect":"/cart"`)

	resp = f.do(t, http.MethodGet, "/api/v1/orders", token, nil)
	require.Equal(t, 0, resp.StatusCode)
	var orders []models.Order
	decodeData(t, resp, &orders)
	assert.Len(t, orders, 1)
}

func TestAdminProductMultipartUpload(t *testing.T) {
	f := setupRouterTest(t)
	f.seedProduct(t, "Existing", "100000", 1)
	token := f.adminLogin(t, "admin", "Admin@123456")

	var category models.Category
	require.NoError(t, models.DB.First(&category).Error)

	var pixels bytes.Buffer
	require.NoError(t, png.Encode(&pixels, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := map[string]string{
		"category_id":         fmt.Sprint(category.ID),
		"name":                "Track 6 Triple White",
		"price":               "990000",
		"discount_percentage": "10",
		"stock_quantity":      "12",
		"is_active":           "true",
		"style":               "Low Top",
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("main_image", "front.png")
	require.NoError(t, err)
	_, err = part.Write(pixels.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := f.serve(t, req)
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	var created service.ProductView
	decodeData(t, resp, &created)
	assert.Equal(t, "891000.00", created.EffectivePrice.String())
	require.NotEmpty(t, created.ImageURL)

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, created.ImageURL, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	resp = f.do(t, http.MethodPost, "/api/v1/admin/products", token, nil)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestAdminRBAC(t *testing.T) {
	f := setupRouterTest(t)
	hash, err := service.HashPassword("Staff@2024x")
	require.NoError(t, err)
	staff := &models.Admin{Username: "staff", PasswordHash: hash}
	require.NoError(t, models.DB.Create(staff).Error)

	token := f.adminLogin(t, "staff", "Staff@2024x")

	resp := f.do(t, http.MethodGet, "/api/v1/admin/me", token, nil)
	assert.Equal(t, 0, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/api/v1/admin/orders", token, nil)
	assert.Equal(t, 403, resp.StatusCode)

	superToken := f.adminLogin(t, "admin", "Admin@123456")
	resp = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/admin/authz/admins/%d/roles", staff.ID), superToken, gin.H{
		"roles": []string{"readonly_auditor"},
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	resp = f.do(t, http.MethodGet, "/api/v1/admin/orders", token, nil)
	assert.Equal(t, 0, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/admin/categories", token, gin.H{"name": "Sandals"})
	assert.Equal(t, 403, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/api/v1/admin/categories", superToken, gin.H{"name": "Sandals"})
	assert.Equal(t, 0, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/v1/admin/password", token, gin.H{
		"old_password": "Staff@2024x",
		"new_password": "short",
	})
	assert.Equal(t, 400, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/api/v1/admin/password", token, gin.H{
		"old_password": "Staff@2024x",
		"new_password": "newstaff2024",
	})
	require.Equal(t, 0, resp.StatusCode, resp.Msg)

	resp = f.do(t, http.MethodGet, "/api/v1/admin/me", token, nil)
	assert.Equal(t, 401, resp.StatusCode)
}
