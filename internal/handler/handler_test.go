package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tireshop/internal/dto"
	"tireshop/internal/infra"
	"tireshop/internal/middleware"
	"tireshop/internal/model"
	"tireshop/internal/repository"
	"tireshop/internal/service"
	"tireshop/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() { gin.SetMode(gin.TestMode) }

// testAPI is the full handler stack on an in-memory SQLite database, without
// Redis: no token denylist, no report cache, no job dispatcher.
type testAPI struct {
	t      *testing.T
	db     *gorm.DB
	engine *gin.Engine
	issuer *session.Issuer
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db, err := infra.NewDatabase(infra.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	issuer := session.NewIssuer("handler-secret", time.Hour, 24*time.Hour)
	users := repository.NewUserRepository(db)
	customers := repository.NewCustomerRepository(db)
	products := repository.NewProductRepository(db)
	catalog := repository.NewServiceRepository(db)
	movements := repository.NewInventoryMovementRepository(db)
	orders := repository.NewServiceOrderRepository(db)

	authH := NewAuthHandler(service.NewAuthService(users, issuer, nil))
	usersH := NewUsersHandler(service.NewAuthService(users, issuer, nil))
	customersH := NewCustomersHandler(service.NewCustomerService(customers))
	productsH := NewProductsHandler(service.NewProductService(products, movements))
	servicesH := NewServicesHandler(service.NewCatalogService(catalog))
	inventoryH := NewInventoryHandler(service.NewInventoryService(products, movements, nil))
	ordersH := NewServiceOrdersHandler(service.NewServiceOrderService(orders, customers, products, catalog, nil, "Borracharia"))
	reportsH := NewReportsHandler(service.NewReportService(repository.NewReportRepository(db), nil, 0))

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.ErrorHandler())
	r.POST("/v1/auth/login", authH.Login)
	v1 := r.Group("/v1", middleware.JWTAuth(issuer, nil))
	v1.GET("/auth/me", authH.Me)
	v1.POST("/users", middleware.RequireRole(model.RoleAdmin), usersH.Create)
	v1.GET("/customers", customersH.List)
	v1.POST("/customers", customersH.Create)
	v1.GET("/customers/:id", customersH.Get)
	v1.DELETE("/customers/:id", customersH.Delete)
	v1.GET("/products/low-stock", productsH.LowStock)
	v1.POST("/products", productsH.Create)
	v1.POST("/services", servicesH.Create)
	v1.POST("/inventory/movements", inventoryH.CreateMovement)
	v1.GET("/inventory/movements", inventoryH.ListMovements)
	v1.GET("/service-orders", ordersH.List)
	v1.POST("/service-orders", ordersH.Create)
	v1.PUT("/service-orders/:id", ordersH.Update)
	v1.PATCH("/service-orders/:id/status", ordersH.ChangeStatus)
	v1.GET("/service-orders/:id/next-statuses", ordersH.NextStatuses)
	v1.GET("/service-orders/:id/pdf", ordersH.PDF)
	v1.GET("/reports/dashboard", reportsH.Dashboard)
	v1.GET("/reports/revenue-by-date", reportsH.RevenueByDate)
	v1.GET("/reports/financial", reportsH.Financial)
	v1.GET("/reports/top-products", reportsH.TopProducts)

	api := &testAPI{t: t, db: db, engine: r, issuer: issuer}
	api.token = api.login(model.RoleAdmin)
	return api
}

// login creates a user with the given role and returns its access token.
func (a *testAPI) login(role string) string {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("senha-segura"), bcrypt.MinCost)
	require.NoError(a.t, err)
	email := uuid.NewString()[:8] + "@pneus.test"
	require.NoError(a.t, a.db.Create(&model.User{
		Email: email, Name: "Operador", PasswordHash: string(hash), Role: role, Active: true,
	}).Error)

	w := a.do(http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: email, Password: "senha-segura"}, "")
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (a *testAPI) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) call(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	return a.do(method, path, body, a.token)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Detail string            `json:"detail"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

func (a *testAPI) createCustomer(name string) dto.CustomerResponse {
	a.t.Helper()
	w := a.call(http.MethodPost, "/v1/customers", dto.CustomerRequest{Name: name, Document: uuid.NewString()[:11]})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.CustomerResponse](a.t, w)
}

func (a *testAPI) createProduct(desc string, stock, min int) dto.ProductResponse {
	a.t.Helper()
	w := a.call(http.MethodPost, "/v1/products", dto.CreateProductRequest{
		Description:  desc,
		Brand:        "Pirelli",
		CostPrice:    decimal.RequireFromString("30.00"),
		SalePrice:    decimal.RequireFromString("50.00"),
		CurrentStock: stock,
		MinStock:     min,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ProductResponse](a.t, w)
}

func (a *testAPI) createService(desc, price string) dto.ServiceResponse {
	a.t.Helper()
	w := a.call(http.MethodPost, "/v1/services", dto.ServiceRequest{Description: desc, Price: decimal.RequireFromString(price)})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.ServiceResponse](a.t, w)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func TestBindAndValidate_ReportsWireFieldNames(t *testing.T) {
	api := newTestAPI(t)

	w := api.call(http.MethodPost, "/v1/customers", dto.CustomerRequest{Name: "Jo", Email: strPtr("not-an-email")})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[errorBody](t, w)
	assert.Equal(t, "validation_error", body.Code)
	assert.Equal(t, "min=3", body.Fields["name"])
	assert.Equal(t, "required", body.Fields["document"])
	assert.Equal(t, "email", body.Fields["email"])

	w = api.call(http.MethodPost, "/v1/service-orders", dto.CreateServiceOrderRequest{
		CustomerID: uuid.NewString(),
		Items:      []dto.OrderItemRequest{{Kind: "tire", ID: "x"}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body = decode[errorBody](t, w)
	assert.Contains(t, body.Fields, "items[0].kind")
	assert.Contains(t, body.Fields, "items[0].id")
}

func TestBindAndValidate_DecimalRules(t *testing.T) {
	api := newTestAPI(t)
	w := api.call(http.MethodPost, "/v1/services", dto.ServiceRequest{Description: "Rodízio", Price: decimal.Zero})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "gte=0.01", decode[errorBody](t, w).Fields["price"])
}

func TestBindAndValidate_RejectsFractionsOfACent(t *testing.T) {
	api := newTestAPI(t)

	w := api.call(http.MethodPost, "/v1/services", `{"description":"Calibragem","price":"10.005"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "cents", decode[errorBody](t, w).Fields["price"])

	w = api.call(http.MethodPost, "/v1/products", `{"description":"Pneu 185/65 R15","brand":"Pirelli",`+
		`"cost_price":"0.29","sale_price":"450.999","current_stock":1,"min_stock":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := decode[errorBody](t, w).Fields
	assert.Equal(t, "cents", fields["sale_price"])
	assert.NotContains(t, fields, "cost_price")

	c := api.createCustomer("Marcos Souza")
	p := api.createProduct("Bico de válvula", 10, 0)
	half := decimal.RequireFromString("0.005")
	w = api.call(http.MethodPost, "/v1/service-orders", dto.CreateServiceOrderRequest{
		CustomerID: c.ID,
		Items:      []dto.OrderItemRequest{{Kind: "product", ID: p.ID, Quantity: 1, Price: &half}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "cents", decode[errorBody](t, w).Fields["items[0].price"])

	list := decode[dto.ServiceOrderListResponse](t, api.call(http.MethodGet, "/v1/service-orders", nil))
	assert.EqualValues(t, 0, list.Total)
}

func TestMalformedJSONAndID(t *testing.T) {
	api := newTestAPI(t)

	w := api.call(http.MethodPost, "/v1/customers", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decode[errorBody](t, w).Code)

	w = api.call(http.MethodGet, "/v1/customers/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ID inválido", decode[errorBody](t, w).Detail)

	w = api.call(http.MethodGet, "/v1/customers/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[errorBody](t, w).Code)
}

// ── Auth ─────────────────────────────────────────────────────────────────────

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: "ninguem@pneus.test", Password: "qualquer"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/v1/auth/me", nil, "").Code)

	w = api.call(http.MethodGet, "/v1/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.RoleAdmin, decode[dto.UserResponse](t, w).Role)

	attendant := api.login(model.RoleAttendant)
	w = api.do(http.MethodPost, "/v1/users", dto.CreateUserRequest{
		Email: "novo@pneus.test", Name: "Novo", Password: "12345678", Role: model.RoleAttendant,
	}, attendant)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.call(http.MethodPost, "/v1/users", dto.CreateUserRequest{
		Email: "novo@pneus.test", Name: "Novo", Password: "12345678", Role: model.RoleAttendant,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

// ── Inventory ────────────────────────────────────────────────────────────────

func TestInventoryMovements(t *testing.T) {
	api := newTestAPI(t)
	p := api.createProduct("Pneu 175/70 R13", 5, 10)
	assert.True(t, p.LowStock)

	low := decode[[]dto.ProductResponse](t, api.call(http.MethodGet, "/v1/products/low-stock", nil))
	require.Len(t, low, 1)

	w := api.call(http.MethodPost, "/v1/inventory/movements", dto.CreateMovementRequest{
		ProductID: p.ID, MovementType: "in", Quantity: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mov := decode[dto.MovementResponse](t, w)
	require.NotNil(t, mov.StockAfter)
	assert.Equal(t, 15, *mov.StockAfter)

	low = decode[[]dto.ProductResponse](t, api.call(http.MethodGet, "/v1/products/low-stock", nil))
	assert.Empty(t, low)

	w = api.call(http.MethodPost, "/v1/inventory/movements", dto.CreateMovementRequest{
		ProductID: p.ID, MovementType: "out", Quantity: 16,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_stock", decode[errorBody](t, w).Code)

	w = api.call(http.MethodPost, "/v1/inventory/movements", dto.CreateMovementRequest{
		ProductID: uuid.NewString(), MovementType: "in", Quantity: 1,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	list := decode[dto.MovementListResponse](t, api.call(http.MethodGet, "/v1/inventory/movements?product_id="+p.ID, nil))
	// initial stock + the "in" above
	assert.EqualValues(t, 2, list.Total)
	assert.Equal(t, 50, list.Limit)

	w = api.call(http.MethodGet, "/v1/inventory/movements?type=adjust", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// ── Service orders ───────────────────────────────────────────────────────────

func TestServiceOrderLifecycle(t *testing.T) {
	api := newTestAPI(t)
	c := api.createCustomer("Marcos Souza")
	p := api.createProduct("Pneu 185/65 R15", 10, 2)
	s := api.createService("Alinhamento", "100.00")

	w := api.call(http.MethodPost, "/v1/service-orders", dto.CreateServiceOrderRequest{
		CustomerID: c.ID,
		Items: []dto.OrderItemRequest{
			{Kind: "service", ID: s.ID},
			{Kind: "product", ID: p.ID, Quantity: 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := decode[dto.ServiceOrderResponse](t, w)
	assert.True(t, decimal.RequireFromString("200.00").Equal(order.TotalAmount), order.TotalAmount.String())
	assert.Equal(t, "open", order.Status)
	statusURL := fmt.Sprintf("/v1/service-orders/%s/status", order.ID)

	w = api.call(http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "completed"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, w).Code)

	w = api.call(http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "in_progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	next := decode[[]dto.StatusOption](t, api.call(http.MethodGet, "/v1/service-orders/"+order.ID+"/next-statuses", nil))
	require.Len(t, next, 2)
	assert.Equal(t, "completed", next[0].Status)

	w = api.call(http.MethodPut, "/v1/service-orders/"+order.ID, dto.UpdateServiceOrderRequest{})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "empty_order", decode[errorBody](t, w).Code)

	w = api.call(http.MethodPatch, statusURL, dto.ChangeStatusRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.ServiceOrderResponse](t, w).NextStatuses)

	w = api.call(http.MethodPut, "/v1/service-orders/"+order.ID, dto.UpdateServiceOrderRequest{
		Items: []dto.OrderItemRequest{{Kind: "service", ID: s.ID}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.call(http.MethodGet, "/v1/service-orders/"+order.ID+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "os-1.pdf")

	// order products do not move stock
	low := decode[[]dto.ProductResponse](t, api.call(http.MethodGet, "/v1/products/low-stock", nil))
	assert.Empty(t, low)

	list := decode[dto.ServiceOrderListResponse](t, api.call(http.MethodGet, "/v1/service-orders?status=completed", nil))
	assert.EqualValues(t, 1, list.Total)

	w = api.call(http.MethodDelete, "/v1/customers/"+c.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

// ── Reports ──────────────────────────────────────────────────────────────────

func TestReports(t *testing.T) {
	api := newTestAPI(t)
	api.createCustomer("Ana Lima")

	dash := decode[dto.DashboardMetrics](t, api.call(http.MethodGet, "/v1/reports/dashboard", nil))
	assert.EqualValues(t, 1, dash.TotalCustomers)
	assert.True(t, dash.TotalRevenue.IsZero())

	points := decode[[]dto.RevenuePoint](t, api.call(http.MethodGet, "/v1/reports/revenue-by-date", nil))
	assert.Len(t, points, 30)

	w := api.call(http.MethodGet, "/v1/reports/revenue-by-date?days=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = api.call(http.MethodGet, "/v1/reports/financial?start_date=2024-02-10&end_date=2024-02-01", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Fields, "end_date")

	w = api.call(http.MethodGet, "/v1/reports/top-products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

// ── Health ───────────────────────────────────────────────────────────────────

func TestHealth_RedisDown(t *testing.T) {
	api := newTestAPI(t)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.GET("/health", Health(api.db, rdb, infra.NewCircuitBreaker(infra.DefaultCBConfig("smtp"))))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "error", body["redis"])
	assert.Equal(t, "closed", body["mail"])
	assert.NotContains(t, body, "dead_jobs")
}

func strPtr(s string) *string { return &s }
