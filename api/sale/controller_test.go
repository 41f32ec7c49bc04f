package sale

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/api/middleware"
	saleapp "backoffice/application/sale"
	"backoffice/domain/identity"
	"backoffice/infrastructure/auth"
	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/infrastructure/persistence/gormdb/testdb"
	"backoffice/infrastructure/persistence/retry"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type server struct {
	t      *testing.T
	engine *gin.Engine
	issuer *auth.Issuer
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.OpenSeeded(t)
	svc := saleapp.NewWorkflowService(
		gormdb.NewSaleRepository(db),
		gormdb.NewOrderRepository(db),
		gormdb.NewCatalogRepository(db),
		gormdb.NewSaleQueryService(db),
		gormdb.NewUnitOfWorkFactory(db, retry.DefaultConfig, nil),
		nil,
	)

	opts := auth.Options{Secret: []byte("test-secret"), Issuer: "backoffice"}
	resolver, err := auth.NewJWTResolver(opts)
	require.NoError(t, err)
	issuer, err := auth.NewIssuer(opts)
	require.NoError(t, err)

	engine := gin.New()
	group := engine.Group("/api/v1", middleware.AuthMiddleware(resolver))
	NewController(svc).RegisterRoutes(group)

	return &server{t: t, engine: engine, issuer: issuer}
}

func (s *server) token(p identity.Principal) string {
	s.t.Helper()
	if !p.IsAuthenticated() {
		return ""
	}
	token, err := s.issuer.Issue(auth.UserFor(p), 0)
	require.NoError(s.t, err)
	return token
}

func (s *server) do(p identity.Principal, method, path string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token := s.token(p); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

var (
	ada   = identity.Customer(10, testdb.CustomerAda)
	grace = identity.Customer(11, testdb.CustomerGrace)
	sam   = identity.Staff(20, testdb.StaffSam)
	kim   = identity.Staff(21, testdb.StaffKim)
	boss  = identity.Admin(30, 1)
)

func createBody() gin.H {
	return gin.H{
		"customer_id": testdb.CustomerAda,
		"location":    "Lagos",
		"orders": []gin.H{
			{"product_id": testdb.ProductWidget, "quantity": 2},
			{"product_id": testdb.ProductGadget, "quantity": 4},
		},
	}
}

func (s *server) create(p identity.Principal) saleapp.SaleDetailResponse {
	s.t.Helper()
	code, env := s.do(p, http.MethodPost, "/api/v1/sales", createBody())
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var detail saleapp.SaleDetailResponse
	require.NoError(s.t, json.Unmarshal(env.Data, &detail))
	return detail
}

func TestAuthentication(t *testing.T) {
	s := newServer(t)

	code, env := s.do(identity.Unauthenticated(), http.MethodGet, "/api/v1/sales", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Status)
	assert.Equal(t, "Authentication credentials were not provided", env.Message)
	assert.Equal(t, "UNAUTHORIZED", env.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not validate credentials")
}

func TestSaleLifecycle(t *testing.T) {
	s := newServer(t)
	created := s.create(ada)

	assert.False(t, created.Paid)
	assert.Equal(t, "30.00", created.TotalAmount)
	require.Len(t, created.Orders, 2)
	path := fmt.Sprintf("/api/v1/sales/%d", created.ID)

	t.Run("detail", func(t *testing.T) {
		code, env := s.do(sam, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, code)
		assert.True(t, env.Status)
	})

	t.Run("update is always rejected", func(t *testing.T) {
		code, env := s.do(ada, http.MethodPut, path, gin.H{"location": "Abuja"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "Sale cannot be updated", env.Message)
	})

	t.Run("add orders", func(t *testing.T) {
		code, env := s.do(ada, http.MethodPost, path+"/orders", []gin.H{{"product_id": testdb.ProductGadget, "quantity": 1}})
		require.Equal(t, http.StatusOK, code, env.Message)

		var detail saleapp.SaleDetailResponse
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.Len(t, detail.Orders, 3)
		assert.Equal(t, "32.25", detail.TotalAmount)
	})

	t.Run("mark paid", func(t *testing.T) {
		code, env := s.do(ada, http.MethodPatch, path, nil)
		require.Equal(t, http.StatusOK, code, env.Message)

		var detail saleapp.SaleDetailResponse
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		assert.True(t, detail.Paid)
		assert.NotNil(t, detail.DatePaid)
	})

	t.Run("paid sale refuses new orders", func(t *testing.T) {
		code, env := s.do(ada, http.MethodPost, path+"/orders", []gin.H{{"product_id": testdb.ProductGadget, "quantity": 1}})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "This sale is already paid for. Please create another sale.", env.Message)
	})

	t.Run("paid sale cannot be deleted", func(t *testing.T) {
		code, env := s.do(ada, http.MethodDelete, path, nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "This sale has been paid for and therefore cannot be deleted", env.Message)
	})
}

func TestDeleteSale(t *testing.T) {
	s := newServer(t)
	created := s.create(ada)
	path := fmt.Sprintf("/api/v1/sales/%d", created.ID)

	code, env := s.do(sam, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Error)

	code, env = s.do(grace, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "You are not the owner of this sale", env.Message)

	code, _ = s.do(ada, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, env = s.do(ada, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "This Sale does not exist", env.Message)
}

func TestRemoveOrders(t *testing.T) {
	s := newServer(t)
	created := s.create(ada)
	path := fmt.Sprintf("/api/v1/sales/%d/orders", created.ID)

	code, env := s.do(ada, http.MethodDelete, path, []int64{created.Orders[0].ID, 9999})
	require.Equal(t, http.StatusOK, code, env.Message)

	var detail saleapp.SaleDetailResponse
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.Orders, 1)
	assert.Equal(t, created.Orders[1].ID, detail.Orders[0].ID)

	code, _ = s.do(ada, http.MethodDelete, path, `{"ids": [1]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStaffAndDelivery(t *testing.T) {
	s := newServer(t)
	created := s.create(ada)
	orderID := created.Orders[0].ID
	assignPath := fmt.Sprintf("/api/v1/sales/staff/%d/orders", testdb.StaffSam)
	deliverPath := fmt.Sprintf("/api/v1/sales/orders/%d", orderID)

	code, _ := s.do(sam, http.MethodPost, assignPath, []int64{orderID})
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(boss, http.MethodPost, "/api/v1/sales/staff/99/orders", []int64{orderID})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "This staff does not exist", env.Message)

	code, env = s.do(boss, http.MethodPost, assignPath, []int64{orderID})
	require.Equal(t, http.StatusOK, code, env.Message)
	var assigned saleapp.StaffOrdersResponse
	require.NoError(t, json.Unmarshal(env.Data, &assigned))
	assert.Equal(t, []int64{orderID}, assigned.OrderIDs)

	code, env = s.do(boss, http.MethodPost, assignPath, []int64{orderID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Some orders have already been assigned to a staff", env.Message)

	code, _ = s.do(kim, http.MethodPatch, deliverPath, nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(sam, http.MethodPatch, deliverPath, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var state saleapp.OrderStateResponse
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.True(t, state.Delivered)

	code, env = s.do(boss, http.MethodDelete, assignPath, []int64{orderID})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Some orders have already been delivered", env.Message)

	code, env = s.do(sam, http.MethodPatch, "/api/v1/sales/orders/424242", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "This order does not exist", env.Message)
}

func TestListSales(t *testing.T) {
	s := newServer(t)
	s.create(ada)
	s.create(ada)

	code, env := s.do(grace, http.MethodGet, "/api/v1/sales?per_page=1&search=lagos", nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	var page saleapp.SaleListResponse
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Count)
	assert.Equal(t, 1, page.PerPage)
	assert.Len(t, page.Results, 1)

	code, env = s.do(grace, http.MethodGet, "/api/v1/sales?date_paid_start=soon", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error)
}

func TestBadRequests(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		path string
		body interface{}
	}{
		{"missing location", "/api/v1/sales", gin.H{"customer_id": 1, "orders": []gin.H{{"product_id": 1, "quantity": 1}}}},
		{"empty orders", "/api/v1/sales", gin.H{"customer_id": 1, "location": "Lagos", "orders": []gin.H{}}},
		{"malformed json", "/api/v1/sales", `{"customer_id":`},
		{"non numeric id", "/api/v1/sales/abc/orders", []gin.H{{"product_id": 1, "quantity": 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := s.do(ada, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.False(t, env.Status)
			assert.Equal(t, "VALIDATION_ERROR", env.Error)
		})
	}
}
