package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/api"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/lifecycle"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/notify"
	"github.com/nikolayk812/orderflow/internal/repository/memrepo"
	"github.com/nikolayk812/orderflow/internal/returns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memMedia struct{}

func (memMedia) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	_, err := io.Copy(io.Discard, body)
	return "https://cdn.example.com/" + key, err
}

func (memMedia) Delete(context.Context, string) error { return nil }

type testServer struct {
	router  *gin.Engine
	store   *memrepo.Store
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T) testServer {
	t.Helper()

	store := memrepo.NewStore()
	m := metrics.New()
	dispatcher := notify.NewDispatcher(store.Notifications(), nil, m, nil)

	engine, err := lifecycle.NewEngine(lifecycle.EngineDeps{Orders: store.Orders(), Notifier: dispatcher, Metrics: m})
	require.NoError(t, err)

	workflow, err := returns.NewWorkflow(returns.WorkflowDeps{
		UnitOfWork: store.UnitOfWork(),
		Returns:    store.Returns(),
		Orders:     store.Orders(),
		Engine:     engine,
		Notifier:   dispatcher,
	})
	require.NoError(t, err)

	coord, err := catalog.NewCoordinator(store.Products(), memMedia{}, m, nil)
	require.NoError(t, err)

	router, err := api.NewRouter(api.Deps{
		Engine:   engine,
		Returns:  workflow,
		Inbox:    notify.NewInbox(store.Notifications()),
		Catalog:  coord,
		Products: store.Products(),
		Metrics:  m,
	})
	require.NoError(t, err)

	return testServer{router: router, store: store, metrics: m}
}

type caller struct {
	id, role string
}

var (
	customer = caller{"cust-1", "customer"}
	stranger = caller{"cust-2", "customer"}
	admin    = caller{"admin-1", "ADMIN"}
)

func (s testServer) do(t *testing.T, who caller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.id != "" {
		req.Header.Set(api.HeaderActorID, who.id)
		req.Header.Set(api.HeaderActorRole, who.role)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (s testServer) placeOrder(t *testing.T) api.OrderResponse {
	t.Helper()

	w := s.do(t, admin, http.MethodPost, "/api/v1/products", api.CreateProductRequest{Name: "batik shirt"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	product := decode[api.ProductResponse](t, w)

	w = s.do(t, customer, http.MethodPost, "/api/v1/orders", api.PlaceOrderRequest{
		Items: []api.OrderItemRequest{
			{ProductID: product.ID, Quantity: 2, UnitPrice: api.MoneyDTO{Amount: 50_000, Currency: "IDR"}},
		},
		ShippingAddress: "Jl. Malioboro 5, Yogyakarta",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return decode[api.OrderResponse](t, w)
}

func TestOrderFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	order := s.placeOrder(t)
	assert.Equal(t, int64(100_000), order.Total.Amount)
	assert.Equal(t, "pending", order.Status)

	path := "/api/v1/orders/" + order.ID.String()

	w := s.do(t, customer, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "PAID"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, admin, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "shipped"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[api.ErrorResponse](t, w).Error, "courier and tracking number")

	w = s.do(t, admin, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "shipped", Courier: "JNE", TrackingNumber: "JNE123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shipped := decode[api.OrderResponse](t, w)
	assert.Equal(t, "JNE123", *shipped.TrackingNumber)

	w = s.do(t, customer, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "completed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, customer, http.MethodPost, path+"/complaints", api.ComplaintRequest{
		Reason:         "wrong_item",
		Description:    "received a blue shirt instead of red",
		EvidenceImages: []string{"https://cdn.example.com/evidence/1.jpg"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	complaint := decode[api.ReturnResponse](t, w)
	assert.Equal(t, "completed", complaint.OrderStatusBefore)

	w = s.do(t, admin, http.MethodPost, "/api/v1/returns/"+complaint.ID.String()+"/decision", api.DecisionRequest{Decision: "approve"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, admin, http.MethodPost, "/api/v1/returns/"+complaint.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, customer, http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "returned", decode[api.OrderResponse](t, w).Status)

	w = s.do(t, customer, http.MethodGet, path+"/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		History []api.StatusChangeResponse `json:"history"`
	}](t, w)
	assert.Len(t, history.History, 5)

	w = s.do(t, customer, http.MethodGet, "/api/v1/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	unread := decode[map[string]int](t, w)
	assert.Equal(t, 6, unread["unread"])
}

func TestErrorStatusMapping(t *testing.T) {
	s := newTestServer(t)
	order := s.placeOrder(t)
	path := "/api/v1/orders/" + order.ID.String()

	tests := []struct {
		name       string
		who        caller
		method     string
		path       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid transition",
			who:        admin,
			method:     http.MethodPost,
			path:       path + "/transitions",
			body:       api.TransitionRequest{Status: "completed"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_transition",
		},
		{
			name:       "skipping payment",
			who:        customer,
			method:     http.MethodPost,
			path:       path + "/transitions",
			body:       api.TransitionRequest{Status: "processing"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_transition",
		},
		{
			name:       "expected status conflict",
			who:        customer,
			method:     http.MethodPost,
			path:       path + "/transitions",
			body:       api.TransitionRequest{Status: "paid", ExpectedStatus: "paid"},
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "other customer's order",
			who:        stranger,
			method:     http.MethodGet,
			path:       path,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "complaint on pending order",
			who:        customer,
			method:     http.MethodPost,
			path:       path + "/complaints",
			body:       api.ComplaintRequest{Reason: "damaged", Description: "torn", EvidenceImages: []string{"x.jpg"}},
			wantStatus: http.StatusConflict,
			wantCode:   "invalid_state",
		},
		{
			name:       "unknown status value",
			who:        admin,
			method:     http.MethodPost,
			path:       path + "/transitions",
			body:       api.TransitionRequest{Status: "delivered"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "admin only route",
			who:        customer,
			method:     http.MethodGet,
			path:       "/api/v1/returns",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing actor",
			method:     http.MethodGet,
			path:       path,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed id",
			who:        admin,
			method:     http.MethodGet,
			path:       "/api/v1/orders/not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, tt.who, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decode[api.ErrorResponse](t, w).Code)
			}
		})
	}
}

func TestForbiddenTransitionMapsTo403(t *testing.T) {
	s := newTestServer(t)
	order := s.placeOrder(t)
	path := "/api/v1/orders/" + order.ID.String()

	w := s.do(t, admin, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "paid"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, customer, http.MethodPost, path+"/transitions", api.TransitionRequest{Status: "processing"})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	assert.Equal(t, "forbidden", decode[api.ErrorResponse](t, w).Code)
}

func TestProductDeletion(t *testing.T) {
	s := newTestServer(t)
	order := s.placeOrder(t)

	w := s.do(t, admin, http.MethodDelete, "/api/v1/products/"+order.Items[0].ProductID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(catalog.OutcomeSoftDeletedInstead), decode[map[string]string](t, w)["outcome"])

	// a deactivated product can no longer be ordered
	w = s.do(t, customer, http.MethodPost, "/api/v1/orders", api.PlaceOrderRequest{
		Items: []api.OrderItemRequest{
			{ProductID: order.Items[0].ProductID, Quantity: 1, UnitPrice: api.MoneyDTO{Amount: 50_000, Currency: "IDR"}},
		},
		ShippingAddress: "Jl. Malioboro 5, Yogyakarta",
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	resp := decode[api.ErrorResponse](t, w)
	assert.Equal(t, "validation", resp.Code)
	assert.Equal(t, "item[0]: product "+order.Items[0].ProductID.String()+": validation failed: product is no longer available", resp.Error)

	w = s.do(t, admin, http.MethodPost, "/api/v1/products", api.CreateProductRequest{Name: "unused"})
	require.Equal(t, http.StatusCreated, w.Code)
	unused := decode[api.ProductResponse](t, w)

	w = s.do(t, admin, http.MethodDelete, "/api/v1/products/"+unused.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(catalog.OutcomeDeleted), decode[map[string]string](t, w)["outcome"])

	w = s.do(t, customer, http.MethodDelete, "/api/v1/products/"+uuid.NewString(), nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestPurgeRequiresConfirmation(t *testing.T) {
	s := newTestServer(t)
	s.placeOrder(t)

	w := s.do(t, admin, http.MethodPost, "/api/v1/products/purge", api.PurgeProductsRequest{Confirmation: "delete all products"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	products, err := s.store.Products().ListProducts(t.Context(), domain.Page{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.True(t, products[0].Active)

	w = s.do(t, admin, http.MethodPost, "/api/v1/products/purge", api.PurgeProductsRequest{Confirmation: catalog.PurgeConfirmation})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(catalog.OutcomeSoftDeletedInstead), decode[map[string]any](t, w)["outcome"])
}

func TestUploadProductImage(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, admin, http.MethodPost, "/api/v1/products", api.CreateProductRequest{Name: "vase"})
	require.Equal(t, http.StatusCreated, w.Code)
	product := decode[api.ProductResponse](t, w)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="vase.png"`},
		"Content-Type":        {"image/png"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/"+product.ID.String()+"/images", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(api.HeaderActorID, admin.id)
	req.Header.Set(api.HeaderActorRole, admin.role)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	ref := decode[map[string]string](t, rec)["ref"]
	assert.True(t, strings.HasSuffix(ref, "-vase.png"))

	stored, err := s.store.Products().GetProduct(t.Context(), product.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{ref}, stored.Images)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.placeOrder(t)

	w := s.do(t, caller{}, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/api/v1/orders"`)
}
