package ginserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventmarket/internal/app/commands"
	"eventmarket/internal/app/handlers/bookings"
	"eventmarket/internal/app/handlers/offers"
	"eventmarket/internal/app/middleware"
	"eventmarket/internal/app/policies"
	"eventmarket/internal/app/queries"
	"eventmarket/internal/domain/settlement"
	"eventmarket/internal/infra/obs"
	"eventmarket/internal/infra/storage/memory"
)

var testNow = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := settlement.NewService(settlement.DefaultPolicy())
	require.NoError(t, err)
	commission, err := policies.NewFlatCommission(decimal.RequireFromString("0.10"))
	require.NoError(t, err)

	box := memory.NewOutbox()
	factory := memory.NewFactory()
	clock := policies.FixedClock{At: testNow}
	var seq atomic.Int64
	newID := func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	offers.Register(cmdBus, queryBus, offers.Deps{
		UoW: factory, Outbox: box, Settlement: svc, Clock: clock, NewID: newID,
		DefaultValidity: 7 * 24 * time.Hour, DefaultCurrency: "AOA",
	})
	bookings.Register(cmdBus, queryBus, bookings.Deps{
		UoW: factory, Outbox: box, Settlement: svc, Commission: commission, Clock: clock, NewID: newID,
		DefaultCurrency: "AOA",
	})
	pipeline := middleware.Deps{
		Validator:   middleware.NewStructValidator(),
		Idempotency: memory.NewIdempotencyStore(time.Hour),
		UoW:         factory,
		Outbox:      box,
	}
	cmds := middleware.StandardCommands(cmdBus, pipeline)
	qs := middleware.StandardQueries(queryBus, pipeline)

	return NewRouter(obs.Middleware{}, obs.HealthHandlers{}, Handlers{
		Offers:   OfferHandler{Commands: cmds, Queries: qs},
		Bookings: BookingHandler{Commands: cmds, Queries: qs},
	})
}

func do(t *testing.T, router http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
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
	if user != "" {
		req.Header.Set(userIDHeader, user)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createOffer(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/v1/offers", "supplier-1", map[string]any{
		"seller_id":    "supplier-1",
		"buyer_id":     "client-1",
		"price_amount": 250_000,
		"description":  "Decoração completa",
		"initiated_by": "seller",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["id"].(string)
}

func TestOfferAcceptOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	offerID := createOffer(t, router)

	rec := do(t, router, http.MethodPost, "/api/v1/offers/"+offerID+"/accept", "client-1", map[string]any{
		"event_name": "Casamento",
		"event_date": testNow.AddDate(0, 0, 60),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	offer := body["offer"].(map[string]any)
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "ACCEPTED", offer["status"])
	assert.Equal(t, booking["id"], offer["booking_id"])
	assert.Equal(t, "PENDING", booking["status"])

	rec = do(t, router, http.MethodPost, "/api/v1/offers/"+offerID+"/accept", "client-1", map[string]any{
		"event_name": "Casamento",
		"event_date": testNow.AddDate(0, 0, 60),
	})
	require.Equal(t, http.StatusCreated, rec.Code, "retried accept replays the first result")
	replayed := decode(t, rec)["booking"].(map[string]any)
	assert.Equal(t, booking["id"], replayed["id"])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers/"+offerID+"/accept",
		strings.NewReader(`{"event_name":"Casamento","event_date":"2026-05-01T00:00:00Z"}`))
	req.Header.Set(userIDHeader, "client-1")
	req.Header.Set(idempotencyHeader, "second-attempt")
	again := httptest.NewRecorder()
	router.ServeHTTP(again, req)
	assert.Equal(t, http.StatusUnprocessableEntity, again.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/bookings/"+booking["id"].(string), "supplier-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	offerID := createOffer(t, router)

	rec := do(t, router, http.MethodGet, "/api/v1/offers/"+offerID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/offers/"+offerID, "stranger", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "unauthorized", errBody["kind"])

	rec = do(t, router, http.MethodGet, "/api/v1/offers/missing", "client-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/offers", "supplier-1", map[string]any{
		"seller_id":    "supplier-1",
		"buyer_id":     "supplier-1",
		"price_amount": 10,
		"description":  "x",
		"initiated_by": "seller",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/offers", strings.NewReader("{"))
	req.Header.Set(userIDHeader, "supplier-1")
	raw := httptest.NewRecorder()
	router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestPaymentAndRefundQuoteOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	rec := do(t, router, http.MethodPost, "/api/v1/bookings", "client-1", map[string]any{
		"supplier_id":  "supplier-1",
		"event_name":   "Aniversário",
		"event_date":   testNow.AddDate(0, 0, 45),
		"total_amount": 100_000,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode(t, rec)["id"].(string)

	rec = do(t, router, http.MethodPost, "/api/v1/bookings/"+id+"/payments", "client-1", map[string]any{
		"payment_id": "pay-1",
		"amount":     40_000,
		"method":     "MULTICAIXA",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	status := decode(t, rec)["payment_status"].(map[string]any)
	assert.InDelta(t, 40.0, status["completion_percentage"], 0.001)

	rec = do(t, router, http.MethodGet, "/api/v1/bookings/"+id+"/refund-quote", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/v1/bookings/"+id+"/schedule?installments=abc", "client-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/bookings?role=client", "client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 1)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/readyz", "", nil).Code)
}
