package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/ledger/repository"
	"github.com/smallbiznis/rythudepot/internal/ledger/service"
	"github.com/smallbiznis/rythudepot/internal/observability"
	"github.com/smallbiznis/rythudepot/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	router *gin.Engine
	clock  *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fc := clock.NewFakeClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	ledger := service.NewService(service.Params{
		Repo:    repository.Provide(memory.New()),
		Log:     zap.NewNop(),
		GenID:   node,
		Clock:   fc,
		Options: service.Options{Location: time.UTC},
	})

	srv := NewServer(ServerParams{
		Gin:    NewEngine(observability.Config{}, nil),
		Ledger: ledger,
	})
	return &testServer{router: srv.Engine(), clock: fc}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)
	return resp
}

func decodeData[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope), resp.Body.String())
	return envelope.Data
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body), resp.Body.String())
	return body.Error
}

func (s *testServer) createFarmer(t *testing.T) domain.Farmer {
	t.Helper()
	resp := s.do(t, http.MethodPost, "/api/farmers", `{"name":"Ravi Kumar","village":"Kota","pin":"524411","mobile":"9876543210","balance":0}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[domain.Farmer](t, resp)
}

func (s *testServer) createProduct(t *testing.T, stock int64) domain.Product {
	t.Helper()
	body := `{"productName":"Monocrotophos","size":"500ml","rate":100,"discount":5,"cgst":9,"sgst":9,"stockInHand":` +
		decimal.NewFromInt(stock).String() + `}`
	resp := s.do(t, http.MethodPost, "/api/products", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[domain.Product](t, resp)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())
}

func TestCreateFarmerRoundTrip(t *testing.T) {
	s := newTestServer(t)
	farmer := s.createFarmer(t)

	resp := s.do(t, http.MethodGet, "/api/farmers/"+farmer.ID.String(), "")
	require.Equal(t, http.StatusOK, resp.Code)
	got := decodeData[domain.Farmer](t, resp)
	assert.Equal(t, "Ravi Kumar", got.Name)
	assert.Equal(t, "524411", got.Pin)
}

func TestCreateFarmerValidatesPinAndMobile(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/farmers", `{"name":"Ravi","pin":"5244","mobile":"98765x3210"}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload := decodeError(t, resp)
	assert.Equal(t, "validation_error", payload.Type)
	fields := map[string]string{}
	for _, e := range payload.Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "invalid_len", fields["pin"])
	assert.Equal(t, "invalid_numeric", fields["mobile"])
}

func TestCreateFarmerAllowsBlankPin(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/farmers", `{"name":"Lakshmi"}`)

	assert.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestCreateProductComputesAmount(t *testing.T) {
	s := newTestServer(t)
	product := s.createProduct(t, 10)

	assert.True(t, decimal.RequireFromString("112.1").Equal(product.Amount), product.Amount.String())

	resp := s.do(t, http.MethodPatch, "/api/products/"+product.ID.String(), `{"discount":0}`)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeData[domain.Product](t, resp)
	assert.True(t, decimal.RequireFromString("118").Equal(updated.Amount), updated.Amount.String())
}

func TestCreateBillInsufficientStock(t *testing.T) {
	s := newTestServer(t)
	farmer := s.createFarmer(t)
	product := s.createProduct(t, 2)

	body := `{"farmerId":"` + farmer.ID.String() + `","items":[{"productId":"` + product.ID.String() + `","quantity":3}]}`
	resp := s.do(t, http.MethodPost, "/api/bills", body)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
	payload := decodeError(t, resp)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "insufficient_stock", payload.Errors[0].Code)
	assert.Equal(t, "items[0].quantity", payload.Errors[0].Field)
}

func TestUpdateSettingsRefusesIssuedBillNumber(t *testing.T) {
	s := newTestServer(t)
	farmer := s.createFarmer(t)
	product := s.createProduct(t, 5)

	body := `{"farmerId":"` + farmer.ID.String() + `","items":[{"productId":"` + product.ID.String() + `","quantity":1}]}`
	resp := s.do(t, http.MethodPost, "/api/bills", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodPatch, "/api/settings", `{"lastBillNumber":0}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
	payload := decodeError(t, resp)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "number_already_issued", payload.Errors[0].Code)
	assert.Equal(t, "lastBillNumber", payload.Errors[0].Field)
}

func TestCreateBillRejectsRepeatedProduct(t *testing.T) {
	s := newTestServer(t)
	farmer := s.createFarmer(t)
	product := s.createProduct(t, 10)

	item := `{"productId":"` + product.ID.String() + `","quantity":1}`
	body := `{"farmerId":"` + farmer.ID.String() + `","items":[` + item + `,` + item + `]}`
	resp := s.do(t, http.MethodPost, "/api/bills", body)

	require.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
	payload := decodeError(t, resp)
	require.NotEmpty(t, payload.Errors)
	assert.Equal(t, "invalid_unique", payload.Errors[0].Code)
}

func TestPostPaymentFlow(t *testing.T) {
	s := newTestServer(t)
	farmer := s.createFarmer(t)
	product := s.createProduct(t, 10)

	body := `{"farmerId":"` + farmer.ID.String() + `","paymentMode":"Credit","items":[{"productId":"` + product.ID.String() + `","quantity":2}]}`
	resp := s.do(t, http.MethodPost, "/api/bills", body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	bill := decodeData[domain.Bill](t, resp)
	assert.Equal(t, domain.BillStatusPending, bill.Status)

	resp = s.do(t, http.MethodPost, "/api/bills/"+bill.ID.String()+"/payments", `{"amount":1000}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code, resp.Body.String())
	assert.Equal(t, "payment_exceeds_outstanding", decodeError(t, resp).Errors[0].Code)

	resp = s.do(t, http.MethodPost, "/api/bills/"+bill.ID.String()+"/payments", `{"amount":100,"paymentMethod":"UPI"}`)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	result := decodeData[domain.PostPaymentResult](t, resp)
	assert.Equal(t, domain.BillStatusPartial, result.Bill.Status)

	resp = s.do(t, http.MethodGet, "/api/bills/"+bill.ID.String()+"/payments", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeData[[]domain.PaymentRecord](t, resp), 1)
}

func TestUnknownIDsReturnNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{
		"/api/farmers/abc",
		"/api/farmers/1234567",
		"/api/bills/1234567",
		"/api/bills/number/99",
		"/api/products/1234567",
		"/api/nope",
	} {
		resp := s.do(t, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, resp.Code, path)
		assert.Equal(t, "not_found", decodeError(t, resp).Type, path)
	}
}

func TestUndo(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodPost, "/api/undo", "")
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "nothing_to_undo", decodeError(t, resp).Type)

	farmer := s.createFarmer(t)
	resp = s.do(t, http.MethodPost, "/api/undo", "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = s.do(t, http.MethodGet, "/api/farmers/"+farmer.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	s.createFarmer(t)
	s.clock.Advance(11 * time.Second)
	resp = s.do(t, http.MethodPost, "/api/undo", "")
	require.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "undo_expired", decodeError(t, resp).Type)
}

func TestRequireJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/farmers", bytes.NewBufferString("name=Ravi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	s.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, resp.Code)
}

func TestListBillsRejectsUnknownStatus(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(t, http.MethodGet, "/api/bills?status=overdue", "")

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "status", decodeError(t, resp).Errors[0].Field)
}
