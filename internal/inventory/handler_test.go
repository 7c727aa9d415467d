package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Farm-Orbit/farmorb-web-sub000/internal/audit"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/auth"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/ledger/ledgertest"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/models"
	"github.com/Farm-Orbit/farmorb-web-sub000/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

type fakeAuditor struct {
	mu      sync.Mutex
	entries []audit.LogOptions
}

func (f *fakeAuditor) Write(_ context.Context, opts audit.LogOptions) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, opts)
}

func (f *fakeAuditor) actions() []models.AuditAction {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.AuditAction, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type memoryIdempotency struct {
	mu           sync.Mutex
	data         map[string]IdempotencyRecord
	failComplete bool
}

func newMemoryIdempotency() *memoryIdempotency {
	return &memoryIdempotency{data: make(map[string]IdempotencyRecord)}
}

func (m *memoryIdempotency) Reserve(_ context.Context, key, fingerprint string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = IdempotencyRecord{Fingerprint: fingerprint}
	return true, nil
}

func (m *memoryIdempotency) Lookup(_ context.Context, key string) (*IdempotencyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *memoryIdempotency) Complete(_ context.Context, key, fingerprint string, response []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failComplete {
		return errors.New("idempotency store unavailable")
	}
	m.data[key] = IdempotencyRecord{Fingerprint: fingerprint, Response: response}
	return nil
}

func (m *memoryIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memoryIdempotency) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type testEnv struct {
	app         *fiber.App
	store       *ledgertest.Store
	auditor     *fakeAuditor
	idempotency *memoryIdempotency
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		store:       ledgertest.NewStore(),
		auditor:     &fakeAuditor{},
		idempotency: newMemoryIdempotency(),
	}
	h := &Handlers{
		Ledger: ledger.New(env.store, ledger.NewLocalLocker(time.Second), ledger.Options{MaxRetries: 3, Logger: logger}),
		Audit:  env.auditor,
		Suppliers: func(_ context.Context, farmID, supplierID uint) (bool, error) {
			return farmID == 1 && supplierID == 5, nil
		},
		Idempotency: env.idempotency,
		Logger:      logger,
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler(logger)})
	farm := env.app.Group("/api/farms/:farmId", func(c *fiber.Ctx) error {
		farmID, err := utils.ParamUint(c, "farmId")
		if err != nil {
			return err
		}
		c.Locals(auth.CtxScopeFarmIDKey, farmID)
		c.Locals(auth.CtxUserIDKey, uint(7))
		c.Locals(auth.CtxUserNameKey, "Ayla")
		return c.Next()
	})
	h.Register(farm.Group("/inventory"))
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	raw, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	}
	return resp, decoded
}

func (e *testEnv) createItem(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	resp, item := e.do(t, "POST", "/api/farms/1/inventory", body, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create item: expected 201, got %d: %v", resp.StatusCode, item)
	}
	return item
}

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func feedItem(quantity string, threshold any) map[string]any {
	return map[string]any{
		"name":                "Layer pellets",
		"category":            "feed",
		"quantity":            quantity,
		"unit":                "kilograms",
		"low_stock_threshold": threshold,
	}
}

func TestCreateItemHandler(t *testing.T) {
	env := newTestEnv(t)

	item := env.createItem(t, feedItem("100", "20"))
	if item["quantity"] != "100" || item["stock_status"] != "ok" || item["unit"] != "kilograms" {
		t.Fatalf("unexpected item: %v", item)
	}
	low := env.createItem(t, feedItem("5", 5))
	if low["stock_status"] != "low" {
		t.Fatalf("expected low stock status, got %v", low["stock_status"])
	}
	if got := env.auditor.actions(); len(got) != 2 || got[0] != models.AuditActionCreate {
		t.Fatalf("unexpected audit trail: %v", got)
	}
}

func TestCreateItemHandler_Rejects(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing quantity", map[string]any{"name": "Hay", "category": "feed", "unit": "bales"}, "quantity"},
		{"unknown category", map[string]any{"name": "Hay", "category": "toys", "quantity": 1, "unit": "bales"}, "category"},
		{"negative quantity", map[string]any{"name": "Hay", "category": "feed", "quantity": -1, "unit": "bales"}, "quantity"},
		{"unknown unit", map[string]any{"name": "Hay", "category": "feed", "quantity": 1, "unit": "cubits"}, "unit"},
		{"bad expiry", map[string]any{"name": "Hay", "category": "feed", "quantity": 1, "unit": "bales", "expiry_date": "03/04/2027"}, "expiry_date"},
		{"foreign supplier", map[string]any{"name": "Hay", "category": "feed", "quantity": 1, "unit": "bales", "supplier_id": 9}, "supplier_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := env.do(t, "POST", "/api/farms/1/inventory", tc.body, nil)
			if resp.StatusCode != fiber.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %v", resp.StatusCode, body)
			}
			fields, _ := body["fields"].(map[string]any)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected field %s in %v", tc.field, body)
			}
		})
	}
}

func TestApplyTransactionHandler(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("100", "20"))
	path := "/api/farms/1/inventory/" + item["id"].(string) + "/transactions"

	resp, body := env.do(t, "POST", path, map[string]any{"transaction_type": "restock", "quantity": 50, "supplier_id": 5, "cost": "12.50"}, nil)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("restock: expected 201, got %d: %v", resp.StatusCode, body)
	}
	txn := body["transaction"].(map[string]any)
	if txn["quantity_delta"] != "50" || txn["quantity_after"] != "150" || txn["performed_by"] != float64(7) {
		t.Fatalf("unexpected transaction: %v", txn)
	}
	if body["item"].(map[string]any)["quantity"] != "150" {
		t.Fatalf("unexpected item: %v", body["item"])
	}

	resp, body = env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": 151}, nil)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("overdraw: expected 422, got %d", resp.StatusCode)
	}
	if body["available"] != "150" || body["unit"] != "kilograms" || body["code"] != utils.CodeInsufficientStock {
		t.Fatalf("unexpected insufficient stock body: %v", body)
	}

	for _, bad := range []map[string]any{
		{"transaction_type": "usage", "quantity": 0},
		{"transaction_type": "usage", "quantity": -3},
		{"transaction_type": "transfer", "quantity": 3},
		{"transaction_type": "usage", "quantity": 3, "unit": "liters"},
		{"transaction_type": "usage"},
	} {
		resp, body := env.do(t, "POST", path, bad, nil)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("%v: expected 400, got %d: %v", bad, resp.StatusCode, body)
		}
	}

	resp, _ = env.do(t, "POST", "/api/farms/1/inventory/missing/transactions", map[string]any{"transaction_type": "restock", "quantity": 1}, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown item: expected 404, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "POST", "/api/farms/2/inventory/"+item["id"].(string)+"/transactions", map[string]any{"transaction_type": "restock", "quantity": 1}, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("other farm: expected 404, got %d", resp.StatusCode)
	}

	if n := len(env.store.Transactions(item["id"].(string))); n != 1 {
		t.Fatalf("expected exactly one committed transaction, got %d", n)
	}
}

func TestApplyTransactionHandler_Idempotency(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("10", nil))
	itemID := item["id"].(string)
	path := "/api/farms/1/inventory/" + itemID + "/transactions"
	headers := map[string]string{idempotencyHeader: "feed-run-42"}

	first, firstBody := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": 4}, headers)
	second, secondBody := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": 4}, headers)
	if first.StatusCode != fiber.StatusCreated || second.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 twice, got %d and %d", first.StatusCode, second.StatusCode)
	}
	if second.Header.Get(replayedHeader) != "true" {
		t.Fatalf("second response was not a replay")
	}
	firstTxn := firstBody["transaction"].(map[string]any)["id"]
	if secondBody["transaction"].(map[string]any)["id"] != firstTxn {
		t.Fatalf("replay returned a different transaction")
	}
	if n := len(env.store.Transactions(itemID)); n != 1 {
		t.Fatalf("expected one transaction, got %d", n)
	}

	failing := map[string]string{idempotencyHeader: "too-much"}
	resp, _ := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": 99}, failing)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": 1}, failing)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("failed request should release its key, got %d", resp.StatusCode)
	}

	inFlight := map[string]any{"transaction_type": "usage", "quantity": 1}
	fingerprint, err := requestFingerprint(&ApplyTransactionRequest{TransactionType: "usage", Quantity: decPtr("1")})
	if err != nil {
		t.Fatalf("requestFingerprint: %v", err)
	}
	if _, err := env.idempotency.Reserve(context.Background(), "1:"+itemID+":in-flight", fingerprint); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	resp, _ = env.do(t, "POST", path, inFlight, map[string]string{idempotencyHeader: "in-flight"})
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("in-flight key: expected 409, got %d", resp.StatusCode)
	}
}

func TestApplyTransactionHandler_IdempotencyKeyBoundToRequest(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("10", nil))
	itemID := item["id"].(string)
	path := "/api/farms/1/inventory/" + itemID + "/transactions"
	headers := map[string]string{idempotencyHeader: "morning-feed"}

	resp, _ := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": "2"}, headers)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first request: expected 201, got %d", resp.StatusCode)
	}

	resp, body := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": "3"}, headers)
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("different body: expected 422, got %d", resp.StatusCode)
	}
	if body["code"] != utils.CodeIdempotencyMismatch {
		t.Fatalf("unexpected error body %v", body)
	}

	resp, _ = env.do(t, "POST", path, map[string]any{"quantity": "2.0", "transaction_type": "usage"}, headers)
	if resp.StatusCode != fiber.StatusCreated || resp.Header.Get(replayedHeader) != "true" {
		t.Fatalf("same request reformatted: expected replay, got %d", resp.StatusCode)
	}
	if n := len(env.store.Transactions(itemID)); n != 1 {
		t.Fatalf("expected one transaction, got %d", n)
	}
}

func TestApplyTransactionHandler_FailedCompleteReleasesKey(t *testing.T) {
	env := newTestEnv(t)
	env.idempotency.failComplete = true
	item := env.createItem(t, feedItem("10", nil))
	itemID := item["id"].(string)
	path := "/api/farms/1/inventory/" + itemID + "/transactions"
	headers := map[string]string{idempotencyHeader: "evening-feed"}

	resp, _ := env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": "2"}, headers)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if env.idempotency.has("1:" + itemID + ":evening-feed") {
		t.Fatalf("key left reserved after Complete failed")
	}

	env.idempotency.mu.Lock()
	env.idempotency.failComplete = false
	env.idempotency.mu.Unlock()
	resp, _ = env.do(t, "POST", path, map[string]any{"transaction_type": "usage", "quantity": "2"}, headers)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("retry after failed Complete: expected 201, got %d", resp.StatusCode)
	}
}

func TestUpdateItemHandler(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("10", nil))
	path := "/api/farms/1/inventory/" + item["id"].(string)

	resp, body := env.do(t, "PUT", path, map[string]any{"quantity": 500}, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("quantity update: expected 400, got %d", resp.StatusCode)
	}
	if fields, _ := body["fields"].(map[string]any); fields["quantity"] == nil {
		t.Fatalf("expected quantity field error, got %v", body)
	}

	resp, body = env.do(t, "PUT", path, map[string]any{"name": "Starter crumbs", "low_stock_threshold": "10", "expiry_date": "2027-02-01"}, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update: expected 200, got %d: %v", resp.StatusCode, body)
	}
	if body["name"] != "Starter crumbs" || body["quantity"] != "10" || body["stock_status"] != "low" || body["expiry_date"] != "2027-02-01" {
		t.Fatalf("unexpected updated item: %v", body)
	}

	resp, _ = env.do(t, "PUT", "/api/farms/1/inventory/missing", map[string]any{"name": "x"}, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("missing item: expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateItemHandler_ClearsOptionalFields(t *testing.T) {
	env := newTestEnv(t)
	fields := feedItem("10", "20")
	fields["cost_per_unit"] = "1.25"
	fields["supplier_id"] = 5
	fields["expiry_date"] = "2027-01-31"
	item := env.createItem(t, fields)
	path := "/api/farms/1/inventory/" + item["id"].(string)
	if item["stock_status"] != "low" || item["supplier_id"] != float64(5) {
		t.Fatalf("unexpected created item: %v", item)
	}

	resp, body := env.do(t, "PUT", path, map[string]any{"notes": "moved to barn 2"}, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("update: expected 200, got %d", resp.StatusCode)
	}
	if body["low_stock_threshold"] != "20" || body["expiry_date"] != "2027-01-31" || body["cost_per_unit"] != "1.25" {
		t.Fatalf("absent fields must stay unchanged: %v", body)
	}

	resp, body = env.do(t, "PUT", path, map[string]any{
		"low_stock_threshold": nil,
		"cost_per_unit":       nil,
		"supplier_id":         nil,
		"expiry_date":         "",
	}, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("clear: expected 200, got %d: %v", resp.StatusCode, body)
	}
	for _, k := range []string{"low_stock_threshold", "cost_per_unit", "supplier_id", "expiry_date"} {
		if body[k] != nil {
			t.Fatalf("%s not cleared: %v", k, body)
		}
	}
	if body["stock_status"] == "low" {
		t.Fatalf("item without threshold reported low: %v", body)
	}

	resp, body = env.do(t, "PUT", path, map[string]any{"expiry_date": "2027-06-30"}, nil)
	if resp.StatusCode != fiber.StatusOK || body["expiry_date"] != "2027-06-30" {
		t.Fatalf("set after clear: %d %v", resp.StatusCode, body)
	}
	resp, body = env.do(t, "PUT", path, map[string]any{"expiry_date": nil}, nil)
	if resp.StatusCode != fiber.StatusOK || body["expiry_date"] != nil {
		t.Fatalf("null expiry: %d %v", resp.StatusCode, body)
	}
}

func TestApplyTransactionHandler_RejectsUnstorableQuantity(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("1", nil))
	itemID := item["id"].(string)
	path := "/api/farms/1/inventory/" + itemID + "/transactions"

	for _, q := range []string{"0.00001", "1e30"} {
		resp, body := env.do(t, "POST", path, map[string]any{"transaction_type": "restock", "quantity": q}, nil)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Fatalf("quantity %s: expected 400, got %d: %v", q, resp.StatusCode, body)
		}
	}
	if n := len(env.store.Transactions(itemID)); n != 0 {
		t.Fatalf("rejected quantities recorded %d transactions", n)
	}
}

func TestHistoryLowStockAndDelete(t *testing.T) {
	env := newTestEnv(t)
	item := env.createItem(t, feedItem("30", "20"))
	itemID := item["id"].(string)
	base := "/api/farms/1/inventory/" + itemID

	for _, q := range []int{3, 4, 5} {
		resp, _ := env.do(t, "POST", base+"/transactions", map[string]any{"transaction_type": "usage", "quantity": q}, nil)
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("usage %d: got %d", q, resp.StatusCode)
		}
	}

	resp, body := env.do(t, "GET", base+"/transactions?page=1&pageSize=2", nil, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("history: got %d", resp.StatusCode)
	}
	data := body["data"].([]any)
	if body["total"] != float64(3) || len(data) != 2 {
		t.Fatalf("unexpected history page: %v", body)
	}
	if data[0].(map[string]any)["quantity_after"] != "18" {
		t.Fatalf("history not newest first: %v", data[0])
	}

	resp, body = env.do(t, "GET", "/api/farms/1/inventory/low-stock", nil, nil)
	if resp.StatusCode != fiber.StatusOK || body["total"] != float64(1) {
		t.Fatalf("low stock: %d %v", resp.StatusCode, body)
	}

	resp, _ = env.do(t, "GET", base+"/transactions?pageSize=abc", nil, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad page size: expected 400, got %d", resp.StatusCode)
	}

	resp, _ = env.do(t, "DELETE", base, nil, nil)
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", resp.StatusCode)
	}
	resp, _ = env.do(t, "GET", base, nil, nil)
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("archived get: expected 404, got %d", resp.StatusCode)
	}
	resp, body = env.do(t, "GET", base+"/transactions", nil, nil)
	if resp.StatusCode != fiber.StatusOK || body["total"] != float64(3) {
		t.Fatalf("archived history should stay readable: %d %v", resp.StatusCode, body)
	}

	actions := env.auditor.actions()
	if actions[len(actions)-1] != models.AuditActionArchive {
		t.Fatalf("archive not audited: %v", actions)
	}
}

func TestListItemsHandler(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, map[string]any{"name": "Corn", "category": "feed", "quantity": 5, "unit": "kilograms"})
	env.createItem(t, map[string]any{"name": "Syringes", "category": "supplies", "quantity": 50, "unit": "pieces"})
	env.createItem(t, map[string]any{"name": "Oats", "category": "feed", "quantity": 9, "unit": "kilograms"})

	resp, body := env.do(t, "GET", "/api/farms/1/inventory?category=feed&sortBy=quantity&sortOrder=desc", nil, nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("list: got %d", resp.StatusCode)
	}
	data := body["data"].([]any)
	if body["total"] != float64(2) || data[0].(map[string]any)["name"] != "Oats" {
		t.Fatalf("unexpected list: %v", body)
	}

	resp, _ = env.do(t, "GET", "/api/farms/1/inventory?sortBy=password", nil, nil)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("bad sort: expected 400, got %d", resp.StatusCode)
	}
}

func TestExportHandler(t *testing.T) {
	env := newTestEnv(t)
	env.createItem(t, map[string]any{"name": "Corn", "category": "feed", "quantity": 5, "unit": "kilograms", "low_stock_threshold": 10})
	env.createItem(t, map[string]any{"name": "Oats", "category": "feed", "quantity": 9, "unit": "kilograms"})

	req := httptest.NewRequest("GET", "/api/farms/1/inventory/export", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export: expected 200, got %d", resp.StatusCode)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected heading and 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "Corn" || rows[1][5] != "low" || rows[2][0] != "Oats" || rows[2][5] != "ok" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
