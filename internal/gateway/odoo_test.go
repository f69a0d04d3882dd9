package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-segmentation/internal/domain"
)

// fakeOdoo answers the subset of the JSON-RPC API the client uses.
type fakeOdoo struct {
	mu    sync.Mutex
	calls map[string]int
	reads map[string][][]int64

	uid      interface{}
	lines    map[int64]map[string]interface{}
	products map[int64]map[string]interface{}
	partners map[int64]map[string]interface{}
	rpcError map[string]interface{}
}

func newFakeOdoo() *fakeOdoo {
	return &fakeOdoo{
		calls: map[string]int{},
		reads: map[string][][]int64{},
		uid:   7,
		lines: map[int64]map[string]interface{}{
			1: {"id": 1, "move_id": []interface{}{100, "INV/2025/0001"}, "move_name": "INV/2025/0001", "partner_id": []interface{}{10, "Tienda Online"}, "product_id": []interface{}{50, "Vacuna"}, "balance": -150.5, "date": "2025-03-02"},
			2: {"id": 2, "move_id": []interface{}{101, "RINV/2025/0001"}, "move_name": "RINV/2025/0001", "partner_id": []interface{}{11, "Sin Canal SRL"}, "product_id": []interface{}{51, "Shampoo"}, "balance": 20, "date": "2025-03-05"},
			3: {"id": 3, "move_id": []interface{}{102, "INV/2025/0002"}, "move_name": false, "partner_id": false, "product_id": []interface{}{50, "Vacuna"}, "balance": -5, "date": "2025-03-06"},
		},
		products: map[int64]map[string]interface{}{
			50: {"id": 50, "commercial_line_national_id": []interface{}{3, "PETMEDICA"}},
			51: {"id": 51, "commercial_line_national_id": false},
		},
		partners: map[int64]map[string]interface{}{
			10: {"id": 10, "sales_channel_id": []interface{}{4, "ECOMMERCE"}},
			11: {"id": 11, "sales_channel_id": false},
			12: {"id": 12, "sales_channel_id": []interface{}{5, "DISTRIBUIDORES"}},
		},
	}
}

func (f *fakeOdoo) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int `json:"id"`
		Params struct {
			Service string            `json:"service"`
			Method  string            `json:"method"`
			Args    []json.RawMessage `json:"args"`
		} `json:"params"`
	}
	if r.URL.Path != "/jsonrpc" || json.NewDecoder(r.Body).Decode(&req) != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	reply := func(result interface{}) {
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if req.Params.Service == "common" {
		f.calls["login"]++
		reply(f.uid)
		return
	}

	var model, method string
	json.Unmarshal(req.Params.Args[3], &model)
	json.Unmarshal(req.Params.Args[4], &method)
	f.calls[model+"."+method]++

	if f.rpcError != nil {
		json.NewEncoder(w).Encode(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "error": f.rpcError})
		return
	}

	switch method {
	case "search":
		reply([]int64{1, 2, 3})
	case "read":
		var args [][]int64
		json.Unmarshal(req.Params.Args[5], &args)
		f.reads[model] = append(f.reads[model], args[0])
		table := map[string]map[int64]map[string]interface{}{
			"account.move.line": f.lines,
			"product.product":   f.products,
			"res.partner":       f.partners,
		}[model]
		out := []map[string]interface{}{}
		for _, id := range args[0] {
			if rec, ok := table[id]; ok {
				out = append(out, rec)
			}
		}
		reply(out)
	default:
		http.Error(w, "unknown method", http.StatusBadRequest)
	}
}

func newTestOdoo(t *testing.T, f *fakeOdoo) *OdooSource {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewOdooSource(OdooOptions{
		URL:       srv.URL + "/",
		DB:        "prod",
		User:      "reports@example.com",
		Password:  "secret",
		BatchSize: 2,
		Timeout:   5 * time.Second,
	})
}

func TestOdooSource_Fetch(t *testing.T) {
	f := newFakeOdoo()
	src := newTestOdoo(t, f)

	got, err := src.Fetch(context.Background(), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, []domain.RawRow{
		domain.LiveRow{CustomerID: "10", CustomerName: "Tienda Online", OrderID: "INV/2025/0001", Date: "2025-03-02", Amount: "150.5", LineOfBusiness: "PETMEDICA"},
		domain.LiveRow{CustomerID: "11", CustomerName: "Sin Canal SRL", OrderID: "RINV/2025/0001", Date: "2025-03-05", Amount: "-20"},
		domain.LiveRow{OrderID: "INV/2025/0002", Date: "2025-03-06", Amount: "5", LineOfBusiness: "PETMEDICA"},
	}, got)

	assert.Equal(t, 1, f.calls["login"])
	assert.Equal(t, [][]int64{{1, 2}, {3}}, f.reads["account.move.line"], "lines are read in batches")
	assert.Equal(t, [][]int64{{10, 11}}, f.reads["res.partner"], "partner channels are prefetched")
}

func TestOdooSource_LookupChannel(t *testing.T) {
	f := newFakeOdoo()
	src := newTestOdoo(t, f)
	ctx := context.Background()

	_, err := src.Fetch(ctx, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	tests := []struct {
		customerID string
		wantLabel  string
		wantOK     bool
	}{
		{"10", "ECOMMERCE", true},
		{"11", "", false},
		{"12", "DISTRIBUIDORES", true},
		{"99", "", false},
		{"not-a-partner", "", false},
	}
	for _, tt := range tests {
		label, ok, err := src.LookupChannel(ctx, tt.customerID)
		assert.NoError(t, err)
		assert.Equal(t, tt.wantLabel, label, tt.customerID)
		assert.Equal(t, tt.wantOK, ok, tt.customerID)
	}

	// 10 and 11 came from the prefetch, 12 and 99 cost one read each.
	assert.Equal(t, 3, f.calls["res.partner.read"])

	_, _, err = src.LookupChannel(ctx, "99")
	assert.NoError(t, err)
	assert.Equal(t, 3, f.calls["res.partner.read"], "misses are cached too")
}

func TestOdooSource_Errors(t *testing.T) {
	from, to := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	t.Run("rpc error", func(t *testing.T) {
		f := newFakeOdoo()
		f.rpcError = map[string]interface{}{"code": 200, "message": "Odoo Server Error", "data": map[string]interface{}{"message": "Access Denied"}}
		_, err := newTestOdoo(t, f).Fetch(context.Background(), from, to)

		var rpcErr *RPCError
		require.True(t, errors.As(err, &rpcErr))
		assert.Contains(t, rpcErr.Error(), "Access Denied")
	})

	t.Run("rejected login", func(t *testing.T) {
		f := newFakeOdoo()
		f.uid = false
		_, err := newTestOdoo(t, f).Fetch(context.Background(), from, to)
		assert.ErrorContains(t, err, "invalid credentials")
	})

	t.Run("http failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		defer srv.Close()
		_, err := NewOdooSource(OdooOptions{URL: srv.URL}).Fetch(context.Background(), from, to)
		assert.Error(t, err)
	})
}
