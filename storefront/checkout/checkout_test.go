package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoparak/shop-backend/storefront/cart"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-\d+-\w+$`)

func newCartWith(t *testing.T, products ...cart.Product) *cart.Store {
	s := cart.NewStore(cart.NewMemoryStorage(), nil)
	for _, p := range products {
		require.NoError(t, s.Add(context.Background(), p))
	}
	return s
}

func details() CustomerDetails {
	return CustomerDetails{
		Name:    "Sara Mohammadi",
		Email:   "sara@example.com",
		Phone:   "09120000000",
		Address: "Tehran, Valiasr St.",
	}
}

func TestSubmit_EmptyCartRejectedLocally(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	o := NewOrchestrator(newCartWith(t), srv.URL, time.Second, nil)

	_, err := o.Submit(context.Background(), details(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, calls, "empty cart must be rejected before any network call")
}

func TestSubmit_SuccessClearsCart(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "order registered",
			"order": map[string]any{
				"order_number": "ORD-20260831120000-4821",
				"total_amount": 100000,
				"final_amount": 100000,
			},
		})
	}))
	defer srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, srv.URL, time.Second, nil)

	conf, err := o.Submit(context.Background(), details(), "")
	require.NoError(t, err)

	assert.Regexp(t, orderNumberPattern, conf.OrderNumber)
	assert.Equal(t, int64(100000), conf.TotalAmount)
	assert.Equal(t, 0, store.ItemCount(), "cart must be empty after a confirmed order")

	items := gotReq["items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, float64(1), item["product_id"])
	assert.Equal(t, "Vase", item["product_name"])
	assert.Equal(t, float64(1), item["quantity"])
	assert.Equal(t, float64(100000), item["price"])
	assert.Equal(t, "cash", gotReq["payment_method"], "payment method defaults to cash")
	_, hasCoupon := gotReq["coupon_code"]
	assert.False(t, hasCoupon, "blank coupon must not be attached")
}

func TestSubmit_CouponAttachedWhenPresent(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"order":   map[string]any{"order_number": "ORD-20260831120000-0001"},
		})
	}))
	defer srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, srv.URL, time.Second, nil)

	_, err := o.Submit(context.Background(), details(), "  SAVE10 ")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", gotReq["coupon_code"])
}

func TestSubmit_ServerRejectionPreservesCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "email format is not valid",
		})
	}))
	defer srv.Close()

	store := newCartWith(t,
		cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000},
		cart.Product{ID: 2, Name: "Bowl", UnitPrice: 50000},
	)
	linesBefore := store.Lines()
	totalBefore := store.Total()

	o := NewOrchestrator(store, srv.URL, time.Second, nil)
	_, err := o.Submit(context.Background(), details(), "")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email format is not valid", vErr.Message)

	assert.Equal(t, linesBefore, store.Lines())
	assert.Equal(t, totalBefore, store.Total())
}

func TestSubmit_ServerErrorPreservesCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, srv.URL, time.Second, nil)

	_, err := o.Submit(context.Background(), details(), "")

	var sErr *ServerError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, 1, store.ItemCount())
}

func TestSubmit_NetworkFailurePreservesCart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, url, time.Second, nil)

	_, err := o.Submit(context.Background(), details(), "")
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, 1, store.ItemCount())
}

func TestSubmit_SecondSubmissionBlockedWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"order":   map[string]any{"order_number": "ORD-20260831120000-0002"},
		})
	}))
	defer srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, srv.URL, 5*time.Second, nil)

	firstDone := make(chan error, 1)
	go func() {
		_, err := o.Submit(context.Background(), details(), "")
		firstDone <- err
	}()

	<-entered
	_, err := o.Submit(context.Background(), details(), "")
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-firstDone)
}

func TestSubmit_SnapshotIgnoresConcurrentCartEdits(t *testing.T) {
	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Simulates the user editing the cart mid-submission.
		var req map[string]any
		json.NewDecoder(r.Body).Decode(&req)
		items := req["items"].([]any)
		assert.Len(t, items, 1, "submitted items must come from the snapshot")

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"order":   map[string]any{"order_number": "ORD-20260831120000-0003"},
		})
	}))
	defer srv.Close()

	o := NewOrchestrator(store, srv.URL, time.Second, nil)
	_, err := o.Submit(context.Background(), details(), "")
	require.NoError(t, err)
}

func TestSubmit_MalformedSuccessBodyIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	store := newCartWith(t, cart.Product{ID: 1, Name: "Vase", UnitPrice: 100000})
	o := NewOrchestrator(store, srv.URL, time.Second, nil)

	_, err := o.Submit(context.Background(), details(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Equal(t, 1, store.ItemCount())
}
