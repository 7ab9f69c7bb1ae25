package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
)

// fakePayPal serves the token, create and capture endpoints.
func fakePayPal(t *testing.T, captureStatus string, tokenCalls *atomic.Int64) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			tokenCalls.Add(1)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client-id" || pass != "client-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "test-token",
			"expires_in":   3600,
		})
	})

	mux.HandleFunc("POST /v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req paypalOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PurchaseUnits) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(paypalOrderResponse{
			ID:            "ORDER-1",
			Status:        "CREATED",
			PurchaseUnits: req.PurchaseUnits,
		})
	})

	mux.HandleFunc("POST /v2/checkout/orders/{id}/capture", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(paypalOrderResponse{
			ID:     r.PathValue("id"),
			Status: captureStatus,
			PurchaseUnits: []paypalPurchaseUnit{{
				Amount:   paypalAmount{CurrencyCode: "EUR", Value: "100.00"},
				CustomID: "5000",
			}},
		})
	})

	return httptest.NewServer(mux)
}

func TestPayPalClient_CreateAndCapture(t *testing.T) {
	var tokenCalls atomic.Int64
	srv := fakePayPal(t, "COMPLETED", &tokenCalls)
	defer srv.Close()

	client := NewPayPalClient("client-id", "client-secret", WithBaseURL(srv.URL))
	ctx := context.Background()

	order, err := client.CreateOrder(ctx, decimal.RequireFromString("100.00"), "EUR",
		Metadata{CoinAmount: decimal.RequireFromString("5000")})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.OrderID != "ORDER-1" {
		t.Errorf("OrderID = %s, want ORDER-1", order.OrderID)
	}

	result, err := client.CaptureOrder(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("CaptureOrder failed: %v", err)
	}
	if result.Status != client.SuccessStatus() {
		t.Errorf("Status = %s, want %s", result.Status, client.SuccessStatus())
	}
	if !result.Metadata.CoinAmount.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("recovered coin amount = %s, want 5000", result.Metadata.CoinAmount)
	}

	// Token is fetched once and cached.
	if got := tokenCalls.Load(); got != 1 {
		t.Errorf("token fetched %d times, want 1", got)
	}
}

func TestPayPalClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	srv := fakePayPal(t, "PENDING", nil)
	defer srv.Close()

	client := NewPayPalClient("client-id", "client-secret", WithBaseURL(srv.URL))

	result, err := client.CaptureOrder(context.Background(), "ORDER-1")
	if err != nil {
		t.Fatalf("CaptureOrder failed: %v", err)
	}
	if result.Status == client.SuccessStatus() {
		t.Error("PENDING must not match the success sentinel")
	}
}

func TestPayPalClient_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			json.NewEncoder(w).Encode(map[string]interface{}{"access_token": "t", "expires_in": 3600})
			return
		}
		http.Error(w, `{"name":"UNPROCESSABLE_ENTITY"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := NewPayPalClient("id", "secret", WithBaseURL(srv.URL))

	_, err := client.CreateOrder(context.Background(), decimal.New(1, 0), "EUR", Metadata{})
	if err == nil {
		t.Fatal("expected error on HTTP 422")
	}
}
