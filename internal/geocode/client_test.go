package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
)

func TestClientReverse(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("format") != "jsonv2" {
			t.Errorf("missing jsonv2 format param")
		}
		if r.URL.Query().Get("lat") == "" || r.URL.Query().Get("lon") == "" {
			t.Error("missing coordinate params")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "MG Road, Bengaluru, Karnataka, 560001, India",
			"address": {
				"road": "MG Road",
				"suburb": "Shivaji Nagar",
				"city": "Bengaluru",
				"state": "Karnataka",
				"postcode": "560001",
				"country": "India"
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(
		WithBaseURL(server.URL),
		WithUserAgent("swiftstore-test"),
		WithHTTPClient(server.Client()),
	)

	address, err := client.Reverse(context.Background(), 12.9757, 77.6050)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if gotUserAgent != "swiftstore-test" {
		t.Fatalf("unexpected user agent %q", gotUserAgent)
	}
	if address.City != "Bengaluru" || address.Road != "MG Road" {
		t.Fatalf("unexpected address: %+v", address)
	}
	if address.PostalCode != "560001" {
		t.Fatalf("unexpected postal code %q", address.PostalCode)
	}
}

func TestClientReverseFallsBackToTown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"display_name": "Ooty", "address": {"town": "Ooty", "state": "Tamil Nadu"}}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	address, err := client.Reverse(context.Background(), 11.4102, 76.6950)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if address.City != "Ooty" {
		t.Fatalf("expected town fallback, got %q", address.City)
	}
}

func TestClientReverseUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := client.Reverse(context.Background(), 12.9757, 77.6050)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientReverseInvalidCoordinates(t *testing.T) {
	client := NewClient()
	_, err := client.Reverse(context.Background(), 91.0, 0.0)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
