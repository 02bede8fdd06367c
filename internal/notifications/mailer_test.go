package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/config"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
)

func TestClientSend(t *testing.T) {
	var gotAuth string
	var gotBody mailSendRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(config.MailConfig{
		BaseURL:     server.URL,
		APIKey:      "test-key",
		DefaultFrom: "noreply@swiftstore.example",
	}, WithHTTPClient(server.Client()))

	err := client.Send(context.Background(), Email{
		To:      "asha@example.com",
		Subject: "Order received",
		Body:    "We received your order.",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if len(gotBody.Personalizations) != 1 || gotBody.Personalizations[0].To[0].Email != "asha@example.com" {
		t.Fatalf("unexpected personalizations: %+v", gotBody.Personalizations)
	}
	if gotBody.From.Email != "noreply@swiftstore.example" {
		t.Fatalf("unexpected from: %+v", gotBody.From)
	}
	if gotBody.Subject != "Order received" {
		t.Fatalf("unexpected subject %q", gotBody.Subject)
	}
	if len(gotBody.Content) != 1 || gotBody.Content[0].Type != "text/plain" {
		t.Fatalf("unexpected content: %+v", gotBody.Content)
	}
}

func TestClientSendUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"bad key"}]}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.MailConfig{BaseURL: server.URL, APIKey: "bad"}, WithHTTPClient(server.Client()))
	err := client.Send(context.Background(), Email{To: "asha@example.com", Subject: "x", Body: "y"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestClientSendMissingRecipient(t *testing.T) {
	client := NewClient(config.MailConfig{APIKey: "key"})
	err := client.Send(context.Background(), Email{Subject: "x", Body: "y"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
