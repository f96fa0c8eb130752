package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/farm-payroll/internal/model"
)

func TestDeleteAccount_OK(t *testing.T) {
	id := uuid.New()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/admin/users/"+id.String() {
			t.Fatalf("path = %s, want /admin/users/%s", r.URL.Path, id)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer service-key" {
			t.Fatalf("authorization = %q, want bearer service key", got)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Fatalf("apikey = %q, want service-key", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewClient(ts.URL+"/", "service-key")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.DeleteAccount(ctx, id); err != nil {
		t.Fatalf("DeleteAccount error: %v", err)
	}
}

func TestDeleteAccount_NotFoundIsSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := client.DeleteAccount(ctx, uuid.New()); err != nil {
		t.Fatalf("DeleteAccount error: %v", err)
	}
}

func TestDeleteAccount_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, "key")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := client.DeleteAccount(ctx, uuid.New())
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if !errors.Is(err, model.ErrDependencyFailure) {
		t.Fatalf("expected ErrDependencyFailure, got %v", err)
	}
}

func TestDeleteAccount_NotConfigured(t *testing.T) {
	var client *Client

	err := client.DeleteAccount(context.Background(), uuid.New())
	if !errors.Is(err, model.ErrDependencyFailure) {
		t.Fatalf("expected ErrDependencyFailure, got %v", err)
	}
}
