package faceapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/insultr/internal/face"
	"github.com/example/insultr/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		URL:     srv.URL + "/facepp/v3/detect",
		Host:    "faceplusplus-faceplusplus.p.rapidapi.com",
		Key:     "test-key",
		Timeout: 2 * time.Second,
	}, nil, zap.NewNop())
}

func TestDetectSendsFormRequest(t *testing.T) {
	imageURL := "https://cdn.example.com/images/ABC.png?token=a&b=c"
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/facepp/v3/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("unexpected content type %q", ct)
		}
		if r.Header.Get("x-rapidapi-key") != "test-key" || r.Header.Get("x-rapidapi-host") == "" {
			t.Errorf("missing credentials headers: %v", r.Header)
		}
		raw, _ := io.ReadAll(r.Body)
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			t.Errorf("invalid form body: %v", err)
		}
		if values.Get("image_url") != imageURL {
			t.Errorf("unexpected image_url %q", values.Get("image_url"))
		}
		if values.Get("return_attributes") != ReturnAttributes {
			t.Errorf("unexpected return_attributes %q", values.Get("return_attributes"))
		}
		_, _ = w.Write([]byte(`{"faces":[{"attributes":{"age":{"value":29}}}]}`))
	})

	resp, err := client.Detect(context.Background(), "req-1", imageURL)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	first, err := resp.First()
	if err != nil {
		t.Fatalf("expected a face, got %v", err)
	}
	if *first.Attributes.Age.Value != 29 {
		t.Fatalf("unexpected age %d", *first.Attributes.Age.Value)
	}
}

func TestDetectNonSuccessStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"You are not subscribed to this API."}`))
	})

	_, err := client.Detect(context.Background(), "req-2", "https://example.com/a.png")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T (%v)", err, err)
	}
	if statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status %d", statusErr.StatusCode)
	}
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) || opErr.RequestID != "req-2" {
		t.Fatalf("expected OperationError for req-2, got %v", err)
	}
}

func TestDetectMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error_message":"IMAGE_ERROR_UNSUPPORTED_FORMAT"}`))
	})

	_, err := client.Detect(context.Background(), "req-3", "https://example.com/a.png")
	if !errors.Is(err, face.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestDetectEmptyFacesIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"faces":[]}`))
	})

	resp, err := client.Detect(context.Background(), "req-4", "https://example.com/a.png")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if _, err := resp.First(); !errors.Is(err, face.ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}
}

func TestDetectTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Config{URL: srv.URL, Timeout: time.Second}, nil, zap.NewNop())

	_, err := client.Detect(context.Background(), "req-5", "https://example.com/a.png")
	var opErr *logging.OperationError
	if !errors.As(err, &opErr) || opErr.Operation != "faceapi.detect" {
		t.Fatalf("expected faceapi.detect OperationError, got %v", err)
	}
}
