package album

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestPhotos_PassesQueryAndBody(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"albumId":5,"id":201}]`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/photos?_limit=2", Timeout: time.Second}
	b, err := c.Photos(context.Background(), url.Values{"albumId": {"5"}})
	if err != nil {
		t.Fatalf("Photos: %v", err)
	}
	if string(b) != `[{"albumId":5,"id":201}]` {
		t.Fatalf("body=%s", b)
	}
	if gotQuery.Get("albumId") != "5" || gotQuery.Get("_limit") != "2" {
		t.Fatalf("query=%v", gotQuery)
	}
}

func TestPhotos_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr func(error) bool
	}{
		{
			name:   "not found",
			status: http.StatusNotFound,
			body:   `{}`,
			wantErr: func(err error) bool {
				var se *StatusError
				return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
			},
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    `oops`,
			wantErr: func(err error) bool { return errors.Is(err, ErrUpstream) },
		},
		{
			name:    "invalid json",
			status:  http.StatusOK,
			body:    `<html>`,
			wantErr: func(err error) bool { return errors.Is(err, ErrUpstream) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := &Client{BaseURL: srv.URL}
			_, err := c.Photos(context.Background(), url.Values{"id": {"1"}})
			if err == nil || !tt.wantErr(err) {
				t.Fatalf("err=%v", err)
			}
			if !errors.Is(err, ErrUpstream) {
				t.Fatalf("err=%v should match ErrUpstream", err)
			}
		})
	}
}

func TestPhotos_NotConfigured(t *testing.T) {
	c := &Client{}
	if _, err := c.Photos(context.Background(), nil); !errors.Is(err, ErrUpstream) {
		t.Fatalf("err=%v want ErrUpstream", err)
	}
}

func TestPhotos_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := &Client{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}
	_, err := c.Photos(context.Background(), nil)
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v want upstream deadline", err)
	}
}
