package gistsync

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, gistID string) *GistClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewGistClient(context.Background(), GistOptions{
		Token:    "ghp_test",
		FileName: "prompts.toml",
		GistID:   gistID,
		BaseURL:  srv.URL,
	})
	if err != nil {
		t.Fatalf("NewGistClient: %v", err)
	}
	return c
}

func TestGistClientGet(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/gists/abc" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer ghp_test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"id":"abc","updated_at":"2024-01-02T03:04:05Z","files":{"prompts.toml":{"content":"[[prompts]]\n"}}}`))
	}, "abc")

	remote, err := c.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if remote.Content != "[[prompts]]\n" {
		t.Errorf("content = %q", remote.Content)
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC); !remote.UpdatedAt.Equal(want) {
		t.Errorf("updated_at = %v, want %v", remote.UpdatedAt, want)
	}
}

func TestGistClientGetMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"abc","updated_at":"2024-01-02T03:04:05Z","files":{"other.toml":{"content":""}}}`))
	}, "abc")
	if _, err := c.Get(context.Background()); err == nil || !strings.Contains(err.Error(), "prompts.toml") {
		t.Fatalf("Get err = %v", err)
	}
}

func TestGistClientGetWithoutID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}, "")
	if _, err := c.Get(context.Background()); !errors.Is(err, ErrNoGist) {
		t.Fatalf("Get err = %v, want ErrNoGist", err)
	}
}

func TestGistClientHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	}, "abc")
	_, err := c.Get(context.Background())
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("Get err = %v, want a 404 error", err)
	}
}

func TestGistClientUploadCreatesThenUpdates(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		var req gistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if req.Description != gistDescription {
			t.Errorf("description = %q", req.Description)
		}
		if req.Files["prompts.toml"].Content != "data" {
			t.Errorf("files = %+v", req.Files)
		}
		switch r.Method {
		case http.MethodPost:
			if req.Public == nil || *req.Public {
				t.Errorf("public = %v, want false", req.Public)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"new1"}`))
		case http.MethodPatch:
			if req.Public != nil {
				t.Errorf("update must not change visibility")
			}
			w.Write([]byte(`{"id":"new1"}`))
		}
	}, "")

	id, err := c.Upload(context.Background(), "data")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "new1" || c.GistID() != "new1" {
		t.Fatalf("created id = %q, client id = %q", id, c.GistID())
	}
	id, err = c.Upload(context.Background(), "data")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if id != "" {
		t.Fatalf("update returned id %q", id)
	}
	want := []string{"POST /gists", "PATCH /gists/new1"}
	if strings.Join(methods, ",") != strings.Join(want, ",") {
		t.Fatalf("requests = %v, want %v", methods, want)
	}
}

func TestNewGistClientRequiresToken(t *testing.T) {
	if _, err := NewGistClient(context.Background(), GistOptions{FileName: "p.toml"}); err == nil {
		t.Fatal("expected error without token")
	}
	if _, err := NewGistClient(context.Background(), GistOptions{Token: "t"}); err == nil {
		t.Fatal("expected error without file name")
	}
}
