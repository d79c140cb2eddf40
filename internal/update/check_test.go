package update

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int // sign only
	}{
		{"0.2.0", "0.1.9", 1},
		{"1.0", "1.0.0", 0},
		{"1.2.3-rc1", "1.2.3", 0},
		{"0.9.9", "1.0.0", -1},
		{"", "0.0.1", -1},
	}
	for _, tt := range tests {
		got := compareVersions(tt.a, tt.b)
		if sign(got) != tt.want {
			t.Errorf("compareVersions(%q, %q) = %d, want sign %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func TestReleaseNewer(t *testing.T) {
	if !(Release{Latest: "0.2.0", Current: "0.1.0"}).Newer() {
		t.Error("0.2.0 should be newer than 0.1.0")
	}
	if (Release{Latest: "0.2.0", Current: "dev"}).Newer() {
		t.Error("dev builds should never report an update")
	}
	if (Release{Latest: "0.1.0", Current: "0.1.0"}).Newer() {
		t.Error("same version is not newer")
	}
}

func TestLatest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/moasq/promptheus/releases/latest" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"tag_name":"v0.3.1","html_url":"https://example.test/r/0.3.1"}`))
	}))
	defer srv.Close()

	c := NewChecker("moasq", "promptheus")
	c.BaseURL = srv.URL
	rel, err := c.Latest(t.Context(), "v0.3.0")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	want := Release{Latest: "0.3.1", Current: "0.3.0", URL: "https://example.test/r/0.3.1"}
	if rel != want {
		t.Fatalf("Latest = %+v, want %+v", rel, want)
	}
	if !rel.Newer() {
		t.Fatal("expected an update")
	}
}

func TestLatestBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewChecker("moasq", "promptheus")
	c.BaseURL = srv.URL
	if _, err := c.Latest(t.Context(), "0.1.0"); err == nil {
		t.Fatal("expected an error for 403")
	}
}
