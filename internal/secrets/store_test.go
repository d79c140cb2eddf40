package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zalando/go-keyring"
)

func init() {
	// Use mock keychain for all tests, no host keychain needed.
	keyring.MockInit()
}

func TestKeychain_CRUD(t *testing.T) {
	s, ok := openKeychain("promptheus-test")
	if !ok {
		t.Fatal("mock keychain unavailable")
	}

	if _, err := s.Get(GitHubTokenKey); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(GitHubTokenKey, "ghp_test123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	val, err := s.Get(GitHubTokenKey)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "ghp_test123" {
		t.Errorf("got %q, want %q", val, "ghp_test123")
	}
	if err := s.Delete(GitHubTokenKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(GitHubTokenKey); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(GitHubTokenKey); err != nil {
		t.Fatalf("Delete of non-existent key should not error: %v", err)
	}
}

func TestFileStore_CRUD(t *testing.T) {
	dir := t.TempDir()
	s := newFileStore(dir)

	if _, err := s.Get(GitHubTokenKey); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Set(GitHubTokenKey, "ghp_file123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, credentialsFile))
	if err != nil {
		t.Fatalf("stat secrets file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != credentialsMode {
		t.Errorf("file permissions: got %o, want %o", perm, credentialsMode)
	}

	val, err := newFileStore(dir).Get(GitHubTokenKey)
	if err != nil {
		t.Fatalf("Get on new instance failed: %v", err)
	}
	if val != "ghp_file123" {
		t.Errorf("got %q, want %q", val, "ghp_file123")
	}

	if err := s.Delete(GitHubTokenKey); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(GitHubTokenKey); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStore_CorruptFileIsNotOverwritten(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, credentialsFile)
	if err := os.WriteFile(path, []byte("not = [toml"), 0o600); err != nil {
		t.Fatal(err)
	}
	s := newFileStore(dir)
	if _, err := s.Get(GitHubTokenKey); err == nil || IsNotFound(err) {
		t.Fatalf("Get on corrupt file = %v, want parse error", err)
	}
	if err := s.Set("k", "v"); err == nil {
		t.Fatal("Set replaced a corrupt credentials file")
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "not = [toml" {
		t.Fatalf("corrupt file rewritten: %q", raw)
	}
}

func TestFileStore_RejectsSharedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, credentialsFile)
	if err := os.WriteFile(path, []byte("[secrets]\n'github/token' = 'x'\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := newFileStore(dir).Get(GitHubTokenKey)
	if err == nil || !strings.Contains(err.Error(), "chmod 600") {
		t.Fatalf("Get = %v, want permission error", err)
	}
}

func TestFileStore_DeleteLastKeyRemovesFile(t *testing.T) {
	dir := t.TempDir()
	s := newFileStore(dir)
	if err := s.Set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("b", "2"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete("a"); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Get("b"); err != nil || v != "2" {
		t.Fatalf("Get(b) = %q, %v", v, err)
	}
	if err := s.Delete("b"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, credentialsFile)); !os.IsNotExist(err) {
		t.Fatalf("credentials file still present: %v", err)
	}
	if err := s.Delete("b"); err != nil {
		t.Fatalf("Delete of missing key: %v", err)
	}
}

func TestNew_UsesKeychainWhenAvailable(t *testing.T) {
	s := New(t.TempDir())
	if got := Describe(s); got != "OS keychain (promptheus)" {
		t.Fatalf("Describe = %q", got)
	}
}

func TestGitHubToken(t *testing.T) {
	t.Setenv("PROMPTHEUS_GITHUB_ACCESS_TOKEN", "")
	t.Setenv("PET_GITHUB_ACCESS_TOKEN", "")
	s := newFileStore(t.TempDir())

	if _, _, err := GitHubToken(s); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := s.Set(GitHubTokenKey, "from-store"); err != nil {
		t.Fatal(err)
	}
	tok, src, err := GitHubToken(s)
	if err != nil || tok != "from-store" || src != "store" {
		t.Fatalf("GitHubToken = %q, %q, %v", tok, src, err)
	}

	t.Setenv("PET_GITHUB_ACCESS_TOKEN", "pet")
	if tok, src, _ := GitHubToken(s); tok != "pet" || src != "PET_GITHUB_ACCESS_TOKEN" {
		t.Fatalf("legacy env = %q, %q", tok, src)
	}

	t.Setenv("PROMPTHEUS_GITHUB_ACCESS_TOKEN", "main")
	if tok, _, _ := GitHubToken(s); tok != "main" {
		t.Fatalf("primary env = %q", tok)
	}
}
