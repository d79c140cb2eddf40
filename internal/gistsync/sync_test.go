package gistsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moasq/promptheus/internal/prompt"
	"github.com/moasq/promptheus/internal/storage"
)

type fakeClient struct {
	remote   Remote
	getErr   error
	createID string
	uploads  []string
}

func (f *fakeClient) Get(context.Context) (Remote, error) {
	return f.remote, f.getErr
}

func (f *fakeClient) Upload(_ context.Context, content string) (string, error) {
	f.uploads = append(f.uploads, content)
	id := f.createID
	f.createID = ""
	return id, nil
}

var (
	older = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func localStore(t *testing.T, modTime time.Time, descriptions ...string) *storage.Store {
	t.Helper()
	s := storage.NewStore(filepath.Join(t.TempDir(), "prompts.toml"), storage.Options{})
	for _, d := range descriptions {
		if _, err := s.Add(prompt.New(d, "content of "+d)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Load(); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(s.Path(), modTime, modTime); err != nil {
		t.Fatal(err)
	}
	return s
}

func remoteWith(t *testing.T, updated time.Time, descriptions ...string) Remote {
	t.Helper()
	var prompts []prompt.Prompt
	for _, d := range descriptions {
		prompts = append(prompts, prompt.New(d, "remote "+d))
	}
	data, err := storage.Marshal(prompts)
	if err != nil {
		t.Fatal(err)
	}
	return Remote{Content: string(data), UpdatedAt: updated}
}

func loaded(t *testing.T, s *storage.Store) []string {
	t.Helper()
	prompts, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, p := range prompts {
		out = append(out, p.Description)
	}
	return out
}

func TestShouldSync(t *testing.T) {
	tests := []struct {
		local, remote time.Time
		force         bool
		want          Direction
	}{
		{newer, older, false, Upload},
		{older, newer, false, Download},
		{older, older, false, None},
		{older, newer, true, Upload},
		{newer, older, true, Upload},
	}
	for _, tt := range tests {
		if got := ShouldSync(tt.local, tt.remote, tt.force); got != tt.want {
			t.Errorf("ShouldSync(%v, %v, %v) = %v, want %v", tt.local, tt.remote, tt.force, got, tt.want)
		}
	}
}

func TestSyncDownloadsNewerRemote(t *testing.T) {
	s := localStore(t, older, "local")
	client := &fakeClient{remote: remoteWith(t, newer, "r1", "r2")}

	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Direction != Download || res.Prompts != 2 || res.Overridden {
		t.Fatalf("result = %+v", res)
	}
	if got := loaded(t, s); len(got) != 2 {
		t.Fatalf("local after download = %v", got)
	}
	if len(client.uploads) != 0 {
		t.Fatalf("unexpected uploads %d", len(client.uploads))
	}
}

func TestSyncUploadsNewerLocal(t *testing.T) {
	s := localStore(t, newer, "local")
	client := &fakeClient{remote: remoteWith(t, older, "r1")}

	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Direction != Upload || res.Prompts != 1 {
		t.Fatalf("result = %+v", res)
	}
	uploaded, err := storage.Unmarshal([]byte(client.uploads[0]))
	if err != nil || len(uploaded) != 1 || uploaded[0].Description != "local" {
		t.Fatalf("uploaded %v, %v", uploaded, err)
	}
}

func TestSyncFlagsOverrideDirection(t *testing.T) {
	s := localStore(t, older, "local")
	client := &fakeClient{remote: remoteWith(t, newer, "r1")}
	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{Upload: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Direction != Upload || !res.Overridden {
		t.Fatalf("upload flag result = %+v", res)
	}

	s = localStore(t, newer, "local")
	client = &fakeClient{remote: remoteWith(t, older, "r1")}
	res, err = NewSyncer(s, client, nil).Sync(context.Background(), Options{Download: true})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.Direction != Download || !res.Overridden {
		t.Fatalf("download flag result = %+v", res)
	}
}

func TestSyncForceUploads(t *testing.T) {
	s := localStore(t, older, "local")
	client := &fakeClient{remote: remoteWith(t, newer, "r1")}
	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{Force: true})
	if err != nil || res.Direction != Upload || res.Overridden {
		t.Fatalf("Sync = %+v, %v", res, err)
	}
}

func TestSyncInSync(t *testing.T) {
	s := localStore(t, older, "local")
	client := &fakeClient{remote: remoteWith(t, older, "local")}
	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{})
	if err != nil || res.Direction != None {
		t.Fatalf("Sync = %+v, %v", res, err)
	}
}

func TestSyncCreatesGist(t *testing.T) {
	s := localStore(t, older, "local")
	client := &fakeClient{getErr: ErrNoGist, createID: "g1"}
	res, err := NewSyncer(s, client, nil).Sync(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.CreatedGistID != "g1" || res.Direction != Upload {
		t.Fatalf("result = %+v", res)
	}
}

func TestPush(t *testing.T) {
	s := localStore(t, older)
	client := &fakeClient{}
	res, err := NewSyncer(s, client, nil).Push(context.Background())
	if err != nil || res.Direction != None || len(client.uploads) != 0 {
		t.Fatalf("empty push = %+v, %v, uploads %d", res, err, len(client.uploads))
	}

	s = localStore(t, older, "a", "b")
	res, err = NewSyncer(s, client, nil).Push(context.Background())
	if err != nil || res.Direction != Upload || res.Prompts != 2 {
		t.Fatalf("push = %+v, %v", res, err)
	}
}

func TestAutoSyncRestoresMissingFile(t *testing.T) {
	s := storage.NewStore(filepath.Join(t.TempDir(), "prompts.toml"), storage.Options{})
	client := &fakeClient{remote: remoteWith(t, older, "r1")}
	res, err := NewSyncer(s, client, nil).AutoSync(context.Background())
	if err != nil {
		t.Fatalf("AutoSync: %v", err)
	}
	if res.Direction != Download {
		t.Fatalf("result = %+v", res)
	}
	if got := loaded(t, s); len(got) != 1 || got[0] != "r1" {
		t.Fatalf("local after restore = %v", got)
	}
}

func TestAutoSyncSameTime(t *testing.T) {
	s := localStore(t, older, "local")
	raw, err := s.Raw()
	if err != nil {
		t.Fatal(err)
	}

	client := &fakeClient{remote: Remote{Content: string(raw), UpdatedAt: older}}
	res, err := NewSyncer(s, client, nil).AutoSync(context.Background())
	if err != nil || res.Direction != None {
		t.Fatalf("identical content = %+v, %v", res, err)
	}

	client = &fakeClient{remote: remoteWith(t, older, "other")}
	res, err = NewSyncer(s, client, nil).AutoSync(context.Background())
	if err != nil || res.Direction != Upload {
		t.Fatalf("different content = %+v, %v", res, err)
	}
}

func TestNormalize(t *testing.T) {
	if normalize("a = 1\n\n  b = 2  \n") != normalize("a = 1\nb = 2") {
		t.Fatal("normalize should ignore blank lines and indentation")
	}
}
