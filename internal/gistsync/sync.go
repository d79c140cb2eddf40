// Package gistsync keeps the local prompt file and a GitHub gist in step.
package gistsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/moasq/promptheus/internal/storage"
)

// Direction is the way content moves during a sync.
type Direction int

const (
	None Direction = iota
	Upload
	Download
)

func (d Direction) String() string {
	switch d {
	case Upload:
		return "upload"
	case Download:
		return "download"
	default:
		return "none"
	}
}

// ShouldSync picks the direction from the two modification times.
// force always uploads.
func ShouldSync(local, remote time.Time, force bool) Direction {
	switch {
	case force:
		return Upload
	case local.After(remote):
		return Upload
	case remote.After(local):
		return Download
	default:
		return None
	}
}

// Options are the user's sync flags.
type Options struct {
	Upload   bool
	Download bool
	Force    bool
}

// Result describes what a sync did.
type Result struct {
	Direction Direction
	// Overridden is set when a flag reversed the direction the timestamps chose.
	Overridden bool
	// CreatedGistID is set when the upload created a new gist.
	CreatedGistID string
	// Prompts is the number of prompts transferred.
	Prompts int
}

// Syncer moves the prompt file between the store and a remote client.
type Syncer struct {
	store  *storage.Store
	client Client
	logger *zap.Logger
	now    func() time.Time
}

// NewSyncer creates a syncer for store.
func NewSyncer(store *storage.Store, client Client, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{store: store, client: client, logger: logger, now: time.Now}
}

// Sync compares timestamps and moves content the newer way. An explicit
// download flag wins over a computed upload and vice versa.
func (s *Syncer) Sync(ctx context.Context, opts Options) (Result, error) {
	remote, err := s.client.Get(ctx)
	if errors.Is(err, ErrNoGist) {
		return s.upload(ctx)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch remote content: %w", err)
	}

	local := s.localTime()
	dir := ShouldSync(local, remote.UpdatedAt, opts.Force)
	s.logger.Debug("sync direction",
		zap.Time("local", local),
		zap.Time("remote", remote.UpdatedAt),
		zap.Stringer("direction", dir))

	switch dir {
	case Upload:
		if opts.Download {
			res, err := s.download(remote)
			res.Overridden = true
			return res, err
		}
		return s.upload(ctx)
	case Download:
		if opts.Upload {
			res, err := s.upload(ctx)
			res.Overridden = true
			return res, err
		}
		return s.download(remote)
	default:
		return Result{Direction: None}, nil
	}
}

// Push uploads the local prompts regardless of timestamps. Nothing is sent
// when there are no local prompts.
func (s *Syncer) Push(ctx context.Context) (Result, error) {
	prompts, err := s.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load local prompts: %w", err)
	}
	if len(prompts) == 0 {
		return Result{Direction: None}, nil
	}
	return s.upload(ctx)
}

// AutoSync runs after a mutating command. A missing or empty local file is
// restored from the remote; otherwise the newer side wins, and when both
// times match but the content differs the local file is uploaded.
func (s *Syncer) AutoSync(ctx context.Context) (Result, error) {
	remote, err := s.client.Get(ctx)
	if errors.Is(err, ErrNoGist) {
		return s.upload(ctx)
	}
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch remote content: %w", err)
	}

	local, err := s.store.ModTime()
	if err != nil {
		return s.download(remote)
	}
	raw, err := s.store.Raw()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read local prompts: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return s.download(remote)
	}

	switch ShouldSync(local, remote.UpdatedAt, false) {
	case Upload:
		return s.upload(ctx)
	case Download:
		return s.download(remote)
	}

	remotePrompts, err := storage.Unmarshal([]byte(remote.Content))
	if err != nil {
		s.logger.Debug("remote content unparsable, uploading local", zap.Error(err))
		return s.upload(ctx)
	}
	formatted, err := storage.Marshal(remotePrompts)
	if err != nil || normalize(string(raw)) != normalize(string(formatted)) {
		return s.upload(ctx)
	}
	return Result{Direction: None}, nil
}

func (s *Syncer) localTime() time.Time {
	t, err := s.store.ModTime()
	if err != nil {
		return s.now()
	}
	return t
}

func (s *Syncer) upload(ctx context.Context) (Result, error) {
	prompts, err := s.store.Load()
	if err != nil {
		return Result{}, fmt.Errorf("failed to load local prompts: %w", err)
	}
	data, err := storage.Marshal(prompts)
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize local prompts: %w", err)
	}
	id, err := s.client.Upload(ctx, string(data))
	if err != nil {
		return Result{}, fmt.Errorf("failed to upload to remote: %w", err)
	}
	return Result{Direction: Upload, CreatedGistID: id, Prompts: len(prompts)}, nil
}

func (s *Syncer) download(remote Remote) (Result, error) {
	if err := s.store.Replace([]byte(remote.Content)); err != nil {
		return Result{}, fmt.Errorf("failed to save remote prompts locally: %w", err)
	}
	prompts, err := storage.Unmarshal([]byte(remote.Content))
	if err != nil {
		return Result{}, err
	}
	return Result{Direction: Download, Prompts: len(prompts)}, nil
}

// normalize drops blank lines and surrounding whitespace so formatting
// differences do not count as changes.
func normalize(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
