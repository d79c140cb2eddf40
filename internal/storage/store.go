// Package storage persists prompts in a TOML file.
package storage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"github.com/moasq/promptheus/internal/prompt"
)

// ErrNotFound is returned when no prompt matches an identifier.
var ErrNotFound = errors.New("prompt not found")

// Sort orders understood by Search.
const (
	SortRecency     = "recency"
	SortTitle       = "title"
	SortDescription = "description"
	SortUpdated     = "updated"
)

// Options tunes search behaviour.
type Options struct {
	SortBy        string
	CaseSensitive bool
	Logger        *zap.Logger
}

// Filter narrows Search results. Empty fields match everything.
type Filter struct {
	Query    string
	Tag      string
	Category string
}

// Stats summarises a prompt library.
type Stats struct {
	TotalPrompts    int            `json:"total_prompts"`
	TotalTags       int            `json:"total_tags"`
	TotalCategories int            `json:"total_categories"`
	TagCounts       map[string]int `json:"tag_counts"`
	CategoryCounts  map[string]int `json:"category_counts"`
}

// Store reads and writes the prompt file.
type Store struct {
	mu     sync.Mutex
	path   string
	opts   Options
	logger *zap.Logger
}

// NewStore creates a store for the prompt file at path.
func NewStore(path string, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, opts: opts, logger: logger}
}

// Path returns the prompt file location.
func (s *Store) Path() string {
	return s.path
}

// Load returns every prompt in file order.
func (s *Store) Load() ([]prompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readUnsafe()
}

// Save replaces the file contents with prompts.
func (s *Store) Save(prompts []prompt.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeUnsafe(prompts)
}

// Add appends p and returns the ID it was stored under, which differs from
// p.ID when another prompt has the same description and creation time.
func (s *Store) Add(p prompt.Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.readUnsafe()
	if err != nil {
		return "", err
	}
	prompts = append(prompts, p)
	prompt.AssignIDs(prompts)
	if err := s.writeUnsafe(prompts); err != nil {
		return "", err
	}
	return prompts[len(prompts)-1].ID, nil
}

// Update replaces the prompt with the same ID.
func (s *Store) Update(p prompt.Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.readUnsafe()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(prompts, func(q prompt.Prompt) bool { return q.ID == p.ID })
	if i < 0 {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	prompts[i] = p
	return s.writeUnsafe(prompts)
}

// Delete removes the prompts with the given IDs and returns them. It fails
// with ErrNotFound when none of the IDs exist.
func (s *Store) Delete(ids ...string) ([]prompt.Prompt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.readUnsafe()
	if err != nil {
		return nil, err
	}
	var kept, removed []prompt.Prompt
	for _, p := range prompts {
		if slices.Contains(ids, p.ID) {
			removed = append(removed, p)
			continue
		}
		kept = append(kept, p)
	}
	if len(removed) == 0 {
		return nil, ErrNotFound
	}
	return removed, s.writeUnsafe(kept)
}

// Find resolves identifier as a full ID, an ID prefix of at least four
// characters, or a description (exact first, then case-insensitive).
func (s *Store) Find(identifier string) (prompt.Prompt, error) {
	prompts, err := s.Load()
	if err != nil {
		return prompt.Prompt{}, err
	}
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return prompt.Prompt{}, ErrNotFound
	}

	matchers := []func(prompt.Prompt) bool{
		func(p prompt.Prompt) bool { return p.ID == identifier },
		func(p prompt.Prompt) bool { return p.Description == identifier },
		func(p prompt.Prompt) bool { return strings.EqualFold(p.Description, identifier) },
		func(p prompt.Prompt) bool { return len(identifier) >= 4 && strings.HasPrefix(p.ID, identifier) },
	}
	for _, match := range matchers {
		if i := slices.IndexFunc(prompts, match); i >= 0 {
			return prompts[i], nil
		}
	}
	return prompt.Prompt{}, fmt.Errorf("%w: %s", ErrNotFound, identifier)
}

// Search returns the prompts matching f in the configured sort order.
func (s *Store) Search(f Filter) ([]prompt.Prompt, error) {
	prompts, err := s.Load()
	if err != nil {
		return nil, err
	}

	fold := func(v string) string {
		if s.opts.CaseSensitive {
			return v
		}
		return strings.ToLower(v)
	}
	query := fold(f.Query)

	var out []prompt.Prompt
	for _, p := range prompts {
		if f.Tag != "" && !p.HasTag(f.Tag) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if query != "" && !matchesQuery(p, query, fold) {
			continue
		}
		out = append(out, p)
	}
	sortPrompts(out, s.opts.SortBy)
	return out, nil
}

func matchesQuery(p prompt.Prompt, query string, fold func(string) string) bool {
	if strings.Contains(fold(p.Description), query) || strings.Contains(fold(p.Content), query) {
		return true
	}
	return slices.ContainsFunc(p.Tags, func(t string) bool {
		return strings.Contains(fold(t), query)
	})
}

func sortPrompts(prompts []prompt.Prompt, by string) {
	switch by {
	case SortTitle, SortDescription:
		slices.SortStableFunc(prompts, func(a, b prompt.Prompt) int {
			return strings.Compare(a.Description, b.Description)
		})
	case SortUpdated:
		slices.SortStableFunc(prompts, func(a, b prompt.Prompt) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	default:
		slices.SortStableFunc(prompts, func(a, b prompt.Prompt) int {
			return b.CreatedAt.Compare(a.CreatedAt.Time)
		})
	}
}

// Tags returns the distinct tags in sorted order.
func (s *Store) Tags() ([]string, error) {
	prompts, err := s.Load()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var tags []string
	for _, p := range prompts {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				tags = append(tags, t)
			}
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// Categories returns the distinct non-empty categories in sorted order.
func (s *Store) Categories() ([]string, error) {
	prompts, err := s.Load()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var cats []string
	for _, p := range prompts {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			cats = append(cats, p.Category)
		}
	}
	sort.Strings(cats)
	return cats, nil
}

// Stats counts prompts, tags and categories.
func (s *Store) Stats() (Stats, error) {
	prompts, err := s.Load()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		TotalPrompts:   len(prompts),
		TagCounts:      map[string]int{},
		CategoryCounts: map[string]int{},
	}
	for _, p := range prompts {
		st.TotalTags += len(p.Tags)
		for _, t := range p.Tags {
			st.TagCounts[t]++
		}
		if p.Category != "" {
			st.TotalCategories++
			st.CategoryCounts[p.Category]++
		}
	}
	return st, nil
}

// LineOf returns the 1-based line of the [[prompts]] header for the prompt
// with the given description, for opening an editor at it.
func (s *Store) LineOf(description string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read prompt file: %w", err)
	}

	header := 0
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "[[prompts]]" {
			header = n
			continue
		}
		if header == 0 || !strings.HasPrefix(line, "Description") {
			continue
		}
		var kv struct{ Description string }
		if err := toml.Unmarshal([]byte(line), &kv); err == nil && kv.Description == description {
			return header, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("failed to scan prompt file: %w", err)
	}
	return 0, fmt.Errorf("%w: %s", ErrNotFound, description)
}

// ModTime returns when the prompt file was last written.
func (s *Store) ModTime() (time.Time, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Raw returns the file contents as stored.
func (s *Store) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUnsafe(); err != nil {
		return nil, err
	}
	return os.ReadFile(s.path)
}

// Replace overwrites the file with data after checking that it parses.
func (s *Store) Replace(data []byte) error {
	if _, err := Unmarshal(data); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Marshal encodes prompts in the prompt file format.
func Marshal(prompts []prompt.Prompt) ([]byte, error) {
	if prompts == nil {
		prompts = []prompt.Prompt{}
	}
	for i := range prompts {
		if prompts[i].Tags == nil {
			prompts[i].Tags = []string{}
		}
	}
	data, err := toml.Marshal(prompt.Collection{Prompts: prompts})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prompts: %w", err)
	}
	return data, nil
}

// Unmarshal decodes the prompt file format and assigns IDs.
func Unmarshal(data []byte) ([]prompt.Prompt, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var c prompt.Collection
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file: %w", err)
	}
	prompt.AssignIDs(c.Prompts)
	for i := range c.Prompts {
		c.Prompts[i].UpdatedAt = c.Prompts[i].CreatedAt.Time
	}
	return c.Prompts, nil
}

func (s *Store) ensureUnsafe() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat prompt file: %w", err)
	}
	s.logger.Debug("creating prompt file", zap.String("path", s.path))
	return s.writeUnsafe(nil)
}

func (s *Store) readUnsafe() ([]prompt.Prompt, error) {
	if err := s.ensureUnsafe(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	prompts, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(s.path); err == nil {
		for i := range prompts {
			if prompts[i].UpdatedAt.IsZero() {
				prompts[i].UpdatedAt = info.ModTime()
			}
		}
	}
	s.logger.Debug("loaded prompts", zap.String("path", s.path), zap.Int("count", len(prompts)))
	return prompts, nil
}

func (s *Store) writeUnsafe(prompts []prompt.Prompt) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := Marshal(prompts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prompt file: %w", err)
	}
	s.logger.Debug("saved prompts", zap.String("path", s.path), zap.Int("count", len(prompts)))
	return nil
}
