package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const maxHistoryDays = 30

// PromptUsage counts how often a prompt was executed.
type PromptUsage struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Count       int       `json:"count"`
	LastUsed    time.Time `json:"last_used"`
}

// DailyUsage counts executions on one calendar day.
type DailyUsage struct {
	Date       string `json:"date"` // YYYY-MM-DD
	Executions int    `json:"executions"`
}

type usageFile struct {
	Prompts map[string]*PromptUsage `json:"prompts"`
	Daily   []DailyUsage            `json:"daily"`
}

// UsageStore records prompt executions next to the prompt file. Recording
// is best effort; a broken usage file never fails a command.
type UsageStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewUsageStore creates a usage store in dir.
func NewUsageStore(dir string) *UsageStore {
	return &UsageStore{dir: dir, now: time.Now}
}

func (s *UsageStore) filePath() string {
	return filepath.Join(s.dir, "usage.json")
}

// Record counts one execution of the prompt.
func (s *UsageStore) Record(id, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.loadUnsafe()
	now := s.now()

	u := f.Prompts[id]
	if u == nil {
		u = &PromptUsage{ID: id}
		f.Prompts[id] = u
	}
	u.Description = description
	u.Count++
	u.LastUsed = now

	today := now.Format("2006-01-02")
	if n := len(f.Daily); n > 0 && f.Daily[n-1].Date == today {
		f.Daily[n-1].Executions++
	} else {
		f.Daily = append(f.Daily, DailyUsage{Date: today, Executions: 1})
	}
	if len(f.Daily) > maxHistoryDays {
		f.Daily = f.Daily[len(f.Daily)-maxHistoryDays:]
	}

	s.saveUnsafe(f)
}

// Top returns up to n prompts by execution count, most used first.
func (s *UsageStore) Top(n int) []PromptUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.loadUnsafe()
	out := make([]PromptUsage, 0, len(f.Prompts))
	for _, u := range f.Prompts {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// History returns the last days of executions, most recent first.
func (s *UsageStore) History(days int) []DailyUsage {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.loadUnsafe().Daily
	if days <= 0 || days > len(history) {
		days = len(history)
	}
	result := make([]DailyUsage, 0, days)
	for i := len(history) - 1; i >= len(history)-days; i-- {
		result = append(result, history[i])
	}
	return result
}

// Forget drops the usage of deleted prompts.
func (s *UsageStore) Forget(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.loadUnsafe()
	for _, id := range ids {
		delete(f.Prompts, id)
	}
	s.saveUnsafe(f)
}

func (s *UsageStore) loadUnsafe() usageFile {
	f := usageFile{Prompts: map[string]*PromptUsage{}}
	data, err := os.ReadFile(s.filePath())
	if err != nil {
		return f
	}
	if json.Unmarshal(data, &f) != nil || f.Prompts == nil {
		return usageFile{Prompts: map[string]*PromptUsage{}}
	}
	return f
}

func (s *UsageStore) saveUnsafe(f usageFile) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(s.filePath(), data, 0o644)
}
