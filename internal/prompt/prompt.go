// Package prompt defines the prompt snippet model and its template variables.
package prompt

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimeLayout is the Created_at format in the prompt file.
const TimeLayout = "2006-01-02 15:04:05"

var idNamespace = uuid.MustParse("6f1c1b1e-8d0a-4c5e-9f57-5b0c2f0e7a91")

// Timestamp is a UTC time stored as TimeLayout text. RFC 3339 is accepted
// when reading.
type Timestamp struct {
	time.Time
}

// Now returns the current time truncated to TimeLayout precision.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Second)}
}

func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.UTC().Format(TimeLayout)), nil
}

func (t *Timestamp) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if parsed, err := time.ParseInLocation(TimeLayout, s, time.UTC); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	text, err := t.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", b, err)
	}
	return t.UnmarshalText([]byte(s))
}

// Prompt is one stored snippet.
type Prompt struct {
	ID          string    `toml:"-" json:"id" yaml:"id"`
	Description string    `toml:"Description" json:"description" yaml:"description"`
	Content     string    `toml:"Content" json:"content" yaml:"content"`
	Category    string    `toml:"Category" json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string  `toml:"Tag" json:"tags" yaml:"tags"`
	Output      string    `toml:"Output,omitempty" json:"output,omitempty" yaml:"output,omitempty"`
	CreatedAt   Timestamp `toml:"Created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `toml:"-" json:"-" yaml:"-"`
}

// Collection is the on-disk prompt file.
type Collection struct {
	Prompts []Prompt `toml:"prompts" json:"prompts" yaml:"prompts"`
}

// New returns a prompt stamped with the current time.
func New(description, content string) Prompt {
	now := Now()
	p := Prompt{
		Description: description,
		Content:     content,
		Tags:        []string{},
		CreatedAt:   now,
		UpdatedAt:   now.Time,
	}
	p.ID = StableID(p)
	return p
}

// StableID derives an identifier from the description and creation time so
// that a prompt keeps its ID across loads of a file that does not store it.
func StableID(p Prompt) string {
	return uuid.NewSHA1(idNamespace, []byte(idKey(p))).String()
}

func idKey(p Prompt) string {
	return p.Description + "\x00" + p.CreatedAt.UTC().Format(TimeLayout)
}

// AssignIDs gives every prompt its stable ID. Prompts that share a
// description and creation second are told apart by their order, so the
// first keeps StableID and later ones hash in their ordinal.
func AssignIDs(prompts []Prompt) {
	seen := make(map[string]int, len(prompts))
	for i := range prompts {
		key := idKey(prompts[i])
		n := seen[key]
		seen[key] = n + 1
		if n > 0 {
			key = fmt.Sprintf("%s\x00%d", key, n)
		}
		prompts[i].ID = uuid.NewSHA1(idNamespace, []byte(key)).String()
	}
}

// ShortID is the prefix of the ID shown in listings.
func (p Prompt) ShortID() string {
	if len(p.ID) < 8 {
		return p.ID
	}
	return p.ID[:8]
}

// AddTag appends tag unless it is already present or blank.
func (p *Prompt) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || p.HasTag(tag) {
		return false
	}
	p.Tags = append(p.Tags, tag)
	p.UpdatedAt = time.Now().UTC()
	return true
}

// HasTag reports whether the prompt carries tag.
func (p Prompt) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// ParseTags splits a space or comma separated tag list.
func ParseTags(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []string
	for _, f := range fields {
		f = strings.TrimPrefix(f, "#")
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func (p Prompt) String() string {
	if p.Category != "" {
		return fmt.Sprintf("%s [%s]", p.Description, p.Category)
	}
	return p.Description
}
