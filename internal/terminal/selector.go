package terminal

import (
	"context"
	"errors"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"go.uber.org/zap"
)

// BuiltinFinder is the select_cmd value that runs the in-process finder.
const BuiltinFinder = "builtin"

// Selector picks one item from a list, preferring the configured external
// finder and falling back to the arrow-key menu.
type Selector struct {
	Console *Console
	Finder  *FinderBridge
	Command string
	// Preview renders the right-hand pane of the builtin finder.
	Preview func(i int) string
	Logger  *zap.Logger
}

// Choose returns the index of the chosen item, or -1 for an empty success
// such as an empty list or a query nothing matches.
func (s *Selector) Choose(ctx context.Context, title string, items []string, query string) (int, error) {
	if len(items) == 0 {
		return -1, nil
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if s.Command == BuiltinFinder {
		return FuzzyFind(items, query, s.Preview)
	}

	if s.Finder != nil && s.Command != "" {
		res, err := s.Finder.Find(ctx, items, s.Command, query)
		if err != nil {
			return -1, err
		}
		switch res.Status {
		case FindSelected:
			idx := IndexOf(items, res.Selection)
			if idx < 0 {
				logger.Debug("finder returned unknown selection", zap.String("selection", res.Selection))
			}
			return idx, nil
		case FindNoSelection:
			return -1, ErrCancelled
		}
		logger.Debug("falling back to built-in menu", zap.String("command", s.Command))
	}

	if query == "" {
		return s.Console.SelectSingle(title, items)
	}

	var subset []string
	var index []int
	for _, r := range Rank(items, query) {
		if r.Score <= 0 {
			break
		}
		subset = append(subset, items[r.Index])
		index = append(index, r.Index)
	}
	if len(subset) == 0 {
		return -1, nil
	}
	i, err := s.Console.SelectSingle(title, subset)
	if err != nil || i < 0 {
		return -1, err
	}
	return index[i], nil
}

// FuzzyFind runs the in-process fuzzy finder over items.
func FuzzyFind(items []string, query string, preview func(i int) string) (int, error) {
	opts := []fuzzyfinder.Option{fuzzyfinder.WithPromptString("Select prompt> ")}
	if query != "" {
		opts = append(opts, fuzzyfinder.WithQuery(query))
	}
	if preview != nil {
		opts = append(opts, fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i < 0 {
				return ""
			}
			return preview(i)
		}))
	}

	idx, err := fuzzyfinder.Find(items, func(i int) string { return menuLabel(items[i]) }, opts...)
	if errors.Is(err, fuzzyfinder.ErrAbort) {
		return -1, ErrCancelled
	}
	if err != nil {
		return -1, systemError("run builtin finder", err)
	}
	return idx, nil
}
