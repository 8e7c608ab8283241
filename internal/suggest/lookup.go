// Package suggest implements name autocomplete for the add-incident form.
package suggest

import (
	"context"
	"sort"
	"strings"

	"cake-tracker/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// NameSource is satisfied by repository.IncidentsRepository.
type NameSource interface {
	SearchNames(ctx context.Context, fragment string) ([]string, error)
}

// Rank groups names by exact string, counts them, and orders by count
// descending. Ties keep first-seen order. limit <= 0 keeps everything.
func Rank(names []string, limit int) []domain.NameSuggestion {
	index := map[string]int{}
	out := []domain.NameSuggestion{}
	for _, n := range names {
		i, ok := index[n]
		if !ok {
			i = len(out)
			index[n] = i
			out = append(out, domain.NameSuggestion{Name: n})
		}
		out[i].Total++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Lookup 基于存储的姓名模糊搜索
type Lookup struct {
	source NameSource
	limit  int
	group  singleflight.Group
	logger *zap.Logger
}

func NewLookup(source NameSource, limit int, logger *zap.Logger) *Lookup {
	return &Lookup{source: source, limit: limit, logger: logger}
}

// Suggest returns ranked suggestions for a query fragment. Identical
// concurrent queries share one store round trip; each caller still stops
// waiting when its own context is done.
func (l *Lookup) Suggest(ctx context.Context, query string) ([]domain.NameSuggestion, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []domain.NameSuggestion{}, nil
	}

	ch := l.group.DoChan(strings.ToLower(q), func() (any, error) {
		names, err := l.source.SearchNames(context.WithoutCancel(ctx), q)
		if err != nil {
			return nil, err
		}
		return Rank(names, l.limit), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			l.logger.Warn("Name search failed", zap.String("query", q), zap.Error(res.Err))
			return nil, res.Err
		}
		shared := res.Val.([]domain.NameSuggestion)
		return append([]domain.NameSuggestion(nil), shared...), nil
	}
}
