package client

import (
	"context"
	"strings"
)

// Resource describes a listable collection for a Panel: where to fetch it
// and how its rows expose filterable values.
type Resource[T any] struct {
	// Path is the collection endpoint, e.g. "/usuarios".
	Path string
	// SearchValues returns the fields matched by the free-text filter.
	SearchValues func(T) []string
	// ExactValues returns named fields matched exactly by field filters,
	// e.g. {"estado": "true", "rol": "2"}. May be nil.
	ExactValues func(T) map[string]string
}

// Filter is the current state of a panel's filter controls.
type Filter struct {
	Text  string
	Exact map[string]string
}

// Panel is the fetch, filter, render, mutate loop shared by every admin
// list screen. The displayed view is always a pure function of the cached
// collection and the current filter; no row-level state survives a reload.
type Panel[T any] struct {
	api    *Client
	res    Resource[T]
	render func([]T)

	cache  []T
	loaded bool
}

func NewPanel[T any](api *Client, res Resource[T], render func([]T)) *Panel[T] {
	return &Panel[T]{api: api, res: res, render: render}
}

// Load fetches the collection unless a cached copy exists. Mutate and
// Invalidate drop the cache.
func (p *Panel[T]) Load(ctx context.Context) error {
	if p.loaded {
		return nil
	}
	var rows []T
	if err := p.api.Get(ctx, p.res.Path, &rows); err != nil {
		return err
	}
	p.cache = rows
	p.loaded = true
	return nil
}

// Rows returns the cached collection in server order. The slice is a copy;
// mutating it does not touch the cache.
func (p *Panel[T]) Rows() []T {
	return append([]T(nil), p.cache...)
}

// ApplyFilters returns the rows matching the filter without touching the
// cache. The empty filter returns every row in order.
func (p *Panel[T]) ApplyFilters(f Filter) []T {
	view := make([]T, 0, len(p.cache))
	for _, row := range p.cache {
		if p.matches(row, f) {
			view = append(view, row)
		}
	}
	return view
}

func (p *Panel[T]) matches(row T, f Filter) bool {
	if text := strings.ToLower(strings.TrimSpace(f.Text)); text != "" {
		found := false
		for _, value := range p.res.SearchValues(row) {
			if strings.Contains(strings.ToLower(value), text) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Exact) > 0 {
		if p.res.ExactValues == nil {
			return false
		}
		values := p.res.ExactValues(row)
		for field, want := range f.Exact {
			if want == "" {
				continue
			}
			if values[field] != want {
				return false
			}
		}
	}
	return true
}

// Render hands the view to the sink wholesale. Calling it twice with the
// same view is a no-op for the observer.
func (p *Panel[T]) Render(view []T) {
	p.render(view)
}

// Refresh reloads the collection and renders it with the given filter.
func (p *Panel[T]) Refresh(ctx context.Context, f Filter) error {
	if err := p.Load(ctx); err != nil {
		return err
	}
	p.Render(p.ApplyFilters(f))
	return nil
}

// Invalidate drops the cached collection so the next Load refetches.
func (p *Panel[T]) Invalidate() {
	p.cache = nil
	p.loaded = false
}

// Mutate runs a state-changing call. On success the cache is invalidated
// and the panel refreshed; on failure local state is left untouched.
func (p *Panel[T]) Mutate(ctx context.Context, f Filter, action func(context.Context) error) error {
	if err := action(ctx); err != nil {
		return err
	}
	p.Invalidate()
	return p.Refresh(ctx, f)
}
