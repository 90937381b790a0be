// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package paginate splits result slices into fixed-size pages for the API
// layer. Splitting is purely positional; group labels annotate pages for
// display and never change the split.
package paginate

// DefaultSize is the page size used when the caller passes size <= 0.
const DefaultSize = 10

// Page is one window over a result slice. Number is 1-based.
type Page[T any] struct {
	Items      []T      `json:"items"`
	Number     int      `json:"number"`
	Size       int      `json:"size"`
	TotalItems int      `json:"total_items"`
	TotalPages int      `json:"total_pages"`
	Labels     []string `json:"labels,omitempty"`
}

// TotalPages returns the number of pages needed for total items at the
// given size. Zero items yield zero pages.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Of returns the requested 1-based page over items. A page number outside
// [1, TotalPages] returns an empty page with the totals still filled in,
// so callers can render "page N of M" without a second call. The last
// page holds the remainder.
func Of[T any](items []T, number, size int) Page[T] {
	if size <= 0 {
		size = DefaultSize
	}

	p := Page[T]{
		Number:     number,
		Size:       size,
		TotalItems: len(items),
		TotalPages: TotalPages(len(items), size),
	}

	if number < 1 || number > p.TotalPages {
		p.Items = []T{}
		return p
	}

	start := (number - 1) * size
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	p.Items = items[start:end]
	return p
}

// WithLabels annotates a page with the distinct group keys of its items,
// in first-seen order. The key function typically returns a city name.
// Labels are display metadata only.
func WithLabels[T any](p Page[T], key func(T) string) Page[T] {
	seen := make(map[string]struct{}, len(p.Items))
	labels := make([]string, 0, len(p.Items))
	for _, item := range p.Items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		labels = append(labels, k)
	}
	p.Labels = labels
	return p
}
