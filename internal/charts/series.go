package charts

import (
	"cmp"
	"slices"
)

// Kind is the chart type a series was designed for. The terminal renderer
// draws every kind as bars; pie and doughnut series also show shares.
type Kind string

// Chart kinds.
const (
	KindBar      Kind = "bar"
	KindLine     Kind = "line"
	KindPie      Kind = "pie"
	KindDoughnut Kind = "doughnut"
)

// Series is one chart: parallel labels and values.
type Series struct {
	Title  string    `json:"title"`
	Kind   Kind      `json:"kind"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	// Currency marks values as money for formatting.
	Currency bool `json:"currency,omitempty"`
	// Percent marks values as percentages for formatting.
	Percent bool `json:"percent,omitempty"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Labels)
}

// Empty reports whether the series has no points.
func (s Series) Empty() bool {
	return len(s.Labels) == 0
}

// Total sums all values.
func (s Series) Total() float64 {
	var total float64
	for _, v := range s.Values {
		total += v
	}
	return total
}

// Max returns the largest value, or 0 for an empty series.
func (s Series) Max() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return slices.Max(s.Values)
}

// counter accumulates values per label.
type counter map[string]float64

func (c counter) add(label string, v float64) {
	c[label] += v
}

// sorted returns a series with labels in ascending order.
func (c counter) sorted(title string, kind Kind) Series {
	labels := make([]string, 0, len(c))
	for k := range c {
		labels = append(labels, k)
	}
	slices.Sort(labels)
	return c.series(title, kind, labels)
}

// top returns the n largest entries, ties broken by label.
func (c counter) top(title string, kind Kind, n int) Series {
	labels := make([]string, 0, len(c))
	for k := range c {
		labels = append(labels, k)
	}
	slices.SortFunc(labels, func(a, b string) int {
		if d := cmp.Compare(c[b], c[a]); d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	if n > 0 && len(labels) > n {
		labels = labels[:n]
	}
	return c.series(title, kind, labels)
}

// ordered returns a series using the given label order, including zeros.
func (c counter) ordered(title string, kind Kind, labels []string) Series {
	return c.series(title, kind, slices.Clone(labels))
}

func (c counter) series(title string, kind Kind, labels []string) Series {
	values := make([]float64, len(labels))
	for i, l := range labels {
		values[i] = c[l]
	}
	return Series{Title: title, Kind: kind, Labels: labels, Values: values}
}

// labelOr returns s, or fallback when s is blank.
func labelOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
