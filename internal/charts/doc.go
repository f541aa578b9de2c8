// Package charts turns cached hospital collections into chart series and
// draws them as horizontal bar charts for the terminal.
//
// Aggregations are pure functions: they take slices of api entities and a
// reference time and return a Series. Rendering lives in render.go and only
// depends on a Series and a Palette.
package charts
