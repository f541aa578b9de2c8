// Package listview provides a scrolling list for Bubble Tea views that only
// renders the rows inside its viewport. The dashboard uses it for record
// detail, where a row can carry dozens of fields.
package listview
