package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/store"
)

// exportStampLayout dates exported CSV file names.
const exportStampLayout = "20060102"

// Backend is what the dashboard needs from the API beyond the store.
type Backend interface {
	store.Fetcher
	Get(ctx context.Context, resource string, id int) (api.Record, error)
	ExportCSV(ctx context.Context, resource string, w io.Writer) (int64, error)
	LowStock(ctx context.Context) ([]api.InventoryItem, error)
	TodayAppointments(ctx context.Context) ([]api.TodayAppointment, error)
}

// dataLoadedMsg arrives when every collection and report has been fetched.
type dataLoadedMsg struct {
	today    []api.TodayAppointment
	lowStock []api.InventoryItem
	err      error
}

// collectionRefreshedMsg arrives after a single collection refresh.
type collectionRefreshedMsg struct {
	key string
	err error
}

// lowStockLoadedMsg arrives after the low-stock report is re-fetched.
type lowStockLoadedMsg struct {
	items []api.InventoryItem
	err   error
}

// detailLoadedMsg carries a record fetched for the detail view.
type detailLoadedMsg struct {
	title  string
	record api.Record
	err    error
}

// mutationDoneMsg arrives after a delete.
type mutationDoneMsg struct {
	key string
	res api.MutationResult
	err error
}

// exportDoneMsg arrives after a CSV export finished or failed.
type exportDoneMsg struct {
	path  string
	bytes int64
	err   error
}

// loadAll preloads every collection, then the two report endpoints.
func loadAll(ctx context.Context, s *store.Store, b Backend, alerts *AlertQueue) tea.Cmd {
	return func() tea.Msg {
		err := s.PreloadAll(ctx)

		today, todayErr := b.TodayAppointments(ctx)
		if todayErr != nil {
			alerts.Alert("Error fetching data: " + todayErr.Error())
			today = []api.TodayAppointment{}
		}
		low, lowErr := b.LowStock(ctx)
		if lowErr != nil {
			alerts.Alert("Error fetching data: " + lowErr.Error())
			low = []api.InventoryItem{}
		}
		return dataLoadedMsg{today: today, lowStock: low, err: errors.Join(err, todayErr, lowErr)}
	}
}

func refreshCollection(ctx context.Context, s *store.Store, key string) tea.Cmd {
	return func() tea.Msg {
		return collectionRefreshedMsg{key: key, err: s.Refresh(ctx, key)}
	}
}

func loadLowStock(ctx context.Context, b Backend, alerts *AlertQueue) tea.Cmd {
	return func() tea.Msg {
		items, err := b.LowStock(ctx)
		if err != nil {
			alerts.Alert("Error fetching data: " + err.Error())
		}
		return lowStockLoadedMsg{items: items, err: err}
	}
}

func loadDetail(ctx context.Context, b Backend, sec Section, id int) tea.Cmd {
	return func() tea.Msg {
		rec, err := b.Get(ctx, sec.Path, id)
		return detailLoadedMsg{title: fmt.Sprintf("%s #%d", sec.Title, id), record: rec, err: err}
	}
}

func deleteRecord(ctx context.Context, s *store.Store, key string, id int) tea.Cmd {
	return func() tea.Msg {
		res, err := s.Delete(ctx, key, id)
		return mutationDoneMsg{key: key, res: res, err: err}
	}
}

// exportCSV streams the collection's CSV export into dir.
func exportCSV(ctx context.Context, b Backend, path, dir string, now time.Time) tea.Cmd {
	return func() tea.Msg {
		name := fmt.Sprintf("%s_export_%s.csv", strings.ReplaceAll(path, "/", "_"), now.Format(exportStampLayout))
		target := filepath.Join(dir, name)

		f, err := os.Create(target)
		if err != nil {
			return exportDoneMsg{path: target, err: fmt.Errorf("creating %s: %w", target, err)}
		}
		n, err := b.ExportCSV(ctx, path, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			_ = os.Remove(target)
			return exportDoneMsg{path: target, err: err}
		}
		return exportDoneMsg{path: target, bytes: n}
	}
}
