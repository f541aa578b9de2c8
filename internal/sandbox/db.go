package sandbox

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"
)

// Errors returned by DB operations. Handlers map them to HTTP statuses.
var (
	ErrUnknownResource = errors.New("unknown resource")
	ErrNotFound        = errors.New("record not found")
	ErrMissingFields   = errors.New("missing required fields")
	ErrNoUpdateData    = errors.New("no valid data provided for update")
)

// table holds the rows of one resource in insertion order.
type table struct {
	def    *resource
	rows   []Row
	nextID int
}

// DB is the sandbox's in-memory store. Safe for concurrent use.
type DB struct {
	mu        sync.RWMutex
	tables    map[string]*table
	order     []string
	now       func() time.Time
	failures  map[string]string
	unhealthy string
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the clock used for defaults and the today report.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		db.now = now
	}
}

// NewDB returns an empty DB with every resource registered.
func NewDB(opts ...Option) *DB {
	db := &DB{
		tables:   make(map[string]*table),
		now:      time.Now,
		failures: make(map[string]string),
	}
	for _, r := range resources() {
		db.tables[r.path] = &table{def: r, nextID: 1}
		db.order = append(db.order, r.path)
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Paths returns the resource paths in registration order.
func (db *DB) Paths() []string {
	return slices.Clone(db.order)
}

// Fail makes every request for path answer 500 with msg until cleared with
// an empty msg.
func (db *DB) Fail(path, msg string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if msg == "" {
		delete(db.failures, path)
		return
	}
	db.failures[path] = msg
}

func (db *DB) failure(path string) (string, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	msg, ok := db.failures[path]
	return msg, ok
}

// SetUnhealthy makes the health check report msg. Empty restores health.
func (db *DB) SetUnhealthy(msg string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.unhealthy = msg
}

// Health returns "" when healthy, or the configured failure.
func (db *DB) Health() string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.unhealthy
}

func (db *DB) table(path string) (*table, error) {
	t, ok := db.tables[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, path)
	}
	return t, nil
}

// List returns the list projection of every row of path.
func (db *DB) List(path string) ([]Row, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, err := db.table(path)
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, project(db.decorate(t.def, row), t.def.list))
	}
	return out, nil
}

// Get returns the full row with joined display fields.
func (db *DB) Get(path string, id int) (Row, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, err := db.table(path)
	if err != nil {
		return nil, err
	}
	i := t.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, t.def.notFound())
	}
	return db.decorate(t.def, t.rows[i]), nil
}

// Insert validates and stores data, returning the new id and the stored row.
func (db *DB) Insert(path string, data Row) (int, Row, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, err := db.table(path)
	if err != nil {
		return 0, nil, err
	}
	for _, field := range t.def.required {
		if _, ok := data[field]; !ok {
			return 0, nil, ErrMissingFields
		}
	}

	row := normalize(t.def, data)
	id := t.nextID
	t.nextID++
	row[t.def.idField] = id
	if t.def.defaults != nil {
		t.def.defaults(db, row)
	}
	t.rows = append(t.rows, row)
	return id, maps.Clone(row), nil
}

// Update applies the non-null fields of data to row id.
func (db *DB) Update(path string, id int, data Row) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, err := db.table(path)
	if err != nil {
		return err
	}
	updates := normalize(t.def, data)
	delete(updates, t.def.idField)
	maps.DeleteFunc(updates, func(_ string, v any) bool { return v == nil })
	if len(updates) == 0 {
		return ErrNoUpdateData
	}

	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, t.def.notFound())
	}
	maps.Copy(t.rows[i], updates)
	return nil
}

// Delete removes row id.
func (db *DB) Delete(path string, id int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, err := db.table(path)
	if err != nil {
		return err
	}
	i := t.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, t.def.notFound())
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return nil
}

// Export returns a header and string cells for every stored row of path.
// The id column comes first, the rest in name order.
func (db *DB) Export(path string) ([]string, [][]string, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, err := db.table(path)
	if err != nil {
		return nil, nil, err
	}

	columns := map[string]struct{}{}
	for _, row := range t.rows {
		for k := range row {
			columns[k] = struct{}{}
		}
	}
	delete(columns, t.def.idField)
	header := append([]string{t.def.idField}, slices.Sorted(maps.Keys(columns))...)

	records := make([][]string, 0, len(t.rows))
	for _, row := range t.rows {
		cells := make([]string, len(header))
		for i, col := range header {
			cells[i] = cell(row[col])
		}
		records = append(records, cells)
	}
	return header, records, nil
}

// Options returns id/name rows for a picker, ordered by name.
func (db *DB) Options(path string, extra ...string) ([]Row, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t, err := db.table(path)
	if err != nil {
		return nil, err
	}
	fields := append([]string{"name"}, extra...)
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		opt := project(row, fields)
		opt["id"] = row[t.def.idField]
		out = append(out, opt)
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return cmp.Compare(fmt.Sprint(a["name"]), fmt.Sprint(b["name"]))
	})
	return out, nil
}

// AppointmentOptions returns the appointment picker rows, newest first.
func (db *DB) AppointmentOptions() []Row {
	db.mu.RLock()
	defer db.mu.RUnlock()

	t := db.tables[pathAppointments]
	out := make([]Row, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, project(row, []string{"id", "patient_id", "doctor_id", "date", "time"}))
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return cmp.Compare(
			fmt.Sprint(b["date"])+" "+fmt.Sprint(b["time"]),
			fmt.Sprint(a["date"])+" "+fmt.Sprint(a["time"]),
		)
	})
	return out
}

// LowStock returns inventory rows at or below their threshold, scarcest first.
func (db *DB) LowStock() []Row {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var out []Row
	for _, row := range db.tables[pathInventory].rows {
		if floatOf(row["quantity"]) <= floatOf(row["threshold"]) {
			out = append(out, project(row, []string{"id", "name", "quantity", "threshold", "unit", "supplier"}))
		}
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return cmp.Compare(floatOf(a["quantity"]), floatOf(b["quantity"]))
	})
	if out == nil {
		out = []Row{}
	}
	return out
}

// TodayAppointments returns today's appointments ordered by time.
func (db *DB) TodayAppointments() []Row {
	db.mu.RLock()
	defer db.mu.RUnlock()

	today := db.now().Format(dateLayout)
	appointments := db.tables[pathAppointments]
	out := []Row{}
	for _, row := range appointments.rows {
		if fmt.Sprint(row["date"]) != today {
			continue
		}
		decorated := db.decorate(appointments.def, row)
		out = append(out, Row{
			"id":             row["id"],
			"time":           row["time"],
			"status":         row["status"],
			"patient_id":     row["patient_id"],
			"patient_name":   decorated["patientName"],
			"doctor_id":      row["doctor_id"],
			"doctor_name":    decorated["doctorName"],
			"specialization": decorated["specialization"],
		})
	}
	slices.SortStableFunc(out, func(a, b Row) int {
		return cmp.Compare(fmt.Sprint(a["time"]), fmt.Sprint(b["time"]))
	})
	return out
}

// Len returns the number of rows stored for path.
func (db *DB) Len(path string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if t, ok := db.tables[path]; ok {
		return len(t.rows)
	}
	return 0
}

func (t *table) index(id int) int {
	return slices.IndexFunc(t.rows, func(r Row) bool {
		return intOf(r[t.def.idField]) == id
	})
}

// decorate returns a copy of row with joined display fields. Caller holds
// at least the read lock.
func (db *DB) decorate(def *resource, row Row) Row {
	out := maps.Clone(row)
	for _, j := range def.joins {
		target := db.tables[j.table]
		i := target.index(intOf(row[j.foreignKey]))
		if i < 0 {
			out[j.as] = nil
			continue
		}
		out[j.as] = target.rows[i][j.from]
	}
	return out
}

func normalize(def *resource, data Row) Row {
	row := make(Row, len(data))
	for k, v := range data {
		if alias, ok := def.aliases[k]; ok {
			k = alias
		}
		row[k] = v
	}
	return row
}

func project(row Row, fields []string) Row {
	out := make(Row, len(fields))
	for _, f := range fields {
		out[f] = row[f]
	}
	return out
}

func invoiceNumber(now time.Time, patientID int) string {
	return fmt.Sprintf("INV-%s-%04d", now.Format(stampLayout), patientID)
}

func intOf(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	default:
		return 0
	}
}

func floatOf(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

func cell(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		if n == math.Trunc(n) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', 2, 64)
	default:
		return fmt.Sprint(n)
	}
}
