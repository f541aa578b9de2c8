package sandbox_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/sandbox"
)

func startSandbox(t *testing.T) (*sandbox.DB, *api.Client) {
	t.Helper()
	now := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)
	db, err := sandbox.NewSeeded(sandbox.DefaultSeedConfig(), sandbox.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	srv := httptest.NewServer(sandbox.NewServer(db, zerolog.Nop()))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL + "/api")
	require.NoError(t, err)
	return db, client
}

func requireAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr), "expected *api.Error, got %v", err)
	assert.Equal(t, status, apiErr.StatusCode)
	assert.Equal(t, msg, apiErr.Message)
}

func TestHandler_ListAndGet(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	var patients []api.Patient
	require.NoError(t, client.List(ctx, "patients", &patients))
	require.Len(t, patients, sandbox.DefaultSeedConfig().Patients)

	rec, err := client.Get(ctx, "patients", patients[0].PatientID)
	require.NoError(t, err)
	name, ok := rec.Get("name")
	require.True(t, ok)
	assert.Equal(t, patients[0].Name, name)

	var doctors []api.Doctor
	require.NoError(t, client.List(ctx, "doctors", &doctors))
	require.NotEmpty(t, doctors)
	assert.Positive(t, doctors[0].Fee.Float64(), "fees arrive as decimal strings")
	assert.NotEmpty(t, doctors[0].DepartmentName)
}

func TestHandler_CreateUpdateDelete(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	res, err := client.Create(ctx, "patients", map[string]any{"name": "Ann Lee", "age": 34, "gender": "Female"})
	require.NoError(t, err)
	assert.Equal(t, "Patient added successfully", res.Message)
	assert.Equal(t, 26, res.ID)

	res, err = client.Update(ctx, "patients", res.ID, map[string]any{"phone": "(555) 123-4567"})
	require.NoError(t, err)
	assert.Equal(t, "Patient updated successfully", res.Message)

	res, err = client.Delete(ctx, "patients", 26)
	require.NoError(t, err)
	assert.Equal(t, "Patient deleted successfully", res.Message)

	_, err = client.Delete(ctx, "patients", 26)
	requireAPIError(t, err, http.StatusNotFound, "Patient not found")
	assert.True(t, api.IsNotFound(err))
}

func TestHandler_CreateErrors(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	_, err := client.Create(ctx, "patients", map[string]any{"name": "Ann"})
	requireAPIError(t, err, http.StatusBadRequest, "Missing required fields")

	_, err = client.Update(ctx, "patients", 1, map[string]any{})
	requireAPIError(t, err, http.StatusBadRequest, "No data provided for update")

	_, err = client.Update(ctx, "patients", 1, map[string]any{"phone": nil})
	requireAPIError(t, err, http.StatusBadRequest, "No valid data provided for update")
}

func TestHandler_AppointmentAndBillMessages(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	res, err := client.Create(ctx, "appointments", map[string]any{
		"patient_id": 1, "doctor_id": 1, "date": "2026-10-20", "time": "09:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Appointment scheduled successfully", res.Message)
	assert.Equal(t, "APT-0041-20261017", res.InvoiceNumber)

	res, err = client.Delete(ctx, "appointments", res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Appointment canceled successfully", res.Message)

	res, err = client.Create(ctx, "bills", map[string]any{"patient_id": 3, "amount": 120.5})
	require.NoError(t, err)
	assert.Equal(t, "Bill generated successfully", res.Message)
	assert.Equal(t, "INV-20261017-0003", res.InvoiceNumber)
}

func TestHandler_ExportCSV(t *testing.T) {
	_, client := startSandbox(t)

	var buf bytes.Buffer
	n, err := client.ExportCSV(context.Background(), "departments", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"id", "name"}, rows[0])
	assert.Equal(t, []string{"1", "Cardiology"}, rows[1])
}

func TestHandler_Health(t *testing.T) {
	db, client := startSandbox(t)
	ctx := context.Background()

	status, err := client.Health(ctx)
	require.NoError(t, err)
	assert.True(t, status.Healthy())
	assert.Equal(t, "connected", status.Database)

	db.SetUnhealthy("connection refused")
	status, err = client.Health(ctx)
	require.Error(t, err)
	assert.False(t, status.Healthy())
	assert.Equal(t, "connection refused", status.Error)
}

func TestHandler_Reports(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	low, err := client.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 4)
	assert.Equal(t, "Gloves (M)", low[0].Name)
	for _, item := range low {
		assert.True(t, item.LowStock(), item.Name)
	}

	today, err := client.TodayAppointments(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(today), 10)
	assert.NotEmpty(t, today[0].PatientName)
	assert.NotEmpty(t, today[0].DoctorName)
}

func TestHandler_Options(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	doctors, err := client.Options(ctx, "doctors/list")
	require.NoError(t, err)
	require.Len(t, doctors, sandbox.DefaultSeedConfig().Doctors)
	assert.NotEmpty(t, doctors[0].Specialization)
	for i := 1; i < len(doctors); i++ {
		assert.LessOrEqual(t, doctors[i-1].Name, doctors[i].Name)
	}

	tests, err := client.Options(ctx, "tests/list")
	require.NoError(t, err)
	assert.Len(t, tests, 5)
}

func TestHandler_FailureInjection(t *testing.T) {
	db, client := startSandbox(t)
	ctx := context.Background()

	db.Fail("bills", "Database connection failed")
	var bills []api.Bill
	err := client.List(ctx, "bills", &bills)
	requireAPIError(t, err, http.StatusInternalServerError, "Database connection failed")

	db.Fail("bills", "")
	require.NoError(t, client.List(ctx, "bills", &bills))
	assert.Len(t, bills, sandbox.DefaultSeedConfig().Bills)
}

func TestHandler_UnknownURL(t *testing.T) {
	_, client := startSandbox(t)
	ctx := context.Background()

	var rows []map[string]any
	err := client.List(ctx, "wards", &rows)
	requireAPIError(t, err, http.StatusNotFound,
		"The requested URL was not found on the server. Please check the API endpoint URL.")

	_, err = client.Get(ctx, "patients", 0)
	require.Error(t, err)
	assert.True(t, strings.HasSuffix(err.Error(), "not found"))
}
