package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/api"
	"github.com/rshade/wardboard/internal/logging"
)

type recordedRequest struct {
	Method    string
	Path      string
	Body      string
	RequestID string
	Accept    string
}

func newTestServer(t *testing.T, handler http.HandlerFunc, opts ...api.ClientOption) (*api.Client, *[]recordedRequest) {
	t.Helper()
	var seen []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen = append(seen, recordedRequest{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      string(body),
			RequestID: r.Header.Get(api.HeaderRequestID),
			Accept:    r.Header.Get("Accept"),
		})
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := api.NewClient(srv.URL+"/api/", opts...)
	require.NoError(t, err)
	return client, &seen
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := api.NewClient("not a url")
	require.Error(t, err)

	_, err = api.NewClient("/relative/api")
	require.Error(t, err)
}

func TestClient_List(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[
			{"patient_id": 1, "name": "Ada", "age": 34, "gender": "Female", "blood_type": "O+",
			 "phone": null, "disease": "Flu", "registrationDate": "2024-03-01 09:30:00"},
			{"patient_id": 2, "name": "Ben", "age": 61, "gender": "Male"}
		]`)
	})

	var patients []api.Patient
	require.NoError(t, client.List(context.Background(), "patients", &patients))

	require.Len(t, patients, 2)
	assert.Equal(t, 1, patients[0].RecordID())
	assert.Equal(t, "Ada", patients[0].Name)
	assert.Empty(t, patients[0].Phone)
	assert.Equal(t, "2024-03-01 09:30:00", patients[0].RegistrationDate)

	require.Len(t, *seen, 1)
	req := (*seen)[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/patients", req.Path)
	assert.Equal(t, "application/json", req.Accept)
	assert.Len(t, req.RequestID, 26)
}

func TestClient_RequestIDPerRequest(t *testing.T) {
	var logs bytes.Buffer
	client, seen := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	}, api.WithLogger(zerolog.New(&logs).Level(zerolog.DebugLevel)))

	traceID := logging.NewTraceID()
	ctx := logging.ContextWithTraceID(context.Background(), traceID)

	var out []api.Department
	require.NoError(t, client.List(ctx, "departments", &out))
	require.NoError(t, client.List(ctx, "departments", &out))

	require.Len(t, *seen, 2)
	first, second := (*seen)[0].RequestID, (*seen)[1].RequestID
	assert.Len(t, first, 26)
	assert.Len(t, second, 26)
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, traceID, first)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2)
	for i, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, traceID, entry[logging.TraceIDField])
		assert.Equal(t, (*seen)[i].RequestID, entry["request_id"])
	}
}

func TestClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "backend error field",
			status:     http.StatusNotFound,
			body:       `{"error": "Patient not found"}`,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Patient not found",
		},
		{
			name:       "empty body",
			status:     http.StatusInternalServerError,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "HTTP error! Status: 500",
		},
		{
			name:       "non json body",
			status:     http.StatusBadGateway,
			body:       "<html>bad gateway</html>",
			wantStatus: http.StatusBadGateway,
			wantMsg:    "HTTP error! Status: 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := client.Get(context.Background(), "patients", 9)
			require.Error(t, err)

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, api.IsNotFound(&api.Error{StatusCode: http.StatusNotFound}))
	assert.False(t, api.IsNotFound(&api.Error{StatusCode: http.StatusBadRequest}))
	assert.False(t, api.IsNotFound(io.EOF))
}

func TestClient_Get_PreservesFieldOrder(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"patient_id": 4, "name": "Cy", "age": 9, "allergies": null, "address": "1 Main"}`)
	})

	rec, err := client.Get(context.Background(), "patients", 4)
	require.NoError(t, err)

	keys := make([]string, 0, len(rec))
	for _, f := range rec {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"patient_id", "name", "age", "allergies", "address"}, keys)
	assert.Equal(t, "/api/patients/4", (*seen)[0].Path)

	v, ok := rec.Get("allergies")
	require.True(t, ok)
	assert.Equal(t, "N/A", api.FormatValue(v))
}

func TestClient_Mutations(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"message": "Bill generated successfully", "id": 7, "invoice_number": "INV-1"})
		case http.MethodPut:
			writeJSON(w, http.StatusOK, map[string]any{"message": "Bill updated successfully"})
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]any{"message": "Bill deleted successfully"})
		}
	})
	ctx := context.Background()

	res, err := client.Create(ctx, "bills", map[string]any{"patient_id": 1, "amount": 20})
	require.NoError(t, err)
	assert.Equal(t, 7, res.ID)
	assert.Equal(t, "INV-1", res.InvoiceNumber)

	res, err = client.Update(ctx, "bills", 7, map[string]any{"status": "Paid"})
	require.NoError(t, err)
	assert.Equal(t, "Bill updated successfully", res.Message)

	res, err = client.Delete(ctx, "bills", 7)
	require.NoError(t, err)
	assert.Equal(t, "Bill deleted successfully", res.Message)

	require.Len(t, *seen, 3)
	assert.Equal(t, "/api/bills", (*seen)[0].Path)
	assert.JSONEq(t, `{"patient_id": 1, "amount": 20}`, (*seen)[0].Body)
	assert.Equal(t, "/api/bills/7", (*seen)[1].Path)
	assert.Equal(t, http.MethodDelete, (*seen)[2].Method)
}

func TestClient_ExportCSV(t *testing.T) {
	client, seen := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, "patient_id,name\n1,Ada\n")
	})

	var buf strings.Builder
	n, err := client.ExportCSV(context.Background(), "patients", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len("patient_id,name\n1,Ada\n")), n)
	assert.Equal(t, "patient_id,name\n1,Ada\n", buf.String())
	assert.Equal(t, "/api/patients/export/csv", (*seen)[0].Path)
	assert.Equal(t, "text/csv", (*seen)[0].Accept)
}

func TestClient_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
		})
		status, err := client.Health(context.Background())
		require.NoError(t, err)
		assert.True(t, status.Healthy())
		assert.Equal(t, "connected", status.Database)
	})

	t.Run("unhealthy", func(t *testing.T) {
		client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "unhealthy", "error": "db down"})
		})
		status, err := client.Health(context.Background())
		require.Error(t, err)
		assert.False(t, status.Healthy())
		assert.Equal(t, "db down", status.Error)
	})
}

func TestClient_Reports(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/reports/low-stock":
			_, _ = io.WriteString(w, `[{"id": 3, "name": "Gauze", "quantity": 2, "threshold": 10, "unit": "box", "supplier": "Acme"}]`)
		case "/api/reports/today-appointments":
			_, _ = io.WriteString(w, `[{"id": 5, "time": "09:00:00", "status": "Scheduled", "patient_name": "Ada", "doctor_name": "Dr. Who"}]`)
		case "/api/doctors/list":
			_, _ = io.WriteString(w, `[{"id": 1, "name": "Dr. Who", "specialization": "Cardiology"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	low, err := client.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.True(t, low[0].LowStock())

	today, err := client.TodayAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Ada", today[0].PatientName)

	opts, err := client.Options(ctx, "doctors/list")
	require.NoError(t, err)
	assert.Equal(t, []api.Option{{ID: 1, Name: "Dr. Who", Specialization: "Cardiology"}}, opts)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := api.NewClient(url + "/api")
	require.NoError(t, err)

	var out []api.Patient
	err = client.List(context.Background(), "patients", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GET patients")
}
