package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/wardboard/internal/api"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"12", 12, false},
		{" 7 ", 7, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultExportName(t *testing.T) {
	now := time.Date(2026, time.October, 17, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "patients_export_20261017.csv", defaultExportName("patients", now))
	assert.Equal(t, "tests_types_export_20261017.csv", defaultExportName("tests/types", now))
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			res, err := Confirm(&out, strings.NewReader(tt.input), "Delete Patients 3?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Accepted)
			assert.Equal(t, "Delete Patients 3? [y/N] ", out.String())
		})
	}
}

func TestConfirm_NonTerminalFile(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	_, err = Confirm(&bytes.Buffer{}, r, "Delete?")
	require.ErrorIs(t, err, ErrNotInteractive)
}

func TestSortEntities(t *testing.T) {
	items := []api.Entity{
		api.Doctor{DoctorID: 1, Name: "Bea", Fee: 150},
		api.Doctor{DoctorID: 2, Name: "adam", Fee: 1200},
		api.Doctor{DoctorID: 3, Name: "Cyd", Fee: 90},
	}

	ids := func(es []api.Entity) []int {
		out := make([]int, len(es))
		for i, e := range es {
			out[i] = e.RecordID()
		}
		return out
	}

	got, err := sortEntities(api.KeyDoctors, items, "fee:desc")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, ids(got))

	got, err = sortEntities(api.KeyDoctors, items, "NAME")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 3}, ids(got))

	_, err = sortEntities(api.KeyDoctors, items, "salary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valid fields: id, name")
}

func TestSortEntities_BackendDates(t *testing.T) {
	items := []api.Entity{
		api.Appointment{ID: 1, Date: "Tue, 01 Jan 2030 00:00:00 GMT"},
		api.Appointment{ID: 2, Date: "Wed, 01 May 2024 00:00:00 GMT"},
		api.Appointment{ID: 3, Date: "Mon, 15 Jan 2024 00:00:00 GMT"},
	}

	got, err := sortEntities(api.KeyAppointments, items, "date")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 2, 1}, []int{got[0].RecordID(), got[1].RecordID(), got[2].RecordID()})
}

func TestLookupCollection_ListsValidNames(t *testing.T) {
	_, err := lookupCollection("wards")
	require.ErrorIs(t, err, api.ErrUnknownCollection)
	assert.Contains(t, err.Error(), "tests/types")
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, []string{"ID", "Name"}, [][]string{{"1", "Ada"}, {"10", "Bo"}}))
	assert.Equal(t, "ID  Name\n--  ----\n1   Ada\n10  Bo\n", buf.String())
}
