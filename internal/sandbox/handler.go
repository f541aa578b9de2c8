package sandbox

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// Wire messages of the backend.
const (
	msgNotFoundURL     = "The requested URL was not found on the server. Please check the API endpoint URL."
	msgInternal        = "Internal server error occurred. Please try again later."
	msgBadRequest      = "Bad request. Please check your request data."
	msgMissingFields   = "Missing required fields"
	msgNoUpdateData    = "No valid data provided for update"
	msgNoDataForUpdate = "No data provided for update"
)

// Handler serves the hospital REST surface from a DB.
type Handler struct {
	db *DB
}

// NewHandler creates a handler over db.
func NewHandler(db *DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes registers every route on g, which is normally /api.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.handleHealth)
	g.GET("/reports/low-stock", h.handleLowStock)
	g.GET("/reports/today-appointments", h.handleTodayAppointments)

	g.GET("/patients/list", h.handleOptions(pathPatients))
	g.GET("/doctors/list", h.handleOptions(pathDoctors, "specialization"))
	g.GET("/departments/list", h.handleOptions(pathDepartments))
	g.GET("/tests/list", h.handleOptions(pathTestTypes, "cost"))
	g.GET("/appointments/list", h.handleAppointmentOptions)

	for _, path := range h.db.Paths() {
		base := "/" + path
		g.GET(base, h.handleList(path))
		g.POST(base, h.handleCreate(path))
		g.GET(base+"/export/csv", h.handleExportCSV(path))
		g.GET(base+"/:id", h.handleGet(path))
		g.PUT(base+"/:id", h.handleUpdate(path))
		g.DELETE(base+"/:id", h.handleDelete(path))
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// injected answers with the failure configured for path, if any.
func (h *Handler) injected(c echo.Context, path string) (bool, error) {
	if msg, ok := h.db.failure(path); ok {
		return true, c.JSON(http.StatusInternalServerError, errorBody(msg))
	}
	return false, nil
}

// idParam parses :id. A non-numeric id is treated as an unknown URL.
func idParam(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusNotFound)
	}
	return id, nil
}

// dbError maps DB errors onto backend responses.
func dbError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		_, msg, _ := strings.Cut(err.Error(), ": ")
		return c.JSON(http.StatusNotFound, errorBody(msg))
	case errors.Is(err, ErrMissingFields):
		return c.JSON(http.StatusBadRequest, errorBody(msgMissingFields))
	case errors.Is(err, ErrNoUpdateData):
		return c.JSON(http.StatusBadRequest, errorBody(msgNoUpdateData))
	case errors.Is(err, ErrUnknownResource):
		return c.JSON(http.StatusNotFound, errorBody(msgNotFoundURL))
	default:
		return c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}

func decodeBody(c echo.Context) (Row, error) {
	var row Row
	if err := json.NewDecoder(c.Request().Body).Decode(&row); err != nil {
		return nil, err
	}
	return row, nil
}

func (h *Handler) handleList(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		rows, err := h.db.List(path)
		if err != nil {
			return dbError(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	}
}

func (h *Handler) handleGet(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		id, err := idParam(c)
		if err != nil {
			return err
		}
		row, err := h.db.Get(path, id)
		if err != nil {
			return dbError(c, err)
		}
		return c.JSON(http.StatusOK, row)
	}
}

func (h *Handler) handleCreate(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		data, err := decodeBody(c)
		if err != nil || data == nil {
			return c.JSON(http.StatusBadRequest, errorBody(msgBadRequest))
		}
		id, row, err := h.db.Insert(path, data)
		if err != nil {
			return dbError(c, err)
		}

		t, _ := h.db.table(path)
		resp := map[string]any{"message": t.def.createdMessage(), "id": id}
		switch path {
		case pathAppointments:
			resp["invoice_number"] = fmt.Sprintf("APT-%04d-%s", id, h.db.now().Format(stampLayout))
		case pathBills:
			resp["invoice_number"] = row["invoiceNumber"]
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

func (h *Handler) handleUpdate(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		id, err := idParam(c)
		if err != nil {
			return err
		}
		data, err := decodeBody(c)
		if err != nil || len(data) == 0 {
			return c.JSON(http.StatusBadRequest, errorBody(msgNoDataForUpdate))
		}
		if err = h.db.Update(path, id, data); err != nil {
			return dbError(c, err)
		}
		t, _ := h.db.table(path)
		return c.JSON(http.StatusOK, map[string]string{"message": t.def.title + " updated successfully"})
	}
}

func (h *Handler) handleDelete(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		id, err := idParam(c)
		if err != nil {
			return err
		}
		if err = h.db.Delete(path, id); err != nil {
			return dbError(c, err)
		}
		t, _ := h.db.table(path)
		return c.JSON(http.StatusOK, map[string]string{"message": t.def.deletedMessage()})
	}
}

func (h *Handler) handleExportCSV(path string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		header, records, err := h.db.Export(path)
		if err != nil {
			return dbError(c, err)
		}

		name := fmt.Sprintf("%s_export_%s.csv", strings.ReplaceAll(path, "/", "_"), h.db.now().Format(stampLayout))
		res := c.Response()
		res.Header().Set(echo.HeaderContentType, "text/csv")
		res.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
		res.WriteHeader(http.StatusOK)

		w := csv.NewWriter(res)
		if len(records) > 0 {
			if err = w.Write(header); err != nil {
				return err
			}
		}
		if err = w.WriteAll(records); err != nil {
			return err
		}
		return w.Error()
	}
}

func (h *Handler) handleOptions(path string, extra ...string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if done, err := h.injected(c, path); done {
			return err
		}
		rows, err := h.db.Options(path, extra...)
		if err != nil {
			return dbError(c, err)
		}
		return c.JSON(http.StatusOK, rows)
	}
}

func (h *Handler) handleAppointmentOptions(c echo.Context) error {
	if done, err := h.injected(c, pathAppointments); done {
		return err
	}
	return c.JSON(http.StatusOK, h.db.AppointmentOptions())
}

func (h *Handler) handleLowStock(c echo.Context) error {
	if done, err := h.injected(c, "reports/low-stock"); done {
		return err
	}
	return c.JSON(http.StatusOK, h.db.LowStock())
}

func (h *Handler) handleTodayAppointments(c echo.Context) error {
	if done, err := h.injected(c, "reports/today-appointments"); done {
		return err
	}
	return c.JSON(http.StatusOK, h.db.TodayAppointments())
}

func (h *Handler) handleHealth(c echo.Context) error {
	if msg := h.db.Health(); msg != "" {
		return c.JSON(http.StatusInternalServerError, map[string]string{"status": "unhealthy", "error": msg})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
}
