package timesheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/klokku/timesheet/internal/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withEntryId sets the user context first, mux keeps route variables in the request context.
func withEntryId(req *http.Request, entryId int) *http.Request {
	return mux.SetURLVars(req.WithContext(ctx), map[string]string{"entryId": fmt.Sprint(entryId)})
}

func TestHandler_CreateEntry(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)

	t.Run("should create entry", func(t *testing.T) {
		body := `{"date": "2024-03-12", "employeeId": 3, "workTypeId": 1, "quantity": "8", "label": "work"}`
		req := httptest.NewRequest(http.MethodPost, "/api/timesheet", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreateEntry(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusCreated, w.Code)
		var dto EntryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.NotZero(t, dto.Id)
		assert.Equal(t, "10_SF", dto.WorkTypeCode)
		assert.Equal(t, "2024-03-12", dto.Date)
		assert.Nil(t, dto.InPayroll)
	})

	t.Run("should reject missing work type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/timesheet", bytes.NewBufferString(`{"quantity": "8"}`))
		w := httptest.NewRecorder()

		handler.CreateEntry(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_UpdateEntry_Locked(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)
	entry := storeEntry(t, services, 2, "8", "work")
	repoStub.LockInPayroll(entry.Id, march(31))

	body := `{"date": "2024-03-12", "workTypeId": 2, "quantity": "6", "label": "changed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/timesheet/"+fmt.Sprint(entry.Id), bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.UpdateEntry(w, withEntryId(req, entry.Id))

	assert.Equal(t, http.StatusConflict, w.Code)
	var response rest.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "Timesheet entry is used in payroll", response.Error)
}

func TestHandler_GetEntry(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)
	entry := storeEntry(t, services, 2, "8", "work")
	repoStub.LockInPayroll(entry.Id, march(31))

	t.Run("should return entry with payroll date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timesheet/"+fmt.Sprint(entry.Id), nil)
		w := httptest.NewRecorder()

		handler.GetEntry(w, withEntryId(req, entry.Id))

		assert.Equal(t, http.StatusOK, w.Code)
		var dto EntryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		require.NotNil(t, dto.InPayroll)
		assert.Equal(t, "2024-03-31", *dto.InPayroll)
	})

	t.Run("should return 404 for unknown entry", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timesheet/999", nil)
		w := httptest.NewRecorder()

		handler.GetEntry(w, withEntryId(req, 999))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHandler_SplitEntry(t *testing.T) {
	t.Run("should split entry", func(t *testing.T) {
		services, teardown := setup(t)
		defer teardown()
		handler := NewHandler(services.timesheet)
		entry := storeEntry(t, services, 1, "8", "work")

		req := httptest.NewRequest(http.MethodPost, "/api/timesheet/split", bytes.NewBufferString(`{"hoursToSpend": "3", "foodDaysRest": 0}`))
		w := httptest.NewRecorder()

		handler.SplitEntry(w, withEntryId(req, entry.Id))

		assert.Equal(t, http.StatusOK, w.Code)
		var response SplitResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.True(t, response.Split)
		require.Len(t, response.Entries, 2)
		assert.Equal(t, "11_S", response.Entries[0].WorkTypeCode)
		assert.Equal(t, "3", response.Entries[0].Quantity.String())
		assert.Equal(t, "10_SF", response.Entries[1].WorkTypeCode)
		assert.Equal(t, "5", response.Entries[1].Quantity.String())
	})

	t.Run("should answer without split outside the range", func(t *testing.T) {
		services, teardown := setup(t)
		defer teardown()
		handler := NewHandler(services.timesheet)
		entry := storeEntry(t, services, 1, "8", "work")

		req := httptest.NewRequest(http.MethodPost, "/api/timesheet/split", bytes.NewBufferString(`{"hoursToSpend": "8", "foodDaysRest": 0}`))
		w := httptest.NewRecorder()

		handler.SplitEntry(w, withEntryId(req, entry.Id))

		assert.Equal(t, http.StatusOK, w.Code)
		var response SplitResponseDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.False(t, response.Split)
		assert.Empty(t, response.Entries)
	})

	t.Run("should report configuration error", func(t *testing.T) {
		services, teardown := setupWithPairs(t, map[string]string{})
		defer teardown()
		handler := NewHandler(services.timesheet)
		entry := storeEntry(t, services, 3, "8", "work")

		req := httptest.NewRequest(http.MethodPost, "/api/timesheet/split", bytes.NewBufferString(`{"hoursToSpend": "3", "foodDaysRest": 1}`))
		w := httptest.NewRecorder()

		handler.SplitEntry(w, withEntryId(req, entry.Id))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var response rest.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Contains(t, response.Details, "work type 20_NF must have a without-food variant")
	})
}

func TestHandler_ListEntries(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)
	locked := storeEntry(t, services, 2, "8", "locked")
	storeEntry(t, services, 2, "4", "free")
	repoStub.LockInPayroll(locked.Id, march(31))

	t.Run("should filter by payroll date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timesheet?inPayrollOp=%3D&inPayroll=2024-03-31", nil)
		w := httptest.NewRecorder()

		handler.ListEntries(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, w.Code)
		var dtos []EntryDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		require.Len(t, dtos, 1)
		assert.Equal(t, locked.Id, dtos[0].Id)
	})

	t.Run("should reject invalid date", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/timesheet?from=yesterday", nil)
		w := httptest.NewRecorder()

		handler.ListEntries(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_ExportCsv(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)
	storeEntry(t, services, 2, "8", "work")

	req := httptest.NewRequest(http.MethodGet, "/api/timesheet/export", nil)
	w := httptest.NewRecorder()

	handler.ExportCsv(w, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "Date,Employee"))
}

func TestHandler_DeleteEntry(t *testing.T) {
	services, teardown := setup(t)
	defer teardown()
	handler := NewHandler(services.timesheet)
	entry := storeEntry(t, services, 2, "8", "work")

	req := httptest.NewRequest(http.MethodDelete, "/api/timesheet/"+fmt.Sprint(entry.Id), nil)
	w := httptest.NewRecorder()
	handler.DeleteEntry(w, withEntryId(req, entry.Id))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	handler.DeleteEntry(w, withEntryId(req, entry.Id))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
