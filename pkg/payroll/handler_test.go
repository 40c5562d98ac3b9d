package payroll

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_CreatePayslip(t *testing.T) {
	service, teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)

	t.Run("should create payslip", func(t *testing.T) {
		body := `{"employeeId": 3, "name": "March 2024", "dateFrom": "2024-03-01", "dateTo": "2024-03-31"}`
		req := httptest.NewRequest(http.MethodPost, "/api/payslip", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreatePayslip(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusCreated, w.Code)
		var dto PayslipDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.NotZero(t, dto.Id)
		assert.Equal(t, "2024-03-31", dto.DateTo)
	})

	t.Run("should reject invalid period", func(t *testing.T) {
		body := `{"employeeId": 3, "name": "March 2024", "dateFrom": "2024-03-31", "dateTo": "2024-03-01"}`
		req := httptest.NewRequest(http.MethodPost, "/api/payslip", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreatePayslip(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject malformed date", func(t *testing.T) {
		body := `{"name": "March 2024", "dateFrom": "01.03.2024", "dateTo": "2024-03-31"}`
		req := httptest.NewRequest(http.MethodPost, "/api/payslip", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.CreatePayslip(w, req.WithContext(ctx))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_WorkedDays(t *testing.T) {
	service, teardown := setup(t)
	defer teardown()
	handler := NewHandler(service)
	payslip, err := service.CreatePayslip(ctx, march())
	require.NoError(t, err)
	payslipId := fmt.Sprint(payslip.Id)

	t.Run("should add worked days", func(t *testing.T) {
		body := `{"code": "WORK100", "hours": "12.25", "entryIds": [1, 2]}`
		req := httptest.NewRequest(http.MethodPost, "/api/payslip/"+payslipId+"/workeddays", bytes.NewBufferString(body))
		req = mux.SetURLVars(req.WithContext(ctx), map[string]string{"payslipId": payslipId})
		w := httptest.NewRecorder()

		handler.AddWorkedDays(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		var dto WorkedDaysDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dto))
		assert.Equal(t, "12.25", dto.Hours.String())
		assert.Equal(t, []int{1, 2}, dto.EntryIds)
	})

	t.Run("should return 404 for entry of another user", func(t *testing.T) {
		body := `{"code": "WORK100", "hours": "1", "entryIds": [6]}`
		req := httptest.NewRequest(http.MethodPost, "/api/payslip/"+payslipId+"/workeddays", bytes.NewBufferString(body))
		req = mux.SetURLVars(req.WithContext(ctx), map[string]string{"payslipId": payslipId})
		w := httptest.NewRecorder()

		handler.AddWorkedDays(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should list worked days", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payslip/"+payslipId+"/workeddays", nil)
		req = mux.SetURLVars(req.WithContext(ctx), map[string]string{"payslipId": payslipId})
		w := httptest.NewRecorder()

		handler.ListWorkedDays(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var dtos []WorkedDaysDTO
		require.NoError(t, json.NewDecoder(w.Body).Decode(&dtos))
		assert.Len(t, dtos, 1)
	})

	t.Run("should delete payslip", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/payslip/"+payslipId, nil)
		req = mux.SetURLVars(req.WithContext(ctx), map[string]string{"payslipId": payslipId})
		w := httptest.NewRecorder()

		handler.DeletePayslip(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = httptest.NewRecorder()
		handler.GetPayslip(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
