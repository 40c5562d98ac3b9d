package payroll

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/timesheet/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type PayslipDTO struct {
	Id         int    `json:"id"`
	EmployeeId int    `json:"employeeId"`
	Name       string `json:"name"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
}

type WorkedDaysDTO struct {
	Id        int             `json:"id"`
	PayslipId int             `json:"payslipId"`
	Code      string          `json:"code"`
	Hours     decimal.Decimal `json:"hours"`
	EntryIds  []int           `json:"entryIds"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreatePayslip godoc
// @Summary Create a payslip
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payslip body PayslipDTO true "Payslip"
// @Success 201 {object} PayslipDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/payslip [post]
// @Security XUserId
func (h *Handler) CreatePayslip(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating payslip")
	var dto PayslipDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	payslip, err := DTOToPayslip(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Expected format: 2006-01-02")
		return
	}
	created, err := h.service.CreatePayslip(r.Context(), payslip)
	if err != nil {
		if errors.Is(err, ErrPayslipInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid payslip", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(PayslipToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetPayslip godoc
// @Summary Get a payslip
// @Tags Payroll
// @Produce json
// @Param payslipId path int true "Payslip ID"
// @Success 200 {object} PayslipDTO
// @Failure 404 {string} string "Payslip not found"
// @Router /api/payslip/{payslipId} [get]
// @Security XUserId
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payslipId, err := strconv.Atoi(mux.Vars(r)["payslipId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payslip, err := h.service.GetPayslip(r.Context(), payslipId)
	if err != nil {
		if errors.Is(err, ErrPayslipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(PayslipToDTO(payslip)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeletePayslip godoc
// @Summary Delete a payslip
// @Description Deleting a payslip unlocks the timesheet entries it consumed
// @Tags Payroll
// @Param payslipId path int true "Payslip ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Payslip not found"
// @Router /api/payslip/{payslipId} [delete]
// @Security XUserId
func (h *Handler) DeletePayslip(w http.ResponseWriter, r *http.Request) {
	payslipId, err := strconv.Atoi(mux.Vars(r)["payslipId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeletePayslip(r.Context(), payslipId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "payslip not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddWorkedDays godoc
// @Summary Add worked days to a payslip
// @Description Links timesheet entries to the payslip, locking them
// @Tags Payroll
// @Accept json
// @Produce json
// @Param payslipId path int true "Payslip ID"
// @Param workedDays body WorkedDaysDTO true "Worked days"
// @Success 201 {object} WorkedDaysDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {string} string "Payslip or entry not found"
// @Router /api/payslip/{payslipId}/workeddays [post]
// @Security XUserId
func (h *Handler) AddWorkedDays(w http.ResponseWriter, r *http.Request) {
	payslipId, err := strconv.Atoi(mux.Vars(r)["payslipId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto WorkedDaysDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	workedDays := DTOToWorkedDays(dto)
	workedDays.PayslipId = payslipId

	stored, err := h.service.AddWorkedDays(r.Context(), workedDays)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkedDaysInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid worked days", err.Error())
		case errors.Is(err, ErrPayslipNotFound), errors.Is(err, ErrEntryNotAvailable):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(WorkedDaysToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ListWorkedDays godoc
// @Summary List worked days of a payslip
// @Tags Payroll
// @Produce json
// @Param payslipId path int true "Payslip ID"
// @Success 200 {array} WorkedDaysDTO
// @Failure 404 {string} string "Payslip not found"
// @Router /api/payslip/{payslipId}/workeddays [get]
// @Security XUserId
func (h *Handler) ListWorkedDays(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	payslipId, err := strconv.Atoi(mux.Vars(r)["payslipId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	list, err := h.service.ListWorkedDays(r.Context(), payslipId)
	if err != nil {
		if errors.Is(err, ErrPayslipNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]WorkedDaysDTO, 0, len(list))
	for _, wd := range list {
		dtos = append(dtos, WorkedDaysToDTO(wd))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func PayslipToDTO(p Payslip) PayslipDTO {
	return PayslipDTO{
		Id:         p.Id,
		EmployeeId: p.EmployeeId,
		Name:       p.Name,
		DateFrom:   p.DateFrom.Format(dateLayout),
		DateTo:     p.DateTo.Format(dateLayout),
	}
}

func DTOToPayslip(dto PayslipDTO) (Payslip, error) {
	from, err := time.Parse(dateLayout, dto.DateFrom)
	if err != nil {
		return Payslip{}, err
	}
	to, err := time.Parse(dateLayout, dto.DateTo)
	if err != nil {
		return Payslip{}, err
	}
	return Payslip{
		Id:         dto.Id,
		EmployeeId: dto.EmployeeId,
		Name:       dto.Name,
		DateFrom:   from,
		DateTo:     to,
	}, nil
}

func WorkedDaysToDTO(wd WorkedDays) WorkedDaysDTO {
	entryIds := wd.EntryIds
	if entryIds == nil {
		entryIds = []int{}
	}
	return WorkedDaysDTO{
		Id:        wd.Id,
		PayslipId: wd.PayslipId,
		Code:      wd.Code,
		Hours:     wd.Hours,
		EntryIds:  entryIds,
	}
}

func DTOToWorkedDays(dto WorkedDaysDTO) WorkedDays {
	return WorkedDays{
		Id:        dto.Id,
		PayslipId: dto.PayslipId,
		Code:      dto.Code,
		Hours:     dto.Hours,
		EntryIds:  dto.EntryIds,
	}
}
