package entry_defaults

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/klokku/timesheet/internal/rest"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type DefaultsDTO struct {
	ProjectId  int              `json:"projectId,omitempty"`
	TaskId     int              `json:"taskId,omitempty"`
	Date       string           `json:"date,omitempty"`
	EmployeeId int              `json:"employeeId,omitempty"`
	WorkTypeId int              `json:"workTypeId,omitempty"`
	UnitAmount *decimal.Decimal `json:"unitAmount,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetDefaults godoc
// @Summary Get data entry defaults
// @Description Values prefilled into new timesheet entries of the current user
// @Tags EntryDefaults
// @Produce json
// @Success 200 {object} DefaultsDTO
// @Failure 404 {string} string "Defaults not set"
// @Router /api/timesheet/defaults [get]
// @Security XUserId
func (h *Handler) GetDefaults(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	defaults, err := h.service.GetDefaults(r.Context())
	if err != nil {
		if errors.Is(err, ErrDefaultsNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(DefaultsToDTO(defaults)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StoreDefaults godoc
// @Summary Set data entry defaults
// @Tags EntryDefaults
// @Accept json
// @Produce json
// @Param defaults body DefaultsDTO true "Defaults"
// @Success 200 {object} DefaultsDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/timesheet/defaults [put]
// @Security XUserId
func (h *Handler) StoreDefaults(w http.ResponseWriter, r *http.Request) {
	log.Debug("Storing entry defaults")
	var dto DefaultsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	defaults, err := DTOToDefaults(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Expected format: 2006-01-02")
		return
	}
	stored, err := h.service.StoreDefaults(r.Context(), defaults)
	if err != nil {
		if errors.Is(err, ErrDefaultsInvalid) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid defaults", err.Error())
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(DefaultsToDTO(stored)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func DefaultsToDTO(d Defaults) DefaultsDTO {
	dto := DefaultsDTO{
		ProjectId:  d.ProjectId,
		TaskId:     d.TaskId,
		EmployeeId: d.EmployeeId,
		WorkTypeId: d.WorkTypeId,
	}
	if !d.Date.IsZero() {
		dto.Date = d.Date.Format(dateLayout)
	}
	if d.UnitAmount.Valid {
		amount := d.UnitAmount.Decimal
		dto.UnitAmount = &amount
	}
	return dto
}

func DTOToDefaults(dto DefaultsDTO) (Defaults, error) {
	d := Defaults{
		ProjectId:  dto.ProjectId,
		TaskId:     dto.TaskId,
		EmployeeId: dto.EmployeeId,
		WorkTypeId: dto.WorkTypeId,
	}
	if dto.Date != "" {
		date, err := time.Parse(dateLayout, dto.Date)
		if err != nil {
			return Defaults{}, err
		}
		d.Date = date
	}
	if dto.UnitAmount != nil {
		d.UnitAmount = decimal.NewNullDecimal(*dto.UnitAmount)
	}
	return d, nil
}
