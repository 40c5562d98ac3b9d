package timesheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/timesheet/internal/rest"
	"github.com/klokku/timesheet/pkg/work_type"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type EntryDTO struct {
	Id           int             `json:"id"`
	Uid          string          `json:"uid,omitempty"`
	Date         string          `json:"date,omitempty"`
	ProjectId    int             `json:"projectId,omitempty"`
	TaskId       int             `json:"taskId,omitempty"`
	EmployeeId   int             `json:"employeeId,omitempty"`
	WorkTypeId   int             `json:"workTypeId"`
	WorkTypeCode string          `json:"workTypeCode,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Label        string          `json:"label"`
	InPayroll    *string         `json:"inPayroll"`
}

type SplitRequestDTO struct {
	HoursToSpend decimal.Decimal `json:"hoursToSpend"`
	FoodDaysRest int             `json:"foodDaysRest"`
}

type SplitResponseDTO struct {
	Split   bool       `json:"split"`
	Entries []EntryDTO `json:"entries"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateEntry godoc
// @Summary Create a timesheet entry
// @Description Fields left empty are filled from the user's entry defaults
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param entry body EntryDTO true "Timesheet entry"
// @Success 201 {object} EntryDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Router /api/timesheet [post]
// @Security XUserId
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating timesheet entry")
	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	entry, err := DTOToEntry(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Expected format: "+dateLayout)
		return
	}
	created, err := h.service.CreateEntry(r.Context(), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, EntryToDTO(created))
}

// ListEntries godoc
// @Summary List timesheet entries
// @Tags Timesheet
// @Produce json
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param inPayrollOp query string false "Payroll date operator, = or !="
// @Param inPayroll query string false "Payroll date (YYYY-MM-DD), empty for entries not in payroll"
// @Success 200 {array} EntryDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid query"
// @Router /api/timesheet [get]
// @Security XUserId
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	entries, err := h.service.ListEntries(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dtos := make([]EntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, EntryToDTO(entry))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEntry godoc
// @Summary Get a timesheet entry
// @Tags Timesheet
// @Produce json
// @Param entryId path int true "Entry ID"
// @Success 200 {object} EntryDTO
// @Failure 404 {string} string "Entry not found"
// @Router /api/timesheet/{entryId} [get]
// @Security XUserId
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entryId, err := strconv.Atoi(mux.Vars(r)["entryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	entry, err := h.service.GetEntry(r.Context(), entryId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryToDTO(entry))
}

// UpdateEntry godoc
// @Summary Update a timesheet entry
// @Description Entries used in payroll cannot be changed
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param entryId path int true "Entry ID"
// @Param entry body EntryDTO true "Timesheet entry"
// @Success 200 {object} EntryDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 404 {string} string "Entry not found"
// @Failure 409 {object} rest.ErrorResponse "Entry used in payroll"
// @Router /api/timesheet/{entryId} [put]
// @Security XUserId
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	entryId, err := strconv.Atoi(mux.Vars(r)["entryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto EntryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	entry, err := DTOToEntry(dto)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid date format", "Expected format: "+dateLayout)
		return
	}
	entry.Id = entryId

	updated, err := h.service.UpdateEntry(r.Context(), entry)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EntryToDTO(updated))
}

// DeleteEntry godoc
// @Summary Delete a timesheet entry
// @Description Entries used in payroll cannot be deleted
// @Tags Timesheet
// @Param entryId path int true "Entry ID"
// @Success 204 "No Content"
// @Failure 404 {string} string "Entry not found"
// @Failure 409 {object} rest.ErrorResponse "Entry used in payroll"
// @Router /api/timesheet/{entryId} [delete]
// @Security XUserId
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryId, err := strconv.Atoi(mux.Vars(r)["entryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteEntry(r.Context(), entryId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		http.Error(w, ErrEntryNotFound.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SplitEntry godoc
// @Summary Split a timesheet entry as needed
// @Description Splits the entry into hoursToSpend hours and the rest when hoursToSpend is between zero and the entry quantity.
// @Description For work types with a meal allowance, foodDaysRest decides which part keeps the allowance.
// @Tags Timesheet
// @Accept json
// @Produce json
// @Param entryId path int true "Entry ID"
// @Param split body SplitRequestDTO true "Split request"
// @Success 200 {object} SplitResponseDTO
// @Failure 404 {string} string "Entry not found"
// @Failure 409 {object} rest.ErrorResponse "Entry used in payroll"
// @Failure 500 {object} rest.ErrorResponse "Work type configuration error"
// @Router /api/timesheet/{entryId}/split [post]
// @Security XUserId
func (h *Handler) SplitEntry(w http.ResponseWriter, r *http.Request) {
	entryId, err := strconv.Atoi(mux.Vars(r)["entryId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var dto SplitRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}

	result, split, err := h.service.SplitAsNeeded(r.Context(), entryId, dto.HoursToSpend, dto.FoodDaysRest)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	response := SplitResponseDTO{Split: split, Entries: []EntryDTO{}}
	if split {
		response.Entries = append(response.Entries, EntryToDTO(result.First), EntryToDTO(result.Second))
	}
	writeJSON(w, http.StatusOK, response)
}

// ExportCsv godoc
// @Summary Export timesheet entries as CSV
// @Tags Timesheet
// @Produce text/csv
// @Param from query string false "First day (YYYY-MM-DD)"
// @Param to query string false "Last day (YYYY-MM-DD)"
// @Param inPayrollOp query string false "Payroll date operator, = or !="
// @Param inPayroll query string false "Payroll date (YYYY-MM-DD)"
// @Success 200 {string} string "CSV"
// @Router /api/timesheet/export [get]
// @Security XUserId
func (h *Handler) ExportCsv(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid query", err.Error())
		return
	}
	csv, err := h.service.ExportCsv(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="timesheet.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(csv)); err != nil {
		log.Errorf("failed to write csv response: %v", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	var configErr *work_type.ConfigurationError
	switch {
	case errors.Is(err, ErrEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrEntryLocked):
		rest.WriteError(w, http.StatusConflict, "Timesheet entry is used in payroll", err.Error())
	case errors.Is(err, ErrEntryInvalid):
		rest.WriteError(w, http.StatusBadRequest, "Invalid timesheet entry", err.Error())
	case errors.As(err, &configErr):
		log.Errorf("work type configuration error: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Work type configuration error", err.Error())
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func filterFromQuery(r *http.Request) (EntryFilter, error) {
	query := r.URL.Query()
	var filter EntryFilter
	var err error
	if from := query.Get("from"); from != "" {
		if filter.From, err = time.Parse(dateLayout, from); err != nil {
			return EntryFilter{}, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if to := query.Get("to"); to != "" {
		if filter.To, err = time.Parse(dateLayout, to); err != nil {
			return EntryFilter{}, fmt.Errorf("invalid to date: %w", err)
		}
	}
	if operator := query.Get("inPayrollOp"); operator != "" {
		payroll := &PayrollFilter{Operator: operator}
		if value := query.Get("inPayroll"); value != "" {
			date, err := time.Parse(dateLayout, value)
			if err != nil {
				return EntryFilter{}, fmt.Errorf("invalid payroll date: %w", err)
			}
			payroll.Value = &date
		}
		filter.Payroll = payroll
	}
	return filter, nil
}

func EntryToDTO(entry Entry) EntryDTO {
	dto := EntryDTO{
		Id:           entry.Id,
		Uid:          entry.Uid,
		Date:         entry.Date.Format(dateLayout),
		ProjectId:    entry.ProjectId,
		TaskId:       entry.TaskId,
		EmployeeId:   entry.EmployeeId,
		WorkTypeId:   entry.WorkType.Id,
		WorkTypeCode: entry.WorkTypeCode(),
		Quantity:     entry.Quantity,
		Label:        entry.Label,
	}
	if entry.InPayroll != nil {
		inPayroll := entry.InPayroll.Format(dateLayout)
		dto.InPayroll = &inPayroll
	}
	return dto
}

// DTOToEntry ignores the read only fields of the DTO.
func DTOToEntry(dto EntryDTO) (Entry, error) {
	entry := Entry{
		Id:         dto.Id,
		ProjectId:  dto.ProjectId,
		TaskId:     dto.TaskId,
		EmployeeId: dto.EmployeeId,
		WorkType:   work_type.WorkType{Id: dto.WorkTypeId},
		Quantity:   dto.Quantity,
		Label:      dto.Label,
	}
	if dto.Date != "" {
		date, err := time.Parse(dateLayout, dto.Date)
		if err != nil {
			return Entry{}, err
		}
		entry.Date = date
	}
	return entry, nil
}
