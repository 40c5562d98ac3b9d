package work_type

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/timesheet/internal/rest"
	log "github.com/sirupsen/logrus"
)

type WorkTypeDTO struct {
	Id           int    `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	FoodIncluded bool   `json:"foodIncluded"`
}

type CatalogValidationDTO struct {
	Valid  bool   `json:"valid"`
	Errors string `json:"errors,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListWorkTypes godoc
// @Summary List work types
// @Tags WorkType
// @Produce json
// @Success 200 {array} WorkTypeDTO
// @Router /api/worktype [get]
// @Security XUserId
func (h *Handler) ListWorkTypes(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing work types")
	w.Header().Set("Content-Type", "application/json")
	types, err := h.service.ListWorkTypes(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dtos := make([]WorkTypeDTO, 0, len(types))
	for _, wt := range types {
		dtos = append(dtos, WorkTypeToDTO(wt))
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateWorkType godoc
// @Summary Register a work type
// @Tags WorkType
// @Accept json
// @Produce json
// @Param workType body WorkTypeDTO true "Work type"
// @Success 201 {object} WorkTypeDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 409 {object} rest.ErrorResponse "Code already exists"
// @Router /api/worktype [post]
// @Security XUserId
func (h *Handler) CreateWorkType(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating work type")
	var dto WorkTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	created, err := h.service.CreateWorkType(r.Context(), DTOToWorkType(dto))
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkTypeInvalid):
			rest.WriteError(w, http.StatusBadRequest, "Invalid work type", err.Error())
		case errors.Is(err, ErrWorkTypeCodeTaken):
			rest.WriteError(w, http.StatusConflict, "Work type code already exists", dto.Code)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(WorkTypeToDTO(created)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ValidateCatalog godoc
// @Summary Validate work type pairing
// @Description Checks that every work type including food has a without-food counterpart
// @Tags WorkType
// @Produce json
// @Success 200 {object} CatalogValidationDTO
// @Router /api/worktype/catalog/validation [get]
// @Security XUserId
func (h *Handler) ValidateCatalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	result := CatalogValidationDTO{Valid: true}
	if _, err := h.service.LoadCatalog(r.Context()); err != nil {
		if !errors.Is(err, ErrConfiguration) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		result = CatalogValidationDTO{Valid: false, Errors: err.Error()}
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func WorkTypeToDTO(wt WorkType) WorkTypeDTO {
	return WorkTypeDTO{
		Id:           wt.Id,
		Code:         wt.Code,
		Name:         wt.Name,
		FoodIncluded: wt.FoodIncluded,
	}
}

func DTOToWorkType(dto WorkTypeDTO) WorkType {
	return WorkType{
		Id:           dto.Id,
		Code:         dto.Code,
		Name:         dto.Name,
		FoodIncluded: dto.FoodIncluded,
	}
}
