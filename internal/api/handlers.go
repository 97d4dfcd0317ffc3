package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lksmaxx/enroll-api/internal/domain/agegroup"
	"github.com/lksmaxx/enroll-api/internal/domain/enrollment"
	"github.com/lksmaxx/enroll-api/internal/usecase"
	"github.com/lksmaxx/enroll-api/internal/validator"
)

type Handlers struct {
	submitUC    *usecase.SubmitEnrollment
	getUC       *usecase.GetEnrollment
	ageGroupsUC *usecase.AgeGroups
}

func NewHandlers(submitUC *usecase.SubmitEnrollment, getUC *usecase.GetEnrollment, ageGroupsUC *usecase.AgeGroups) *Handlers {
	return &Handlers{
		submitUC:    submitUC,
		getUC:       getUC,
		ageGroupsUC: ageGroupsUC,
	}
}

func (h *Handlers) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
		CPF  string `json:"cpf"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.submitUC.Execute(r.Context(), usecase.SubmitEnrollmentParams{
		Name: req.Name,
		Age:  req.Age,
		CPF:  req.CPF,
	})
	if err != nil {
		var verr *validator.Error
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, verr)
		case errors.Is(err, agegroup.ErrNoMatch):
			writeError(w, http.StatusBadRequest, "no age group matches the given age")
		default:
			writeError(w, http.StatusInternalServerError, "failed to submit enrollment")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"id":     id,
		"status": string(enrollment.StatusPending),
	})
}

func (h *Handlers) GetEnrollment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing enrollment id")
		return
	}

	dto, err := h.getUC.Execute(r.Context(), id)
	if err != nil {
		if errors.Is(err, enrollment.ErrNotFound) {
			writeError(w, http.StatusNotFound, "enrollment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get enrollment")
		return
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, dto)
}

type ageGroupRequest struct {
	MinAge int `json:"min_age"`
	MaxAge int `json:"max_age"`
}

func (h *Handlers) CreateAgeGroup(w http.ResponseWriter, r *http.Request) {
	var req ageGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.ageGroupsUC.Create(r.Context(), req.MinAge, req.MaxAge)
	if err != nil {
		if errors.Is(err, agegroup.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create age group")
		return
	}

	writeJSON(w, http.StatusCreated, g)
}

func (h *Handlers) GetAgeGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.ageGroupsUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, agegroup.ErrNotFound) {
			writeError(w, http.StatusNotFound, "age group not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get age group")
		return
	}

	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) ListAgeGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.ageGroupsUC.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list age groups")
		return
	}
	if groups == nil {
		groups = []*agegroup.AgeGroup{}
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *Handlers) UpdateAgeGroup(w http.ResponseWriter, r *http.Request) {
	var req ageGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g, err := h.ageGroupsUC.Update(r.Context(), chi.URLParam(r, "id"), req.MinAge, req.MaxAge)
	if err != nil {
		switch {
		case errors.Is(err, agegroup.ErrInvalidRange):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, agegroup.ErrNotFound):
			writeError(w, http.StatusNotFound, "age group not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to update age group")
		}
		return
	}

	writeJSON(w, http.StatusOK, g)
}

func (h *Handlers) DeleteAgeGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.ageGroupsUC.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, agegroup.ErrNotFound) {
			writeError(w, http.StatusNotFound, "age group not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete age group")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "age group deleted successfully"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
