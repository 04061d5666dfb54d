package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Freeeeeet/driver_availability/internal/model"
	"github.com/Freeeeeet/driver_availability/internal/service"
)

type handler struct {
	availability AvailabilityService
	templates    TemplateService
	applier      TemplateApplier
	logger       *zap.Logger
}

type templateRequest struct {
	UserID      int64             `json:"userId"`
	Name        *string           `json:"name"`
	WeekPattern model.WeekPattern `json:"weekPattern"`
}

type applyRequest struct {
	UserID    int64  `json:"userId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Overwrite bool   `json:"overwrite"`
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode body: %v", model.ErrValidation, err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", model.ErrValidation, raw)
	}
	return id, nil
}

func queryUserID(r *http.Request) (int64, error) {
	return parseUserID(r.URL.Query().Get("userId"))
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	return id, nil
}

func requireUserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: userId is required", model.ErrValidation)
	}
	return nil
}

// GET /availabilities/all?userId=&date=
func (h *handler) listAvailabilities(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	days, err := h.availability.List(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		h.fail(r, "List availabilities failed", err)
		respondError(w, err)
		return
	}
	if days == nil {
		days = []*model.DayAvailability{}
	}
	respondJSON(w, http.StatusOK, envelope{"availabilities": days})
}

// POST /availabilities/add
func (h *handler) createAvailability(w http.ResponseWriter, r *http.Request) {
	var p model.DayPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, err)
		return
	}
	if err := requireUserID(p.UserID); err != nil {
		respondError(w, err)
		return
	}

	slots, present, err := p.Slots()
	if err != nil {
		respondError(w, err)
		return
	}
	if !present {
		respondError(w, fmt.Errorf("%w: slotStatuses is required", model.ErrValidation))
		return
	}

	day, err := h.availability.Create(r.Context(), p.UserID, p.Date, slots)
	if err != nil {
		h.fail(r, "Create availability failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"availability": day})
}

// PUT /availabilities/update/{id}
func (h *handler) updateAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var p model.DayPayload
	if err := decodeBody(r, &p); err != nil {
		respondError(w, err)
		return
	}
	if err := requireUserID(p.UserID); err != nil {
		respondError(w, err)
		return
	}

	slots, present, err := p.Slots()
	if err != nil {
		respondError(w, err)
		return
	}
	if !present {
		respondError(w, fmt.Errorf("%w: slotStatuses is required", model.ErrValidation))
		return
	}

	day, err := h.availability.Update(r.Context(), p.UserID, id, slots)
	if err != nil {
		h.fail(r, "Update availability failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"availability": day})
}

// DELETE /availabilities/delete/{id}?userId=
func (h *handler) deleteAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	userID, err := queryUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.availability.Delete(r.Context(), userID, id); err != nil {
		h.fail(r, "Delete availability failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// GET /availability-templates/all?userId=
func (h *handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	templates, err := h.templates.List(r.Context(), userID)
	if err != nil {
		h.fail(r, "List templates failed", err)
		respondError(w, err)
		return
	}
	if templates == nil {
		templates = []*model.AvailabilityTemplate{}
	}
	respondJSON(w, http.StatusOK, envelope{"templates": templates})
}

// POST /availability-templates/add
func (h *handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		respondError(w, err)
		return
	}

	name := ""
	if req.Name != nil {
		name = *req.Name
	}
	tmpl, err := h.templates.Create(r.Context(), req.UserID, name, req.WeekPattern)
	if err != nil {
		h.fail(r, "Create template failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, envelope{"template": tmpl})
}

// PUT /availability-templates/update/{id}
func (h *handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req templateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		respondError(w, err)
		return
	}

	tmpl, err := h.templates.Update(r.Context(), req.UserID, id, service.TemplatePatch{
		Name:        req.Name,
		WeekPattern: req.WeekPattern,
	})
	if err != nil {
		h.fail(r, "Update template failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"template": tmpl})
}

// DELETE /availability-templates/delete/{id}?userId=
func (h *handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	userID, err := queryUserID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.templates.Delete(r.Context(), userID, id); err != nil {
		h.fail(r, "Delete template failed", err)
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"deleted": true})
}

// POST /availability-templates/apply/{id}
//
// A failure part way through still reports the counters of the dates already
// written next to the error.
func (h *handler) applyTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req applyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := requireUserID(req.UserID); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.applier.Apply(r.Context(), service.ApplyRequest{
		UserID:     req.UserID,
		TemplateID: id,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Overwrite:  req.Overwrite,
	})
	if err != nil {
		h.fail(r, "Apply template failed", err)
		if _, partial := model.FailedDate(err); partial {
			status, _ := errorStatus(err)
			respondJSON(w, status, envelope{"result": result, "error": errorBody(err)})
			return
		}
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, envelope{"result": result})
}

func (h *handler) fail(r *http.Request, msg string, err error) {
	status, _ := errorStatus(err)
	fields := []zap.Field{
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error(msg, fields...)
		return
	}
	h.logger.Warn(msg, fields...)
}
