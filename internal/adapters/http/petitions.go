package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/grievease/petition-triage/internal/core/domain"
)

const maxJSONBodyBytes = 1 << 20

func (rt *Router) submitPetition(w http.ResponseWriter, r *http.Request) {
	var req domain.SubmitPetitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	petition, err := rt.svc.Submitter.Submit(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rt.recordPetition("submit", petition)
	writeJSON(w, http.StatusCreated, petition)
}

func (rt *Router) getPetition(w http.ResponseWriter, r *http.Request) {
	id, ok := petitionID(w, r)
	if !ok {
		return
	}
	petition, err := rt.svc.Reader.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, petition)
}

func (rt *Router) classifyPetition(w http.ResponseWriter, r *http.Request) {
	id, ok := petitionID(w, r)
	if !ok {
		return
	}
	petition, err := rt.svc.Submitter.Reclassify(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	rt.recordPetition("classify", petition)
	writeJSON(w, http.StatusOK, petition)
}

type reclassifyRequest struct {
	DepartmentID *int64 `json:"department_id"`
	CategoryID   *int64 `json:"category_id"`
	OfficerID    string `json:"officer_id"`
	Note         string `json:"note"`
}

func (rt *Router) reclassifyPetition(w http.ResponseWriter, r *http.Request) {
	id, ok := petitionID(w, r)
	if !ok {
		return
	}
	var body reclassifyRequest
	if !decodeJSON(w, r, &body) {
		return
	}

	req := domain.ReclassificationRequest{
		PetitionID:   id,
		DepartmentID: body.DepartmentID,
		CategoryID:   body.CategoryID,
		OfficerID:    body.OfficerID,
		Note:         body.Note,
	}
	result, err := rt.svc.Reclassifier.Override(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordOverride(serviceName, req)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) listReclassifications(w http.ResponseWriter, r *http.Request) {
	id, ok := petitionID(w, r)
	if !ok {
		return
	}
	history, err := rt.svc.Reader.ListReclassifications(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.Reclassification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"petition_id": id, "reclassifications": history})
}

func (rt *Router) recordPetition(endpoint string, p *domain.Petition) {
	if rt.metrics == nil || p == nil {
		return
	}
	rt.metrics.RecordClassification(serviceName, endpoint, domain.ClassificationResult{
		DepartmentName: p.Department,
		UrgencyLevel:   p.UrgencyLevel,
		Confidence:     p.ClassificationConfidence,
	})
}

// petitionID binds the {id} path segment and writes a 400 on failure.
func petitionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", r.PathValue("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "petition id must be a positive integer")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		message := "invalid json body"
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			message = fmt.Sprintf("invalid json body at offset %d", syntaxErr.Offset)
		}
		writeError(w, r, http.StatusBadRequest, message)
		return false
	}
	return true
}
