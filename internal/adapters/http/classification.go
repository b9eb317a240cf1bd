package httpadapter

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/grievease/petition-triage/internal/core/domain"
)

func (rt *Router) previewClassification(w http.ResponseWriter, r *http.Request) {
	var text domain.PetitionText
	if !decodeJSON(w, r, &text) {
		return
	}
	result, err := rt.svc.Advisor.Preview(r.Context(), text)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordClassification(serviceName, "preview", result)
	}
	writeJSON(w, http.StatusOK, result)
}

type suggestionRequest struct {
	Text string `json:"text"`
	TopN int    `json:"top_n"`
}

func (rt *Router) suggestClassification(w http.ResponseWriter, r *http.Request) {
	var req suggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	set, err := rt.svc.Advisor.Suggest(r.Context(), req.Text, req.TopN)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type letterResponse struct {
	Filename       string                      `json:"filename"`
	ExtractedChars int                         `json:"extracted_chars"`
	Classification domain.ClassificationResult `json:"classification"`
}

// classifyLetter extracts text from an uploaded letter and previews its classification.
// The optional "title" form field is scored together with the letter body.
func (rt *Router) classifyLetter(w http.ResponseWriter, r *http.Request) {
	limit := rt.cfg.LetterMaxBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	body, err := rt.svc.Extractor.Extract(r.Context(), header.Filename, file)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(header.Filename), filepath.Ext(header.Filename))
	}
	result, err := rt.svc.Advisor.Preview(r.Context(), domain.PetitionText{
		Title:       title,
		Description: body,
		Location:    strings.TrimSpace(r.FormValue("location")),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordClassification(serviceName, "letter", result)
	}
	writeJSON(w, http.StatusOK, letterResponse{
		Filename:       header.Filename,
		ExtractedChars: len([]rune(body)),
		Classification: result,
	})
}
