package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/grievease/petition-triage/internal/core/domain"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (rt *Router) urgencyDistribution(w http.ResponseWriter, r *http.Request) {
	counts, err := rt.svc.Analytics.UrgencyDistribution(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if counts == nil {
		counts = []domain.UrgencyCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"urgency_distribution": counts})
}

func (rt *Router) departmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := rt.svc.Analytics.DepartmentStats(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if stats == nil {
		stats = []domain.DepartmentStat{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"department_stats": stats})
}

// exportAnalytics renders into memory first so a failed render still gets a JSON error.
func (rt *Router) exportAnalytics(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rt.svc.Analytics.Export(r.Context(), &buf); err != nil {
		writeDomainError(w, r, err)
		return
	}
	filename := fmt.Sprintf("petition-analytics-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
