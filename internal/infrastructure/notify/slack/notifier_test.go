package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func criticalEvent() domain.PetitionEvent {
	category := "Water Supply"
	categoryID := int64(6)
	return domain.PetitionEvent{
		Type:         domain.EventPetitionClassified,
		PetitionID:   42,
		Title:        "Burst pipeline flooding the main road",
		DepartmentID: 1,
		Department:   "Public Works",
		CategoryID:   &categoryID,
		Category:     &category,
		UrgencyLevel: domain.UrgencyCritical,
		Confidence:   77,
	}
}

func TestNotifyCriticalPostsBlocks(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := New(server.URL, Options{Channel: "#triage-critical", PetitionBaseURL: "https://console.example/petitions/"})
	require.NoError(t, n.NotifyCritical(context.Background(), criticalEvent()))

	assert.Equal(t, "#triage-critical", payload["channel"])
	assert.Contains(t, payload["text"], "Public Works")

	blocks, ok := payload["blocks"].([]any)
	require.True(t, ok, "blocks missing: %v", payload)
	require.Len(t, blocks, 3)

	raw, err := json.Marshal(blocks[1])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "<https://console.example/petitions/42|Petition #42>"), string(raw))
	assert.True(t, strings.Contains(string(raw), "Public Works / Water Supply"))
}

func TestNotifyCriticalWrapsWebhookFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no_service", http.StatusNotFound)
	}))
	defer server.Close()

	err := New(server.URL, Options{}).NotifyCritical(context.Background(), criticalEvent())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrTemporary))
}

func TestCriticalMessageWithoutCategory(t *testing.T) {
	event := criticalEvent()
	event.Category = nil
	event.CategoryID = nil

	msg := New("https://hooks.example", Options{}).criticalMessage(event)
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "*Petition #42*")
	assert.Contains(t, string(raw), "Due within 1 day")
	assert.NotContains(t, string(raw), " / ")
}
