package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The stepState JSON shape is consumed by the review UI; keep it stable.
func TestStepState_WireShape(t *testing.T) {
	state := StepState{
		CurrentStep:    "extract-urls",
		CompletedSteps: []string{"load", "mark-processing"},
		DocumentCounts: DocumentCounts{Total: 3, Processed: 1, Failed: 1},
		LastUpdated:    time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "extract-urls", decoded["currentStep"])
	assert.Equal(t, []any{"load", "mark-processing"}, decoded["completedSteps"])
	assert.Equal(t, map[string]any{"total": float64(3), "processed": float64(1), "failed": float64(1)}, decoded["documentCounts"])
	assert.Equal(t, "2025-06-01T12:30:00Z", decoded["lastUpdated"])
}

func TestDocument_SourceRef(t *testing.T) {
	urlDoc := Document{Type: DocumentTypeURL, URL: "https://fund.example.com", StorageKey: "ignored"}
	assert.Equal(t, "https://fund.example.com", urlDoc.SourceRef())

	pdfDoc := Document{Type: DocumentTypePDF, StorageKey: "decks/fund.pdf"}
	assert.Equal(t, "decks/fund.pdf", pdfDoc.SourceRef())
}
