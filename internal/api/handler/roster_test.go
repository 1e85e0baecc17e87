package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/progress"
	"github.com/pontohub/pontohub/internal/remote"
	"github.com/pontohub/pontohub/pkg/errors"
)

func setupRosterRouter(buffer *logbuf.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tracker := progress.NewTracker(buffer, 20)
	r := gin.New()
	h := NewRosterHandler(tracker)
	r.POST("/roster", h.Upload)
	r.GET("/progress", h.Progress)
	return r
}

// TestRosterHandler_Upload tests loading a roster
func TestRosterHandler_Upload(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	router := setupRosterRouter(buffer)

	roster := `[
		{"nome": "Ana Silva", "admissao": "15/01/2026", "demissao": "10/03/2026"},
		{"nome": "Bruno Costa", "admissao": "01/06/2025", "demissao": "28/02/2026"}
	]`
	req, _ := http.NewRequest("POST", "/roster", bytes.NewReader([]byte(roster)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		Collaborators int `json:"collaborators"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Collaborators != 2 {
		t.Errorf("Expected 2 collaborators, got %d", response.Collaborators)
	}
}

// TestRosterHandler_Upload_Empty tests the empty roster rejection
func TestRosterHandler_Upload_Empty(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	router := setupRosterRouter(buffer)

	req, _ := http.NewRequest("POST", "/roster", bytes.NewReader([]byte("[]")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty roster, got %d", w.Code)
	}

	var response struct {
		Code string `json:"code"`
	}
	json.Unmarshal(w.Body.Bytes(), &response)
	if response.Code != string(errors.ErrCodeRosterEmpty) {
		t.Errorf("Expected code %s, got %s", errors.ErrCodeRosterEmpty, response.Code)
	}
}

// TestRosterHandler_Upload_InvalidJSON tests malformed payload rejection
func TestRosterHandler_Upload_InvalidJSON(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	router := setupRosterRouter(buffer)

	req, _ := http.NewRequest("POST", "/roster", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid JSON, got %d", w.Code)
	}
}

// TestRosterHandler_Progress tests the derived progress view
func TestRosterHandler_Progress(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	buffer.Append([]remote.RawLogEntry{
		{Timestamp: "2026-03-01 10:00:00", Level: "info", Message: "RESCISAO_MES_CONCLUIDO:Ana Silva:1/3"},
		{Timestamp: "2026-03-01 10:05:00", Level: "info", Message: "🔍 Buscando dados de Ana Silva"},
	})
	router := setupRosterRouter(buffer)

	roster := `[{"nome": "Ana Silva", "admissao": "15/01/2026", "demissao": "10/03/2026"}]`
	req, _ := http.NewRequest("POST", "/roster", bytes.NewReader([]byte(roster)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Roster upload failed: %d", w.Code)
	}

	req, _ = http.NewRequest("GET", "/progress", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Collaborators []struct {
			Nome        string `json:"nome"`
			Meses       int    `json:"meses"`
			Processados int    `json:"processados"`
			Percent     int    `json:"percent"`
		} `json:"collaborators"`
		CurrentAction string `json:"current_action"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if len(response.Collaborators) != 1 {
		t.Fatalf("Expected 1 collaborator, got %d", len(response.Collaborators))
	}
	collab := response.Collaborators[0]
	if collab.Meses != 3 || collab.Processados != 1 {
		t.Errorf("Expected 1/3 processed, got %d/%d", collab.Processados, collab.Meses)
	}
	if collab.Percent != 33 {
		t.Errorf("Expected 33 percent, got %d", collab.Percent)
	}
	if response.CurrentAction == "" {
		t.Error("Expected a current action derived from the glyph line")
	}

}
