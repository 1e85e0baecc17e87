package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestReportsHandler_List tests the static report catalog endpoint
func TestReportsHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewReportsHandler()
	router.GET("/reports", h.List)

	req, _ := http.NewRequest("GET", "/reports", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Reports []struct {
			ID           int    `json:"id"`
			Name         string `json:"name"`
			Type         string `json:"type"`
			RequiresDate bool   `json:"requires_date"`
		} `json:"reports"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if len(response.Reports) != 11 {
		t.Fatalf("Expected 11 reports, got %d", len(response.Reports))
	}
	if response.Reports[0].Name != "Absenteísmo" {
		t.Errorf("Expected first report 'Absenteísmo', got %q", response.Reports[0].Name)
	}

	var dbCount int
	for _, r := range response.Reports {
		if r.Type == "database" {
			dbCount++
			if r.RequiresDate {
				t.Errorf("Database report %q should not require dates", r.Name)
			}
		}
	}
	if dbCount != 1 {
		t.Errorf("Expected exactly 1 database report, got %d", dbCount)
	}
}
