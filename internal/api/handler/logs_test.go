package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pontohub/pontohub/internal/logbuf"
	"github.com/pontohub/pontohub/internal/remote"
)

func setupLogsRouter(buffer *logbuf.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewLogsHandler(buffer)
	r.GET("/logs", h.List)
	r.DELETE("/logs", h.Clear)
	return r
}

// TestLogsHandler_List tests fetching the log buffer snapshot
func TestLogsHandler_List(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	buffer.Append([]remote.RawLogEntry{
		{Timestamp: "2026-03-01 10:00:00", Level: "info", Message: "first"},
		{Timestamp: "2026-03-01 10:00:01", Level: "error", Message: "second"},
	})
	router := setupLogsRouter(buffer)

	req, _ := http.NewRequest("GET", "/logs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var response struct {
		Logs []struct {
			Timestamp string `json:"timestamp"`
			Level     string `json:"level"`
			Message   string `json:"message"`
		} `json:"logs"`
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}

	if response.Total != 2 {
		t.Errorf("Expected total 2, got %d", response.Total)
	}
	if len(response.Logs) != 2 || response.Logs[0].Message != "first" {
		t.Errorf("Unexpected logs payload: %+v", response.Logs)
	}
}

// TestLogsHandler_Clear tests clearing the log buffer
func TestLogsHandler_Clear(t *testing.T) {
	buffer := logbuf.NewBuffer(100, 200)
	buffer.Append([]remote.RawLogEntry{
		{Timestamp: "2026-03-01 10:00:00", Level: "info", Message: "entry"},
	})
	router := setupLogsRouter(buffer)

	req, _ := http.NewRequest("DELETE", "/logs", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if buffer.Len() != 0 {
		t.Errorf("Expected empty buffer after clear, got %d entries", buffer.Len())
	}
}
