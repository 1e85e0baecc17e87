package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/progress"
	"github.com/pontohub/pontohub/internal/roster"
	"github.com/pontohub/pontohub/pkg/logger"
)

// maxRosterBytes bounds the roster upload size
const maxRosterBytes = 4 << 20

// RosterHandler accepts collaborator rosters and serves derived
// termination progress
type RosterHandler struct {
	tracker *progress.Tracker
	log     *zap.Logger
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(tracker *progress.Tracker) *RosterHandler {
	return &RosterHandler{
		tracker: tracker,
		log:     logger.Named("roster-handler"),
	}
}

// Upload handles POST /api/v1/roster
// The body is the raw roster JSON array. Progress counters reset and
// are immediately re-derived from the log buffer, so a roster re-upload
// mid-run recovers the current state instead of starting from zero.
func (h *RosterHandler) Upload(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRosterBytes))
	if err != nil {
		respondValidation(c, "Failed to read request body")
		return
	}

	collabs, appErr := roster.Parse(data)
	if appErr != nil {
		respondError(c, appErr)
		return
	}

	h.tracker.SetRoster(collabs)

	h.log.Info("Roster loaded", zap.Int("collaborators", len(collabs)))
	c.JSON(http.StatusOK, gin.H{
		"message":       "roster loaded",
		"collaborators": len(collabs),
	})
}

// Progress handles GET /api/v1/progress
func (h *RosterHandler) Progress(c *gin.Context) {
	snap := h.tracker.Snapshot()

	type entry struct {
		Nome        string `json:"nome"`
		Admissao    string `json:"admissao"`
		Demissao    string `json:"demissao"`
		Meses       int    `json:"meses"`
		Processados int    `json:"processados"`
		Erros       []int  `json:"erros,omitempty"`
		Percent     int    `json:"percent"`
	}

	entries := make([]entry, 0, len(snap.Collaborators))
	for _, collab := range snap.Collaborators {
		entries = append(entries, entry{
			Nome:        collab.Nome,
			Admissao:    collab.Admissao,
			Demissao:    collab.Demissao,
			Meses:       collab.Meses,
			Processados: collab.Processados,
			Erros:       collab.Erros,
			Percent:     collab.Percent(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"collaborators":  entries,
		"current_action": snap.CurrentAction,
	})
}
