// Package progress implements the progress inference engine. There is
// no structured progress API: per-collaborator state is reconstructed by
// pattern-matching marker lines the worker drops into the shared log
// stream.
package progress

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pontohub/pontohub/internal/model"
)

// Marker grammar. The completion marker has the form
// RESCISAO_MES_CONCLUIDO:<name>:<k>/<n>; the error marker is a literal
// phrase with the month index extracted separately.
const (
	completionMarker = "RESCISAO_MES_CONCLUIDO:"
	errorMarker      = "Erro ao processar mês"
)

var (
	fractionRe   = regexp.MustCompile(`(\d+)/(\d+)`)
	errorMonthRe = regexp.MustCompile(`mês (\d+)`)
)

// actionGlyphs mark worker activity lines worth surfacing as the
// current action
var actionGlyphs = []string{"🌐", "⏳", "✅", "📌", "📅", "👤", "🔍", "👁️", "📥"}

// DefaultActionWindow is how many recent entries CurrentAction scans
const DefaultActionWindow = 20

// Infer recomputes processados and erros for each collaborator from the
// buffer contents. It is a pure function: the same logs and input list
// always produce the same output. The returned flag reports whether any
// record changed; unchanged records are returned as-is.
func Infer(logs []model.LogEntry, collabs []model.Collaborator) ([]model.Collaborator, bool) {
	out := make([]model.Collaborator, len(collabs))
	changed := false

	for i, collab := range collabs {
		updated := collab
		updated.Processados = inferProcessados(logs, collab.Nome)
		updated.Erros = inferErros(logs, collab.Nome)

		if !collab.Equal(updated) {
			out[i] = updated
			changed = true
		} else {
			out[i] = collab
		}
	}

	return out, changed
}

// inferProcessados finds the last completion marker for the given name
// in buffer order and returns its k. A later marker always wins, even
// when k goes backwards, so a restarted batch resets the display.
func inferProcessados(logs []model.LogEntry, nome string) int {
	processados := 0
	for _, log := range logs {
		if !strings.Contains(log.Message, completionMarker) || !strings.Contains(log.Message, nome) {
			continue
		}
		if m := fractionRe.FindStringSubmatch(log.Message); m != nil {
			k, err := strconv.Atoi(m[1])
			if err == nil {
				processados = k
			}
		}
	}
	return processados
}

// inferErros collects the distinct failed month indices for the given
// name, sorted ascending for stable display.
func inferErros(logs []model.LogEntry, nome string) []int {
	seen := map[int]struct{}{}
	for _, log := range logs {
		if log.Level != model.LogLevelError {
			continue
		}
		if !strings.Contains(log.Message, nome) || !strings.Contains(log.Message, errorMarker) {
			continue
		}
		if m := errorMonthRe.FindStringSubmatch(log.Message); m != nil {
			month, err := strconv.Atoi(m[1])
			if err == nil && month > 0 {
				seen[month] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	erros := make([]int, 0, len(seen))
	for month := range seen {
		erros = append(erros, month)
	}
	sort.Ints(erros)
	return erros
}

// CurrentAction returns the most recent info-level line carrying one of
// the activity glyphs, scanning the last window entries backwards. An
// empty string means no recent activity line was found.
func CurrentAction(logs []model.LogEntry, window int) string {
	if window <= 0 {
		window = DefaultActionWindow
	}
	start := len(logs) - window
	if start < 0 {
		start = 0
	}
	for i := len(logs) - 1; i >= start; i-- {
		if logs[i].Level != model.LogLevelInfo {
			continue
		}
		for _, glyph := range actionGlyphs {
			if strings.Contains(logs[i].Message, glyph) {
				return logs[i].Message
			}
		}
	}
	return ""
}
