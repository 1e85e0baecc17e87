// Package roster manages the collaborator roster for termination batch
// runs. A roster row carries admission and dismissal dates; the number
// of month units to process is the inclusive count of first-of-month
// steps between them.
package roster

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pontohub/pontohub/internal/model"
	"github.com/pontohub/pontohub/pkg/errors"
	"github.com/pontohub/pontohub/pkg/logger"
)

const dateLayout = "02/01/2006"

// Row is one uploaded roster entry
type Row struct {
	Nome     string `json:"nome"`
	Admissao string `json:"admissao"` // dd/mm/yyyy
	Demissao string `json:"demissao"` // dd/mm/yyyy
}

// MonthUnits counts the inclusive first-of-month steps between the
// admission and dismissal dates. Both endpoints count:
// 15/01 to 10/03 spans January, February, and March, so 3.
func MonthUnits(admissao, demissao string) (int, error) {
	adm, err := time.Parse(dateLayout, admissao)
	if err != nil {
		return 0, err
	}
	dem, err := time.Parse(dateLayout, demissao)
	if err != nil {
		return 0, err
	}

	current := time.Date(adm.Year(), adm.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(dem.Year(), dem.Month(), 1, 0, 0, 0, 0, time.UTC)

	meses := 0
	for !current.After(end) {
		meses++
		current = current.AddDate(0, 1, 0)
	}
	return meses, nil
}

// Parse decodes an uploaded roster JSON array into collaborator
// records. Rows with unparseable dates are skipped with a warning,
// mirroring how the spreadsheet loader behaved. An empty result is an
// error: a termination batch needs at least one collaborator.
func Parse(data []byte) ([]model.Collaborator, *errors.AppError) {
	var rows []Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRosterInvalid, "roster is not valid JSON", err)
	}

	log := logger.Named("roster")
	var out []model.Collaborator
	for _, row := range rows {
		nome := strings.TrimSpace(row.Nome)
		if nome == "" {
			log.Warn("Skipping roster row without a name")
			continue
		}
		meses, err := MonthUnits(strings.TrimSpace(row.Admissao), strings.TrimSpace(row.Demissao))
		if err != nil {
			log.Warn("Skipping roster row with invalid dates",
				zap.String("nome", nome),
				zap.Error(err),
			)
			continue
		}
		out = append(out, model.Collaborator{
			Nome:     nome,
			Admissao: strings.TrimSpace(row.Admissao),
			Demissao: strings.TrimSpace(row.Demissao),
			Meses:    meses,
		})
	}

	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeRosterEmpty, "roster contains no valid collaborators")
	}
	return out, nil
}
