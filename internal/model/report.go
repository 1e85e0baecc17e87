package model

// ReportType distinguishes how a report is produced
type ReportType string

const (
	// ReportTypeScraping reports are generated by the browser automation worker
	ReportTypeScraping ReportType = "scraping"
	// ReportTypeDatabase reports run a fixed query against the HR database
	ReportTypeDatabase ReportType = "database"
)

// Report describes one entry of the fixed report catalog
type Report struct {
	ID           int        `json:"id"`
	Name         string     `json:"name"`
	RequiresDate bool       `json:"requires_date"`
	Type         ReportType `json:"type"`
}

// reportCatalog is the fixed set of reports the queue service knows how
// to produce. IDs are stable; schedule rules reference them.
var reportCatalog = []Report{
	{ID: 1, Name: "Absenteísmo", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 2, Name: "Auditoria", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 3, Name: "Banco de horas", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 4, Name: "Jornada (espelho ponto)", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 5, Name: "Faltas", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 6, Name: "Solicitações", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 7, Name: "Afastamentos e férias", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 8, Name: "Assinaturas", RequiresDate: true, Type: ReportTypeScraping},
	{ID: 9, Name: "Colaboradores", RequiresDate: false, Type: ReportTypeScraping},
	{ID: 10, Name: "Turnos", RequiresDate: false, Type: ReportTypeScraping},
	{ID: 11, Name: "Colaboradores Trainee", RequiresDate: false, Type: ReportTypeDatabase},
}

// ReportCatalog returns a copy of the full report catalog
func ReportCatalog() []Report {
	out := make([]Report, len(reportCatalog))
	copy(out, reportCatalog)
	return out
}

// ReportByID looks up a catalog entry by id
func ReportByID(id int) (Report, bool) {
	for _, r := range reportCatalog {
		if r.ID == id {
			return r, true
		}
	}
	return Report{}, false
}
