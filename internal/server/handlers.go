package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/pallet-manifest/internal/cleaner"
	"github.com/ginjaninja78/pallet-manifest/internal/export"
	"github.com/ginjaninja78/pallet-manifest/internal/importer"
	"github.com/ginjaninja78/pallet-manifest/internal/types"
	"github.com/ginjaninja78/pallet-manifest/internal/xmlwriter"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// importResponse is the body returned after an upload.
type importResponse struct {
	*importer.Result
	Summary types.ImportSummary `json:"summary"`
	Errors  types.ImportErrors  `json:"errors"`
}

// handleImport accepts a multipart upload in the "file" field.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "file too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	s.importMu.Lock()
	result, err := s.importer.Import(r.Context(), header.Filename, file)
	s.importMu.Unlock()

	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, importResponse{
		Result:  result,
		Summary: result.Clean.Summary,
		Errors:  result.Clean.Errors,
	})
}

func (s *Server) handleItems(w http.ResponseWriter, r *http.Request) {
	items := s.importer.Session().Snapshot().Clean
	if items == nil {
		items = []types.CleanItem{}
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary := s.importer.Session().Snapshot().Summary
	if summary == nil {
		s.writeError(w, r, http.StatusNotFound, "no import available")
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	errs := s.importer.Session().Snapshot().Errors
	if errs == nil {
		s.writeError(w, r, http.StatusNotFound, "no error counters for the current import")
		return
	}
	s.writeJSON(w, http.StatusOK, errs)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.importer.Validate())
}

// palletView is one pallet in the pallet list.
type palletView struct {
	PalletNumber  string          `json:"palletNumber"`
	Lines         int             `json:"lines"`
	TotalQty      types.JSONFloat `json:"totalQty"`
	TotalWeightKg types.JSONFloat `json:"totalWeightKg"`
	OverLimit     bool            `json:"overLimit"`
}

func (s *Server) pallets() ([]palletView, bool) {
	summary := s.importer.Session().Snapshot().Summary
	if summary == nil {
		return nil, false
	}

	limit := s.importer.Settings().MaxPalletWeightKg()
	views := make([]palletView, 0, len(summary.Pallets))
	for _, key := range summary.PalletKeys() {
		totals := summary.Pallets[key]
		views = append(views, palletView{
			PalletNumber:  key,
			Lines:         totals.Lines,
			TotalQty:      types.JSONFloat(totals.TotalQty),
			TotalWeightKg: types.JSONFloat(totals.TotalWeightKg),
			OverLimit:     limit > 0 && totals.TotalWeightKg > limit,
		})
	}
	return views, true
}

func (s *Server) handlePallets(w http.ResponseWriter, r *http.Request) {
	views, ok := s.pallets()
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "no import available")
		return
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handlePalletDetail(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "palletNo"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid pallet number")
		return
	}

	views, ok := s.pallets()
	if !ok {
		s.writeError(w, r, http.StatusNotFound, "no import available")
		return
	}
	for _, view := range views {
		if view.PalletNumber != key {
			continue
		}
		items := cleaner.PalletItems(s.importer.Session().Snapshot().Clean, key)
		s.writeJSON(w, http.StatusOK, map[string]interface{}{
			"pallet": view,
			"items":  items,
		})
		return
	}
	s.writeError(w, r, http.StatusNotFound, "pallet not found")
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.importer.Settings().Get())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MaxPalletWeightKg *float64 `json:"maxPalletWeightKg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid settings body")
		return
	}
	if body.MaxPalletWeightKg == nil {
		s.writeError(w, r, http.StatusBadRequest, "maxPalletWeightKg is required")
		return
	}

	updated := s.importer.Settings().SetMaxPalletWeightKg(r.Context(), *body.MaxPalletWeightKg)
	s.writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleExportItems(w http.ResponseWriter, r *http.Request) {
	table := export.ItemsTable(s.importer.Session().Snapshot().Clean)

	s.attachment(w, "text/csv; charset=utf-8", "items", ".csv")
	if err := export.WriteCSV(w, table); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream items csv")
	}
}

func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.WriteWorkbook(&buf, s.importer.Report().Sheets()); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "failed to build report")
		return
	}

	s.attachment(w, xlsxContentType, "report", ".xlsx")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream report")
	}
}

func (s *Server) handleExportXML(w http.ResponseWriter, r *http.Request) {
	state := s.importer.Session().Snapshot()
	if state.Summary == nil && !state.HasData() {
		s.writeError(w, r, http.StatusNotFound, "no import available")
		return
	}

	report := s.importer.Report()
	s.attachment(w, "application/xml; charset=utf-8", "items", ".xml")
	if err := xmlwriter.WriteXML(w, report.Items, report.Summary); err != nil {
		s.logger.Error().Err(err).Msg("failed to stream items xml")
	}
}
