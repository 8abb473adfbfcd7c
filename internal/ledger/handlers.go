package ledger

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize accommodates high-resolution phone photos.
const maxUploadSize = int64(50 << 20) // 50MB

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes an error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// handleScanInvoice accepts an uploaded invoice image, runs extraction and
// either auto-saves or returns the draft for manual review.
func (s *Server) handleScanInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			msg = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		msg := "No file provided"
		if err.Error() == "http: no such file" {
			msg = "No file was selected. Please choose a file to upload."
		}
		writeJSONError(w, http.StatusBadRequest, msg)
		return
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		writeJSONError(w, http.StatusBadRequest, "File is too large. Maximum size is 50MB. Please compress or resize your image.")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusInternalServerError, "Error reading file. Please try again.")
		return
	}

	result, err := s.service.ScanInvoice(r.Context(), header.Filename, data, detectContentType(header.Header.Get("Content-Type"), header.Filename))
	if err != nil {
		slog.Error("Error processing invoice", "filename", header.Filename, "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	code := http.StatusOK
	if result.Saved {
		code = http.StatusCreated
	}
	writeJSON(w, code, result)
}

// detectContentType falls back to the file extension when the upload
// carries no Content-Type header.
func detectContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" {
		return contentType
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

// handleSaveInvoice saves a manually entered or edited invoice.
func (s *Server) handleSaveInvoice(w http.ResponseWriter, r *http.Request) {
	var inv Invoice
	if err := json.NewDecoder(r.Body).Decode(&inv); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := s.service.SaveInvoice(&inv)
	if err != nil {
		var verrs ValidationErrors
		if errors.As(err, &verrs) {
			setCORSHeaders(w)
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":        "invoice is incomplete",
				"field_errors": verrs,
			})
			return
		}
		slog.Error("Error saving invoice", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// handleListInvoices returns all invoices with derived status.
func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListInvoices())
}

// idsRequest is the body of the bulk endpoints.
type idsRequest struct {
	IDs []string `json:"ids"`
}

// handleBulkDelete removes the requested invoices.
func (s *Server) handleBulkDelete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.DeleteInvoices(req.IDs); err != nil {
		slog.Error("Error deleting invoices", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleBulkMarkPaid marks the requested invoices as paid.
func (s *Server) handleBulkMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.service.MarkPaid(req.IDs); err != nil {
		slog.Error("Error marking invoices paid", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetInvoiceFile returns the stored source image for an invoice.
func (s *Server) handleGetInvoiceFile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		corsError(w, "Invoice ID required", http.StatusBadRequest)
		return
	}
	data, contentType, err := s.service.GetInvoiceFile(id)
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleListProfiles returns all vendor profiles.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := s.service.Profiles()
	// Ensure we always return an array, not nil
	if profiles == nil {
		profiles = []*CustomerProfile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// handleBalance returns the balance sheet view.
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Balance())
}

// handleExportCSV streams the invoice collection as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.csv"`)
	if err := s.service.ExportCSV(w); err != nil {
		slog.Error("Error exporting csv", "error", err)
	}
}

// handleGetCurrency returns the base currency preference.
func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"currency": s.service.BaseCurrency()})
}

// handleSetCurrency updates the base currency preference.
func (s *Server) handleSetCurrency(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		corsError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	code := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(code) != 3 {
		corsError(w, "Currency must be a 3-letter code", http.StatusBadRequest)
		return
	}

	if err := s.service.SetBaseCurrency(code); err != nil {
		slog.Error("Error saving currency", "error", err)
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"currency": code})
}
