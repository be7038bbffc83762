package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/alnah/go-cv2pdf"
	"github.com/alnah/go-cv2pdf/internal/fileutil"
	"github.com/alnah/go-cv2pdf/internal/store"
)

// User-facing messages, kept in French like the rest of the API surface.
const (
	msgGenerated     = "CV généré avec succès"
	msgFieldRequired = "Le champ 'csv_content' est requis"
	msgNoFile        = "Aucun fichier sélectionné"
	msgNotCSV        = "Le fichier doit être un CSV"
	msgNoContent     = "Aucun contenu CSV fourni. Utilisez 'csv_content' (JSON) ou 'csv_file' (multipart)"
	msgInvalidJSON   = "Corps JSON invalide"
	msgNotUTF8       = "Le contenu CSV doit être encodé en UTF-8"
	msgTooLarge      = "Contenu trop volumineux"
	msgNotFound      = "CV non trouvé"
	msgInternal      = "Erreur interne du serveur"
)

// Form and file names.
const (
	fieldCSVContent  = "csv_content"
	fieldCSVFile     = "csv_file"
	downloadFilename = "cv_generated.pdf"
	multipartMemory  = 1 << 20
)

type generateRequest struct {
	CSVContent string `json:"csv_content"`
}

type generateResponse struct {
	Success     bool   `json:"success"`
	CVID        string `json:"cv_id"`
	DownloadURL string `json:"download_url"`
	Message     string `json:"message"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// requestError is a client mistake answered with its status and message.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, message: msg}
}

// handleGenerate converts the posted table and stores the PDF.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}

	csv, err := readCSV(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.conv.Convert(r.Context(), cv2pdf.Input{CSV: csv})
	if err != nil {
		if errors.Is(err, cv2pdf.ErrFormat) {
			err = badRequest(err.Error())
		}
		s.fail(w, r, err)
		return
	}

	id := s.store.NewID()
	if err := s.store.Save(id, res.PDF); err != nil {
		s.fail(w, r, err)
		return
	}

	s.log.Info("generated CV",
		zap.String("request_id", requestID(r.Context())),
		zap.String("cv_id", id),
		zap.Int("pages", res.Pages),
		zap.Int("bytes", len(res.PDF)))

	writeJSON(w, http.StatusOK, generateResponse{
		Success:     true,
		CVID:        id,
		DownloadURL: s.baseURL(r) + "/download-cv/" + id,
		Message:     msgGenerated,
	})
}

// readCSV extracts the table from a JSON body or a multipart upload.
func readCSV(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var data []byte
	switch mediaType {
	case "application/json":
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if tooLarge(err) {
				return nil, err
			}
			return nil, badRequest(msgInvalidJSON)
		}
		if req.CSVContent == "" {
			return nil, badRequest(msgFieldRequired)
		}
		data = []byte(req.CSVContent)

	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			if tooLarge(err) {
				return nil, err
			}
			return nil, badRequest(msgNoContent)
		}
		f, hdr, err := r.FormFile(fieldCSVFile)
		if err != nil {
			// An empty file input is submitted with filename="" and
			// parsed as a plain value.
			if _, ok := r.MultipartForm.Value[fieldCSVFile]; ok {
				return nil, badRequest(msgNoFile)
			}
			return nil, badRequest(msgNoContent)
		}
		defer f.Close()
		if !fileutil.HasExtension(hdr.Filename, "csv") {
			return nil, badRequest(msgNotCSV)
		}
		if data, err = io.ReadAll(f); err != nil {
			return nil, err
		}

	default:
		return nil, badRequest(msgNoContent)
	}

	if !utf8.Valid(data) {
		return nil, badRequest(msgNotUTF8)
	}
	return data, nil
}

func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// handleDownload streams a stored PDF as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("cv_id")

	f, err := s.store.Open(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			err = &requestError{status: http.StatusNotFound, message: msgNotFound}
		}
		s.fail(w, r, err)
		return
	}
	defer f.Close()

	modTime := time.Time{}
	if fi, err := f.Stat(); err == nil {
		modTime = fi.ModTime()
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": downloadFilename}))
	http.ServeContent(w, r, downloadFilename, modTime, f)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "healthy",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openAPIDocument(s.baseURL(r)))
}

// fail answers with the JSON error envelope. Client errors carry their own
// message; anything else is logged and reported as a server error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var re *requestError
	switch {
	case errors.As(err, &re):
		writeJSON(w, re.status, errorResponse{Error: re.message})
	case tooLarge(err):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: msgTooLarge})
	default:
		s.log.Error("request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgInternal})
	}
}

// baseURL is the configured public URL, or scheme and host of r.
func (s *Server) baseURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
