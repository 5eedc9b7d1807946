package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/maax3v3/cubemosaic/internal/guide"
	"github.com/maax3v3/cubemosaic/internal/mosaic"
	"github.com/maax3v3/cubemosaic/internal/quantize"
	"github.com/maax3v3/cubemosaic/internal/renderer"
)

// GuideFilename is the attachment name of generated PDF guides.
const GuideFilename = "rubiks-mosaic-guide.pdf"

// Error codes returned in the "code" field of JSON error bodies.
const (
	CodeInvalidSettings = "invalid_settings"
	CodeInvalidImage    = "invalid_image"
	CodeInvalidDocument = "invalid_document"
	CodeTooLarge        = "too_large"
	CodeInternal        = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// guideRequest is the body of the PDF and preview endpoints.
type guideRequest struct {
	MosaicData *mosaic.Document `json:"mosaicData"`
	Settings   *mosaic.Settings `json:"settings"`
}

// POST /api/generate-mosaic: multipart "image" plus optional "width",
// "height", "metric" and "enhance" fields.
func (s *Server) handleGenerateMosaic(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.Server.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		if tooLarge(err) {
			jsonError(w, fmt.Sprintf("upload exceeds %d bytes", limit), CodeTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "expected a multipart form with an image field", CodeInvalidImage, http.StatusBadRequest)
		return
	}

	settings, err := s.formSettings(r)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	metric := s.cfg.QuantizeMetric()
	if v := r.FormValue("metric"); v != "" {
		if metric, err = quantize.ParseMetric(v); err != nil {
			jsonError(w, err.Error(), CodeInvalidSettings, http.StatusBadRequest)
			return
		}
	}
	enhance := s.cfg.Enhance
	if v := strings.TrimSpace(r.FormValue("enhance")); v != "" {
		if enhance, err = strconv.ParseBool(v); err != nil {
			jsonError(w, fmt.Sprintf("enhance %q is not a boolean", v), CodeInvalidSettings, http.StatusBadRequest)
			return
		}
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "No image file provided", CodeInvalidImage, http.StatusBadRequest)
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !allowedContentType(ct) {
		jsonError(w, fmt.Sprintf("unsupported content type %q", ct), CodeInvalidImage, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, "reading upload failed", CodeInvalidImage, http.StatusBadRequest)
		return
	}

	m, err := mosaic.AssembleBytes(data, settings, mosaic.Options{
		Metric:    metric,
		Enhance:   enhance,
		MaxPixels: s.cfg.Server.MaxPixels,
	})
	if err != nil {
		writeEngineError(w, err)
		return
	}

	slog.Info("Mosaic generated",
		"request_id", middleware.GetReqID(r.Context()),
		"filename", header.Filename,
		"width", settings.Width,
		"height", settings.Height,
		"enhance", enhance,
		"upload_bytes", len(data))
	writeJSON(w, http.StatusOK, m.Document())
}

// POST /api/generate-pdf: JSON guideRequest, responds with the PDF guide.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readGuideRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := guide.WritePDF(&buf, m, s.cfg.GuideOptions()); err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", GuideFilename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write PDF response", "err", err)
	}
}

// POST /api/preview: JSON guideRequest, responds with a PNG preview.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	m, ok := s.readGuideRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, renderer.RenderMosaic(m, s.font, renderer.DefaultConfig())); err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Unable to write PNG response", "err", err)
	}
}

// GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// formSettings reads width and height form values, falling back to the
// configured defaults when a field is absent.
func (s *Server) formSettings(r *http.Request) (mosaic.Settings, error) {
	settings := s.cfg.Mosaic
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"width", &settings.Width},
		{"height", &settings.Height},
	} {
		v := strings.TrimSpace(r.FormValue(f.name))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return mosaic.Settings{}, fmt.Errorf("%w: %s %q is not an integer", mosaic.ErrInvalidSettings, f.name, v)
		}
		*f.dst = n
	}
	if err := settings.Validate(); err != nil {
		return mosaic.Settings{}, err
	}
	return settings, nil
}

// readGuideRequest decodes and validates a guideRequest. On failure it
// writes the error response and returns false.
func (s *Server) readGuideRequest(w http.ResponseWriter, r *http.Request) (*mosaic.Mosaic, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	var req guideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if tooLarge(err) {
			jsonError(w, "request body too large", CodeTooLarge, http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "malformed JSON body: "+err.Error(), CodeInvalidDocument, http.StatusBadRequest)
		return nil, false
	}
	if req.MosaicData == nil {
		jsonError(w, "mosaicData is required", CodeInvalidDocument, http.StatusBadRequest)
		return nil, false
	}

	// Without explicit settings the document's own size is used.
	settings := mosaic.Settings{Width: req.MosaicData.Dimensions.Width, Height: req.MosaicData.Dimensions.Height}
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := settings.Validate(); err != nil {
		writeEngineError(w, err)
		return nil, false
	}

	m, err := mosaic.FromDocument(*req.MosaicData, settings)
	if err != nil {
		writeEngineError(w, err)
		return nil, false
	}
	return m, true
}

var allowedMIME = map[string]bool{
	"image/jpeg":               true,
	"image/png":                true,
	"image/gif":                true,
	"image/bmp":                true,
	"image/webp":               true,
	"application/octet-stream": true,
	"":                         true,
}

// allowedContentType accepts the image types the decoder understands plus
// unlabeled parts, whose format is sniffed from content.
func allowedContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	return allowedMIME[ct]
}

// tooLarge reports whether err came from an http.MaxBytesReader limit.
// Some readers flatten the error chain, so the message is checked too.
func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// writeEngineError maps engine sentinels to HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mosaic.ErrInvalidSettings):
		jsonError(w, err.Error(), CodeInvalidSettings, http.StatusBadRequest)
	case errors.Is(err, mosaic.ErrInvalidImage):
		jsonError(w, err.Error(), CodeInvalidImage, http.StatusBadRequest)
	case errors.Is(err, mosaic.ErrInvalidDocument):
		jsonError(w, err.Error(), CodeInvalidDocument, http.StatusBadRequest)
	default:
		slog.Error("Request failed", "err", err)
		jsonError(w, "internal error", CodeInternal, http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func jsonError(w http.ResponseWriter, msg, code string, status int) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
