package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/dshills/codecritic/internal/checks"
	"github.com/dshills/codecritic/internal/output"
	"github.com/dshills/codecritic/internal/review"
)

// AnalyzeRequest is the body of POST /v1/analyze. An unknown language is
// reviewed as a document; blank code is answered with a warning.
type AnalyzeRequest struct {
	Language string `json:"language" validate:"max=32"`
	Code     string `json:"code"`
}

// Sections are the three markdown blocks of a result.
type Sections struct {
	Local string `json:"local"`
	Model string `json:"model"`
	Fixed string `json:"fixed"`
}

// AnalyzeResponse is the body returned by POST /v1/analyze.
type AnalyzeResponse struct {
	Result   *review.Result `json:"result"`
	Sections Sections       `json:"sections"`
	Error    string         `json:"error,omitempty"`
}

// ErrorResponse is returned for malformed requests.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReadinessResponse lists the local tools and whether they can be used.
type ReadinessResponse struct {
	Status string              `json:"status"`
	Tools  []checks.ToolStatus `json:"tools,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "codecritic",
		"version": s.opts.Version,
	})
}

// handleReadyz always answers 200: missing tools degrade results, they do
// not prevent serving.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	resp := ReadinessResponse{Status: "ready"}
	if s.opts.Tools != nil {
		resp.Tools = s.opts.Tools.Detect(r.Context())
		for _, t := range resp.Tools {
			if !t.Available {
				resp.Status = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("http_request_id", middleware.GetReqID(r.Context())))

	var req AnalyzeRequest
	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{
				Code:    "body_too_large",
				Message: "Request body exceeds the size limit",
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "invalid_json",
			Message: "Invalid JSON in request body",
		})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    "validation_error",
			Message: err.Error(),
		})
		return
	}

	res, err := s.pipeline.Run(r.Context(), review.Request{
		Language: checks.Language(req.Language),
		Code:     req.Code,
	})
	resp := AnalyzeResponse{Result: res}
	resp.Sections.Local, resp.Sections.Model, resp.Sections.Fixed = output.Sections(res)

	if err != nil {
		resp.Error = err.Error()
		status := http.StatusInternalServerError
		var er *review.ErrorResult
		if errors.As(err, &er) {
			status = http.StatusBadGateway
		}
		log.Warn("analysis failed", zap.Int("status", status), zap.Error(err))
		writeJSON(w, status, resp)
		return
	}

	log.Debug("analysis served", zap.String("request_id", res.RequestID))
	writeJSON(w, http.StatusOK, resp)
}
