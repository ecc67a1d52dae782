package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

type analyzeResponse struct {
	Result       model.AnalysisResult `json:"result"`
	AngleDisplay string               `json:"angleDisplay"`
	Severity     model.Severity       `json:"severity"`
	AdviceKey    string               `json:"adviceKey"`
}

// POST /api/analyze
// Multipart form with an "image" file (upload or camera capture).
func (s *Server) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxUploadSize)
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		return badRequestError{fmt.Errorf("invalid upload: %w", err)}
	}
	file, header, err := req.FormFile("image")
	if err != nil {
		return badRequestError{fmt.Errorf("missing image file (form field 'image')")}
	}
	defer file.Close()

	log.WithField("filename", header.Filename).WithField("size", header.Size).Info("received analysis request")

	result, err := s.analysis.Analyze(req.Context(), file)
	if err != nil {
		return err
	}

	interpretation := model.Interpret(string(result.Classification))
	return writeJSON(w, http.StatusOK, analyzeResponse{
		Result:       result,
		AngleDisplay: result.FormatAngle(),
		Severity:     interpretation.Severity,
		AdviceKey:    interpretation.AdviceKey,
	})
}

// GET /api/history
func (s *Server) handleHistory(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"records": s.analysis.History(),
	})
}

// DELETE /api/history
func (s *Server) handleClearHistory(w http.ResponseWriter, req *http.Request) error {
	if err := s.analysis.ClearHistory(); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /api/settings/key
// Reports only where the key would come from, never the key itself.
func (s *Server) handleKeyStatus(w http.ResponseWriter, req *http.Request) error {
	return writeJSON(w, http.StatusOK, map[string]any{
		"source": s.analysis.KeyStatus(),
	})
}

// PUT /api/settings/key
func (s *Server) handleSaveKey(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := s.analysis.SaveKey(body.Key); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"source": s.analysis.KeyStatus(),
	})
}

// POST /api/contact
func (s *Server) handleContact(w http.ResponseWriter, req *http.Request) error {
	var form model.ContactRequest
	if err := json.NewDecoder(req.Body).Decode(&form); err != nil {
		return badRequestError{err}
	}
	if err := form.Validate(); err != nil {
		return badRequestError{err}
	}
	if err := s.contacts.Submit(req.Context(), form); err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"sent": true,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
