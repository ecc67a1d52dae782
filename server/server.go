// Package server exposes the analysis pipeline over HTTP for the browser
// front-end: upload-and-analyze, history, settings, and the consultation form.
package server

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

// Phone camera photos run a few MB; downscaling happens server-side, so the
// limit only has to keep uploads sane.
const maxUploadSize = 10 << 20

type AnalysisHandler interface {
	Analyze(ctx context.Context, image io.Reader) (model.AnalysisResult, error)
	History() []model.HistoryRecord
	ClearHistory() error
	SaveKey(candidate string) error
	KeyStatus() credential.Source
}

type ContactHandler interface {
	Submit(ctx context.Context, form model.ContactRequest) error
}

type Server struct {
	analysis AnalysisHandler
	contacts ContactHandler
}

func NewRouter(analysis AnalysisHandler, contacts ContactHandler) http.Handler {
	s := &Server{analysis: analysis, contacts: contacts}

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		log.Debug("received healthcheck request")
		w.Write([]byte("ok"))
	})

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/analyze", s.wrap(s.handleAnalyze))
		rt.Get("/history", s.wrap(s.handleHistory))
		rt.Delete("/history", s.wrap(s.handleClearHistory))
		rt.Get("/settings/key", s.wrap(s.handleKeyStatus))
		rt.Put("/settings/key", s.wrap(s.handleSaveKey))
		rt.Post("/contact", s.wrap(s.handleContact))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap turns a handler's error into the localized JSON message the front-end
// shows in place. Nothing escapes as a crash.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			writeError(w, err)
		}
	}
}
