package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/credential"
	"github.com/paul5577/AI-analysis-of-scoliosis/imageprep"
	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

// ErrBusy means a call is already in flight; the caller re-triggers once the
// current one finishes. There is no queueing and no cancellation of the
// in-flight call.
var ErrBusy = errors.New("a request is already in flight")

type ImageAnalyzer interface {
	Analyze(ctx context.Context, payload imageprep.Payload, apiKey string) (model.AnalysisResult, error)
}

type KeyResolver interface {
	Resolve() (string, error)
	Save(candidate string) error
	Status() credential.Source
}

type HistoryStore interface {
	AppendHistory(result model.AnalysisResult) (model.HistoryRecord, error)
	LoadHistory() []model.HistoryRecord
	ClearHistory() error
}

type AnalysisService struct {
	analyzer ImageAnalyzer
	resolver KeyResolver
	history  HistoryStore

	busy atomic.Bool

	mu   sync.Mutex
	last *model.AnalysisResult
}

func NewAnalysisService(analyzer ImageAnalyzer, resolver KeyResolver, history HistoryStore) *AnalysisService {
	return &AnalysisService{
		analyzer: analyzer,
		resolver: resolver,
		history:  history,
	}
}

// Analyze runs the whole pipeline for one uploaded photo: resolve a key,
// prepare the image, call the model, record the result. At most one analysis
// runs at a time.
func (s *AnalysisService) Analyze(ctx context.Context, image io.Reader) (model.AnalysisResult, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return model.AnalysisResult{}, ErrBusy
	}
	defer s.busy.Store(false)

	apiKey, err := s.resolver.Resolve()
	if err != nil {
		return model.AnalysisResult{}, err
	}

	payload, err := imageprep.Prepare(image)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	result, err := s.analyzer.Analyze(ctx, payload, apiKey)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	s.mu.Lock()
	s.last = &result
	s.mu.Unlock()

	if _, err := s.history.AppendHistory(result); err != nil {
		// The analysis itself succeeded; a history write failure shouldn't
		// take the result away from the user.
		log.Warnf("analysis completed but wasn't recorded in history: %v", err)
	}

	return result, nil
}

// LastResult returns the most recent completed analysis of this session.
func (s *AnalysisService) LastResult() (model.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return model.AnalysisResult{}, false
	}
	return *s.last, true
}

func (s *AnalysisService) History() []model.HistoryRecord {
	return s.history.LoadHistory()
}

func (s *AnalysisService) ClearHistory() error {
	return s.history.ClearHistory()
}

func (s *AnalysisService) SaveKey(candidate string) error {
	return s.resolver.Save(candidate)
}

func (s *AnalysisService) KeyStatus() credential.Source {
	return s.resolver.Status()
}
