package service

import (
	"context"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/paul5577/AI-analysis-of-scoliosis/contact"
	"github.com/paul5577/AI-analysis-of-scoliosis/model"
)

type EmailSender interface {
	Send(ctx context.Context, req contact.SendRequest) error
}

type LastResultSource interface {
	LastResult() (model.AnalysisResult, bool)
}

type SettingsReader interface {
	GetSetting(key string) (string, error)
}

// EmailConfig holds the env-resolved service identifiers. Empty fields fall
// back to on-device saved values at submit time, same precedence as the API
// key.
type EmailConfig struct {
	PublicKey  string
	ServiceID  string
	TemplateID string
}

type ContactService struct {
	client          EmailSender
	config          EmailConfig
	settings        SettingsReader
	lastResult      LastResultSource
	testModeEnabled bool

	sending atomic.Bool
}

func NewContactService(client EmailSender, config EmailConfig, settings SettingsReader, lastResult LastResultSource, isTestMode bool) *ContactService {
	return &ContactService{
		client:          client,
		config:          config,
		settings:        settings,
		lastResult:      lastResult,
		testModeEnabled: isTestMode,
	}
}

// Submit forwards one consultation form, merged with the latest analysis.
// Failures are reported once, never retried; the caller keeps the form data.
func (s *ContactService) Submit(ctx context.Context, form model.ContactRequest) error {
	if !s.sending.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.sending.Store(false)

	if err := form.Validate(); err != nil {
		return err
	}

	publicKey := s.resolveConfig(s.config.PublicKey, contact.SettingPublicKey)
	serviceID := s.resolveConfig(s.config.ServiceID, contact.SettingServiceID)
	templateID := s.resolveConfig(s.config.TemplateID, contact.SettingTemplateID)
	if publicKey == "" || serviceID == "" || templateID == "" {
		return contact.ErrServiceUnavailable
	}

	last, ok := s.lastResult.LastResult()
	if !ok {
		log.Warn("consultation submitted without a completed analysis")
		last = model.AnalysisResult{CobbAngleDegrees: model.InconclusiveAngle}
	}

	req := contact.SendRequest{
		ServiceID:      serviceID,
		TemplateID:     templateID,
		UserID:         publicKey,
		TemplateParams: contact.BuildTemplateParams(form, last),
	}

	if s.testModeEnabled {
		log.WithField("template", templateID).Infof("Simulating consultation email for %s", form.Name)
		return nil
	}

	return s.client.Send(ctx, req)
}

func (s *ContactService) resolveConfig(envValue, settingKey string) string {
	if envValue != "" {
		return envValue
	}
	saved, err := s.settings.GetSetting(settingKey)
	if err != nil {
		log.Warnf("error reading saved setting %s: %v", settingKey, err)
		return ""
	}
	return saved
}
