// Package credential decides which API key an analysis call uses: the
// deployment-injected key when present, otherwise whatever the user saved
// on-device.
package credential

import (
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
)

// SettingKey is the on-device storage key for the user-saved API key.
const SettingKey = "gemini_api_key"

// Saved keys must be longer than this after trimming. Real keys are far
// longer; this just catches obvious typos and pasted fragments.
const minKeyLength = 10

var (
	ErrNoCredential      = errors.New("no API key available")
	ErrInvalidCredential = errors.New("API key is too short")
)

// Source reports where a resolved key came from, for the settings panel.
type Source string

const (
	SourceEnvironment Source = "environment"
	SourceUser        Source = "user"
	SourceNone        Source = "none"
)

// SettingsStore is the on-device storage port. The sqlite store satisfies it;
// tests swap in an in-memory fake.
type SettingsStore interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

type Resolver struct {
	deployKey string
	store     SettingsStore
}

// NewResolver takes the deployment-injected key (already resolved across its
// env aliases at startup, empty when absent) and the settings store.
func NewResolver(deployKey string, store SettingsStore) *Resolver {
	return &Resolver{deployKey: deployKey, store: store}
}

// Resolve returns the key to use, deployment key first. ErrNoCredential means
// the caller has to ask the user for one before any analysis can run.
func (r *Resolver) Resolve() (string, error) {
	if r.deployKey != "" {
		return r.deployKey, nil
	}
	saved, err := r.store.GetSetting(SettingKey)
	if err != nil {
		log.Warnf("error reading saved API key: %v", err)
		return "", ErrNoCredential
	}
	if saved == "" {
		return "", ErrNoCredential
	}
	return saved, nil
}

// Save validates and persists a user-supplied key, overwriting any previous
// one. The key becomes visible to Resolve immediately.
func (r *Resolver) Save(candidate string) error {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) <= minKeyLength {
		return ErrInvalidCredential
	}
	return r.store.SetSetting(SettingKey, trimmed)
}

// Status reports which source Resolve would use right now.
func (r *Resolver) Status() Source {
	if r.deployKey != "" {
		return SourceEnvironment
	}
	if saved, err := r.store.GetSetting(SettingKey); err == nil && saved != "" {
		return SourceUser
	}
	return SourceNone
}
