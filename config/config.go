package config

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Gemini GeminiConfig
	Email  EmailConfig

	ListenAddr string
	StorePath  string

	LogLevel        log.Level
	LogFormat       LogFormat
	TestModeEnabled bool
}

type GeminiConfig struct {
	// APIKey is the deployment-injected key, already resolved across its
	// aliases. Empty when the deployment carries no key.
	APIKey string
	// SecretPath is an optional AWS Secrets Manager path holding the key.
	SecretPath string
	Model      string
	APIBaseURL string
}

type EmailConfig struct {
	PublicKey  string
	ServiceID  string
	TemplateID string
}

type LogFormat string

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const defaultModel = "gemini-2.0-flash"

// Each external input is recognized under several aliases reflecting the
// hosting conventions this app has been deployed under; first non-empty wins.
var (
	apiKeyAliases          = []string{"GEMINI_API_KEY", "VITE_GEMINI_API_KEY", "API_KEY"}
	emailPublicKeyAliases  = []string{"EMAILJS_PUBLIC_KEY", "VITE_EMAILJS_PUBLIC_KEY"}
	emailServiceIDAliases  = []string{"EMAILJS_SERVICE_ID", "VITE_EMAILJS_SERVICE_ID"}
	emailTemplateIDAliases = []string{"EMAILJS_TEMPLATE_ID", "VITE_EMAILJS_TEMPLATE_ID"}
)

type EnvfileKey string

const (
	// AWS Secrets Manager path where the Gemini API key can be found
	EnvfileKeyGeminiSecretPath = "GEMINI_SECRETS_PATH"
	// Model name used for analysis calls
	EnvfileKeyGeminiModel = "GEMINI_MODEL"
	// Override for the generative API base URL (mainly for testing)
	EnvfileKeyGeminiAPIURL = "GEMINI_API_URL"

	// Address the HTTP server listens on (e.g. ":8080")
	EnvfileKeyListenAddr = "LISTEN_ADDR"
	// Path of the on-device sqlite store
	EnvfileKeyStorePath = "STORE_PATH"

	// Log level (e.g. "debug", "info", "warn", "error")
	EnvfileKeyLogLevel = "LOG_LEVEL"
	// Log output format (e.g. "text", "json")
	EnvfileKeyLogFormat = "LOG_FORMAT"
	// Enables "test mode" (server simulates email sends, etc.)
	EnvfileKeyTestMode = "TEST_MODE"
)

func FromEnvfile() Config {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("dotenv")

	if err := viper.ReadInConfig(); err != nil {
		// Plain environment variables are enough to run; a .env file is a
		// convenience, not a requirement.
		log.Warnf("no .env file read, using environment only: %v", err)
	}

	logLevel, err := log.ParseLevel(getConfigString(EnvfileKeyLogLevel))
	if err != nil {
		// Default to info level but log a warning
		log.Warnf("unable to parse log level: %v", err)
		logLevel = log.InfoLevel
	}

	logFormat, err := parseLogFormat(getConfigString(EnvfileKeyLogFormat))
	if err != nil {
		// Default to text formatter but log a warning
		log.Warnf("unable to parse log format: %v", err)
		logFormat = LogFormatText
	}

	model := getConfigString(EnvfileKeyGeminiModel)
	if model == "" {
		model = defaultModel
	}

	listenAddr := getConfigString(EnvfileKeyListenAddr)
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	storePath := getConfigString(EnvfileKeyStorePath)
	if storePath == "" {
		storePath = "scoliscan.db"
	}

	return Config{
		Gemini: GeminiConfig{
			APIKey:     firstConfigString(apiKeyAliases),
			SecretPath: getConfigString(EnvfileKeyGeminiSecretPath),
			Model:      model,
			APIBaseURL: getConfigString(EnvfileKeyGeminiAPIURL),
		},
		Email: EmailConfig{
			PublicKey:  firstConfigString(emailPublicKeyAliases),
			ServiceID:  firstConfigString(emailServiceIDAliases),
			TemplateID: firstConfigString(emailTemplateIDAliases),
		},
		ListenAddr:      listenAddr,
		StorePath:       storePath,
		LogLevel:        logLevel,
		LogFormat:       logFormat,
		TestModeEnabled: viper.GetBool(EnvfileKeyTestMode),
	}
}

func parseLogFormat(raw string) (LogFormat, error) {
	switch strings.ToLower(raw) {
	case LogFormatJSON:
		return LogFormatJSON, nil
	case LogFormatText:
		return LogFormatText, nil
	default:
		return "", fmt.Errorf("unidentified log format: %s", raw)
	}
}

// Gets a config value as a string from env vars or a .env file
func getConfigString(key string) string {
	value := os.Getenv(key)
	if value == "" {
		value = viper.GetString(key)
	}
	return value
}

// Resolves a value recognized under several aliases; first non-empty wins.
func firstConfigString(aliases []string) string {
	for _, alias := range aliases {
		if value := getConfigString(alias); value != "" {
			return value
		}
	}
	return ""
}
