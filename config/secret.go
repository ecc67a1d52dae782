package config

type GeminiSecretData struct {
	ApiKey string `json:"apiKey"`
}
