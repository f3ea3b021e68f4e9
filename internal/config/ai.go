package config

import "os"

// GeminiModels defines which Gemini models to use for different tasks
type GeminiModels struct {
	// TopicGen generates question sets from a topic (quality over speed)
	TopicGen string `json:"topicGen"`

	// TextExtract converts pasted question-paper text into structured questions
	TextExtract string `json:"textExtract"`

	// Analysis writes the per-student performance report (fast)
	Analysis string `json:"analysis"`
}

// AIConfig holds all AI-related configuration
type AIConfig struct {
	APIKey    string       `json:"-"` // Never serialize
	BaseURL   string       `json:"baseUrl"`
	Models    GeminiModels `json:"models"`
	TimeoutMS int          `json:"timeoutMs"`
}

// DefaultAIConfig returns the default AI configuration
func DefaultAIConfig() *AIConfig {
	return &AIConfig{
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		BaseURL: "https://generativelanguage.googleapis.com/v1beta/models",
		Models: GeminiModels{
			TopicGen:    getEnvOrDefault("GEMINI_MODEL_TOPIC", "gemini-2.0-flash"),
			TextExtract: getEnvOrDefault("GEMINI_MODEL_EXTRACT", "gemini-2.0-flash"),
			Analysis:    getEnvOrDefault("GEMINI_MODEL_ANALYSIS", "gemini-2.5-flash-preview-05-20"),
		},
		TimeoutMS: 20000,
	}
}

// IsEnabled returns true if the AI API is configured
func (c *AIConfig) IsEnabled() bool {
	return c.APIKey != ""
}

// ModelEndpoint returns the full endpoint for a given model
func (c *AIConfig) ModelEndpoint(model string) string {
	return c.BaseURL + "/" + model + ":generateContent"
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
