// Package config handles loading and validating the joey configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the joey assistant.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Assistant  AssistantConfig  `mapstructure:"assistant"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Distress   DistressConfig   `mapstructure:"distress"`
	Capture    CaptureConfig    `mapstructure:"capture"`
	TTS        TTSConfig        `mapstructure:"tts"`
	Translate  TranslateConfig  `mapstructure:"translate"`
	Detect     DetectConfig     `mapstructure:"detect"`
	Sensors    SensorsConfig    `mapstructure:"sensors"`
	Emergency  EmergencyConfig  `mapstructure:"emergency"`
	Loop       LoopConfig       `mapstructure:"loop"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// AssistantConfig holds the assistant persona.
type AssistantConfig struct {
	Name string `mapstructure:"name"`
	// Greetings maps reserved referents ("our boss") to the name greeted.
	Greetings map[string]string `mapstructure:"greetings"`
}

// ClassifierConfig holds the intent acceptance thresholds.
type ClassifierConfig struct {
	Threshold          float64 `mapstructure:"threshold"`
	EmergencyThreshold float64 `mapstructure:"emergency_threshold"`
}

// DistressConfig configures the distress override.
type DistressConfig struct {
	// OverrideThreshold is the raw emergency_call confidence that must be
	// strictly exceeded for the classifier to trigger the override.
	OverrideThreshold float64 `mapstructure:"override_threshold"`
}

// CaptureConfig selects the utterance source.
type CaptureConfig struct {
	Backend string        `mapstructure:"backend"` // "console"
	Whisper WhisperConfig `mapstructure:"whisper"`
}

// WhisperConfig configures the Whisper-compatible transcriber used for
// audio arriving over a transport.
type WhisperConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Type     string        `mapstructure:"type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	Timeout  time.Duration `mapstructure:"timeout"`
}

// TTSConfig selects and configures the speech output.
type TTSConfig struct {
	Backend string      `mapstructure:"backend"` // "console" or "piper"
	Player  []string    `mapstructure:"player"`  // command that plays WAV from stdin
	Piper   PiperConfig `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps language codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence and Endpoint
// is the fallback.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// TranslateConfig selects the machine translation backend.
type TranslateConfig struct {
	Backend string                `mapstructure:"backend"` // "google", "openai" or "none"
	Google  GoogleTranslateConfig `mapstructure:"google"`
	OpenAI  OpenAITranslateConfig `mapstructure:"openai"`
}

// GoogleTranslateConfig configures the public gtx translate endpoint.
type GoogleTranslateConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// OpenAITranslateConfig configures an OpenAI-compatible chat endpoint used
// for translation.
type OpenAITranslateConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DetectConfig configures diagnostic language detection.
type DetectConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SensorsConfig selects the sensor adapters.
type SensorsConfig struct {
	Backend string       `mapstructure:"backend"` // "simulated" or "none"
	IPInfo  IPInfoConfig `mapstructure:"ipinfo"`
}

// IPInfoConfig enables location lookup through ipinfo.io.
type IPInfoConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EmergencyConfig configures the distress action.
type EmergencyConfig struct {
	Number  string        `mapstructure:"number"`
	Webhook WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig configures the optional emergency webhook.
type WebhookConfig struct {
	URL     string        `mapstructure:"url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoopConfig tunes the console turn loop.
type LoopConfig struct {
	IdleDelay time.Duration `mapstructure:"idle_delay"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./joey.yaml, ./configs/joey.yaml, /etc/joey/joey.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("joey")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/joey")
	}

	// Environment variables: JOEY_SERVER_HEALTH_PORT, JOEY_TRANSLATE_BACKEND, etc.
	v.SetEnvPrefix("JOEY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; env vars and defaults are sufficient.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Translate.OpenAI.APIKey = resolveEnvRef(cfg.Translate.OpenAI.APIKey)
	cfg.Capture.Whisper.APIKey = resolveEnvRef(cfg.Capture.Whisper.APIKey)
	cfg.Sensors.IPInfo.Token = resolveEnvRef(cfg.Sensors.IPInfo.Token)
	cfg.Emergency.Webhook.Token = resolveEnvRef(cfg.Emergency.Webhook.Token)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("assistant.name", "Joey")
	v.SetDefault("assistant.greetings", map[string]string{"our boss": "Tushkit Gupta"})
	v.SetDefault("classifier.threshold", 0.4)
	v.SetDefault("classifier.emergency_threshold", 0.55)
	v.SetDefault("distress.override_threshold", 0.7)
	v.SetDefault("capture.backend", "console")
	v.SetDefault("capture.whisper.endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("capture.whisper.model", "whisper-1")
	v.SetDefault("capture.whisper.type", "openai")
	v.SetDefault("capture.whisper.timeout", 60*time.Second)
	v.SetDefault("tts.backend", "console")
	v.SetDefault("tts.player", []string{"aplay", "-q", "-"})
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("translate.backend", "google")
	v.SetDefault("translate.google.endpoint", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("translate.google.timeout", 10*time.Second)
	v.SetDefault("translate.openai.endpoint", "https://api.openai.com/v1/chat/completions")
	v.SetDefault("translate.openai.model", "gpt-4o-mini")
	v.SetDefault("translate.openai.timeout", 20*time.Second)
	v.SetDefault("detect.enabled", true)
	v.SetDefault("sensors.backend", "simulated")
	v.SetDefault("sensors.ipinfo.enabled", false)
	v.SetDefault("sensors.ipinfo.endpoint", "https://ipinfo.io/json")
	v.SetDefault("sensors.ipinfo.timeout", 5*time.Second)
	v.SetDefault("emergency.number", "112")
	v.SetDefault("emergency.webhook.timeout", 10*time.Second)
	v.SetDefault("loop.idle_delay", 500*time.Millisecond)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Classifier.Threshold < 0 || c.Classifier.Threshold > 1 {
		return fmt.Errorf("classifier.threshold must be in [0,1], got %v", c.Classifier.Threshold)
	}
	if c.Classifier.EmergencyThreshold < 0 || c.Classifier.EmergencyThreshold > 1 {
		return fmt.Errorf("classifier.emergency_threshold must be in [0,1], got %v", c.Classifier.EmergencyThreshold)
	}
	if c.Distress.OverrideThreshold < 0 || c.Distress.OverrideThreshold > 1 {
		return fmt.Errorf("distress.override_threshold must be in [0,1], got %v", c.Distress.OverrideThreshold)
	}
	if c.Classifier.EmergencyThreshold <= c.Classifier.Threshold {
		return fmt.Errorf("classifier.emergency_threshold (%v) must be above classifier.threshold (%v)",
			c.Classifier.EmergencyThreshold, c.Classifier.Threshold)
	}
	if c.Distress.OverrideThreshold < c.Classifier.EmergencyThreshold {
		return fmt.Errorf("distress.override_threshold (%v) must not be below classifier.emergency_threshold (%v)",
			c.Distress.OverrideThreshold, c.Classifier.EmergencyThreshold)
	}
	switch c.Translate.Backend {
	case "google", "openai", "none", "":
	default:
		return fmt.Errorf("unknown translate backend %q", c.Translate.Backend)
	}
	switch c.TTS.Backend {
	case "console", "piper", "":
	default:
		return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		envKey := val[2 : len(val)-1]
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
