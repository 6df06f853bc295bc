package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/mockprep/internal/evaluation"
	"github.com/abhisek/mockprep/internal/interview"
	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
)

const (
	app       = "mockprep"
	envPrefix = "MOCKPREP"
)

// Config is the complete application configuration.
type Config struct {
	DB         string           `mapstructure:"db"`
	Log        LogConfig        `mapstructure:"log"`
	Interview  InterviewConfig  `mapstructure:"interview"`
	Selection  SelectionConfig  `mapstructure:"selection"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	LLM        llm.Config       `mapstructure:"llm"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"`
}

type InterviewConfig struct {
	DefaultCount   int `mapstructure:"default_count"`
	MaxCount       int `mapstructure:"max_count"`
	MaxAnswerChars int `mapstructure:"max_answer_chars"`
	// TimeLimits maps question type to the per-question time allowance.
	TimeLimits map[string]time.Duration `mapstructure:"time_limits"`
}

type SelectionConfig struct {
	// Seed fixes the question sampling order. Zero seeds from the clock.
	Seed uint64 `mapstructure:"seed"`
}

type EvaluationConfig struct {
	MinChars       int           `mapstructure:"min_chars"`
	MinWords       MinWords      `mapstructure:"min_words"`
	RunOnThreshold int           `mapstructure:"run_on_threshold"`
	Weights        WeightsConfig `mapstructure:"weights"`
}

type MinWords struct {
	Junior int `mapstructure:"junior"`
	Mid    int `mapstructure:"mid"`
	Senior int `mapstructure:"senior"`
}

type WeightsConfig struct {
	Relevance         float64 `mapstructure:"relevance"`
	Completeness      float64 `mapstructure:"completeness"`
	Clarity           float64 `mapstructure:"clarity"`
	TechnicalAccuracy float64 `mapstructure:"technical_accuracy"`
	Communication     float64 `mapstructure:"communication"`
}

type MetricsConfig struct {
	// Addr, when set, serves /metrics on this address.
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db", "")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("log.file", "")

	v.SetDefault("interview.default_count", 5)
	v.SetDefault("interview.max_count", 20)
	v.SetDefault("interview.max_answer_chars", 8000)
	v.SetDefault("interview.time_limits", map[string]string{
		"technical":   "5m",
		"behavioral":  "4m",
		"situational": "4m",
	})

	v.SetDefault("selection.seed", 0)

	v.SetDefault("evaluation.min_chars", 20)
	v.SetDefault("evaluation.min_words.junior", 30)
	v.SetDefault("evaluation.min_words.mid", 50)
	v.SetDefault("evaluation.min_words.senior", 80)
	v.SetDefault("evaluation.run_on_threshold", 25)
	v.SetDefault("evaluation.weights.relevance", 0.25)
	v.SetDefault("evaluation.weights.completeness", 0.25)
	v.SetDefault("evaluation.weights.clarity", 0.15)
	v.SetDefault("evaluation.weights.technical_accuracy", 0.20)
	v.SetDefault("evaluation.weights.communication", 0.15)

	d := llm.DefaultConfig()
	v.SetDefault("llm.provider", d.Provider)
	for name, pc := range map[string]llm.ProviderConfig{
		"anthropic":  d.Anthropic,
		"openai":     d.OpenAI,
		"gemini":     d.Gemini,
		"openrouter": d.OpenRouter,
	} {
		v.SetDefault("llm."+name+".api_key", pc.APIKey)
		v.SetDefault("llm."+name+".model", pc.Model)
		v.SetDefault("llm."+name+".base_url", pc.BaseURL)
	}
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.Timeout)

	v.SetDefault("metrics.addr", "")
}

// Load reads configuration from file (when given, or ./mockprep.yaml when
// present) and MOCKPREP_* environment variables, on top of the defaults.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(app)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Interview.DefaultCount < 1:
		return errors.New("interview.default_count must be at least 1")
	case c.Interview.MaxCount < c.Interview.DefaultCount:
		return errors.New("interview.max_count must be >= interview.default_count")
	case c.Interview.MaxAnswerChars < 1:
		return errors.New("interview.max_answer_chars must be positive")
	case c.Evaluation.MinChars < 0:
		return errors.New("evaluation.min_chars must not be negative")
	}
	w := c.Evaluation.Weights
	if sum := w.Relevance + w.Completeness + w.Clarity + w.TechnicalAccuracy + w.Communication; sum < 0.99 || sum > 1.01 {
		return fmt.Errorf("evaluation.weights must sum to 1, got %.2f", sum)
	}
	return c.LLM.Validate()
}

// DBPath resolves the database file: the configured value when set,
// otherwise $XDG_DATA_HOME/mockprep/mockprep.db (~/.local/share when
// XDG_DATA_HOME is unset). The parent directory is created.
func (c *Config) DBPath() (string, error) {
	p := c.DB
	if p == "" {
		dataHome := os.Getenv("XDG_DATA_HOME")
		if dataHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dataHome = filepath.Join(home, ".local", "share")
		}
		p = filepath.Join(dataHome, app, app+".db")
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return p, nil
}

// LogPath returns the log file, defaulting to mockprep.log beside the
// database.
func (c *Config) LogPath(dbPath string) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(filepath.Dir(dbPath), app+".log")
}

// EvaluatorConfig overlays the configured thresholds and weights on the
// stock evaluator configuration.
func (c *Config) EvaluatorConfig() evaluation.Config {
	ec := evaluation.DefaultConfig()
	e := c.Evaluation
	ec.MinChars = e.MinChars
	ec.MinWords = evaluation.MinWords{Junior: e.MinWords.Junior, Mid: e.MinWords.Mid, Senior: e.MinWords.Senior}
	if e.RunOnThreshold > 0 {
		ec.RunOnThreshold = e.RunOnThreshold
	}
	ec.Weights = evaluation.Weights{
		Relevance:         e.Weights.Relevance,
		Completeness:      e.Weights.Completeness,
		Clarity:           e.Weights.Clarity,
		TechnicalAccuracy: e.Weights.TechnicalAccuracy,
		Communication:     e.Weights.Communication,
	}
	return ec
}

// EngineConfig converts the interview section. Time limits under unknown
// question types are rejected.
func (c *Config) EngineConfig() (interview.Config, error) {
	ic := interview.Config{
		DefaultCount:   c.Interview.DefaultCount,
		MaxCount:       c.Interview.MaxCount,
		MaxAnswerChars: c.Interview.MaxAnswerChars,
		TimeLimits:     make(map[question.Type]time.Duration, len(c.Interview.TimeLimits)),
	}
	for k, d := range c.Interview.TimeLimits {
		t, err := question.ParseType(k)
		if err != nil {
			return interview.Config{}, fmt.Errorf("interview.time_limits: %w", err)
		}
		if d < 0 {
			return interview.Config{}, fmt.Errorf("interview.time_limits.%s must not be negative", k)
		}
		ic.TimeLimits[t] = d
	}
	return ic, nil
}
