package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv        = "RECIPE_IMPORT_CONFIG"
	databasePathEnv      = "DATABASE_PATH"
	serverAddrEnv        = "SERVER_ADDR"
	translatorURLEnv     = "TRANSLATOR_URL"
	translatorAPIKeyEnv  = "TRANSLATOR_API_KEY"
	recipesAPIURLEnv     = "RECIPES_API_URL"
	recipesAPITokenEnv   = "RECIPES_API_TOKEN"
	blobDirEnv           = "BLOB_DIR"
	blobPublicBaseEnv    = "BLOB_PUBLIC_BASE_URL"
	defaultDocumentLimit = 10 << 20
)

// Config holds high-level settings required across the application.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Parser     ParserConfig     `yaml:"parser"`
	Translator TranslatorConfig `yaml:"translator"`
	Recipes    RecipesConfig    `yaml:"recipes"`
	Blob       BlobConfig       `yaml:"blob"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes the SQLite session store location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ParserConfig bounds export-document intake.
type ParserConfig struct {
	Format           string `yaml:"format"`
	MaxDocumentBytes int    `yaml:"maxDocumentBytes"`
}

// TranslatorConfig defines how to contact the remote translation service.
// An empty URL disables the remote backend; translation then always runs
// through the offline dictionary.
type TranslatorConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"apiKey"`
	TargetLanguage string `yaml:"targetLanguage"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-call deadline for remote translation requests.
func (t TranslatorConfig) Timeout() time.Duration {
	if t.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// RecipesConfig wires the external recipe persistence API.
type RecipesConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// BlobConfig describes where uploaded recipe images land and how they are
// addressed publicly.
type BlobConfig struct {
	Dir           string `yaml:"dir"`
	PublicBaseURL string `yaml:"publicBaseUrl"`
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(translatorURLEnv); v != "" {
		c.Translator.URL = v
	}

	if v := os.Getenv(translatorAPIKeyEnv); v != "" {
		c.Translator.APIKey = v
	}

	if v := os.Getenv(recipesAPIURLEnv); v != "" {
		c.Recipes.URL = v
	}

	if v := os.Getenv(recipesAPITokenEnv); v != "" {
		c.Recipes.Token = v
	}

	if v := os.Getenv(blobDirEnv); v != "" {
		c.Blob.Dir = v
	}

	if v := os.Getenv(blobPublicBaseEnv); v != "" {
		c.Blob.PublicBaseURL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Parser.Format != "" {
		base.Parser.Format = override.Parser.Format
	}
	if override.Parser.MaxDocumentBytes > 0 {
		base.Parser.MaxDocumentBytes = override.Parser.MaxDocumentBytes
	}

	if override.Translator.URL != "" {
		base.Translator.URL = override.Translator.URL
	}
	if override.Translator.APIKey != "" {
		base.Translator.APIKey = override.Translator.APIKey
	}
	if override.Translator.TargetLanguage != "" {
		base.Translator.TargetLanguage = override.Translator.TargetLanguage
	}
	if override.Translator.TimeoutSeconds > 0 {
		base.Translator.TimeoutSeconds = override.Translator.TimeoutSeconds
	}

	if override.Recipes.URL != "" {
		base.Recipes.URL = override.Recipes.URL
	}
	if override.Recipes.Token != "" {
		base.Recipes.Token = override.Recipes.Token
	}

	if override.Blob.Dir != "" {
		base.Blob.Dir = override.Blob.Dir
	}
	if override.Blob.PublicBaseURL != "" {
		base.Blob.PublicBaseURL = override.Blob.PublicBaseURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "data/import.db"},
		Parser: ParserConfig{
			Format:           "recipekeeper",
			MaxDocumentBytes: defaultDocumentLimit,
		},
		Translator: TranslatorConfig{
			URL:            "",
			TargetLanguage: "es",
			TimeoutSeconds: 15,
		},
		Recipes: RecipesConfig{URL: ""},
		Blob: BlobConfig{
			Dir:           "data/images",
			PublicBaseURL: "/media/recipes",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
