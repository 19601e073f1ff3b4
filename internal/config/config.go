package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	// Storage roots. The uploads root holds one folder per document with the
	// PDF copy and its extracted figures; the store root holds the vector
	// store files plus the metadata/ records directory.
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"./uploaded_pdfs"`
	StoreDir   string `envconfig:"STORE_DIR" default:"./chroma_db"`
	Collection string `envconfig:"COLLECTION_NAME" default:"multimodal_rag"`

	// Extraction backend: "unstructured" (partition service) or "native"
	// (local text-only fallback).
	Extractor    string `envconfig:"EXTRACTOR" default:"unstructured"`
	PartitionURL string `envconfig:"PARTITION_URL" default:"http://unstructured:8000"`

	// Fragment sizing hints passed to the extractor.
	MaxCharacters          int `envconfig:"MAX_CHARACTERS" default:"4000"`
	NewAfterNChars         int `envconfig:"NEW_AFTER_N_CHARS" default:"3800"`
	CombineTextUnderNChars int `envconfig:"COMBINE_TEXT_UNDER_N_CHARS" default:"2000"`

	// GeminiAPIKey seeds the stored settings on first boot; the settings
	// endpoint can replace it at runtime.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	SearchTopK        int `envconfig:"SEARCH_TOP_K" default:"3"`
	SummarizeAttempts int `envconfig:"SUMMARIZE_ATTEMPTS" default:"3"`
	SummarizeWorkers  int `envconfig:"SUMMARIZE_WORKERS" default:"4"`
	EmbedWorkers      int `envconfig:"EMBED_WORKERS" default:"8"`

	// AssetBase is the directory image marker paths are made relative to.
	// The default keeps markers resolvable for a front-end running in the
	// same working directory.
	AssetBase string `envconfig:"ASSET_BASE" default:"."`

	// Server
	ServerPort      int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath    string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`
	MaxUploadSizeMB int64  `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`

	// ReconcileOnStart re-ingests any PDF found under the uploads root that
	// has no completed record yet.
	ReconcileOnStart bool `envconfig:"RECONCILE_ON_START" default:"true"`
}

func Load() (*Config, error) {
	// Ignore errors, env vars might be set in the shell
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.UploadsDir == "" {
		return fmt.Errorf("%w: UPLOADS_DIR", ErrMissingRequired)
	}
	if c.StoreDir == "" {
		return fmt.Errorf("%w: STORE_DIR", ErrMissingRequired)
	}
	if c.Collection == "" {
		return fmt.Errorf("%w: COLLECTION_NAME", ErrMissingRequired)
	}
	if c.Extractor != "unstructured" && c.Extractor != "native" {
		return fmt.Errorf("unknown extractor %q", c.Extractor)
	}
	if c.Extractor == "unstructured" && c.PartitionURL == "" {
		return fmt.Errorf("%w: PARTITION_URL", ErrMissingRequired)
	}
	if c.SearchTopK < 1 {
		return fmt.Errorf("SEARCH_TOP_K must be at least 1")
	}
	if c.SummarizeAttempts < 1 {
		return fmt.Errorf("SUMMARIZE_ATTEMPTS must be at least 1")
	}
	return nil
}
