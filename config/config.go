package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all process-wide settings. It is built once at startup and
// treated as read-only afterwards.
type Config struct {
	DocsDir   string `json:"docs_dir"`
	DataDir   string `json:"data_dir"`
	DBDir     string `json:"db_dir"`
	IndexDir  string `json:"index_dir"`
	SalesDB   string `json:"sales_db"`
	HistoryDB string `json:"history_db"`

	OpenAIAPIKey  string `json:"-"`
	OpenAIBaseURL string `json:"openai_base_url"`

	ChatModel      string        `json:"chat_model"`
	EmbeddingModel string        `json:"embedding_model"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float32       `json:"temperature"`
	RequestTimeout time.Duration `json:"request_timeout"`

	RetrievalTopK int `json:"retrieval_top_k"`
	ChunkSize     int `json:"chunk_size"`
	ChunkOverlap  int `json:"chunk_overlap"`
	MaxAgentSteps int `json:"max_agent_steps"`

	Debug bool `json:"debug"`
}

// DefaultConfig returns the default configuration, overridden by values from
// a .env file (if present) and the process environment.
func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()
	dbDir := filepath.Join(currentDir, "db")

	cfg := &Config{
		DocsDir:   filepath.Join(currentDir, "docs"),
		DataDir:   filepath.Join(currentDir, "data"),
		DBDir:     dbDir,
		IndexDir:  filepath.Join(dbDir, "vector_index"),
		SalesDB:   filepath.Join(dbDir, "sales.db"),
		HistoryDB: filepath.Join(dbDir, "history.db"),

		OpenAIBaseURL: "https://api.openai.com/v1",

		ChatModel:      "gpt-4o-mini",
		EmbeddingModel: "text-embedding-3-small",
		MaxTokens:      1000,
		Temperature:    0.1,
		RequestTimeout: 30 * time.Second,

		RetrievalTopK: 3,
		ChunkSize:     1000,
		ChunkOverlap:  100,
		MaxAgentSteps: 10,

		Debug: false,
	}

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg.loadFromEnv()

	return cfg
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("DOCS_DIR"); val != "" {
		c.DocsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}
	if val := os.Getenv("DB_DIR"); val != "" {
		c.DBDir = val
		c.IndexDir = filepath.Join(val, "vector_index")
		c.SalesDB = filepath.Join(val, "sales.db")
		c.HistoryDB = filepath.Join(val, "history.db")
	}
	if val := os.Getenv("VECTOR_INDEX_DIR"); val != "" {
		c.IndexDir = val
	}
	if val := os.Getenv("SALES_DB_PATH"); val != "" {
		c.SalesDB = val
	}
	if val := os.Getenv("HISTORY_DB_PATH"); val != "" {
		c.HistoryDB = val
	}

	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.OpenAIAPIKey = val
	}
	if val := os.Getenv("OPENAI_BASE_URL"); val != "" {
		c.OpenAIBaseURL = val
	}
	if val := os.Getenv("CHAT_MODEL"); val != "" {
		c.ChatModel = val
	}
	if val := os.Getenv("EMBEDDING_MODEL"); val != "" {
		c.EmbeddingModel = val
	}

	if val := os.Getenv("MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("REQUEST_TIMEOUT_SECONDS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.RequestTimeout = time.Duration(v) * time.Second
		}
	}
	if val := os.Getenv("RETRIEVAL_TOP_K"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.RetrievalTopK = v
		}
	}
	if val := os.Getenv("MAX_AGENT_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil && v > 0 {
			c.MaxAgentSteps = v
		}
	}

	if val := os.Getenv("TOYOAGENT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}
}

// EnsureDirectories creates the directories the process writes to.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DBDir, c.IndexDir, filepath.Dir(c.SalesDB), filepath.Dir(c.HistoryDB)}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
