package domain

import (
	"context"
)

// CompletionGateway abstracts the remote generative-AI text completion
// capability. A gateway that is not configured reports Available() == false
// and callers must not invoke Complete at all.
type CompletionGateway interface {
	Available() bool
	Complete(ctx context.Context, prompt string) (string, error)
}

// MedicalLookup answers arbitrary medical queries. Implementations never
// return an error for remote failure; they degrade to the fixed unavailable
// result instead.
type MedicalLookup interface {
	Lookup(ctx context.Context, query string) (*MedicalInfo, error)
}

// ReportAnalyzer is the orchestration surface consumed by the API layer.
type ReportAnalyzer interface {
	AnalyzeReport(ctx context.Context, filename, text string) (string, error)
	AnswerQuestion(ctx context.Context, question string) (string, error)
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetStorageConfig() *StorageConfig
	GetAIConfig() *AIConfig
	GetLookupConfig() *LookupConfig
	GetCacheConfig() *CacheConfig
	Validate() error
}
