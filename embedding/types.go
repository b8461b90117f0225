package embedding

import (
	"context"
	"time"
)

// Provider 定义统一的嵌入提供者接口。
type Provider interface {
	// Name 返回提供者名称。
	Name() string

	// Embed 向量化单个文本。
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbedBatch 批量向量化，返回与输入等长的向量列表。
	EmbedBatch(ctx context.Context, texts []string) ([][]float64, error)

	// Dimensions 返回向量维度。
	Dimensions() int
}

// Config 嵌入提供者配置。
// 按请求显式构造并传入，不存在进程级可变注册表。
type Config struct {
	Name       string        `json:"name" yaml:"name"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	APIKey     string        `json:"api_key" yaml:"api_key"`
	Model      string        `json:"model" yaml:"model"`
	Dimensions int           `json:"dimensions" yaml:"dimensions"`
	MaxBatch   int           `json:"max_batch" yaml:"max_batch"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
}
