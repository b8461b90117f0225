package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// OpenAICompatProvider 通过 OpenAI 兼容的 /embeddings 端点进行向量化。
// 兼容 OpenAI 官方 API 以及各类自建的 OpenAI 风格网关。
type OpenAICompatProvider struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger
}

// NewOpenAICompatProvider 创建 OpenAI 兼容嵌入提供者。
func NewOpenAICompatProvider(cfg Config, logger *zap.Logger) *OpenAICompatProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = dimensionsForModel(cfg.Model)
	}
	if cfg.MaxBatch == 0 {
		cfg.MaxBatch = 100
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Name == "" {
		cfg.Name = "openai-embedding"
	}

	return &OpenAICompatProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With(zap.String("component", "embedding_provider")),
	}
}

func (p *OpenAICompatProvider) Name() string    { return p.cfg.Name }
func (p *OpenAICompatProvider) Dimensions() int { return p.cfg.Dimensions }

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	// 部分自建网关返回扁平格式
	Embeddings [][]float64 `json:"embeddings,omitempty"`
}

// Embed 向量化单个文本。
func (p *OpenAICompatProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch 批量向量化，超过 MaxBatch 时自动分批。
func (p *OpenAICompatProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += p.cfg.MaxBatch {
		end := start + p.cfg.MaxBatch
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := p.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}

	if len(out) != len(texts) {
		return nil, fmt.Errorf("embedding: provider returned %d vectors for %d inputs", len(out), len(texts))
	}
	return out, nil
}

func (p *OpenAICompatProvider) embedChunk(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(embedRequest{Input: texts, Model: p.cfg.Model})
	if err != nil {
		return nil, fmt.Errorf("embedding: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("embedding: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("embedding: provider %s returned status %d: %s",
			p.cfg.Name, resp.StatusCode, truncateBody(respBody))
	}

	var parsed embedResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("embedding: parse response: %w", err)
	}

	if len(parsed.Data) > 0 {
		vecs := make([][]float64, len(parsed.Data))
		for _, item := range parsed.Data {
			if item.Index < 0 || item.Index >= len(vecs) {
				return nil, fmt.Errorf("embedding: response index %d out of range", item.Index)
			}
			vecs[item.Index] = item.Embedding
		}
		return vecs, nil
	}
	if len(parsed.Embeddings) > 0 {
		return parsed.Embeddings, nil
	}
	return nil, fmt.Errorf("embedding: unrecognized response format")
}

func dimensionsForModel(model string) int {
	switch {
	case strings.Contains(model, "text-embedding-3-large"):
		return 3072
	case strings.Contains(model, "text-embedding-3-small"),
		strings.Contains(model, "text-embedding-ada-002"):
		return 1536
	default:
		return 768
	}
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max])
}
