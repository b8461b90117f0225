package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// QdrantConfig Qdrant 索引配置。
//
// Notes:
// - collection 名由调用方按查询传入，一个客户端可服务多个集合。
// - Qdrant Cosine 度量返回相似度分数，这里统一换算为距离 1 - score。
type QdrantConfig struct {
	Host    string        `json:"host" yaml:"host"`
	Port    int           `json:"port" yaml:"port"`
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url"`
	APIKey  string        `json:"api_key,omitempty" yaml:"api_key"`
	HTTPS   bool          `json:"https,omitempty" yaml:"https"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout"`

	PayloadContentField  string `json:"payload_content_field" yaml:"payload_content_field"`   // default "content"
	PayloadMetadataField string `json:"payload_metadata_field" yaml:"payload_metadata_field"` // default "metadata"
	PayloadIDField       string `json:"payload_id_field" yaml:"payload_id_field"`             // default "doc_id"
}

// QdrantIndex 通过 Qdrant REST API 实现 Index。
type QdrantIndex struct {
	cfg     QdrantConfig
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewQdrantIndex 创建 Qdrant 向量索引客户端。
func NewQdrantIndex(cfg QdrantConfig, logger *zap.Logger) *QdrantIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6333
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PayloadContentField == "" {
		cfg.PayloadContentField = "content"
	}
	if cfg.PayloadMetadataField == "" {
		cfg.PayloadMetadataField = "metadata"
	}
	if cfg.PayloadIDField == "" {
		cfg.PayloadIDField = "doc_id"
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		scheme := "http"
		if cfg.HTTPS || cfg.Port == 443 || cfg.Port == 6334 {
			scheme = "https"
		}
		baseURL = fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port)
	}

	return &QdrantIndex{
		cfg:     cfg,
		baseURL: baseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.With(zap.String("component", "qdrant_index")),
	}
}

// Query 实现 Index 接口。
func (q *QdrantIndex) Query(ctx context.Context, collection string, vector []float64, topK int) ([]QueryResult, error) {
	if strings.TrimSpace(collection) == "" {
		return nil, fmt.Errorf("vectorstore: qdrant collection is required")
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("vectorstore: query vector is required")
	}
	if topK <= 0 {
		return []QueryResult{}, nil
	}

	req := struct {
		Vector      []float64 `json:"vector"`
		Limit       int       `json:"limit"`
		WithPayload bool      `json:"with_payload"`
		WithVector  bool      `json:"with_vector"`
	}{
		Vector:      vector,
		Limit:       topK,
		WithPayload: true,
	}

	type qdrantHit struct {
		ID      any            `json:"id"`
		Score   float64        `json:"score"`
		Payload map[string]any `json:"payload"`
	}
	var resp struct {
		Result []qdrantHit `json:"result"`
		Status string      `json:"status"`
	}

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(collection))
	if err := q.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}

	out := make([]QueryResult, 0, len(resp.Result))
	for _, hit := range resp.Result {
		r := QueryResult{
			// Cosine 度量下 score 是相似度
			Distance: 1.0 - hit.Score,
		}
		if hit.Payload != nil {
			if v, ok := hit.Payload[q.cfg.PayloadIDField].(string); ok {
				r.DocumentID = v
			}
			if v, ok := hit.Payload[q.cfg.PayloadContentField].(string); ok {
				r.Document = v
			}
			if m, ok := hit.Payload[q.cfg.PayloadMetadataField].(map[string]any); ok {
				r.Metadata = m
			}
		}
		if r.DocumentID == "" {
			r.DocumentID = fmt.Sprint(hit.ID)
		}
		out = append(out, r)
	}
	return out, nil
}

func (q *QdrantIndex) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("vectorstore: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("vectorstore: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return fmt.Errorf("vectorstore: qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("vectorstore: read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("vectorstore: qdrant returned status %d: %s", resp.StatusCode, firstN(respBody, 200))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("vectorstore: parse response: %w", err)
		}
	}
	return nil
}

func firstN(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
