package vectorstore

import "context"

// QueryResult 向量索引的单条最近邻结果。
// Distance 为距离度量（越小越相似），由调用方转换为相似度。
type QueryResult struct {
	DocumentID string         `json:"document_id"`
	Document   string         `json:"document"`
	Distance   float64        `json:"distance"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Index 向量索引的统一查询接口。
type Index interface {
	// Query 在指定集合中检索与向量最近的 topK 个文档。
	Query(ctx context.Context, collection string, vector []float64, topK int) ([]QueryResult, error)
}
