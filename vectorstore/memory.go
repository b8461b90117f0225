package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cbit-ai/answercore/embedding"
)

// MemoryDocument 内存索引中的一条文档。
type MemoryDocument struct {
	ID        string
	Content   string
	Embedding []float64
	Metadata  map[string]any
}

// MemoryIndex 基于余弦距离的内存向量索引。
// 线程安全；用于测试和无外部向量库的小规模部署。
type MemoryIndex struct {
	mu          sync.RWMutex
	collections map[string][]MemoryDocument
	logger      *zap.Logger
}

// NewMemoryIndex 创建内存向量索引。
func NewMemoryIndex(logger *zap.Logger) *MemoryIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryIndex{
		collections: make(map[string][]MemoryDocument),
		logger:      logger.With(zap.String("component", "memory_index")),
	}
}

// AddDocuments 向集合追加文档（集合不存在时自动创建）。
func (m *MemoryIndex) AddDocuments(collection string, docs []MemoryDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = append(m.collections[collection], docs...)
}

// Query 实现 Index 接口，距离取 1 - 余弦相似度。
func (m *MemoryIndex) Query(ctx context.Context, collection string, vector []float64, topK int) ([]QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, fmt.Errorf("vectorstore: topK must be > 0, got %d", topK)
	}

	m.mu.RLock()
	docs, ok := m.collections[collection]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("vectorstore: collection %q not found", collection)
	}

	results := make([]QueryResult, 0, len(docs))
	for _, doc := range docs {
		if len(doc.Embedding) == 0 {
			m.logger.Warn("document without embedding skipped",
				zap.String("collection", collection),
				zap.String("doc_id", doc.ID))
			continue
		}
		sim := embedding.CosineSimilarity(vector, doc.Embedding)
		results = append(results, QueryResult{
			DocumentID: doc.ID,
			Document:   doc.Content,
			Distance:   1 - sim,
			Metadata:   doc.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count 返回集合中的文档数量。
func (m *MemoryIndex) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}
