package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAICompatProviderDefaults(t *testing.T) {
	p := NewOpenAICompatProvider(Config{}, nil)
	assert.Equal(t, "openai-embedding", p.Name())
	assert.Equal(t, 1536, p.Dimensions())

	large := NewOpenAICompatProvider(Config{Model: "text-embedding-3-large"}, nil)
	assert.Equal(t, 3072, large.Dimensions())

	custom := NewOpenAICompatProvider(Config{Model: "bge-m3"}, nil)
	assert.Equal(t, 768, custom.Dimensions())
}

func TestEmbedBatchOpenAIFormat(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := map[string]any{"data": []map[string]any{}}
		data := resp["data"].([]map[string]any)
		// 乱序返回，验证按 index 重排
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"index":     i,
				"embedding": []float64{float64(i), 1.0},
			})
		}
		resp["data"] = data
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(Config{BaseURL: srv.URL, APIKey: "sk-test"}, nil)
	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float64{0, 1}, vecs[0])
	assert.Equal(t, []float64{2, 1}, vecs[2])
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestEmbedBatchFlatFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float64{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(Config{BaseURL: srv.URL}, nil)
	vecs, err := p.EmbedBatch(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Equal(t, []float64{0.3, 0.4}, vecs[1])
}

func TestEmbedBatchSplitsLargeBatches(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.LessOrEqual(t, len(req.Input), 2)

		vecs := make([][]float64, len(req.Input))
		for i := range vecs {
			vecs[i] = []float64{1}
		}
		json.NewEncoder(w).Encode(map[string]any{"embeddings": vecs})
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(Config{BaseURL: srv.URL, MaxBatch: 2}, nil)
	vecs, err := p.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	assert.Len(t, vecs, 5)
	assert.Equal(t, 3, calls)
}

func TestEmbedBatchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider(Config{BaseURL: srv.URL}, nil)
	_, err := p.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	p := NewOpenAICompatProvider(Config{BaseURL: "http://unused"}, nil)
	vecs, err := p.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
