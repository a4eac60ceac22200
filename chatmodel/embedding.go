package chatmodel

import (
	"context"

	"github.com/modelkit/geminichat/geminiapi"
)

// Embedder is the transport slice the embedding model needs.
// *geminiapi.Client satisfies it.
type Embedder interface {
	EmbedContent(ctx context.Context, req *geminiapi.EmbedContentRequest) (*geminiapi.EmbedContentResponse, error)
}

// EmbeddingModel turns text into embedding vectors.
type EmbeddingModel struct {
	client   Embedder
	model    string
	taskType string
	retry    *geminiapi.RetryPolicy
}

// EmbeddingOption configures an EmbeddingModel.
type EmbeddingOption func(*EmbeddingModel)

// WithEmbeddingModel selects the embedding model ID.
func WithEmbeddingModel(model string) EmbeddingOption {
	return func(m *EmbeddingModel) {
		if model != "" {
			m.model = model
		}
	}
}

// WithTaskType hints the provider about the downstream use of the vectors
// (RETRIEVAL_QUERY, RETRIEVAL_DOCUMENT, SEMANTIC_SIMILARITY, ...).
func WithTaskType(taskType string) EmbeddingOption {
	return func(m *EmbeddingModel) { m.taskType = taskType }
}

// WithEmbeddingRetryPolicy enables retries around each embedding call.
func WithEmbeddingRetryPolicy(p geminiapi.RetryPolicy) EmbeddingOption {
	return func(m *EmbeddingModel) { m.retry = &p }
}

// NewEmbeddingModel creates an EmbeddingModel over the given transport.
func NewEmbeddingModel(client Embedder, opts ...EmbeddingOption) *EmbeddingModel {
	m := &EmbeddingModel{
		client: client,
		model:  geminiapi.DefaultEmbeddingModel,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Embed returns the embedding vector for one text.
func (m *EmbeddingModel) Embed(ctx context.Context, text string) ([]float64, error) {
	req := &geminiapi.EmbedContentRequest{
		Model:    m.model,
		TaskType: m.taskType,
		Content: geminiapi.Content{
			Parts: []geminiapi.Part{{Text: text}},
		},
	}

	var resp *geminiapi.EmbedContentResponse
	var err error
	if m.retry != nil {
		resp, err = geminiapi.Retry(ctx, *m.retry, func(ctx context.Context) (*geminiapi.EmbedContentResponse, error) {
			return m.client.EmbedContent(ctx, req)
		})
	} else {
		resp, err = m.client.EmbedContent(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return resp.Embedding.Values, nil
}

// EmbedBatch embeds texts one by one, stopping at the first failure.
func (m *EmbeddingModel) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}
