package chatmodel

import (
	"context"
	"testing"

	"github.com/modelkit/geminichat/geminiapi"
)

type scriptedEmbedder struct {
	vectors  [][]float64
	err      error
	requests []*geminiapi.EmbedContentRequest
}

func (e *scriptedEmbedder) EmbedContent(ctx context.Context, req *geminiapi.EmbedContentRequest) (*geminiapi.EmbedContentResponse, error) {
	e.requests = append(e.requests, req)
	if e.err != nil {
		return nil, e.err
	}
	idx := len(e.requests) - 1
	if idx >= len(e.vectors) {
		idx = len(e.vectors) - 1
	}
	return &geminiapi.EmbedContentResponse{
		Embedding: geminiapi.ContentEmbedding{Values: e.vectors[idx]},
	}, nil
}

func TestEmbed(t *testing.T) {
	embedder := &scriptedEmbedder{vectors: [][]float64{{0.1, 0.2}}}
	model := NewEmbeddingModel(embedder)

	vec, err := model.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("expected 2 values, got %d", len(vec))
	}

	req := embedder.requests[0]
	if req.Model != geminiapi.DefaultEmbeddingModel {
		t.Errorf("expected default model, got %q", req.Model)
	}
	if len(req.Content.Parts) != 1 || req.Content.Parts[0].Text != "hello" {
		t.Errorf("unexpected content %+v", req.Content)
	}
}

func TestEmbedOptions(t *testing.T) {
	embedder := &scriptedEmbedder{vectors: [][]float64{{0.5}}}
	model := NewEmbeddingModel(embedder,
		WithEmbeddingModel("embedding-001"),
		WithTaskType("RETRIEVAL_QUERY"),
	)

	if _, err := model.Embed(context.Background(), "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := embedder.requests[0]
	if req.Model != "embedding-001" {
		t.Errorf("expected configured model, got %q", req.Model)
	}
	if req.TaskType != "RETRIEVAL_QUERY" {
		t.Errorf("expected task type, got %q", req.TaskType)
	}
}

func TestEmbedBatch(t *testing.T) {
	embedder := &scriptedEmbedder{vectors: [][]float64{{1}, {2}, {3}}}
	model := NewEmbeddingModel(embedder)

	vecs, err := model.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if vecs[1][0] != 2 {
		t.Errorf("expected vectors in input order, got %v", vecs)
	}
}

func TestEmbedBatchStopsAtFirstFailure(t *testing.T) {
	embedder := &scriptedEmbedder{err: &geminiapi.AuthenticationError{}}
	model := NewEmbeddingModel(embedder)

	_, err := model.EmbedBatch(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(embedder.requests) != 1 {
		t.Errorf("expected batch to stop after the first failure, got %d requests", len(embedder.requests))
	}
}
