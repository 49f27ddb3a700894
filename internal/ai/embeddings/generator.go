package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
)

// Inputs beyond this many characters are cut before embedding
const maxInputChars = 8000

// Embedder produces vectors for semantic ranking
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingsGenerator creates embeddings through an Azure deployment
type EmbeddingsGenerator struct {
	client     *openai.Client
	deployment string
}

func NewEmbeddingsGenerator(apiKey, endpoint, apiVersion, deployment string) *EmbeddingsGenerator {
	client := openai.NewClient(
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(apiKey),
	)

	return &EmbeddingsGenerator{
		client:     &client,
		deployment: deployment,
	}
}

// GenerateEmbedding creates an embedding vector for text
func (g *EmbeddingsGenerator) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = Truncate(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(g.deployment),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// GenerateBatchEmbeddings creates embeddings for multiple texts
func (g *EmbeddingsGenerator) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	validTexts := make([]string, 0, len(texts))
	for _, text := range texts {
		if t := Truncate(text); t != "" {
			validTexts = append(validTexts, t)
		}
	}
	if len(validTexts) == 0 {
		return nil, fmt.Errorf("all texts are empty")
	}

	resp, err := g.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: validTexts,
		},
		Model: openai.EmbeddingModel(g.deployment),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	out := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		out[i] = toFloat32(data.Embedding)
	}
	return out, nil
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// Truncate trims whitespace and caps the input length on a rune boundary
func Truncate(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxInputChars {
		return text
	}
	r := []rune(text)
	if len(r) > maxInputChars {
		r = r[:maxInputChars]
	}
	return string(r)
}

var ErrDisabled = errors.New("embeddings are disabled")

// Disabled is used when no embedding deployment is configured
type Disabled struct{}

func (Disabled) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return nil, ErrDisabled
}
