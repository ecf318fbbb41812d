package generativeAI

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-planner/internal/types"
)

const defaultTemperature = 0.7

// AIClient wraps the genai client with the grounding tools the itinerary
// generator needs. One client is constructed at startup and shared.
type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateGrounded sends a prompt with Google Search grounding enabled and
// returns the response text together with the grounding citations, already
// narrowed to the closed GroundingChunk type at this boundary.
func (ai *AIClient) GenerateGrounded(ctx context.Context, prompt string) (string, []types.GroundingChunk, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
		Tools: []*genai.Tool{
			{GoogleSearch: &genai.GoogleSearch{}},
		},
	}

	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		return "", nil, fmt.Errorf("generate content failed: %w", err)
	}

	chunks := ExtractGroundingChunks(result)
	ai.logger.DebugContext(ctx, "generation completed",
		slog.String("model", ai.model),
		slog.Int("citations", len(chunks)),
	)
	return result.Text(), chunks, nil
}

// ExtractGroundingChunks flattens the loosely-shaped grounding metadata of
// a response into tagged citations. The generator may cite the same source
// twice or omit titles; chunks with no usable URI are dropped here so the
// matcher never sees a half-formed citation. Maps places arrive as
// retrieved-context chunks pointing at maps.google.com; they are tagged as
// maps citations so the UI can badge them.
func ExtractGroundingChunks(resp *genai.GenerateContentResponse) []types.GroundingChunk {
	if resp == nil {
		return nil
	}
	var out []types.GroundingChunk
	for _, cand := range resp.Candidates {
		if cand == nil || cand.GroundingMetadata == nil {
			continue
		}
		for _, gc := range cand.GroundingMetadata.GroundingChunks {
			if gc == nil {
				continue
			}
			if gc.Web != nil && gc.Web.URI != "" {
				out = append(out, types.GroundingChunk{
					Kind:  citationKindForURI(gc.Web.URI),
					URI:   gc.Web.URI,
					Title: gc.Web.Title,
				})
			}
			if gc.RetrievedContext != nil && gc.RetrievedContext.URI != "" {
				out = append(out, types.GroundingChunk{
					Kind:  citationKindForURI(gc.RetrievedContext.URI),
					URI:   gc.RetrievedContext.URI,
					Title: gc.RetrievedContext.Title,
				})
			}
		}
	}
	return out
}

func citationKindForURI(uri string) types.CitationKind {
	if isMapsURI(uri) {
		return types.CitationMaps
	}
	return types.CitationWeb
}
