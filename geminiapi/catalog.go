package geminiapi

// Defaults used when the caller does not name a model.
const (
	DefaultChatModel      = "gemini-pro"
	DefaultEmbeddingModel = "text-embedding-004"
)

// ModelKind discriminates catalog entries.
type ModelKind string

const (
	ModelKindChat      ModelKind = "chat"
	ModelKindEmbedding ModelKind = "embedding"
)

// ModelInfo describes a known model in the catalog.
type ModelInfo struct {
	ID             string    `json:"id"`
	Kind           ModelKind `json:"kind"`
	DisplayName    string    `json:"display_name"`
	ContextWindow  int       `json:"context_window,omitempty"`
	MaxOutput      *int      `json:"max_output,omitempty"`
	Dimensions     *int      `json:"dimensions,omitempty"`
	SupportsVision bool      `json:"supports_vision,omitempty"`
	SupportsTools  bool      `json:"supports_tools,omitempty"`
	Aliases        []string  `json:"aliases,omitempty"`
}

func intPtr(v int) *int { return &v }

// Models is the built-in model catalog.
var Models = []ModelInfo{
	// Chat models
	{
		ID: "gemini-pro", Kind: ModelKindChat, DisplayName: "Gemini Pro",
		ContextWindow: 32768, MaxOutput: intPtr(8192),
		SupportsTools: true,
	},
	{
		ID: "gemini-pro-vision", Kind: ModelKindChat, DisplayName: "Gemini Pro Vision",
		ContextWindow: 16384, MaxOutput: intPtr(4096),
		SupportsVision: true,
	},
	{
		ID: "gemini-1.5-pro", Kind: ModelKindChat, DisplayName: "Gemini 1.5 Pro",
		ContextWindow: 1048576, MaxOutput: intPtr(8192),
		SupportsTools: true, SupportsVision: true,
		Aliases: []string{"gemini-1.5-pro-latest"},
	},
	{
		ID: "gemini-1.5-flash-preview-0514", Kind: ModelKindChat, DisplayName: "Gemini 1.5 Flash (Preview)",
		ContextWindow: 1048576, MaxOutput: intPtr(8192),
		SupportsTools: true, SupportsVision: true,
		Aliases: []string{"gemini-1.5-flash"},
	},

	// Embedding models
	{
		ID: "text-embedding-004", Kind: ModelKindEmbedding, DisplayName: "Text Embedding 004",
		ContextWindow: 2048, Dimensions: intPtr(768),
	},
	{
		ID: "embedding-001", Kind: ModelKindEmbedding, DisplayName: "Embedding 001",
		ContextWindow: 2048, Dimensions: intPtr(768),
	},
}

// GetModelInfo returns the catalog entry for a model, or nil if unknown.
func GetModelInfo(modelID string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == modelID {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == modelID {
				return &Models[i]
			}
		}
	}
	return nil
}

// ListModels returns all known models, optionally filtered by kind.
func ListModels(kind ModelKind) []ModelInfo {
	if kind == "" {
		result := make([]ModelInfo, len(Models))
		copy(result, Models)
		return result
	}
	var result []ModelInfo
	for _, m := range Models {
		if m.Kind == kind {
			result = append(result, m)
		}
	}
	return result
}
