package geminiapi

// Wire records for the Generative Language REST API. Field names mirror the
// provider's JSON; everything optional carries omitempty so requests only
// serialize what the caller set.

// Role values accepted by the wire protocol. There is no system or tool
// role; higher layers fold those into user contents.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// GenerateContentRequest is the body for generateContent and
// streamGenerateContent calls.
type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	SafetySettings   []SafetySetting   `json:"safetySettings,omitempty"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
	Tools            []Tool            `json:"tools,omitempty"`

	// Model addresses the endpoint URL and is never serialized.
	Model string `json:"-"`
}

// Clone returns a copy of the request with its own Contents slice. The
// orchestration layer regenerates requests by appending contents; sharing
// the backing array across iterations would let a later append clobber an
// earlier snapshot.
func (r *GenerateContentRequest) Clone() *GenerateContentRequest {
	out := *r
	out.Contents = make([]Content, len(r.Contents))
	copy(out.Contents, r.Contents)
	return &out
}

// Content is one turn of the conversation on the wire.
type Content struct {
	Parts []Part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

// Part is one atomic content unit: text or an inline media blob.
type Part struct {
	Text       string `json:"text,omitempty"`
	InlineData *Blob  `json:"inlineData,omitempty"`
}

// Blob holds typed binary media. Data is base64 encoded.
type Blob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// SafetySetting adjusts the blocking threshold for one harm category.
type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// GenerationConfig carries the sampling parameters for a request.
type GenerationConfig struct {
	StopSequences   []string `json:"stopSequences,omitempty"`
	CandidateCount  *int     `json:"candidateCount,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
}

// Tool groups the function declarations visible to the model for a call.
type Tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations,omitempty"`
}

// FunctionDeclaration describes one callable function to the model.
// Parameters is a JSON-schema-shaped object; to declare a function with no
// parameters, use {"type": "object", "properties": {}}.
type FunctionDeclaration struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// GenerateContentResponse is one model completion, full or partial. A
// streamed call yields a sequence of these.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
}

// Text returns the concatenated text parts of the first candidate.
func (r *GenerateContentResponse) Text() string {
	if r == nil || len(r.Candidates) == 0 {
		return ""
	}
	out := ""
	for _, part := range r.Candidates[0].Content.Parts {
		out += part.Text
	}
	return out
}

// Candidate is one generated alternative within a response.
type Candidate struct {
	Content          Content           `json:"content"`
	FinishReason     string            `json:"finishReason,omitempty"`
	SafetyRatings    []SafetyRating    `json:"safetyRatings,omitempty"`
	CitationMetadata *CitationMetadata `json:"citationMetadata,omitempty"`
	TokenCount       *int              `json:"tokenCount,omitempty"`
	Index            *int              `json:"index,omitempty"`
}

// PromptFeedback reports prompt-level blocking.
type PromptFeedback struct {
	BlockReason   string         `json:"blockReason,omitempty"`
	SafetyRatings []SafetyRating `json:"safetyRatings,omitempty"`
}

// SafetyRating is one harm-category annotation on a candidate or prompt.
type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     *bool  `json:"blocked,omitempty"`
}

// CitationMetadata lists source attributions for a candidate.
type CitationMetadata struct {
	CitationSources []CitationSource `json:"citationSource,omitempty"`
}

// CitationSource attributes a span of the candidate to a source.
type CitationSource struct {
	StartIndex *int   `json:"startIndex,omitempty"`
	EndIndex   *int   `json:"endIndex,omitempty"`
	URI        string `json:"uri,omitempty"`
	License    string `json:"license,omitempty"`
}

// UsageMetadata is the provider's token accounting for one call. Counts are
// pointers: the provider may omit any of them, and an absent count must
// stay distinguishable from zero.
type UsageMetadata struct {
	PromptTokenCount     *int64 `json:"promptTokenCount,omitempty"`
	CandidatesTokenCount *int64 `json:"candidatesTokenCount,omitempty"`
	TotalTokenCount      *int64 `json:"totalTokenCount,omitempty"`
}

// EmbedContentRequest is the body for embedContent calls.
type EmbedContentRequest struct {
	Content              Content `json:"content"`
	TaskType             string  `json:"taskType,omitempty"`
	Title                string  `json:"title,omitempty"`
	OutputDimensionality *int    `json:"outputDimensionality,omitempty"`

	Model string `json:"-"`
}

// EmbedContentResponse carries the embedding vector for one input.
type EmbedContentResponse struct {
	Embedding ContentEmbedding `json:"embedding"`
}

// ContentEmbedding is the embedding vector itself.
type ContentEmbedding struct {
	Values []float64 `json:"values"`
}
