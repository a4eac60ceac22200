package chatmodel

import (
	"encoding/base64"
	"testing"

	"github.com/modelkit/geminichat/geminiapi"
)

func TestToContentsSystemPrefix(t *testing.T) {
	contents, err := toContents([]Message{
		SystemMessage("Be terse."),
		UserMessage("Hi"),
		AssistantMessage("Hello."),
		UserMessage("Bye"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}
	if contents[0].Role != geminiapi.RoleUser {
		t.Errorf("expected user role first, got %q", contents[0].Role)
	}
	if got := contents[0].Parts[0].Text; got != "Be terse.\n\nHi" {
		t.Errorf("expected system prefix on first user message, got %q", got)
	}
	// Only the first user message carries the prefix.
	if got := contents[2].Parts[0].Text; got != "Bye" {
		t.Errorf("later user message must stay unprefixed, got %q", got)
	}
	if contents[1].Role != geminiapi.RoleModel {
		t.Errorf("assistant must map to model role, got %q", contents[1].Role)
	}
}

func TestToContentsMultipleSystemMessages(t *testing.T) {
	contents, err := toContents([]Message{
		SystemMessage("Be terse."),
		UserMessage("Hi"),
		SystemMessage("Answer in French."),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// All system messages are gathered in order, newline-joined, regardless
	// of where they sit in the conversation.
	want := "Be terse.\nAnswer in French.\n\nHi"
	if got := contents[0].Parts[0].Text; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestToContentsSystemOnly(t *testing.T) {
	contents, err := toContents([]Message{SystemMessage("Say hello.")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	if contents[0].Role != geminiapi.RoleUser {
		t.Errorf("expected user role, got %q", contents[0].Role)
	}
	if contents[0].Parts[0].Text != "Say hello." {
		t.Errorf("expected instructions as user turn, got %q", contents[0].Parts[0].Text)
	}
}

func TestToContentsNoSystem(t *testing.T) {
	contents, err := toContents([]Message{UserMessage("Hi")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents[0].Parts[0].Text != "Hi" {
		t.Errorf("expected untouched user text, got %q", contents[0].Parts[0].Text)
	}
}

func TestToContentsToolRole(t *testing.T) {
	contents, err := toContents([]Message{
		UserMessage("Hi"),
		{Role: RoleTool, Parts: []ContentPart{TextPart("result")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if contents[1].Role != geminiapi.RoleUser {
		t.Errorf("tool results must travel as user contents, got %q", contents[1].Role)
	}
}

func TestToContentsUnsupportedRole(t *testing.T) {
	_, err := toContents([]Message{{Role: Role("weird"), Parts: []ContentPart{TextPart("x")}}})
	if err == nil {
		t.Fatal("expected error for unsupported role")
	}
}

func TestToContentsMedia(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	contents, err := toContents([]Message{
		{Role: RoleUser, Parts: []ContentPart{
			TextPart("What is in this image?"),
			MediaPart("image/png", data),
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	blob := parts[1].InlineData
	if blob == nil {
		t.Fatal("expected inline data part")
	}
	if blob.MIMEType != "image/png" {
		t.Errorf("expected mime type image/png, got %q", blob.MIMEType)
	}
	if blob.Data != base64.StdEncoding.EncodeToString(data) {
		t.Errorf("expected base64 payload, got %q", blob.Data)
	}
}

func TestToContentsMediaFirstGetsPrefixPart(t *testing.T) {
	contents, err := toContents([]Message{
		SystemMessage("Describe images."),
		{Role: RoleUser, Parts: []ContentPart{MediaPart("image/png", []byte{1})}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parts := contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("expected prefix part inserted, got %d parts", len(parts))
	}
	if parts[0].Text != "Describe images." {
		t.Errorf("expected system text part first, got %q", parts[0].Text)
	}
	if parts[1].InlineData == nil {
		t.Error("expected media part preserved")
	}
}

func TestBuildRequestDefaults(t *testing.T) {
	model := New(&scriptedTransport{})
	req, err := model.buildRequest([]Message{UserMessage("Hi")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Model != geminiapi.DefaultChatModel {
		t.Errorf("expected default model, got %q", req.Model)
	}
	if req.GenerationConfig != nil {
		t.Error("expected no generation config when nothing is set")
	}
	if req.Tools != nil {
		t.Error("expected no tools without enabled functions")
	}
}

func TestBuildRequestOptions(t *testing.T) {
	temp := 0.2
	maxTokens := 100
	registry := addRegistry(t, nil)

	model := New(&scriptedTransport{},
		WithRegistry(registry),
		WithDefaultOptions(Options{Model: "gemini-1.5-pro", Temperature: &temp}),
	)

	req, err := model.buildRequest([]Message{UserMessage("Hi")}, &Options{
		MaxOutputTokens: &maxTokens,
		Functions:       []string{"add"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Model != "gemini-1.5-pro" {
		t.Errorf("expected default model kept, got %q", req.Model)
	}
	gc := req.GenerationConfig
	if gc == nil || gc.Temperature == nil || *gc.Temperature != 0.2 {
		t.Error("expected default temperature carried into config")
	}
	if gc.MaxOutputTokens == nil || *gc.MaxOutputTokens != 100 {
		t.Error("expected call-scope max tokens in config")
	}
	if len(req.Tools) != 1 || len(req.Tools[0].FunctionDeclarations) != 1 {
		t.Fatalf("expected one declared function, got %+v", req.Tools)
	}
	if req.Tools[0].FunctionDeclarations[0].Name != "add" {
		t.Errorf("unexpected declaration: %+v", req.Tools[0].FunctionDeclarations[0])
	}
}

func TestToChatResponseFlattensCandidates(t *testing.T) {
	resp := &geminiapi.GenerateContentResponse{
		Candidates: []geminiapi.Candidate{
			{
				Content:      geminiapi.Content{Parts: []geminiapi.Part{{Text: "a"}, {Text: "b"}}},
				FinishReason: "STOP",
			},
			{
				Content:      geminiapi.Content{Parts: []geminiapi.Part{{Text: "c"}}},
				FinishReason: "MAX_TOKENS",
			},
		},
	}

	out := toChatResponse(resp)
	if len(out.Generations) != 3 {
		t.Fatalf("expected 3 generations, got %d", len(out.Generations))
	}
	if out.Generations[0].Text != "a" || out.Generations[2].Text != "c" {
		t.Errorf("unexpected generations: %+v", out.Generations)
	}
	if out.Generations[2].FinishReason != "MAX_TOKENS" {
		t.Errorf("expected per-candidate finish reason, got %q", out.Generations[2].FinishReason)
	}
}

func TestToChatResponseAbsentUsage(t *testing.T) {
	out := toChatResponse(wireText("x"))
	if out.Usage.PromptTokens != nil || out.Usage.CompletionTokens != nil {
		t.Error("absent token counts must stay nil")
	}

	partial := wireText("y")
	partial.UsageMetadata = &geminiapi.UsageMetadata{TotalTokenCount: ptrInt64(5)}
	out = toChatResponse(partial)
	if out.Usage.PromptTokens != nil {
		t.Error("prompt tokens the provider omitted must stay nil")
	}
}

func TestMessageTextContent(t *testing.T) {
	msg := Message{Role: RoleUser, Parts: []ContentPart{
		TextPart("a"),
		MediaPart("image/png", []byte{1}),
		TextPart("b"),
	}}
	if got := msg.TextContent(); got != "ab" {
		t.Errorf("expected text parts concatenated, got %q", got)
	}
}

func TestChatResponseText(t *testing.T) {
	var nilResp *ChatResponse
	if nilResp.Text() != "" {
		t.Error("nil response should yield empty text")
	}
	resp := &ChatResponse{Generations: []Generation{{Text: "first"}, {Text: "second"}}}
	if resp.Text() != "first" {
		t.Errorf("expected first generation, got %q", resp.Text())
	}
}
