package chatmodel

import (
	"encoding/json"
	"testing"

	"github.com/modelkit/geminichat/geminiapi"
)

func TestGeminiExtractorNeverDetects(t *testing.T) {
	e := GeminiDirectiveExtractor{}
	resp := wireText(`{"function_call": {"name": "add", "arguments": {}}}`)

	// Even text that looks like a directive is not one: the provider
	// publishes no directive format for this extractor to trust.
	if e.IsFunctionCall(resp) {
		t.Error("reference extractor must never report a function call")
	}
	calls, err := e.Calls(resp)
	if err != nil || calls != nil {
		t.Errorf("expected no calls and no error, got %v, %v", calls, err)
	}
}

func TestJSONExtractorDetects(t *testing.T) {
	e := JSONDirectiveExtractor{}

	if !e.IsFunctionCall(wireText(`{"function_call": {"name": "f", "arguments": {}}}`)) {
		t.Error("expected detection of directive marker")
	}
	if e.IsFunctionCall(wireText("The answer is 4.")) {
		t.Error("plain text must not be flagged")
	}
}

func TestJSONExtractorCalls(t *testing.T) {
	e := JSONDirectiveExtractor{}
	resp := wireText(`{"function_call": {"name": "get_weather", "arguments": {"city": "SF"}}}`)

	calls, err := e.Calls(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(calls))
	}
	if calls[0].Name != "get_weather" {
		t.Errorf("unexpected name %q", calls[0].Name)
	}
	var args map[string]string
	if err := json.Unmarshal(calls[0].Args, &args); err != nil {
		t.Fatalf("arguments not JSON: %v", err)
	}
	if args["city"] != "SF" {
		t.Errorf("unexpected arguments %v", args)
	}
	if calls[0].ID == "" {
		t.Error("expected a synthesized call ID")
	}
}

func TestJSONExtractorCodeFence(t *testing.T) {
	e := JSONDirectiveExtractor{}
	resp := wireText("```json\n{\"function_call\": {\"name\": \"f\", \"arguments\": {}}}\n```")

	calls, err := e.Calls(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 || calls[0].Name != "f" {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestJSONExtractorMultipleCalls(t *testing.T) {
	e := JSONDirectiveExtractor{}
	resp := wireText(`{"function_call": {"name": "a", "arguments": {}}}` + "\n" +
		`{"function_call": {"name": "b", "arguments": {}}}`)

	calls, err := e.Calls(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0].Name != "a" || calls[1].Name != "b" {
		t.Errorf("unexpected calls %+v", calls)
	}
}

func TestJSONExtractorMalformed(t *testing.T) {
	e := JSONDirectiveExtractor{}
	resp := wireText(`something about "function_call" but no object`)

	_, err := e.Calls(resp)
	if _, ok := err.(*DirectiveError); !ok {
		t.Fatalf("expected *DirectiveError, got %T", err)
	}
}

func TestJSONExtractorAssembleStream(t *testing.T) {
	e := JSONDirectiveExtractor{}
	first := wireText(`{"function_call": {"name": "add",`)
	rest := &fakeStream{chunks: []*geminiapi.GenerateContentResponse{
		wireText(` "arguments": {"a": 1,`),
		wireText(` "b": 2}}}`),
	}}

	calls, err := e.AssembleStream(first, rest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 1 || calls[0].Name != "add" {
		t.Fatalf("unexpected calls %+v", calls)
	}
	var args map[string]float64
	if err := json.Unmarshal(calls[0].Args, &args); err != nil {
		t.Fatalf("arguments not JSON: %v", err)
	}
	if args["a"] != 1 || args["b"] != 2 {
		t.Errorf("unexpected arguments %v", args)
	}
}

func TestJSONExtractorAssembleStreamEOFMalformed(t *testing.T) {
	e := JSONDirectiveExtractor{}
	first := wireText(`{"function_call": {"name": "add",`)
	rest := &fakeStream{}

	_, err := e.AssembleStream(first, rest)
	if _, ok := err.(*DirectiveError); !ok {
		t.Fatalf("expected *DirectiveError at truncated stream end, got %T", err)
	}
}
