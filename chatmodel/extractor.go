package chatmodel

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/modelkit/geminichat/geminiapi"
)

// FunctionCall is one extracted invocation directive: "invoke function
// Name with Args".
type FunctionCall struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// DirectiveExtractor decides whether a response carries a function-call
// directive and how to parse it. The wire protocol embeds directives in
// free-form text rather than a structured field, so detection is a
// provider-specific customization point rather than a fixed rule.
type DirectiveExtractor interface {
	// IsFunctionCall reports whether the response requests a function
	// invocation.
	IsFunctionCall(resp *geminiapi.GenerateContentResponse) bool

	// Calls extracts every requested invocation from the response.
	Calls(resp *geminiapi.GenerateContentResponse) ([]FunctionCall, error)

	// AssembleStream completes a directive first observed in chunk by
	// draining as much of rest as the directive needs. One logical call
	// may be split across chunks; how much to buffer is the extractor's
	// policy.
	AssembleStream(chunk *geminiapi.GenerateContentResponse, rest geminiapi.ResponseStream) ([]FunctionCall, error)
}

// GeminiDirectiveExtractor is the reference extractor for this provider.
// The provider publishes no structured directive format, so the predicate
// is deliberately inert: it never reports a function call, pending a real
// directive format. Callers who prompt the model into a directive
// convention should plug in JSONDirectiveExtractor or their own.
type GeminiDirectiveExtractor struct{}

func (GeminiDirectiveExtractor) IsFunctionCall(*geminiapi.GenerateContentResponse) bool {
	return false
}

func (GeminiDirectiveExtractor) Calls(*geminiapi.GenerateContentResponse) ([]FunctionCall, error) {
	return nil, nil
}

func (GeminiDirectiveExtractor) AssembleStream(*geminiapi.GenerateContentResponse, geminiapi.ResponseStream) ([]FunctionCall, error) {
	return nil, nil
}

// JSONDirectiveExtractor detects directives embedded in candidate text as
// a JSON object of the form
//
//	{"function_call": {"name": "get_weather", "arguments": {...}}}
//
// optionally wrapped in a markdown code fence. Split directives are
// assembled by concatenating subsequent chunk text until the object
// parses or the stream ends.
type JSONDirectiveExtractor struct{}

const directiveMarker = `"function_call"`

var errNoDirective = errors.New("no parseable function_call object")

type jsonDirective struct {
	FunctionCall *struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function_call"`
}

func (JSONDirectiveExtractor) IsFunctionCall(resp *geminiapi.GenerateContentResponse) bool {
	return strings.Contains(resp.Text(), directiveMarker)
}

func (e JSONDirectiveExtractor) Calls(resp *geminiapi.GenerateContentResponse) ([]FunctionCall, error) {
	calls, err := e.parse(resp.Text())
	if err != nil {
		return nil, &DirectiveError{Cause: err}
	}
	return calls, nil
}

func (e JSONDirectiveExtractor) AssembleStream(chunk *geminiapi.GenerateContentResponse, rest geminiapi.ResponseStream) ([]FunctionCall, error) {
	var sb strings.Builder
	sb.WriteString(chunk.Text())

	for {
		if calls, err := e.parse(sb.String()); err == nil {
			return calls, nil
		}
		next, err := rest.Recv()
		if err == io.EOF {
			// Stream ended with the directive still unparseable.
			calls, perr := e.parse(sb.String())
			if perr != nil {
				return nil, &DirectiveError{Cause: perr}
			}
			return calls, nil
		}
		if err != nil {
			return nil, err
		}
		sb.WriteString(next.Text())
	}
}

func (JSONDirectiveExtractor) parse(text string) ([]FunctionCall, error) {
	start := strings.Index(text, "{")
	if start == -1 {
		return nil, errNoDirective
	}

	var calls []FunctionCall
	dec := json.NewDecoder(strings.NewReader(text[start:]))
	for {
		var d jsonDirective
		if err := dec.Decode(&d); err != nil {
			if err == io.EOF {
				break
			}
			if len(calls) > 0 {
				// Trailing prose after the directives is fine.
				break
			}
			return nil, err
		}
		if d.FunctionCall == nil || d.FunctionCall.Name == "" {
			continue
		}
		calls = append(calls, FunctionCall{
			ID:   "call_" + uuid.New().String()[:8],
			Name: d.FunctionCall.Name,
			Args: d.FunctionCall.Arguments,
		})
	}
	if len(calls) == 0 {
		return nil, errNoDirective
	}
	return calls, nil
}
