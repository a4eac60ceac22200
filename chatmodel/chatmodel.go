package chatmodel

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/go-logr/logr"

	"github.com/modelkit/geminichat/geminiapi"
)

// ChatModel is the high-level entry point: it translates conversations to
// the wire format, drives the function-call loop through an orchestrator,
// and maps wire responses back to generations. Configure once, then share
// freely across goroutines.
type ChatModel struct {
	transport        Transport
	defaults         Options
	registry         *FunctionRegistry
	extractor        DirectiveExtractor
	retry            *geminiapi.RetryPolicy
	maxFunctionCalls int
	guardWindow      int
	log              logr.Logger
}

// Option configures a ChatModel.
type Option func(*ChatModel)

// WithDefaultOptions sets construction-time defaults merged under every
// call's options. A zero Model keeps the catalog default.
func WithDefaultOptions(opts Options) Option {
	return func(m *ChatModel) {
		if opts.Model == "" {
			opts.Model = m.defaults.Model
		}
		m.defaults = opts
	}
}

// WithRegistry supplies the function registry. Without it the model gets
// an empty registry and every enabled-function name fails resolution.
func WithRegistry(r *FunctionRegistry) Option {
	return func(m *ChatModel) { m.registry = r }
}

// WithExtractor replaces the directive extractor. The default never
// detects a directive; see GeminiDirectiveExtractor.
func WithExtractor(e DirectiveExtractor) Option {
	return func(m *ChatModel) { m.extractor = e }
}

// WithRetryPolicy enables retries around whole orchestrated runs. A
// failure after two executed functions re-runs from the original request,
// so callbacks should tolerate re-execution.
func WithRetryPolicy(p geminiapi.RetryPolicy) Option {
	return func(m *ChatModel) { m.retry = &p }
}

// WithMaxFunctionCalls caps function-call rounds per run. Zero or
// negative removes the cap; the loop guard still applies.
func WithMaxFunctionCalls(n int) Option {
	return func(m *ChatModel) { m.maxFunctionCalls = n }
}

// WithLoopGuardWindow sets how many recent calls the repetition guard
// inspects. Zero disables the guard.
func WithLoopGuardWindow(n int) Option {
	return func(m *ChatModel) { m.guardWindow = n }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log logr.Logger) Option {
	return func(m *ChatModel) { m.log = log }
}

// New creates a ChatModel over the given transport.
func New(transport Transport, opts ...Option) *ChatModel {
	m := &ChatModel{
		transport:        transport,
		defaults:         Options{Model: geminiapi.DefaultChatModel},
		registry:         NewFunctionRegistry(),
		extractor:        GeminiDirectiveExtractor{},
		maxFunctionCalls: DefaultMaxFunctionCalls,
		guardWindow:      DefaultLoopGuardWindow,
		log:              logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Call runs a blocking exchange to completion, executing any function
// calls the model requests along the way, and returns the final response.
// opts may be nil; non-nil fields override the construction defaults.
func (m *ChatModel) Call(ctx context.Context, conversation []Message, opts *Options) (*ChatResponse, error) {
	req, err := m.buildRequest(conversation, opts)
	if err != nil {
		return nil, err
	}

	orch := m.orchestrator()
	var resp *geminiapi.GenerateContentResponse
	if m.retry != nil {
		resp, err = geminiapi.Retry(ctx, *m.retry, func(ctx context.Context) (*geminiapi.GenerateContentResponse, error) {
			return orch.run(ctx, req)
		})
	} else {
		resp, err = orch.run(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	return toChatResponse(resp), nil
}

// Stream runs a streaming exchange. Partial responses arrive on the
// returned channel in model order; function calls detected mid-stream are
// executed and the continuation spliced in transparently. The channel is
// closed when the exchange completes, after a terminal error element, or
// when ctx is cancelled. Abandoning the channel without cancelling ctx
// leaks the run, so cancel when done.
//
// Errors before the first chunk are returned directly. With a retry
// policy configured, only opening the first stream is retried; chunks
// already delivered cannot be unsent.
func (m *ChatModel) Stream(ctx context.Context, conversation []Message, opts *Options) (<-chan StreamElement, error) {
	req, err := m.buildRequest(conversation, opts)
	if err != nil {
		return nil, err
	}

	orch := m.orchestrator()
	var raw <-chan rawElement
	if m.retry != nil {
		raw, err = geminiapi.Retry(ctx, *m.retry, func(ctx context.Context) (<-chan rawElement, error) {
			return orch.runStream(ctx, req)
		})
	} else {
		raw, err = orch.runStream(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	out := make(chan StreamElement)
	go func() {
		defer close(out)
		for el := range raw {
			var mapped StreamElement
			if el.err != nil {
				mapped = StreamElement{Err: el.err}
			} else {
				mapped = StreamElement{Response: toChatResponse(el.resp)}
			}
			select {
			case out <- mapped:
			case <-ctx.Done():
				return
			}
			if el.err != nil {
				return
			}
		}
	}()
	return out, nil
}

func (m *ChatModel) orchestrator() *orchestrator {
	return &orchestrator{
		transport:   m.transport,
		extractor:   m.extractor,
		registry:    m.registry,
		maxCalls:    m.maxFunctionCalls,
		guardWindow: m.guardWindow,
		log:         m.log,
	}
}

// buildRequest translates a conversation plus merged options into a wire
// request. Enabled-function names are resolved against the registry here,
// before any network I/O.
func (m *ChatModel) buildRequest(conversation []Message, callOpts *Options) (*geminiapi.GenerateContentRequest, error) {
	merged := mergeOptions(m.defaults, callOpts)
	if merged.Model == "" {
		merged.Model = geminiapi.DefaultChatModel
	}

	decls, err := m.registry.Declarations(resolveFunctions(m.defaults, callOpts))
	if err != nil {
		return nil, err
	}

	contents, err := toContents(conversation)
	if err != nil {
		return nil, err
	}

	req := &geminiapi.GenerateContentRequest{
		Model:            merged.Model,
		Contents:         contents,
		GenerationConfig: merged.generationConfig(),
		SafetySettings:   merged.SafetySettings,
	}
	if len(decls) > 0 {
		req.Tools = []geminiapi.Tool{{FunctionDeclarations: decls}}
	}
	return req, nil
}

// toContents maps conversation messages onto the two wire roles. System
// messages are newline-joined and prefixed to the first user message;
// tool results travel as user contents since the wire has no tool role.
func toContents(conversation []Message) ([]geminiapi.Content, error) {
	var sys []string
	for _, msg := range conversation {
		if msg.Role == RoleSystem {
			sys = append(sys, msg.TextContent())
		}
	}
	prefix := strings.Join(sys, "\n")
	prefixPending := prefix != ""

	var contents []geminiapi.Content
	for _, msg := range conversation {
		switch msg.Role {
		case RoleSystem:
			continue
		case RoleUser, RoleTool:
			parts, err := toWireParts(msg.Parts)
			if err != nil {
				return nil, err
			}
			if prefixPending && msg.Role == RoleUser {
				parts = applySystemPrefix(prefix, parts)
				prefixPending = false
			}
			contents = append(contents, geminiapi.Content{Role: geminiapi.RoleUser, Parts: parts})
		case RoleAssistant:
			parts, err := toWireParts(msg.Parts)
			if err != nil {
				return nil, err
			}
			contents = append(contents, geminiapi.Content{Role: geminiapi.RoleModel, Parts: parts})
		default:
			return nil, fmt.Errorf("chatmodel: unsupported message role %q", msg.Role)
		}
	}

	if prefixPending {
		// System-only conversation: the instructions become the user turn.
		contents = append([]geminiapi.Content{{
			Role:  geminiapi.RoleUser,
			Parts: []geminiapi.Part{{Text: prefix}},
		}}, contents...)
	}
	return contents, nil
}

// applySystemPrefix joins the system prefix onto the message's leading
// text part, or inserts a new text part when the message starts with
// media.
func applySystemPrefix(prefix string, parts []geminiapi.Part) []geminiapi.Part {
	if len(parts) > 0 && parts[0].InlineData == nil {
		parts[0].Text = prefix + "\n\n" + parts[0].Text
		return parts
	}
	return append([]geminiapi.Part{{Text: prefix}}, parts...)
}

func toWireParts(parts []ContentPart) ([]geminiapi.Part, error) {
	out := make([]geminiapi.Part, 0, len(parts))
	for _, p := range parts {
		switch p.Kind {
		case ContentText:
			out = append(out, geminiapi.Part{Text: p.Text})
		case ContentMedia:
			if p.Media == nil {
				return nil, fmt.Errorf("chatmodel: media part without data")
			}
			out = append(out, geminiapi.Part{InlineData: &geminiapi.Blob{
				MIMEType: p.Media.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(p.Media.Data),
			}})
		default:
			return nil, fmt.Errorf("chatmodel: unsupported content kind %q", p.Kind)
		}
	}
	return out, nil
}

// toChatResponse flattens candidates into generations, one per part, and
// copies whatever token counts the provider reported. Absent counts stay
// nil rather than zero.
func toChatResponse(resp *geminiapi.GenerateContentResponse) *ChatResponse {
	out := &ChatResponse{}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			out.Generations = append(out.Generations, Generation{
				Text:         part.Text,
				FinishReason: cand.FinishReason,
			})
		}
	}
	if um := resp.UsageMetadata; um != nil {
		out.Usage = Usage{
			PromptTokens:     um.PromptTokenCount,
			CompletionTokens: um.CandidatesTokenCount,
		}
	}
	return out
}
