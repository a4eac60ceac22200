package chatmodel

import (
	"context"
	"encoding/json"
	"io"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/modelkit/geminichat/geminiapi"
)

// Transport issues model calls on behalf of the orchestrator. It is pure
// I/O: one blocking call or one opened stream per invocation, no retries,
// no decision logic. *geminiapi.Client satisfies it.
type Transport interface {
	GenerateContent(ctx context.Context, req *geminiapi.GenerateContentRequest) (*geminiapi.GenerateContentResponse, error)
	StreamGenerateContent(ctx context.Context, req *geminiapi.GenerateContentRequest) (geminiapi.ResponseStream, error)
}

// DefaultMaxFunctionCalls bounds the function-call loop. Without a cap a
// callback that always provokes another directive would loop forever.
const DefaultMaxFunctionCalls = 10

// DefaultLoopGuardWindow is the number of recent calls the loop guard
// inspects for repeating patterns.
const DefaultLoopGuardWindow = 6

// orchestrator drives one request/response/function-execution cycle to
// completion. Each run owns its own conversation accumulator; the struct
// itself holds only read-only collaborators and is safe to share across
// concurrent runs.
type orchestrator struct {
	transport   Transport
	extractor   DirectiveExtractor
	registry    *FunctionRegistry
	maxCalls    int // function-call rounds per run; <=0 means unbounded
	guardWindow int
	log         logr.Logger
}

// rawElement is one wire-level element of a streamed run.
type rawElement struct {
	resp *geminiapi.GenerateContentResponse
	err  error
}

// run executes the blocking-mode loop: call the model, inspect for a
// directive, execute and extend the conversation, repeat. It returns the
// first response carrying no directive.
func (o *orchestrator) run(ctx context.Context, req *geminiapi.GenerateContentRequest) (*geminiapi.GenerateContentResponse, error) {
	runID := uuid.New().String()[:8]
	guard := newLoopGuard(o.guardWindow)
	rounds := 0

	for {
		o.log.V(1).Info("model call", "run", runID, "round", rounds)
		resp, err := o.transport.GenerateContent(ctx, req)
		if err != nil {
			return nil, err
		}

		if !o.extractor.IsFunctionCall(resp) {
			return resp, nil
		}

		rounds++
		if o.maxCalls > 0 && rounds > o.maxCalls {
			return nil, &TooManyFunctionCallsError{Limit: o.maxCalls}
		}

		calls, err := o.extractor.Calls(resp)
		if err != nil {
			return nil, err
		}

		req, err = o.applyCalls(ctx, req, resp, calls, guard)
		if err != nil {
			return nil, err
		}
	}
}

// runStream executes the streaming-mode loop. Chunks without a directive
// are forwarded immediately; a chunk with one pauses forwarding, drains
// enough of the stream to assemble the call, executes it, and splices in a
// fresh stream for the extended conversation. Elements of the replacement
// stream are emitted strictly after everything already emitted.
//
// Pre-open errors are returned directly; mid-stream errors arrive as a
// terminal element on the channel. Cancelling ctx stops emission and
// releases the underlying stream.
func (o *orchestrator) runStream(ctx context.Context, req *geminiapi.GenerateContentRequest) (<-chan rawElement, error) {
	stream, err := o.transport.StreamGenerateContent(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make(chan rawElement)
	go func() {
		defer close(out)
		defer func() { _ = stream.Close() }()

		guard := newLoopGuard(o.guardWindow)
		rounds := 0

		for {
			chunk, err := stream.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				o.emit(ctx, out, rawElement{err: err})
				return
			}

			if !o.extractor.IsFunctionCall(chunk) {
				if !o.emit(ctx, out, rawElement{resp: chunk}) {
					return
				}
				continue
			}

			rounds++
			if o.maxCalls > 0 && rounds > o.maxCalls {
				o.emit(ctx, out, rawElement{err: &TooManyFunctionCallsError{Limit: o.maxCalls}})
				return
			}

			calls, err := o.extractor.AssembleStream(chunk, stream)
			if err != nil {
				o.emit(ctx, out, rawElement{err: err})
				return
			}

			next, err := o.applyCalls(ctx, req, chunk, calls, guard)
			if err != nil {
				o.emit(ctx, out, rawElement{err: err})
				return
			}

			_ = stream.Close()
			replacement, err := o.transport.StreamGenerateContent(ctx, next)
			if err != nil {
				o.emit(ctx, out, rawElement{err: err})
				return
			}
			stream = replacement
			req = next
		}
	}()

	return out, nil
}

// applyCalls executes the extracted calls and regenerates the request:
// the model's directive content plus a user content carrying the function
// results are appended to a copy of the conversation.
func (o *orchestrator) applyCalls(ctx context.Context, req *geminiapi.GenerateContentRequest, resp *geminiapi.GenerateContentResponse, calls []FunctionCall, guard *loopGuard) (*geminiapi.GenerateContentRequest, error) {
	if len(calls) == 0 {
		return nil, &DirectiveError{Cause: errNoDirective}
	}

	next := req.Clone()
	if len(resp.Candidates) > 0 {
		next.Contents = append(next.Contents, resp.Candidates[0].Content)
	}

	parts := make([]geminiapi.Part, 0, len(calls))
	for _, call := range calls {
		fn := o.registry.Lookup(call.Name)
		if fn == nil {
			return nil, &UnknownFunctionError{Name: call.Name}
		}
		if guard.observe(call) {
			return nil, &RepeatedFunctionCallsError{Pattern: guard.pattern()}
		}

		o.log.V(1).Info("executing function", "name", call.Name)
		result, err := fn.Execute(ctx, call.Args)
		if err != nil {
			return nil, &FunctionExecutionError{Name: call.Name, Cause: err}
		}

		payload, merr := json.Marshal(map[string]interface{}{
			"function_response": map[string]string{"name": call.Name, "content": result},
		})
		if merr != nil {
			return nil, &FunctionExecutionError{Name: call.Name, Cause: merr}
		}
		parts = append(parts, geminiapi.Part{Text: string(payload)})
	}

	next.Contents = append(next.Contents, geminiapi.Content{Role: geminiapi.RoleUser, Parts: parts})
	return next, nil
}

func (o *orchestrator) emit(ctx context.Context, out chan<- rawElement, el rawElement) bool {
	select {
	case out <- el:
		return true
	case <-ctx.Done():
		return false
	}
}
