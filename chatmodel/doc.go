// Package chatmodel adapts the geminiapi wire layer to a provider-agnostic
// chat-model interface with function-calling support.
//
// # Architecture
//
// The package is layered over geminiapi:
//
//   - ChatModel: the caller-facing facade. Normalizes a conversation
//     (system messages become a prefix on the first user message, media is
//     base64 encoded), merges per-call options over defaults, declares
//     enabled functions, and normalizes token usage
//   - Orchestrator: drives the request/response/function-execution cycle.
//     A response carrying a function-call directive triggers local
//     execution of the named callback; the result is appended to the
//     conversation and the model is called again, until a response with no
//     directive arrives or the iteration cap trips
//   - FunctionRegistry: name -> callback registry supplying both the
//     declarations sent to the model and the executables the orchestrator
//     invokes
//   - DirectiveExtractor: the pluggable predicate deciding whether a
//     response requests a function invocation, and how to parse it
//
// # Quick Start
//
//	client := geminiapi.NewClient(os.Getenv("GEMINI_API_KEY"))
//	model := chatmodel.New(client, chatmodel.WithDefaultOptions(chatmodel.Options{
//	    Model: geminiapi.DefaultChatModel,
//	}))
//
//	resp, err := model.Call(ctx, []chatmodel.Message{
//	    chatmodel.UserMessage("What is the capital of France?"),
//	}, nil)
//	fmt.Println(resp.Text())
//
// # Function Calling
//
// Callbacks are registered up front; which of them are visible to the
// model for a given call is the union of the default options' function set
// and the per-call options' function set:
//
//	registry := chatmodel.NewFunctionRegistry()
//	registry.Register(chatmodel.Function{
//	    Name:        "get_weather",
//	    Description: "Get the current weather for a city",
//	    Parameters: map[string]interface{}{
//	        "type": "object",
//	        "properties": map[string]interface{}{
//	            "city": map[string]interface{}{"type": "string"},
//	        },
//	    },
//	    Execute: func(ctx context.Context, args json.RawMessage) (string, error) {
//	        return "72F and sunny", nil
//	    },
//	})
//
// The reference extractor for this provider (GeminiDirectiveExtractor)
// never reports a directive: the wire protocol carries calls as free-form
// text and no stable directive format is published. JSONDirectiveExtractor
// is an opt-in extractor for models prompted to emit directives as JSON.
package chatmodel
