// Package geminiapi is a low-level client for the Google Generative
// Language REST API (generativelanguage.googleapis.com).
//
// # Architecture
//
// The package has three concerns:
//
//   - Wire records: request/response JSON types mirroring the provider's
//     field names (GenerateContentRequest, GenerateContentResponse,
//     EmbedContentRequest, ...)
//   - Transport: Client issues blocking calls (GenerateContent,
//     EmbedContent) and streaming calls (StreamGenerateContent) with no
//     retry or decision logic of its own
//   - Error taxonomy: typed errors mapped from HTTP status codes, with
//     IsRetryable classification and a Retry helper callers can wrap
//     around whole calls
//
// # Quick Start
//
//	client := geminiapi.NewClient(os.Getenv("GEMINI_API_KEY"))
//
//	resp, err := client.GenerateContent(ctx, &geminiapi.GenerateContentRequest{
//	    Model: geminiapi.DefaultChatModel,
//	    Contents: []geminiapi.Content{
//	        {Role: geminiapi.RoleUser, Parts: []geminiapi.Part{{Text: "Hello"}}},
//	    },
//	})
//
// # Streaming
//
// StreamGenerateContent returns a ResponseStream; Recv returns io.EOF when
// the provider closes the stream. Closing the stream (or cancelling the
// context) releases the underlying connection:
//
//	stream, err := client.StreamGenerateContent(ctx, req)
//	defer stream.Close()
//	for {
//	    chunk, err := stream.Recv()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package geminiapi
