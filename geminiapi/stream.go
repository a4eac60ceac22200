package geminiapi

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// sseStream decodes a server-sent-events response body into a sequence of
// GenerateContentResponse values. The stream is finite and ends when the
// provider closes the connection; it cannot be resumed.
type sseStream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	closed bool
}

func newSSEStream(body io.ReadCloser) *sseStream {
	return &sseStream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

var dataPrefix = []byte("data:")

// Recv returns the next partial response, or io.EOF at the natural end of
// the stream.
func (s *sseStream) Recv() (*GenerateContentResponse, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		if err != nil {
			if err == io.EOF {
				if data := trimSSELine(line); len(data) > 0 {
					return decodeChunk(data)
				}
				return nil, io.EOF
			}
			return nil, &StreamError{APIError: APIError{Message: "failed to read stream", Cause: err}}
		}

		data := trimSSELine(line)
		if len(data) == 0 {
			// Blank keep-alive line or a non-data field; skip.
			continue
		}
		return decodeChunk(data)
	}
}

// Close releases the underlying connection. Safe to call more than once.
func (s *sseStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// trimSSELine strips the "data:" field prefix and surrounding whitespace,
// returning nil for lines carrying no payload.
func trimSSELine(line []byte) []byte {
	line = bytes.TrimSpace(line)
	if !bytes.HasPrefix(line, dataPrefix) {
		return nil
	}
	return bytes.TrimSpace(bytes.TrimPrefix(line, dataPrefix))
}

func decodeChunk(data []byte) (*GenerateContentResponse, error) {
	var chunk GenerateContentResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return nil, &StreamError{APIError: APIError{Message: "failed to decode stream chunk", Cause: err}}
	}
	return &chunk, nil
}
