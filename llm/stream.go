package llm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

var (
	dataPrefix = []byte("data:")
	doneMarker = []byte("[DONE]")
)

const maxLineBytes = 1 << 20

// StreamReader yields deltas from a server-sent event body
type StreamReader struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func newStreamReader(body io.ReadCloser) *StreamReader {
	s := bufio.NewScanner(body)
	s.Buffer(make([]byte, 0, 64<<10), maxLineBytes)
	return &StreamReader{body: body, scanner: s}
}

// Recv returns the next delta, or io.EOF once the stream reports [DONE] or
// the body ends. Lines that are not data lines or do not decode are skipped.
func (r *StreamReader) Recv() (*Delta, error) {
	if r.done {
		return nil, io.EOF
	}
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if !bytes.HasPrefix(line, dataPrefix) {
			continue
		}
		data := bytes.TrimSpace(line[len(dataPrefix):])
		if bytes.Equal(data, doneMarker) {
			r.done = true
			return nil, io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal(data, &chunk); err != nil {
			continue
		}

		delta := &Delta{Usage: chunk.Usage}
		if len(chunk.Choices) > 0 {
			ch := chunk.Choices[0]
			delta.Content = ch.Delta.Content
			delta.ToolCalls = ch.Delta.ToolCalls
			if ch.FinishReason != nil {
				delta.FinishReason = *ch.FinishReason
			}
		}
		if delta.Content == "" && len(delta.ToolCalls) == 0 && delta.FinishReason == "" && delta.Usage == nil {
			continue
		}
		return delta, nil
	}
	r.done = true
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	return nil, io.EOF
}

// Close releases the response body
func (r *StreamReader) Close() error {
	r.done = true
	return r.body.Close()
}
