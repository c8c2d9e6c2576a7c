// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// readResult carries one line (or the terminal error) from the reader
// goroutine to Receive.
type readResult struct {
	data []byte
	err  error
}

// StdioServerTransport serves MCP over standard streams: requests are
// newline-delimited JSON read from r (normally os.Stdin), responses are
// written to w (normally os.Stdout).
//
// A single reader goroutine owns the bufio.Reader for the transport's
// lifetime. Receive consumes from its channel, so cancelling a Receive
// context never strands a blocked read or leaks a goroutine per call.
type StdioServerTransport struct {
	reader *bufio.Reader
	writer io.Writer
	mu     sync.Mutex // guards writer and closed
	closed bool

	readCh chan readResult
	once   sync.Once
}

var _ Transport = (*StdioServerTransport)(nil)

// NewStdioServerTransport builds a transport over the given streams.
func NewStdioServerTransport(r io.Reader, w io.Writer) *StdioServerTransport {
	return &StdioServerTransport{
		reader: bufio.NewReaderSize(r, 1024*1024), // big enough for bulk tool results
		writer: w,
		readCh: make(chan readResult, 1),
	}
}

// startReader launches the reader goroutine on first use. The goroutine
// exits after delivering any read error, io.EOF included.
func (t *StdioServerTransport) startReader() {
	t.once.Do(func() {
		go func() {
			defer close(t.readCh)
			for {
				line, err := t.reader.ReadBytes('\n')
				t.readCh <- readResult{data: line, err: err}
				if err != nil {
					return
				}
			}
		}()
	})
}

// Send writes one message followed by a newline. Concurrent senders are
// serialized so messages never interleave on the stream.
func (t *StdioServerTransport) Send(_ context.Context, message []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport closed")
	}

	if _, err := t.writer.Write(message); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if _, err := t.writer.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	return nil
}

// Receive returns the next non-empty message line. It blocks until a
// line arrives, the context is cancelled, or the stream ends with io.EOF.
func (t *StdioServerTransport) Receive(ctx context.Context) ([]byte, error) {
	t.startReader()

	for {
		t.mu.Lock()
		closed := t.closed
		t.mu.Unlock()
		if closed {
			return nil, fmt.Errorf("transport closed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result, ok := <-t.readCh:
			if !ok {
				// Reader goroutine already delivered its final error
				// and exited; every later Receive sees EOF.
				return nil, io.EOF
			}
			if result.err != nil {
				if result.err == io.EOF {
					return nil, io.EOF
				}
				return nil, fmt.Errorf("read message: %w", result.err)
			}
			line := result.data
			if len(line) > 0 && line[len(line)-1] == '\n' {
				line = line[:len(line)-1]
			}
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			if len(line) == 0 {
				continue // blank keepalive lines are not messages
			}
			return line, nil
		}
	}
}

// Close marks the transport closed. The underlying streams are left open
// because they are usually the process's own stdin and stdout; the reader
// goroutine winds down when its stream does.
func (t *StdioServerTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}
