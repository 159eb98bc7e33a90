package llm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sandevgo/tuskchat/internal/core"
)

const maxSSELine = 1 << 20

// sseDecoder turns one SSE data payload into a fragment. done reports the
// provider's end-of-stream marker; a body that ends without it is truncated.
type sseDecoder func(data string) (fragment string, done bool, err error)

// sseStream implements core.FragmentStream over a text/event-stream body.
type sseStream struct {
	body      io.ReadCloser
	scanner   *bufio.Scanner
	decode    sseDecoder
	citations func() []core.Citation
	done      bool
}

func newSSEStream(resp *http.Response, decode sseDecoder, citations func() []core.Citation) *sseStream {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64<<10), maxSSELine)
	return &sseStream{
		body:      resp.Body,
		scanner:   scanner,
		decode:    decode,
		citations: citations,
	}
}

func (s *sseStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			// event names, comments and keep-alives
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		fragment, done, err := s.decode(data)
		if err != nil {
			s.done = true
			return "", err
		}
		if done {
			s.done = true
			if fragment != "" {
				return fragment, nil
			}
			return "", io.EOF
		}
		if fragment != "" {
			return fragment, nil
		}
	}

	s.done = true
	if err := s.scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("read stream: %w", err)
	}
	return "", ErrStreamTruncated
}

func (s *sseStream) Citations() []core.Citation {
	if s.citations == nil {
		return nil
	}
	return s.citations()
}

func (s *sseStream) Close() error {
	return s.body.Close()
}

// Drain collects a whole stream into a response.
func Drain(stream core.FragmentStream) (core.GenerateResponse, error) {
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return core.GenerateResponse{}, err
		}
		sb.WriteString(fragment)
	}
	return core.GenerateResponse{Text: sb.String(), Citations: stream.Citations()}, nil
}
