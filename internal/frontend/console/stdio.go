package console

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Stdio is a LineIO over a plain reader and writer, such as a local terminal.
type Stdio struct {
	scanner *bufio.Scanner
	w       io.Writer
	mu      sync.Mutex
}

// NewStdio wraps r and w.
//
// Precondition: r and w must be non-nil.
func NewStdio(r io.Reader, w io.Writer) *Stdio {
	return &Stdio{scanner: bufio.NewScanner(r), w: w}
}

// ReadLine returns the next line without its line terminator.
//
// Postcondition: Returns io.EOF once r is exhausted.
func (s *Stdio) ReadLine() (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(s.scanner.Text(), "\r"), nil
}

// WriteLine writes text followed by a newline.
func (s *Stdio) WriteLine(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, text)
	return err
}

// WritePrompt writes prompt without a newline.
func (s *Stdio) WritePrompt(prompt string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprint(s.w, prompt)
	return err
}
