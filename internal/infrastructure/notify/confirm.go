package notify

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks the user to approve a destructive action. prompt is a
// message key, translated like notifications.
type Confirmer interface {
	Confirm(prompt string, args ...any) bool
}

// AutoConfirm answers every prompt with its own value. AutoConfirm(true)
// backs the -yes flag.
type AutoConfirm bool

// Confirm implements Confirmer
func (a AutoConfirm) Confirm(string, ...any) bool { return bool(a) }

// ConsoleConfirmer asks on out and reads the answer from in. Only an explicit
// yes ("s", "si", "sí", "y", "yes") confirms.
type ConsoleConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	tr  *Translator
	mu  sync.Mutex
}

// NewConsoleConfirmer creates a confirmer for locale.
func NewConsoleConfirmer(in io.Reader, out io.Writer, locale string) *ConsoleConfirmer {
	return &ConsoleConfirmer{in: bufio.NewReader(in), out: out, tr: NewTranslator(locale)}
}

// Confirm prints prompt and waits for one line
func (c *ConsoleConfirmer) Confirm(prompt string, args ...any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	fmt.Fprintf(c.out, "%s [s/N] ", c.tr.T(prompt, args...))
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

var (
	_ Confirmer = AutoConfirm(false)
	_ Confirmer = (*ConsoleConfirmer)(nil)
)
