// Package navigation models redirects. The web storefront pushed routes such
// as /login after a forced logout; here they become calls on a Navigator.
package navigation

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Well-known routes.
const (
	PathHome    = "/"
	PathLogin   = "/login"
	PathCart    = "/cart"
	PathProfile = "/profile"
)

// OrderPath returns the route of one order.
func OrderPath(id string) string {
	return "/orders/" + id
}

// Navigator receives redirect requests.
type Navigator interface {
	Navigate(path string)
}

// Func adapts a function to Navigator.
type Func func(path string)

// Navigate implements Navigator
func (f Func) Navigate(path string) { f(path) }

// hints maps routes to the CLI command that shows the same view.
var hints = map[string]string{
	PathLogin:   "storefront login",
	PathHome:    "storefront products",
	PathCart:    "storefront cart show",
	PathProfile: "storefront whoami",
}

// HintNavigator prints the CLI command matching the target route.
type HintNavigator struct {
	out io.Writer
	mu  sync.Mutex
}

// NewHintNavigator creates a navigator writing hints to out.
func NewHintNavigator(out io.Writer) *HintNavigator {
	return &HintNavigator{out: out}
}

// Navigate prints a hint for path
func (n *HintNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.out, "→ %s\n", Hint(path))
}

// Hint returns the CLI command matching path.
func Hint(path string) string {
	if h, ok := hints[path]; ok {
		return h
	}
	if id, ok := strings.CutPrefix(path, "/orders/"); ok && id != "" {
		return "storefront order " + id
	}
	return path
}

// Recorder records every navigation. Used by tests.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

// Navigate records path
func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns the recorded paths in order.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Last returns the most recent path or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}

var (
	_ Navigator = (*HintNavigator)(nil)
	_ Navigator = (*Recorder)(nil)
	_ Navigator = Func(nil)
)
