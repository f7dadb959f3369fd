package resolve

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/getlumos/lumos/schema/ast"
	"github.com/getlumos/lumos/schema/parser"
)

// SchemaExt is the schema file extension, inferred when an import path
// omits it.
const SchemaExt = ".lumos"

// dirEntryFile is the directory entry file probed by mod resolution:
// `mod models;` tries models.lumos, then models/mod.lumos.
const dirEntryFile = "mod" + SchemaExt

// loader is the shared load-once substrate of both graph resolvers: a
// canonical-path parse cache, a discovery-order list, and an
// in-progress stack for cycle detection. It also serves in-memory
// sources through an overlay, which is how the language server feeds
// live-edited text through the same path.
type loader struct {
	overlay map[string][]byte
	cache   map[string]*ast.File
	order   []string
	stack   []string
}

func newLoader(overlay map[string][]byte) *loader {
	canonOverlay := make(map[string][]byte, len(overlay))
	for path, src := range overlay {
		canonOverlay[canonicalPath(path)] = src
	}
	return &loader{
		overlay: canonOverlay,
		cache:   make(map[string]*ast.File),
	}
}

// canonicalPath normalizes a file location into the identity used as a
// cache and graph key.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// exists reports whether path is readable, consulting the overlay first.
func (l *loader) exists(path string) bool {
	if _, ok := l.overlay[canonicalPath(path)]; ok {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// load reads and parses the file at path, memoized by canonical
// identity. It returns the parsed file and its canonical path.
func (l *loader) load(path string) (*ast.File, string, error) {
	canon := canonicalPath(path)
	if f, ok := l.cache[canon]; ok {
		return f, canon, nil
	}
	src, ok := l.overlay[canon]
	if !ok {
		var err error
		src, err = os.ReadFile(path)
		if err != nil {
			return nil, "", fmt.Errorf("lumos: reading schema file: %w", err)
		}
	}
	file, err := parser.Parse(src, canon)
	if err != nil {
		return nil, "", err
	}
	l.cache[canon] = file
	l.order = append(l.order, canon)
	return file, canon, nil
}

func (l *loader) push(canon string) { l.stack = append(l.stack, canon) }

func (l *loader) pop() { l.stack = l.stack[:len(l.stack)-1] }

func (l *loader) onStack(canon string) bool {
	for _, p := range l.stack {
		if p == canon {
			return true
		}
	}
	return false
}

// cycleChain returns the in-progress chain from the first occurrence of
// canon through the top of the stack, closed with canon itself. This is
// the discovery-order chain reported by cycle errors.
func (l *loader) cycleChain(canon string) []string {
	for i, p := range l.stack {
		if p == canon {
			chain := append([]string{}, l.stack[i:]...)
			return append(chain, canon)
		}
	}
	return []string{canon}
}

// loadedFiles returns the canonical identities of every file loaded so
// far, in first-discovery order.
func (l *loader) loadedFiles() []string {
	return append([]string{}, l.order...)
}
