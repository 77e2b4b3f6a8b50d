package facts

import (
	"strings"

	"github.com/good-yellow-bee/snapdiag/internal/snapshot"
)

// Files answers file presence facts against the snapshot root:
// "files.exists:<relative path>".
type Files struct {
	root *snapshot.Root
}

// NewFiles creates a Files provider bound to root.
func NewFiles(root *snapshot.Root) *Files {
	return &Files{root: root}
}

// Fact implements Provider for names of the form "exists:<path>".
func (f *Files) Fact(name string) (any, bool) {
	rel, ok := strings.CutPrefix(name, "exists:")
	if !ok {
		return nil, false
	}
	return f.root.Exists(rel), true
}
