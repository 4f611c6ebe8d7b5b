package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Context owns the scoped working directory of a single render and the
// logger shared by the stages. It replaces any global temp-dir state:
// every stage receives the context explicitly and the directory is
// released on completion or failure.
type Context struct {
	Log     zerolog.Logger
	workDir string
}

// NewContext creates a render context with its own temp directory.
func NewContext(log zerolog.Logger) (*Context, error) {
	dir, err := os.MkdirTemp("", "prompt2video_")
	if err != nil {
		return nil, Resourcef("temp directory", err)
	}
	return &Context{Log: log, workDir: dir}, nil
}

// WorkDir returns the scoped working directory for intermediate
// artifacts (narration clips, transcoded music, the mixed track).
func (c *Context) WorkDir() string { return c.workDir }

// TempPath joins name onto the scoped working directory.
func (c *Context) TempPath(name string) string {
	return filepath.Join(c.workDir, name)
}

// Cleanup removes every intermediate artifact. Safe to call after a
// failed render and safe to call twice: missing files are ignored.
func (c *Context) Cleanup() error {
	if c.workDir == "" {
		return nil
	}
	err := os.RemoveAll(c.workDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cleanup %s: %w", c.workDir, err)
	}
	c.workDir = ""
	return nil
}
