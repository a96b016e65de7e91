// Package workspace works out which project directory an operation targets.
package workspace

import (
	"path"
	"path/filepath"
	"strings"
)

// ProjectContext is the directory an operation targets and what is known about it.
// It is recomputed on every call and never persisted.
type ProjectContext struct {
	Directory               string
	ProjectName             string
	ActiveKernelDisplayName *string
}

// Entry is one item in a file browser selection.
type Entry struct {
	Path  string
	IsDir bool
}

// NotebookTracker exposes the currently active notebook, if any.
type NotebookTracker interface {
	ActiveNotebook() (string, bool)
	ActiveKernelDisplayName() (string, bool)
}

// FileBrowser exposes the file browser's location and selection.
type FileBrowser interface {
	CurrentPath() string
	Selection() []Entry
}

// Resolver picks the project directory from the notebook and file browser state.
// Both ports are optional; a nil port is treated as absent.
type Resolver struct {
	notebooks NotebookTracker
	browser   FileBrowser
}

// NewResolver creates a Resolver over the given ports.
func NewResolver(notebooks NotebookTracker, browser FileBrowser) *Resolver {
	return &Resolver{notebooks: notebooks, browser: browser}
}

// ResolveDirectory returns the directory to operate on. First match wins:
// the active notebook's directory, a selected directory, the parent of the
// first selected file, the browser's current path, and finally "".
func (r *Resolver) ResolveDirectory() string {
	if r.notebooks != nil {
		if nb, ok := r.notebooks.ActiveNotebook(); ok {
			return dirname(nb)
		}
	}

	if r.browser == nil {
		return ""
	}

	selection := r.browser.Selection()
	for _, entry := range selection {
		if entry.IsDir {
			return entry.Path
		}
	}
	if len(selection) > 0 {
		return dirname(selection[0].Path)
	}

	return r.browser.CurrentPath()
}

// ResolveProjectName returns the final path segment of the resolved directory.
func (r *Resolver) ResolveProjectName() string {
	return basename(r.ResolveDirectory())
}

// Resolve returns the full ProjectContext in one pass.
func (r *Resolver) Resolve() ProjectContext {
	dir := r.ResolveDirectory()
	ctx := ProjectContext{
		Directory:   dir,
		ProjectName: basename(dir),
	}
	if r.notebooks != nil {
		if name, ok := r.notebooks.ActiveKernelDisplayName(); ok {
			ctx.ActiveKernelDisplayName = &name
		}
	}
	return ctx
}

// dirname mirrors the notebook server's path handling: "" for a bare file name.
func dirname(p string) string {
	p = toSlash(p)
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	if i == 0 {
		return "/"
	}
	return p[:i]
}

func basename(p string) string {
	p = toSlash(p)
	if p == "" {
		return ""
	}
	b := path.Base(p)
	if b == "/" || b == "." {
		return ""
	}
	return b
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}
