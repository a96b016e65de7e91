package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// fileSystem is the slice of the OS the CLI adapters need.
type fileSystem interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// StaticNotebook is a NotebookTracker backed by a notebook path given on the command line.
// An empty path means no notebook is active.
type StaticNotebook struct {
	Path string
	fs   fileSystem
}

// NewStaticNotebook creates a StaticNotebook.
func NewStaticNotebook(path string, fs fileSystem) *StaticNotebook {
	if fs == nil {
		panic("fs is required")
	}
	return &StaticNotebook{Path: path, fs: fs}
}

func (n *StaticNotebook) ActiveNotebook() (string, bool) {
	if n.Path == "" {
		return "", false
	}
	return n.Path, true
}

// notebookMetadata is the part of an .ipynb document that names its kernel.
type notebookMetadata struct {
	Metadata struct {
		Kernelspec struct {
			DisplayName string `json:"display_name"`
		} `json:"kernelspec"`
	} `json:"metadata"`
}

// ActiveKernelDisplayName reads metadata.kernelspec.display_name from the notebook.
// Unreadable or kernel-less notebooks report no kernel.
func (n *StaticNotebook) ActiveKernelDisplayName() (string, bool) {
	if n.Path == "" {
		return "", false
	}
	data, err := n.fs.ReadFile(n.Path)
	if err != nil {
		return "", false
	}
	var nb notebookMetadata
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", false
	}
	name := nb.Metadata.Kernelspec.DisplayName
	return name, name != ""
}

// StaticBrowser is a FileBrowser backed by command-line flags.
type StaticBrowser struct {
	current  string
	selected []string
	fs       fileSystem
}

// NewStaticBrowser creates a StaticBrowser rooted at current with the given selection.
func NewStaticBrowser(current string, selected []string, fs fileSystem) *StaticBrowser {
	if fs == nil {
		panic("fs is required")
	}
	return &StaticBrowser{current: current, selected: selected, fs: fs}
}

func (b *StaticBrowser) CurrentPath() string {
	return b.current
}

// Selection stats each selected path to tell directories from files.
// Paths that cannot be stat'ed are reported as files.
func (b *StaticBrowser) Selection() []Entry {
	entries := make([]Entry, 0, len(b.selected))
	for _, p := range b.selected {
		p = filepath.Clean(p)
		isDir := false
		if info, err := b.fs.Stat(p); err == nil {
			isDir = info.IsDir()
		}
		entries = append(entries, Entry{Path: p, IsDir: isDir})
	}
	return entries
}
