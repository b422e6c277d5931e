// Package config loads the project configuration file: a ".cxref.kdl"
// document in the project root, parsed with sblinch/kdl-go and assigned
// node by node into a Config value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Config holds the settings the engine, watcher, and CLI need.
type Config struct {
	Root string

	Include []string
	Exclude []string

	WatchDebounceMs int
	WorkerCount     int64
	SyncInterval    int

	DataDir string // sqlite kvstore + TOML resource-store root
}

// Default returns the configuration used when no .cxref.kdl is present.
func Default(root string) *Config {
	return &Config{
		Root:            root,
		Include:         []string{"**/*.c", "**/*.cc", "**/*.cpp", "**/*.h", "**/*.hpp"},
		WatchDebounceMs: 300,
		WorkerCount:     4,
		SyncInterval:    10,
		DataDir:         filepath.Join(root, ".cxref"),
	}
}

// Load reads "<root>/.cxref.kdl" if present, overlaying it onto the
// default configuration. A missing file is not an error.
func Load(root string) (*Config, error) {
	cfg := Default(root)

	path := filepath.Join(root, ".cxref.kdl")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignString(cn, "root", func(v string) {
					if filepath.IsAbs(v) {
						cfg.Root = v
					} else {
						cfg.Root = filepath.Join(root, v)
					}
				})
				assignString(cn, "data_dir", func(v string) { cfg.DataDir = filepath.Join(root, v) })
			}
		case "index":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Include = stringArgs(cn)
				case "exclude":
					cfg.Exclude = stringArgs(cn)
				case "sync_interval":
					assignInt(cn, func(v int) { cfg.SyncInterval = v })
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					assignInt(cn, func(v int) { cfg.WatchDebounceMs = v })
				}
			}
		case "workers":
			assignInt(n, func(v int) { cfg.WorkerCount = int64(v) })
		}
	}

	cfg.Root = filepath.Clean(cfg.Root)
	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func stringArgs(n *document.Node) []string {
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func firstString(n *document.Node) (string, bool) {
	if n == nil || len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstInt(n *document.Node) (int, bool) {
	if n == nil || len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func assignString(parent *document.Node, name string, set func(string)) {
	if nodeName(parent) != name {
		return
	}
	if v, ok := firstString(parent); ok {
		set(v)
	}
}

func assignInt(n *document.Node, set func(int)) {
	if v, ok := firstInt(n); ok {
		set(v)
	}
}
