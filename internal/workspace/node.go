package workspace

import (
	"strings"
)

type NodeType string

const (
	TypeFile   NodeType = "file"
	TypeFolder NodeType = "folder"
)

// Node is a single entry of the virtual workspace. UpdatedAt is unix millis.
type Node struct {
	Path      string   `json:"path"`
	Content   string   `json:"content"`
	UpdatedAt int64    `json:"updatedAt"`
	Type      NodeType `json:"type"`
}

func (n Node) IsFolder() bool {
	return n.Type == TypeFolder
}

// Depth is the number of slash-separated segments in the path.
func (n Node) Depth() int {
	return SegmentCount(n.Path)
}

// NormalizePath trims whitespace and drops empty segments, so "/a//b/" and
// "a/b" address the same node.
func NormalizePath(raw string) string {
	parts := strings.Split(strings.TrimSpace(raw), "/")
	kept := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kept = append(kept, part)
	}
	return strings.Join(kept, "/")
}

func SegmentCount(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, "/") + 1
}

// Covers reports whether candidate is root itself or lives under it.
func Covers(root, candidate string) bool {
	return candidate == root || strings.HasPrefix(candidate, root+"/")
}

func normalizeNode(n Node) Node {
	n.Path = NormalizePath(n.Path)
	if n.Type != TypeFolder {
		n.Type = TypeFile
	}
	if n.Type == TypeFolder {
		n.Content = ""
	}
	return n
}
