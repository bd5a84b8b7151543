// Package threads assembles flat comment lists into reply forests.
package threads

import (
	"github.com/maxaizer/realjobs/internal/entities"
	"sort"
)

// MaxReplyDepth is the deepest level that still accepts replies. Deeper
// comments are kept and rendered.
const MaxReplyDepth = 3

type Node struct {
	Comment entities.Comment
	Depth   int
	Replies []*Node
}

func CanReply(depth int) bool {
	return depth >= 0 && depth <= MaxReplyDepth
}

// Forest is the reply tree of one job. Nodes live in an index keyed by id;
// parent links are resolved by lookup, never by stored back pointers.
type Forest struct {
	Roots []*Node
	index map[string]*Node
}

// Build never drops a comment: a missing, self or cyclic parent makes it a root.
func Build(comments []entities.Comment) *Forest {

	sorted := make([]entities.Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		return newerFirst(sorted[i], sorted[j])
	})

	forest := &Forest{index: make(map[string]*Node, len(sorted))}
	nodes := make([]*Node, 0, len(sorted))
	for _, c := range sorted {
		if _, exists := forest.index[c.ID]; exists {
			continue
		}
		node := &Node{Comment: c}
		forest.index[c.ID] = node
		nodes = append(nodes, node)
	}

	for _, node := range nodes {
		if parent := forest.parentOf(node.Comment); parent != nil {
			parent.Replies = append(parent.Replies, node)
		} else {
			forest.Roots = append(forest.Roots, node)
		}
	}

	for _, root := range forest.Roots {
		setDepth(root, 0)
	}
	return forest
}

func (f *Forest) parentOf(c entities.Comment) *Node {
	if !c.IsReply() {
		return nil
	}
	parent, ok := f.index[*c.ParentCommentID]
	if !ok || parent.Comment.JobPostingID != c.JobPostingID {
		return nil
	}
	if f.loops(c.ID) {
		return nil
	}
	return parent
}

// loops reports whether following parents from id comes back to id.
func (f *Forest) loops(id string) bool {
	visited := map[string]bool{}
	current := id
	for {
		node, ok := f.index[current]
		if !ok || !node.Comment.IsReply() {
			return false
		}
		parentID := *node.Comment.ParentCommentID
		if parentID == id {
			return true
		}
		if visited[parentID] {
			return false
		}
		visited[parentID] = true
		current = parentID
	}
}

func setDepth(node *Node, depth int) {
	node.Depth = depth
	for _, reply := range node.Replies {
		setDepth(reply, depth+1)
	}
}

// Prepend inserts a newly arrived comment in front of its siblings and
// returns its node. Known ids are ignored.
func (f *Forest) Prepend(c entities.Comment) *Node {
	if node, exists := f.index[c.ID]; exists {
		return node
	}

	node := &Node{Comment: c}
	f.index[c.ID] = node

	if parent := f.parentOf(c); parent != nil {
		node.Depth = parent.Depth + 1
		parent.Replies = append([]*Node{node}, parent.Replies...)
	} else {
		f.Roots = append([]*Node{node}, f.Roots...)
	}
	return node
}

func (f *Forest) Find(id string) (*Node, bool) {
	node, ok := f.index[id]
	return node, ok
}

func (f *Forest) Len() int {
	return len(f.index)
}

// Walk visits nodes depth first, parents before replies.
func (f *Forest) Walk(fn func(node *Node)) {
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, node := range nodes {
			fn(node)
			visit(node.Replies)
		}
	}
	visit(f.Roots)
}

func newerFirst(a, b entities.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
