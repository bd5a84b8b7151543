package threads

import (
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

var base = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func comment(id string, parent string, minute int) entities.Comment {
	c := entities.Comment{ID: id, JobPostingID: "job", Content: id, CreatedAt: base.Add(time.Duration(minute) * time.Minute)}
	if parent != "" {
		c.ParentCommentID = &parent
	}
	return c
}

func rootIDs(f *Forest) []string {
	var result []string
	for _, root := range f.Roots {
		result = append(result, root.Comment.ID)
	}
	return result
}

func TestBuild_NestsRepliesNewestFirst(t *testing.T) {
	forest := Build([]entities.Comment{
		comment("root1", "", 0),
		comment("reply-old", "root1", 1),
		comment("reply-new", "root1", 5),
		comment("root2", "", 3),
		comment("nested", "reply-old", 2),
	})

	assert.Equal(t, []string{"root2", "root1"}, rootIDs(forest))
	assert.Equal(t, 5, forest.Len())

	root1, ok := forest.Find("root1")
	require.True(t, ok)
	require.Len(t, root1.Replies, 2)
	assert.Equal(t, "reply-new", root1.Replies[0].Comment.ID)
	assert.Equal(t, "reply-old", root1.Replies[1].Comment.ID)

	nested, ok := forest.Find("nested")
	require.True(t, ok)
	assert.Equal(t, 2, nested.Depth)
}

func TestBuild_OrphanBecomesRoot(t *testing.T) {
	forest := Build([]entities.Comment{
		comment("root", "", 0),
		comment("orphan", "deleted", 1),
	})

	assert.ElementsMatch(t, []string{"root", "orphan"}, rootIDs(forest))
	orphan, _ := forest.Find("orphan")
	assert.Equal(t, 0, orphan.Depth)
}

func TestBuild_CrossJobParentBecomesRoot(t *testing.T) {
	other := comment("other", "", 0)
	other.JobPostingID = "another-job"

	forest := Build([]entities.Comment{other, comment("reply", "other", 1)})

	assert.Len(t, forest.Roots, 2)
}

func TestBuild_SelfAndCyclicParentsBecomeRoots(t *testing.T) {
	forest := Build([]entities.Comment{
		comment("self", "self", 0),
		comment("a", "b", 1),
		comment("b", "a", 2),
		comment("c", "a", 3),
	})

	assert.ElementsMatch(t, []string{"self", "a", "b"}, rootIDs(forest))
	c, _ := forest.Find("c")
	assert.Equal(t, 1, c.Depth)
	assert.Equal(t, 4, forest.Len())
}

func TestBuild_Empty(t *testing.T) {
	forest := Build(nil)
	assert.Empty(t, forest.Roots)
	assert.Equal(t, 0, forest.Len())
}

func TestForest_Prepend(t *testing.T) {
	forest := Build([]entities.Comment{
		comment("root", "", 0),
		comment("reply", "root", 1),
	})

	node := forest.Prepend(comment("live", "root", 10))
	assert.Equal(t, 1, node.Depth)

	root, _ := forest.Find("root")
	assert.Equal(t, "live", root.Replies[0].Comment.ID)

	forest.Prepend(comment("new-root", "", 11))
	assert.Equal(t, "new-root", forest.Roots[0].Comment.ID)

	forest.Prepend(comment("live", "root", 10))
	assert.Len(t, root.Replies, 2)
}

func TestCanReply(t *testing.T) {
	for depth := 0; depth <= 3; depth++ {
		assert.True(t, CanReply(depth))
	}
	assert.False(t, CanReply(4))
	assert.False(t, CanReply(-1))
}

func TestForest_WalkIsPreOrder(t *testing.T) {
	forest := Build([]entities.Comment{
		comment("r1", "", 2),
		comment("r1a", "r1", 3),
		comment("r2", "", 1),
	})

	var visited []string
	forest.Walk(func(node *Node) { visited = append(visited, node.Comment.ID) })
	assert.Equal(t, []string{"r1", "r1a", "r2"}, visited)
}

func TestBuild_DeepThreadsStillRender(t *testing.T) {
	comments := []entities.Comment{comment("d0", "", 0)}
	for i, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		parent := comments[len(comments)-1].ID
		comments = append(comments, comment(id, parent, i+1))
	}

	forest := Build(comments)
	deepest, ok := forest.Find("d5")
	require.True(t, ok)
	assert.Equal(t, 5, deepest.Depth)
	assert.False(t, CanReply(deepest.Depth))
}
