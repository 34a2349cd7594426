package worker

import "github.com/loupelabs/loupe/internal/search"

// maxOffset is the deepest page the cursor walks before wrapping. With the
// 200-item page size this yields offsets {0, 200, 400, 600, 800}.
const maxOffset = 4 * search.PageSize

// cursor tracks per-task pagination offsets across cycles. Worker-private;
// cycles run one at a time so no locking is needed.
type cursor struct {
	offsets map[string]int
}

func newCursor() *cursor {
	return &cursor{offsets: make(map[string]int)}
}

// next returns the offset to search at for this task.
func (c *cursor) next(taskID string) int {
	return c.offsets[taskID]
}

// advance moves the cursor after a successful search: a short page means the
// result set is exhausted, so wrap back to the first page.
func (c *cursor) advance(taskID string, itemsReturned int) {
	offset := c.offsets[taskID]
	if itemsReturned < search.PageSize || offset >= maxOffset {
		c.offsets[taskID] = 0
		return
	}
	c.offsets[taskID] = offset + search.PageSize
}
