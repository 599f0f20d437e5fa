package sumtree

// Summary is a monoid: summaries of adjacent items combine associatively
// via Add. Implementations need not provide an explicit identity value;
// Tree and Cursor never invoke Add on an unpopulated summary.
type Summary[S any] interface {
	Add(other S) S
}

// Item is a sequence element that knows how to summarize itself.
type Item[S any] interface {
	Summary() S
}

// Tree is an ordered sequence of Item values with a cached aggregate
// Summary. The zero value is an empty tree.
type Tree[T Item[S], S Summary[S]] struct {
	items   []T
	summary S
	nonzero bool
}

// New returns an empty tree.
func New[T Item[S], S Summary[S]]() Tree[T, S] {
	return Tree[T, S]{}
}

// FromItems builds a tree from items, which must already be in the
// desired order. The slice is retained; callers should not mutate it
// afterwards.
func FromItems[T Item[S], S Summary[S]](items []T) Tree[T, S] {
	t := Tree[T, S]{items: items}
	t.recompute()
	return t
}

func (t *Tree[T, S]) recompute() {
	var acc S
	first := true
	for _, it := range t.items {
		if first {
			acc = it.Summary()
			first = false
		} else {
			acc = acc.Add(it.Summary())
		}
	}
	t.summary = acc
	t.nonzero = !first
}

// Summary returns the aggregate summary of every item in the tree. The
// zero value of S is returned for an empty tree.
func (t Tree[T, S]) Summary() S { return t.summary }

// Len returns the number of items.
func (t Tree[T, S]) Len() int { return len(t.items) }

// IsEmpty reports whether the tree has no items.
func (t Tree[T, S]) IsEmpty() bool { return len(t.items) == 0 }

// Items returns the underlying item slice in order. The caller must treat
// it as read-only.
func (t Tree[T, S]) Items() []T { return t.items }

// At returns the item at index i.
func (t Tree[T, S]) At(i int) T { return t.items[i] }

// Push appends a single item, updating the cached summary incrementally.
func (t *Tree[T, S]) Push(item T) {
	t.items = append(t.items, item)
	s := item.Summary()
	if !t.nonzero {
		t.summary = s
		t.nonzero = true
	} else {
		t.summary = t.summary.Add(s)
	}
}

// PushTree appends every item of other, preserving order.
func (t *Tree[T, S]) PushTree(other Tree[T, S]) {
	for _, it := range other.items {
		t.Push(it)
	}
}

// Append returns a new tree containing every item of t followed by every
// item of other. Neither input is mutated.
func (t Tree[T, S]) Append(other Tree[T, S]) Tree[T, S] {
	items := make([]T, 0, len(t.items)+len(other.items))
	items = append(items, t.items...)
	items = append(items, other.items...)
	return FromItems[T, S](items)
}

// Filter returns a new tree containing only items for which pred returns
// true, preserving order.
func Filter[T Item[S], S Summary[S]](t Tree[T, S], pred func(T) bool) Tree[T, S] {
	items := make([]T, 0, len(t.items))
	for _, it := range t.items {
		if pred(it) {
			items = append(items, it)
		}
	}
	return FromItems[T, S](items)
}

// Bias controls how a seek resolves ties at an exact boundary between two
// items: Left stops at the item ending exactly on the target (attaching
// to preceding content); Right continues past it to the item beginning
// there (attaching to following content).
type Bias int

const (
	Left Bias = iota
	Right
)

// Cursor is a position within a Tree, expressed as an item index. It is
// reusable across repeated Seek calls, which always walk from the
// beginning (see package doc for why this package forgoes a resumable
// balanced-tree path).
type Cursor[T Item[S], S Summary[S]] struct {
	tree *Tree[T, S]
	idx  int
}

// NewCursor creates a cursor positioned before the first item.
func NewCursor[T Item[S], S Summary[S]](t *Tree[T, S]) *Cursor[T, S] {
	return &Cursor[T, S]{tree: t}
}

// Seek advances c to the first item whose cumulative Dimension value,
// folded by accumulate across the items preceding it (and itself, per
// bias), is >= target according to compare. accumulate folds one item's
// Summary into a running accumulator of type D; compare reports the sign
// of target relative to that running accumulator (negative: target is
// still ahead; zero: exactly at the boundary; positive: the accumulator
// has passed target). Seek stops on a positive result, and on zero when
// bias is Left.
//
// Returns true if such an item was found, false if target lies at or past
// the end of the sequence (c is left positioned past the last item).
func Seek[T Item[S], S Summary[S], D any](
	c *Cursor[T, S],
	target D,
	bias Bias,
	accumulate func(acc D, s S) D,
	compare func(target, acc D) int,
) bool {
	var acc D
	items := c.tree.items
	for i, it := range items {
		next := accumulate(acc, it.Summary())
		cr := compare(target, next)
		if cr > 0 || (cr == 0 && bias == Left) {
			c.idx = i
			return true
		}
		acc = next
	}
	c.idx = len(items)
	return false
}

// Item returns the item at the cursor's current position.
func (c *Cursor[T, S]) Item() (T, bool) {
	if c.idx < 0 || c.idx >= len(c.tree.items) {
		var zero T
		return zero, false
	}
	return c.tree.items[c.idx], true
}

// Index returns the cursor's current item index (len(items) if past end).
func (c *Cursor[T, S]) Index() int { return c.idx }

// SeekToIndex repositions the cursor directly to an item index.
func (c *Cursor[T, S]) SeekToIndex(i int) { c.idx = i }

// AtEnd reports whether the cursor has advanced past the last item.
func (c *Cursor[T, S]) AtEnd() bool { return c.idx >= len(c.tree.items) }

// Next advances to the next item, returning false if none remains.
func (c *Cursor[T, S]) Next() bool {
	if c.idx < len(c.tree.items) {
		c.idx++
	}
	return c.idx < len(c.tree.items)
}

// Prev moves to the previous item, returning false if already at the
// first item.
func (c *Cursor[T, S]) Prev() bool {
	if c.idx > 0 {
		c.idx--
		return true
	}
	return false
}

// StartSummary returns the aggregate Summary of every item strictly
// before the cursor's current position.
func (c *Cursor[T, S]) StartSummary() S {
	var acc S
	first := true
	limit := c.idx
	if limit > len(c.tree.items) {
		limit = len(c.tree.items)
	}
	for i := 0; i < limit; i++ {
		s := c.tree.items[i].Summary()
		if first {
			acc = s
			first = false
		} else {
			acc = acc.Add(s)
		}
	}
	return acc
}

// Slice returns a new tree containing items [0, c.idx).
func (c *Cursor[T, S]) Slice() Tree[T, S] {
	items := make([]T, c.idx)
	copy(items, c.tree.items[:c.idx])
	return FromItems[T, S](items)
}

// Suffix returns a new tree containing items [c.idx, len).
func (c *Cursor[T, S]) Suffix() Tree[T, S] {
	items := make([]T, len(c.tree.items)-c.idx)
	copy(items, c.tree.items[c.idx:])
	return FromItems[T, S](items)
}
