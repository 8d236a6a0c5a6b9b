package scene

import "vk-engine/vulkan"

// Drawable is geometry that can bind its buffers and issue its draw call.
// Many entries may share one Drawable.
type Drawable interface {
	Bind(cmd vulkan.Recorder)
	Draw(cmd vulkan.Recorder)
}

type EntryID uint64

// Entry is one object in the scene. An entry without a Model is kept but
// never drawn.
type Entry struct {
	ID        EntryID
	Model     Drawable
	Transform Transform
}

// Collection stores entries contiguously in insertion order and looks them up
// by stable ID.
type Collection struct {
	entries []Entry
	index   map[EntryID]int
	nextID  EntryID
}

func NewCollection() *Collection {
	return &Collection{index: make(map[EntryID]int)}
}

func (c *Collection) Add(model Drawable, transform Transform) EntryID {
	id := c.nextID
	c.nextID++
	c.index[id] = len(c.entries)
	c.entries = append(c.entries, Entry{ID: id, Model: model, Transform: transform})
	return id
}

// Get returns a pointer into the collection. It is invalidated by Add and
// Remove.
func (c *Collection) Get(id EntryID) (*Entry, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.entries[i], true
}

// Remove deletes the entry and keeps the remaining entries in order.
func (c *Collection) Remove(id EntryID) bool {
	i, ok := c.index[id]
	if !ok {
		return false
	}
	last := len(c.entries) - 1
	copy(c.entries[i:], c.entries[i+1:])
	c.entries[last] = Entry{}
	c.entries = c.entries[:last]
	delete(c.index, id)
	for j := i; j < len(c.entries); j++ {
		c.index[c.entries[j].ID] = j
	}
	return true
}

// Entries returns the entries in draw order. Callers must not append to it.
func (c *Collection) Entries() []Entry {
	return c.entries
}

func (c *Collection) Len() int {
	return len(c.entries)
}
