package cache

import (
	"container/list"
	"fmt"
)

// Cache is a byte-bounded LRU. The browse view keeps rendered lead previews
// in one, keyed by uid and wrap width, so scrolling back over a lead does
// not re-render its notes.
type Cache struct {
	maxBytes  int64
	bytes     int64
	evictList *list.List
	items     map[any]*list.Element
}

type Entry struct {
	Key   any
	Value any
}

func New(sizeInMB int) (*Cache, error) {
	if sizeInMB <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", sizeInMB)
	}
	return &Cache{
		maxBytes:  int64(sizeInMB) * 1024 * 1024,
		evictList: list.New(),
		items:     make(map[any]*list.Element),
	}, nil
}

func (c *Cache) Get(key any) (any, bool) {
	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*Entry).Value, true
	}
	return nil, false
}

// Put inserts or replaces the value for key, evicting least-recently-used
// entries until the cache fits its budget again. A value bigger than the
// whole budget is rejected rather than flushing everything else.
func (c *Cache) Put(key, value any) error {
	incoming := int64(sizeof(&Entry{Key: key, Value: value}))
	if incoming > c.maxBytes {
		return fmt.Errorf("entry of %d bytes exceeds cache capacity %d", incoming, c.maxBytes)
	}

	if ele, hit := c.items[key]; hit {
		ent := ele.Value.(*Entry)
		c.bytes -= int64(sizeof(ent))
		ent.Value = value
		c.bytes += incoming
		c.evictList.MoveToFront(ele)
	} else {
		ele := c.evictList.PushFront(&Entry{Key: key, Value: value})
		c.items[key] = ele
		c.bytes += incoming
	}

	for c.bytes > c.maxBytes {
		c.removeOldest()
	}
	return nil
}

func (c *Cache) SizeOf() int64 {
	return c.bytes
}

func (c *Cache) Len() int {
	return c.evictList.Len()
}

func (c *Cache) removeOldest() {
	if ele := c.evictList.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	ent := e.Value.(*Entry)
	c.bytes -= int64(sizeof(ent))
	delete(c.items, ent.Key)
}

// sizeof approximates an entry's footprint from the rendered lengths of its
// key and value. Exact accounting does not matter, monotonic consistency
// does: the same entry always measures the same.
func sizeof(e *Entry) int {
	return byteLen(e.Key) + byteLen(e.Value)
}

func byteLen(v any) int {
	switch x := v.(type) {
	case string:
		return len(x)
	case []byte:
		return len(x)
	default:
		return len(fmt.Sprintf("%v", x))
	}
}
