package microsite

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrInvalidReorder = errors.New("reorder must list every link exactly once")
)

// LinkList keeps the ordered links of a microsite together with an id index
// so edits address links by identity rather than position. The index is
// rebuilt on every structural change and never drifts from the slice.
type LinkList struct {
	links []Link
	index map[string]int
	// ids handed out or seen before; never issued again
	used map[string]struct{}
}

// NewLinkList adopts links, assigning fresh ids to entries that have none
// or that repeat an earlier id.
func NewLinkList(links []Link) *LinkList {
	l := &LinkList{
		links: make([]Link, 0, len(links)),
		used:  make(map[string]struct{}, len(links)),
	}
	for _, link := range links {
		if _, dup := l.used[link.ID]; link.ID == "" || dup {
			link.ID = l.newID()
		}
		l.used[link.ID] = struct{}{}
		l.links = append(l.links, link)
	}
	l.reindex()
	return l
}

func (l *LinkList) newID() string {
	for {
		id := uuid.New().String()
		if _, taken := l.used[id]; !taken {
			return id
		}
	}
}

func (l *LinkList) reindex() {
	l.index = make(map[string]int, len(l.links))
	for i, link := range l.links {
		l.index[link.ID] = i
	}
}

// Len reports the number of links.
func (l *LinkList) Len() int { return len(l.links) }

// Links returns a copy of the links in display order.
func (l *LinkList) Links() []Link {
	out := make([]Link, len(l.links))
	copy(out, l.links)
	return out
}

// Get returns the link with id.
func (l *LinkList) Get(id string) (Link, bool) {
	i, ok := l.index[id]
	if !ok {
		return Link{}, false
	}
	return l.links[i], true
}

// Add appends link and returns it with its assigned id. A caller-provided
// id is kept only if it has never been used in this list.
func (l *LinkList) Add(link Link) Link {
	if _, taken := l.used[link.ID]; link.ID == "" || taken {
		link.ID = l.newID()
	}
	if link.Type == "" {
		link.Type = LinkTypeLink
	}
	if link.Icon == "" {
		link.Icon = DefaultIcon(link.Type)
	}
	l.used[link.ID] = struct{}{}
	l.links = append(l.links, link)
	l.index[link.ID] = len(l.links) - 1
	return link
}

// Update replaces the link with id, keeping its id and position.
func (l *LinkList) Update(id string, link Link) (Link, error) {
	i, ok := l.index[id]
	if !ok {
		return Link{}, fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}
	link.ID = id
	l.links[i] = link
	return link, nil
}

// Remove deletes the link with id. Its id stays retired.
func (l *LinkList) Remove(id string) error {
	i, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
	}
	l.links = append(l.links[:i], l.links[i+1:]...)
	l.reindex()
	return nil
}

// Reorder arranges links in the order of ids, which must name every
// current link exactly once.
func (l *LinkList) Reorder(ids []string) error {
	if len(ids) != len(l.links) {
		return ErrInvalidReorder
	}
	seen := make(map[string]struct{}, len(ids))
	reordered := make([]Link, 0, len(ids))
	for _, id := range ids {
		i, ok := l.index[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrLinkNotFound, id)
		}
		if _, dup := seen[id]; dup {
			return ErrInvalidReorder
		}
		seen[id] = struct{}{}
		reordered = append(reordered, l.links[i])
	}
	l.links = reordered
	l.reindex()
	return nil
}
