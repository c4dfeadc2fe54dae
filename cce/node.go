package cce

// Node is one element of a parsed reply with namespace prefixes stripped.
// Values are strings (text-only elements), Nodes (elements with children) or
// []any (repeated siblings).
type Node map[string]any

// Child returns the named child element when it has children of its own.
func (n Node) Child(name string) (Node, bool) {
	v, ok := n[name]
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case Node:
		return t, true
	case map[string]any:
		return Node(t), true
	}
	return nil, false
}

// Path walks nested children, returning false as soon as one is missing.
func (n Node) Path(names ...string) (Node, bool) {
	cur := n
	for _, name := range names {
		next, ok := cur.Child(name)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Text returns the text of a text-only child element.
func (n Node) Text(name string) (string, bool) {
	v, ok := n[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Has reports whether the element has a child with the given name.
func (n Node) Has(name string) bool {
	_, ok := n[name]
	return ok
}

// List returns the named children as a slice. Converting XML to maps collapses
// a single repeated element into a bare object, so a lone child is re-wrapped
// into a one-element slice here.
func (n Node) List(name string) []Node {
	v, ok := n[name]
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case Node:
		return []Node{t}
	case map[string]any:
		return []Node{Node(t)}
	case []Node:
		return t
	case []any:
		out := make([]Node, 0, len(t))
		for _, item := range t {
			switch it := item.(type) {
			case Node:
				out = append(out, it)
			case map[string]any:
				out = append(out, Node(it))
			}
		}
		return out
	}
	return nil
}
