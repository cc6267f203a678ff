package googleapi

import "math"

type number interface {
	Float64() (float64, error)
	Int64() (int64, error)
}

// Node is a position inside a decoded map-search payload. Every step of a
// navigation yields a Node; stepping off the payload, into a null or into a
// non-array yields an absent Node instead of panicking.
type Node struct {
	v       any
	present bool
}

// NewNode wraps a decoded JSON value.
func NewNode(v any) Node {
	return Node{v: v, present: v != nil}
}

// Present reports whether the node holds a non-null value.
func (n Node) Present() bool {
	return n.present
}

// Index steps into element i of an array node.
func (n Node) Index(i int) Node {
	arr, ok := n.Array()
	if !ok || i < 0 || i >= len(arr) {
		return Node{}
	}
	return NewNode(arr[i])
}

// Path applies Index once per element of path.
func (n Node) Path(path ...int) Node {
	for _, i := range path {
		n = n.Index(i)
		if !n.present {
			return n
		}
	}
	return n
}

// Array returns the elements of an array node.
func (n Node) Array() ([]any, bool) {
	if !n.present {
		return nil, false
	}
	arr, ok := n.v.([]any)
	return arr, ok
}

// Len returns the number of elements of an array node, or -1.
func (n Node) Len() int {
	arr, ok := n.Array()
	if !ok {
		return -1
	}
	return len(arr)
}

// Float returns a numeric node as float64.
func (n Node) Float() (float64, bool) {
	if !n.present {
		return 0, false
	}
	switch v := n.v.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Int returns an integral numeric node as int64.
func (n Node) Int() (int64, bool) {
	if !n.present {
		return 0, false
	}
	switch v := n.v.(type) {
	case int64:
		return v, true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case number:
		if i, err := v.Int64(); err == nil {
			return i, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

// Str returns a string node.
func (n Node) Str() (string, bool) {
	if !n.present {
		return "", false
	}
	s, ok := n.v.(string)
	return s, ok
}
