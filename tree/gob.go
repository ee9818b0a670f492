package tree

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/hupe1980/knngo/bound"
)

// Compile time checks to ensure KDTree satisfies the gob interfaces.
var (
	_ gob.GobEncoder = (*KDTree)(nil)
	_ gob.GobDecoder = (*KDTree)(nil)
)

// flatNode is one tree node in preorder. Leaf nodes carry no split; the
// preorder walk plus the Leaf flags uniquely determine the tree shape.
type flatNode struct {
	Start int
	End   int
	Leaf  bool
	Lo    []float64
	Hi    []float64
}

// GobEncode method for KDTree.
func (t *KDTree) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(t.dims); err != nil {
		return nil, err
	}

	if err := encoder.Encode(t.leafSize); err != nil {
		return nil, err
	}

	if err := encoder.Encode(t.data); err != nil {
		return nil, err
	}

	if err := encoder.Encode(t.idx); err != nil {
		return nil, err
	}

	var nodes []flatNode
	var walk func(n *node)
	walk = func(n *node) {
		nodes = append(nodes, flatNode{
			Start: n.start,
			End:   n.end,
			Leaf:  n.left == nil,
			Lo:    n.bnd.Lo,
			Hi:    n.bnd.Hi,
		})
		if n.left != nil {
			walk(n.left)
			walk(n.right)
		}
	}
	walk(t.root)

	if err := encoder.Encode(nodes); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for KDTree.
func (t *KDTree) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	if err := decoder.Decode(&t.dims); err != nil {
		return err
	}

	if err := decoder.Decode(&t.leafSize); err != nil {
		return err
	}

	if err := decoder.Decode(&t.data); err != nil {
		return err
	}

	if err := decoder.Decode(&t.idx); err != nil {
		return err
	}

	var nodes []flatNode
	if err := decoder.Decode(&nodes); err != nil {
		return err
	}
	if len(nodes) == 0 {
		return errors.New("snapshot contains no tree nodes")
	}

	cursor := 0
	var rebuild func() (*node, error)
	rebuild = func() (*node, error) {
		if cursor >= len(nodes) {
			return nil, errors.New("snapshot tree structure is truncated")
		}
		fn := nodes[cursor]
		cursor++

		n := &node{
			tree:  t,
			start: fn.Start,
			end:   fn.End,
		}
		n.bnd = &bound.Rect{Lo: fn.Lo, Hi: fn.Hi}

		if !fn.Leaf {
			var err error
			if n.left, err = rebuild(); err != nil {
				return nil, err
			}
			if n.right, err = rebuild(); err != nil {
				return nil, err
			}
		}
		return n, nil
	}

	root, err := rebuild()
	if err != nil {
		return err
	}
	if cursor != len(nodes) {
		return errors.New("snapshot contains trailing tree nodes")
	}

	t.root = root
	return nil
}
