// Package warehouse provides query mechanisms for component-based entity systems
package warehouse

import (
	"fmt"

	"github.com/TheBitDrifter/bark"
	"github.com/ashgrove-dev/warehouse/internal/bitset"
)

// Query is a composable, read-only filter over archetype tables — an
// additional, opt-in way to iterate entities ad hoc, alongside the
// registered-system match test RunSystems uses. It does not itself decide
// which systems run; a Cursor built from a Query walks whichever tables the
// query's signature test accepts.
type Query interface {
	QueryNode
	And(items ...interface{}) QueryNode
	Or(items ...interface{}) QueryNode
	Not(items ...interface{}) QueryNode
}

// QueryNode is a node in a query tree that can be evaluated against a table.
type QueryNode interface {
	Evaluate(t *table) bool
}

// QueryOperation names the logical combinator a compositeNode applies.
type QueryOperation int

const (
	OpAnd QueryOperation = iota
	OpOr
	OpNot
)

// compositeNode combines its own component set with child nodes under op.
type compositeNode struct {
	op         QueryOperation
	children   []QueryNode
	components []ComponentHandle
}

// query is the Query entry point; the first And/Or/Not call sets its root.
type query struct {
	root QueryNode
}

// NewQuery creates a new empty query.
func NewQuery() Query {
	return &query{}
}

func newCompositeNode(op QueryOperation, components []ComponentHandle) *compositeNode {
	return &compositeNode{op: op, components: components}
}

func queryBits(components []ComponentHandle) bitset.Set {
	var b bitset.Set
	for _, c := range components {
		b.Mark(uint32(c) - 1)
	}
	return b
}

// Evaluate implements QueryNode for composite nodes.
func (n *compositeNode) Evaluate(t *table) bool {
	nodeBits := queryBits(n.components)

	switch n.op {
	case OpAnd:
		if !t.storage.Bits.ContainsAll(nodeBits) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(t) {
				return false
			}
		}
		return true
	case OpOr:
		if t.storage.Bits.ContainsAny(nodeBits) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(t) {
				return true
			}
		}
		return false
	case OpNot:
		if len(n.children) == 0 {
			return t.storage.Bits.ContainsNone(nodeBits)
		}
		if len(n.components) > 0 && !t.storage.Bits.ContainsNone(nodeBits) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(t) {
				return false
			}
		}
		return true
	}
	return false
}

// And creates a new AND node over items (each a ComponentHandle,
// []ComponentHandle, or nested QueryNode), anchoring it as q's root if q has
// none yet.
func (q *query) And(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpAnd, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Or creates a new OR node, same item rules as And.
func (q *query) Or(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpOr, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

// Not creates a new NOT node, same item rules as And.
func (q *query) Not(items ...interface{}) QueryNode {
	components, children := q.processItems(items...)
	node := newCompositeNode(OpNot, components)
	node.children = children
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) validateQueryItems(items ...interface{}) error {
	for _, item := range items {
		switch item.(type) {
		case ComponentHandle, []ComponentHandle, QueryNode, Query:
			continue
		default:
			return fmt.Errorf("invalid query item type: %T. Only ComponentHandle, []ComponentHandle, or QueryNode are allowed", item)
		}
	}
	return nil
}

func (q *query) processItems(items ...interface{}) ([]ComponentHandle, []QueryNode) {
	if err := q.validateQueryItems(items...); err != nil {
		panic(bark.AddTrace(err))
	}
	components := make([]ComponentHandle, 0, len(items))
	children := make([]QueryNode, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case ComponentHandle:
			components = append(components, v)
		case []ComponentHandle:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}
	return components, children
}

// Evaluate implements QueryNode for the query's root.
func (q *query) Evaluate(t *table) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(t)
}
