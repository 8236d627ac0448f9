package exprtree

import (
	"strings"

	"github.com/sable-lang/sable/pkgs/lexer"
)

// ListLiteralNode is an ordered list literal: [1, 'two', $three].
type ListLiteralNode struct {
	parentBase
}

func NewListLiteral(pos lexer.Position, items []Node) *ListLiteralNode {
	n := &ListLiteralNode{}
	n.pos = pos
	n.init(n)
	n.addChildren(items...)
	return n
}

func (n *ListLiteralNode) Kind() Kind { return KindList }

func (n *ListLiteralNode) ToSourceString() string {
	return "[" + joinSources(n.children, ", ") + "]"
}

func (n *ListLiteralNode) Copy(cs *CopyState) Node {
	cp := &ListLiteralNode{}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// MapLiteralNode is a map literal: map('a': 1, 'b': 2). Keys and values are
// stored as alternating children; key order is not semantically significant.
type MapLiteralNode struct {
	parentBase
}

// NewMapLiteral builds a map literal from alternating key/value children.
// The slice length must be even.
func NewMapLiteral(pos lexer.Position, keysAndValues []Node) *MapLiteralNode {
	if len(keysAndValues)%2 != 0 {
		panic("exprtree: map literal requires alternating keys and values")
	}
	n := &MapLiteralNode{}
	n.pos = pos
	n.init(n)
	n.addChildren(keysAndValues...)
	return n
}

func (n *MapLiteralNode) Kind() Kind { return KindMap }

// NumEntries returns the number of key/value pairs.
func (n *MapLiteralNode) NumEntries() int { return len(n.children) / 2 }

// Key returns the i'th key child.
func (n *MapLiteralNode) Key(i int) Node { return n.children[2*i] }

// Value returns the i'th value child.
func (n *MapLiteralNode) Value(i int) Node { return n.children[2*i+1] }

func (n *MapLiteralNode) ToSourceString() string {
	var sb strings.Builder
	sb.WriteString("map(")
	for i := 0; i < n.NumEntries(); i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(n.Key(i).ToSourceString())
		sb.WriteString(": ")
		sb.WriteString(n.Value(i).ToSourceString())
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *MapLiteralNode) Copy(cs *CopyState) Node {
	cp := &MapLiteralNode{}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// RecordLiteralNode is a record literal with identifier keys:
// record(aaa: 1, bbb: 'two'). Keys are stored positionally alongside the
// value children; key order is not semantically significant.
type RecordLiteralNode struct {
	parentBase
	Keys []string
}

func NewRecordLiteral(pos lexer.Position, keys []string, values []Node) *RecordLiteralNode {
	if len(keys) != len(values) {
		panic("exprtree: record literal requires one key per value")
	}
	n := &RecordLiteralNode{Keys: append([]string(nil), keys...)}
	n.pos = pos
	n.init(n)
	n.addChildren(values...)
	return n
}

func (n *RecordLiteralNode) Kind() Kind { return KindRecord }

// Key returns the i'th field name.
func (n *RecordLiteralNode) Key(i int) string { return n.Keys[i] }

func (n *RecordLiteralNode) ToSourceString() string {
	var sb strings.Builder
	sb.WriteString("record(")
	for i, key := range n.Keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(n.Child(i).ToSourceString())
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *RecordLiteralNode) Copy(cs *CopyState) Node {
	cp := &RecordLiteralNode{Keys: append([]string(nil), n.Keys...)}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// FunctionNode is a positional-argument function call: length($list).
type FunctionNode struct {
	parentBase
	Name string
}

func NewFunction(pos lexer.Position, name string, args []Node) *FunctionNode {
	n := &FunctionNode{Name: name}
	n.pos = pos
	n.init(n)
	n.addChildren(args...)
	return n
}

func (n *FunctionNode) Kind() Kind { return KindFunction }

func (n *FunctionNode) ToSourceString() string {
	return n.Name + "(" + joinSources(n.children, ", ") + ")"
}

func (n *FunctionNode) Copy(cs *CopyState) Node {
	cp := &FunctionNode{Name: n.Name}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

// ProtoInitNode is a named-argument constructor call:
// my.proto.Type(field: value).
type ProtoInitNode struct {
	parentBase
	Name       string
	ParamNames []string
}

func NewProtoInit(pos lexer.Position, name string, paramNames []string, values []Node) *ProtoInitNode {
	if len(paramNames) != len(values) {
		panic("exprtree: proto init requires one parameter name per value")
	}
	n := &ProtoInitNode{Name: name, ParamNames: append([]string(nil), paramNames...)}
	n.pos = pos
	n.init(n)
	n.addChildren(values...)
	return n
}

func (n *ProtoInitNode) Kind() Kind { return KindProtoInit }

// ParamName returns the i'th parameter name.
func (n *ProtoInitNode) ParamName(i int) string { return n.ParamNames[i] }

func (n *ProtoInitNode) ToSourceString() string {
	var sb strings.Builder
	sb.WriteString(n.Name)
	sb.WriteString("(")
	for i, name := range n.ParamNames {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(name)
		sb.WriteString(": ")
		sb.WriteString(n.Child(i).ToSourceString())
	}
	sb.WriteString(")")
	return sb.String()
}

func (n *ProtoInitNode) Copy(cs *CopyState) Node {
	cp := &ProtoInitNode{Name: n.Name, ParamNames: append([]string(nil), n.ParamNames...)}
	cp.base = n.orphaned()
	cp.init(cp)
	n.copyChildrenInto(&cp.parentBase, cs)
	cs.register(n, cp)
	return cp
}

func joinSources(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.ToSourceString()
	}
	return strings.Join(parts, sep)
}
