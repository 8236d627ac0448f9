package exprtree

import (
	"fmt"
	"hash/fnv"
	"math"
)

// Equivalent reports whether two expression trees are structurally
// identical. Source locations and parent links are ignored, so two separate
// parses of the same text are equivalent.
//
// Map and record literals compare their entries order-insensitively; list
// literals are ordered. Null-safety flags are part of a node's identity:
// $a.b is not equivalent to $a?.b.
//
// Function calls compare by name and arguments only, with no notion of
// purity, so two calls of a non-deterministic function compare equivalent.
// That mirrors how identical-subexpression detection has always behaved;
// changing it would need every consumer to classify functions first.
func Equivalent(a, b Node) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch an := a.(type) {
	case *NullNode:
		return true
	case *BooleanNode:
		return an.Value == b.(*BooleanNode).Value
	case *IntegerNode:
		return an.Value == b.(*IntegerNode).Value
	case *FloatNode:
		return an.Value == b.(*FloatNode).Value
	case *StringNode:
		return an.Value == b.(*StringNode).Value
	case *VarRefNode:
		// Injected-data and normal references to the same name are treated
		// alike; later passes resolve them to the same definition. The
		// null-safe injected form is distinct because it keeps a runtime
		// guard: $ij?.a is not interchangeable with $ij.a.
		bn := b.(*VarRefNode)
		return an.Name == bn.Name && an.NullSafeInjected == bn.NullSafeInjected
	case *GlobalNode:
		return an.Name == b.(*GlobalNode).Name
	case *GroupNode:
		return equivalentChildren(an, b.(*GroupNode))
	case *ListLiteralNode:
		return equivalentChildren(an, b.(*ListLiteralNode))
	case *MapLiteralNode:
		return equivalentMapEntries(an, b.(*MapLiteralNode))
	case *RecordLiteralNode:
		return equivalentNamedFields(an.Keys, an.Children(), b.(*RecordLiteralNode).Keys, b.(*RecordLiteralNode).Children())
	case *FunctionNode:
		bn := b.(*FunctionNode)
		return an.Name == bn.Name && equivalentChildren(an, bn)
	case *ProtoInitNode:
		bn := b.(*ProtoInitNode)
		return an.Name == bn.Name && equivalentNamedFields(an.ParamNames, an.Children(), bn.ParamNames, bn.Children())
	case *FieldAccessNode:
		bn := b.(*FieldAccessNode)
		return an.FieldName == bn.FieldName && an.nullSafe == bn.nullSafe && Equivalent(an.Base(), bn.Base())
	case *ItemAccessNode:
		bn := b.(*ItemAccessNode)
		return an.nullSafe == bn.nullSafe && Equivalent(an.Base(), bn.Base()) && Equivalent(an.Key(), bn.Key())
	case *MethodCallNode:
		bn := b.(*MethodCallNode)
		return an.MethodName == bn.MethodName && an.nullSafe == bn.nullSafe && equivalentChildren(an, bn)
	case *NullSafeAccessNode:
		return equivalentChildren(an, b.(*NullSafeAccessNode))
	case *OperatorNode:
		bn := b.(*OperatorNode)
		return an.Op == bn.Op && equivalentChildren(an, bn)
	}
	panic(fmt.Sprintf("exprtree: unsupported kind %v in Equivalent", a.Kind()))
}

func equivalentChildren(a, b Parent) bool {
	if a.NumChildren() != b.NumChildren() {
		return false
	}
	for i := 0; i < a.NumChildren(); i++ {
		if !Equivalent(a.Child(i), b.Child(i)) {
			return false
		}
	}
	return true
}

func equivalentMapEntries(a, b *MapLiteralNode) bool {
	if a.NumEntries() != b.NumEntries() {
		return false
	}
	used := make([]bool, b.NumEntries())
	for i := 0; i < a.NumEntries(); i++ {
		found := false
		for j := 0; j < b.NumEntries(); j++ {
			if used[j] {
				continue
			}
			if Equivalent(a.Key(i), b.Key(j)) && Equivalent(a.Value(i), b.Value(j)) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equivalentNamedFields(aKeys []string, aVals []Node, bKeys []string, bVals []Node) bool {
	if len(aKeys) != len(bKeys) {
		return false
	}
	bByKey := make(map[string]Node, len(bKeys))
	for i, k := range bKeys {
		bByKey[k] = bVals[i]
	}
	for i, k := range aKeys {
		bv, ok := bByKey[k]
		if !ok || !Equivalent(aVals[i], bv) {
			return false
		}
	}
	return true
}

// Hash returns a hash consistent with Equivalent: equivalent trees hash to
// the same value. Order-insensitive literals combine their entries with a
// commutative sum.
func Hash(n Node) uint64 {
	h := uint64(n.Kind()) * 31
	switch t := n.(type) {
	case *NullNode:
		// kind alone
	case *BooleanNode:
		if t.Value {
			h += 1
		}
	case *IntegerNode:
		h += uint64(t.Value)
	case *FloatNode:
		h += math.Float64bits(t.Value)
	case *StringNode:
		h += hashString(t.Value)
	case *VarRefNode:
		h += hashString(t.Name) + hashBool(t.NullSafeInjected)
	case *GlobalNode:
		h += hashString(t.Name)
	case *GroupNode:
		h += hashChildren(t)
	case *ListLiteralNode:
		h += hashChildren(t)
	case *MapLiteralNode:
		var sum uint64
		for i := 0; i < t.NumEntries(); i++ {
			sum += Hash(t.Key(i))*31 + Hash(t.Value(i))
		}
		h += sum
	case *RecordLiteralNode:
		var sum uint64
		for i, k := range t.Keys {
			sum += hashString(k)*31 + Hash(t.Child(i))
		}
		h += sum
	case *FunctionNode:
		h += hashString(t.Name)*31 + hashChildren(t)
	case *ProtoInitNode:
		var sum uint64
		for i, k := range t.ParamNames {
			sum += hashString(k)*31 + Hash(t.Child(i))
		}
		h += hashString(t.Name)*31 + sum
	case *FieldAccessNode:
		h += Hash(t.Base())*31 + hashString(t.FieldName) + hashBool(t.nullSafe)
	case *ItemAccessNode:
		h += Hash(t.Base())*31 + Hash(t.Key()) + hashBool(t.nullSafe)
	case *MethodCallNode:
		h += hashString(t.MethodName)*31 + hashChildren(t) + hashBool(t.nullSafe)
	case *NullSafeAccessNode:
		h += hashChildren(t)
	case *OperatorNode:
		h += hashString(t.Op.Name)*31 + hashChildren(t)
	default:
		panic(fmt.Sprintf("exprtree: unsupported kind %v in Hash", n.Kind()))
	}
	return h
}

func hashChildren(p Parent) uint64 {
	var h uint64 = 1
	for i := 0; i < p.NumChildren(); i++ {
		h = h*31 + Hash(p.Child(i))
	}
	return h
}

func hashString(s string) uint64 {
	f := fnv.New64a()
	f.Write([]byte(s))
	return f.Sum64()
}

func hashBool(b bool) uint64 {
	if b {
		return 1231
	}
	return 1237
}
