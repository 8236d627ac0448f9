// Package generator lowers expression trees into code chunks for a
// JavaScript-like target runtime. Data references resolve against the
// template's data and injected-data parameters, short-circuit operators and
// null-safe access chains lower through the chunk builder so that
// conditionally evaluated operands stay conditionally evaluated, and
// globals and runtime helpers surface as collectable requires.
package generator

import (
	"fmt"
	"strconv"

	"github.com/sable-lang/sable/pkgs/dsl"
	"github.com/sable-lang/sable/pkgs/exprtree"
)

// Options configures the names the lowered code resolves against.
type Options struct {
	// DataName is the parameter holding template data. Defaults to opt_data.
	DataName string
	// InjectedName is the parameter holding injected data. Defaults to
	// opt_ijData.
	InjectedName string
	// RuntimeName is the namespace of the runtime support library. Function
	// calls and non-null assertions dispatch through it. Defaults to sable.
	RuntimeName string
}

func (o Options) withDefaults() Options {
	if o.DataName == "" {
		o.DataName = "opt_data"
	}
	if o.InjectedName == "" {
		o.InjectedName = "opt_ijData"
	}
	if o.RuntimeName == "" {
		o.RuntimeName = "sable"
	}
	return o
}

// Translator lowers expression trees into chunks. Expressions lowered by one
// Translator share a temporary namespace and must be emitted into the same
// lexical scope; use separate Translators for separate scopes.
type Translator struct {
	gen  *dsl.Generator
	opts Options
	// guards holds the temporaries standing in for guard placeholders of the
	// null-safe chains currently being lowered, innermost last.
	guards []dsl.Expression
}

// New returns a Translator drawing temporaries from gen, or from a fresh
// generator when gen is nil.
func New(gen *dsl.Generator, opts Options) *Translator {
	if gen == nil {
		gen = dsl.NewGenerator(nil)
	}
	return &Translator{gen: gen, opts: opts.withDefaults()}
}

// Translate lowers a single expression tree with a fresh temporary namespace.
func Translate(root exprtree.Node, opts Options) (dsl.Expression, error) {
	return New(nil, opts).Expression(root)
}

// Expression lowers root into a chunk.
func (t *Translator) Expression(root exprtree.Node) (dsl.Expression, error) {
	if err := exprtree.CheckNullSafeChain(root); err != nil {
		return dsl.Expression{}, err
	}
	return t.expr(root)
}

func (t *Translator) expr(node exprtree.Node) (dsl.Expression, error) {
	switch n := node.(type) {
	case *exprtree.NullNode:
		return dsl.LiteralNull, nil
	case *exprtree.BooleanNode:
		if n.Value {
			return dsl.LiteralTrue, nil
		}
		return dsl.LiteralFalse, nil
	case *exprtree.IntegerNode:
		return t.integer(n)
	case *exprtree.FloatNode:
		return dsl.Float(n.Value), nil
	case *exprtree.StringNode:
		return dsl.StringLiteral(n.Value), nil
	case *exprtree.VarRefNode:
		return t.varRef(n), nil
	case *exprtree.GlobalNode:
		return dsl.DottedId(n.Name, dsl.NewRequire(n.Name)), nil
	case *exprtree.GroupNode:
		return t.group(n)
	case *exprtree.ListLiteralNode:
		return t.list(n)
	case *exprtree.MapLiteralNode:
		return t.mapLiteral(n)
	case *exprtree.RecordLiteralNode:
		return t.record(n)
	case *exprtree.FunctionNode:
		return t.function(n)
	case *exprtree.ProtoInitNode:
		return t.protoInit(n)
	case *exprtree.FieldAccessNode:
		return t.fieldAccess(n)
	case *exprtree.ItemAccessNode:
		return t.itemAccess(n)
	case *exprtree.MethodCallNode:
		return t.methodCall(n)
	case *exprtree.NullSafeAccessNode:
		return t.nullSafe(n)
	case *exprtree.OperatorNode:
		return t.operator(n)
	default:
		return dsl.Expression{}, fmt.Errorf("generator: unsupported node kind %s", node.Kind())
	}
}

func (t *Translator) integer(n *exprtree.IntegerNode) (dsl.Expression, error) {
	const maxSafe = 1<<53 - 1
	if n.Value > maxSafe || n.Value < -maxSafe {
		return dsl.Expression{}, &exprtree.StructuralError{
			Pos:     n.Position(),
			Message: fmt.Sprintf("integer %d is outside the target runtime's exact range", n.Value),
		}
	}
	return dsl.Number(n.Value), nil
}

// varRef resolves a variable reference to a field of the data or injected
// data parameter. The null-safe injected form guards on the whole injected
// bundle being absent.
func (t *Translator) varRef(n *exprtree.VarRefNode) dsl.Expression {
	if !n.Injected {
		return dsl.Id(t.opts.DataName).DotAccess(n.Name)
	}
	bundle := dsl.Id(t.opts.InjectedName)
	if n.NullSafeInjected {
		return t.gen.ConditionalExpression(
			bundle.DoubleEqualsNull(), dsl.LiteralNull, bundle.DotAccess(n.Name))
	}
	return bundle.DotAccess(n.Name)
}

// group resolves a guard placeholder to the temporary holding the enclosing
// chain's checked base. Plain groups carry no target-level meaning and lower
// to their child.
func (t *Translator) group(n *exprtree.GroupNode) (dsl.Expression, error) {
	if exprtree.IsPlaceholder(n) {
		if len(t.guards) == 0 {
			return dsl.Expression{}, &exprtree.StructuralError{
				Pos:     n.Position(),
				Message: "guard placeholder outside a null-safe access chain",
			}
		}
		return t.guards[len(t.guards)-1], nil
	}
	return t.expr(n.Child(0))
}

func (t *Translator) list(n *exprtree.ListLiteralNode) (dsl.Expression, error) {
	elements, err := t.exprs(n.Children())
	if err != nil {
		return dsl.Expression{}, err
	}
	return dsl.ArrayLiteral(elements...), nil
}

// mapLiteral lowers to an object literal when every key is a string literal,
// and to a Map construction over key/value pairs otherwise, since object
// keys cannot be computed.
func (t *Translator) mapLiteral(n *exprtree.MapLiteralNode) (dsl.Expression, error) {
	allStrings := true
	for i := 0; i < n.NumEntries(); i++ {
		if n.Key(i).Kind() != exprtree.KindString {
			allStrings = false
			break
		}
	}
	if allStrings {
		keys := make([]string, n.NumEntries())
		values := make([]dsl.Expression, n.NumEntries())
		for i := range keys {
			keys[i] = n.Key(i).(*exprtree.StringNode).Value
			v, err := t.expr(n.Value(i))
			if err != nil {
				return dsl.Expression{}, err
			}
			values[i] = v
		}
		return dsl.ObjectLiteralWithQuotedKeys(keys, values), nil
	}
	pairs := make([]dsl.Expression, n.NumEntries())
	for i := range pairs {
		k, err := t.expr(n.Key(i))
		if err != nil {
			return dsl.Expression{}, err
		}
		v, err := t.expr(n.Value(i))
		if err != nil {
			return dsl.Expression{}, err
		}
		pairs[i] = dsl.ArrayLiteral(k, v)
	}
	return dsl.Construct(dsl.Id("Map"), dsl.ArrayLiteral(pairs...)), nil
}

func (t *Translator) record(n *exprtree.RecordLiteralNode) (dsl.Expression, error) {
	values, err := t.exprs(n.Children())
	if err != nil {
		return dsl.Expression{}, err
	}
	return dsl.ObjectLiteral(n.Keys, values), nil
}

// function dispatches through the runtime support namespace, which the
// emitted unit then requires.
func (t *Translator) function(n *exprtree.FunctionNode) (dsl.Expression, error) {
	args, err := t.exprs(n.Children())
	if err != nil {
		return dsl.Expression{}, err
	}
	return t.runtimeHelper(n.Name).Call(args...), nil
}

func (t *Translator) protoInit(n *exprtree.ProtoInitNode) (dsl.Expression, error) {
	values, err := t.exprs(n.Children())
	if err != nil {
		return dsl.Expression{}, err
	}
	ctor := dsl.DottedId(n.Name, dsl.NewRequire(n.Name))
	return dsl.Construct(ctor, dsl.ObjectLiteral(n.ParamNames, values)), nil
}

func (t *Translator) fieldAccess(n *exprtree.FieldAccessNode) (dsl.Expression, error) {
	base, err := t.expr(n.Base())
	if err != nil {
		return dsl.Expression{}, err
	}
	// Numeric field names come from positional access like $row.0 and are
	// not valid identifiers in the target.
	if index, err := strconv.ParseInt(n.FieldName, 10, 64); err == nil {
		return base.BracketAccess(dsl.Number(index)), nil
	}
	return base.DotAccess(n.FieldName), nil
}

func (t *Translator) itemAccess(n *exprtree.ItemAccessNode) (dsl.Expression, error) {
	base, err := t.expr(n.Base())
	if err != nil {
		return dsl.Expression{}, err
	}
	key, err := t.expr(n.Key())
	if err != nil {
		return dsl.Expression{}, err
	}
	return base.BracketAccess(key), nil
}

func (t *Translator) methodCall(n *exprtree.MethodCallNode) (dsl.Expression, error) {
	base, err := t.expr(n.Base())
	if err != nil {
		return dsl.Expression{}, err
	}
	args, err := t.exprs(n.Args())
	if err != nil {
		return dsl.Expression{}, err
	}
	return base.DotAccess(n.MethodName).Call(args...), nil
}

// nullSafe evaluates the chain's base into a temporary, then guards the
// remainder of the chain on that temporary being non-null. The base is
// evaluated exactly once. Nested guards lower recursively; their temporaries
// are declared inside the enclosing guard's non-null branch, so a short
// chain stops at the first null without touching the rest.
func (t *Translator) nullSafe(n *exprtree.NullSafeAccessNode) (dsl.Expression, error) {
	base, err := t.expr(n.Base())
	if err != nil {
		return dsl.Expression{}, err
	}
	tmp := t.gen.DeclarationBuilder().SetRhs(base).Build()
	ref := tmp.Ref()

	t.guards = append(t.guards, ref)
	guarded, err := t.expr(n.DataAccess())
	t.guards = t.guards[:len(t.guards)-1]
	if err != nil {
		return dsl.Expression{}, err
	}
	return t.gen.ConditionalExpression(ref.DoubleEqualsNull(), dsl.LiteralNull, guarded), nil
}

func (t *Translator) operator(n *exprtree.OperatorNode) (dsl.Expression, error) {
	switch n.Op {
	case exprtree.OpAnd, exprtree.OpOr:
		lhs, err := t.expr(n.Child(0))
		if err != nil {
			return dsl.Expression{}, err
		}
		rhs, err := t.expr(n.Child(1))
		if err != nil {
			return dsl.Expression{}, err
		}
		if n.Op == exprtree.OpAnd {
			return lhs.And(rhs, t.gen), nil
		}
		return lhs.Or(rhs, t.gen), nil
	case exprtree.OpConditional:
		predicate, err := t.expr(n.Child(0))
		if err != nil {
			return dsl.Expression{}, err
		}
		consequent, err := t.expr(n.Child(1))
		if err != nil {
			return dsl.Expression{}, err
		}
		alternate, err := t.expr(n.Child(2))
		if err != nil {
			return dsl.Expression{}, err
		}
		return t.gen.ConditionalExpression(predicate, consequent, alternate), nil
	case exprtree.OpNullCoalescing:
		return t.nullCoalescing(n)
	case exprtree.OpAssertNonNull:
		arg, err := t.expr(n.Child(0))
		if err != nil {
			return dsl.Expression{}, err
		}
		return t.runtimeHelper("checkNotNull").Call(arg), nil
	case exprtree.OpNot:
		arg, err := t.expr(n.Child(0))
		if err != nil {
			return dsl.Expression{}, err
		}
		return dsl.Not(arg), nil
	default:
		operands, err := t.exprs(n.Children())
		if err != nil {
			return dsl.Expression{}, err
		}
		return dsl.Operation(n.Op, operands...), nil
	}
}

// nullCoalescing lowers $a ?: $b. A Flat fallback uses the target's native
// coalescing operator. A fallback with initial statements may only run when
// the primary is null, so the result lowers to a mutable temporary
// reassigned under a null guard, mirroring the chunk builder's treatment of
// and/or.
func (t *Translator) nullCoalescing(n *exprtree.OperatorNode) (dsl.Expression, error) {
	primary, err := t.expr(n.Child(0))
	if err != nil {
		return dsl.Expression{}, err
	}
	fallback, err := t.expr(n.Child(1))
	if err != nil {
		return dsl.Expression{}, err
	}
	if fallback.Flat() {
		return dsl.Operation(exprtree.OpNullCoalescing, primary, fallback), nil
	}
	tmp := t.gen.DeclarationBuilder().SetMutable().SetRhs(primary).Build()
	ref := tmp.Ref()
	guard := dsl.IfStatement(ref.DoubleEqualsNull(), ref.Assign(fallback).AsStatement()).Build()
	return ref.WithInitialStatements([]dsl.Statement{tmp.AsStatement(), guard}), nil
}

func (t *Translator) runtimeHelper(name string) dsl.Expression {
	return dsl.IdWithRequires(t.opts.RuntimeName, dsl.NewRequire(t.opts.RuntimeName)).DotAccess(name)
}

func (t *Translator) exprs(nodes []exprtree.Node) ([]dsl.Expression, error) {
	out := make([]dsl.Expression, len(nodes))
	for i, node := range nodes {
		e, err := t.expr(node)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}
