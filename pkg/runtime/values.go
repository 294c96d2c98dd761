package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTuple
	KindList
	KindSet
	KindType
	KindInstance
	KindDescriptor
	KindFunction
	KindBoundMethod
	KindIterator
	KindGenerator
	KindIteratorEnd
	KindHostHandle
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "NoneType"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "str"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	case KindType:
		return "type"
	case KindInstance:
		return "instance"
	case KindDescriptor:
		return "descriptor"
	case KindFunction:
		return "builtin_function"
	case KindBoundMethod:
		return "builtin_method"
	case KindIterator:
		return "iterator"
	case KindGenerator:
		return "generator"
	case KindIteratorEnd:
		return "iterator_end"
	case KindHostHandle:
		return "host_handle"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

// Named is implemented by values whose user-visible type name differs from
// their kind (instances report their class name).
type Named interface {
	TypeName() string
}

// TypeName returns the name used for v in error messages.
func TypeName(v Value) string {
	if v == nil {
		return "NoneType"
	}
	if named, ok := v.(Named); ok {
		return named.TypeName()
	}
	return v.Kind().String()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }

// None is the shared absent value.
var None = NoneValue{}

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntValue struct {
	Val int64
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Int and friends are small constructors used heavily by native code.
func Int(v int64) IntValue { return IntValue{Val: v} }

func Float(v float64) FloatValue { return FloatValue{Val: v} }

func Str(v string) StringValue { return StringValue{Val: v} }

func Bool(v bool) BoolValue { return BoolValue{Val: v} }

func Tuple(els ...Value) *TupleValue {
	return &TupleValue{Elements: els}
}

// IsNone reports whether v is nil or the None value.
func IsNone(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(NoneValue)
	return ok
}

// AsFloat widens numeric values to float64.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntValue:
		return float64(n.Val), true
	case FloatValue:
		return n.Val, true
	case BoolValue:
		if n.Val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

//-----------------------------------------------------------------------------
// Collections
//-----------------------------------------------------------------------------

// TupleValue is an immutable sequence.
type TupleValue struct {
	Elements []Value
}

func (v *TupleValue) Kind() Kind { return KindTuple }

func (v *TupleValue) Len() int { return len(v.Elements) }

func (v *TupleValue) Item(idx int) Value { return v.Elements[idx] }

// ListValue is a mutable sequence. Callers synchronise concurrent mutation.
type ListValue struct {
	Elements []Value
}

func NewList(els ...Value) *ListValue {
	return &ListValue{Elements: els}
}

func (v *ListValue) Kind() Kind { return KindList }

func (v *ListValue) Len() int { return len(v.Elements) }

func (v *ListValue) Item(idx int) Value { return v.Elements[idx] }

func (v *ListValue) Append(val Value) {
	v.Elements = append(v.Elements, val)
}

// Pop removes and returns the last element.
func (v *ListValue) Pop() (Value, bool) {
	if len(v.Elements) == 0 {
		return nil, false
	}
	last := v.Elements[len(v.Elements)-1]
	v.Elements = v.Elements[:len(v.Elements)-1]
	return last, true
}

// SetValue keeps insertion order so iteration is deterministic.
type SetValue struct {
	order []Value
	index map[any]int
}

func NewSet() *SetValue {
	return &SetValue{index: map[any]int{}}
}

func (v *SetValue) Kind() Kind { return KindSet }

func (v *SetValue) Len() int { return len(v.index) }

// Add inserts val, reporting whether it was absent.
func (v *SetValue) Add(val Value) (bool, error) {
	key, err := HashKey(val)
	if err != nil {
		return false, err
	}
	if _, ok := v.index[key]; ok {
		return false, nil
	}
	v.index[key] = len(v.order)
	v.order = append(v.order, val)
	return true, nil
}

// Discard removes val when present.
func (v *SetValue) Discard(val Value) (bool, error) {
	key, err := HashKey(val)
	if err != nil {
		return false, err
	}
	pos, ok := v.index[key]
	if !ok {
		return false, nil
	}
	delete(v.index, key)
	v.order[pos] = nil
	return true, nil
}

func (v *SetValue) Contains(val Value) bool {
	key, err := HashKey(val)
	if err != nil {
		return false
	}
	_, ok := v.index[key]
	return ok
}

// Slot exposes the raw insertion slots; discarded slots read as nil.
func (v *SetValue) Slot(idx int) (Value, bool) {
	if idx < 0 || idx >= len(v.order) {
		return nil, false
	}
	return v.order[idx], true
}

// SlotCount is the number of insertion slots, including discarded ones.
func (v *SetValue) SlotCount() int { return len(v.order) }

type hashedScalar struct {
	kind Kind
	val  any
}

// HashKey returns a comparable key for hashable values.
func HashKey(v Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return hashedScalar{kind: KindNone}, nil
	case NoneValue:
		return hashedScalar{kind: KindNone}, nil
	case BoolValue:
		if val.Val {
			return hashedScalar{kind: KindInt, val: int64(1)}, nil
		}
		return hashedScalar{kind: KindInt, val: int64(0)}, nil
	case IntValue:
		return hashedScalar{kind: KindInt, val: val.Val}, nil
	case FloatValue:
		if val.Val == math.Trunc(val.Val) && math.Abs(val.Val) < 1<<62 {
			return hashedScalar{kind: KindInt, val: int64(val.Val)}, nil
		}
		return hashedScalar{kind: KindFloat, val: val.Val}, nil
	case StringValue:
		return hashedScalar{kind: KindString, val: val.Val}, nil
	case *TupleValue:
		parts := make([]string, len(val.Elements))
		for idx, el := range val.Elements {
			key, err := HashKey(el)
			if err != nil {
				return nil, err
			}
			parts[idx] = fmt.Sprintf("%#v", key)
		}
		return hashedScalar{kind: KindTuple, val: strings.Join(parts, ",")}, nil
	case *ListValue, *SetValue:
		return nil, Errorf(TypeError, "unhashable type: '%s'", TypeName(v))
	default:
		// identity hash for reference values
		return v, nil
	}
}

//-----------------------------------------------------------------------------
// Sentinels & host handles
//-----------------------------------------------------------------------------

// IteratorEndValue is a sentinel returned once an iterator is exhausted.
type IteratorEndValue struct{}

func (IteratorEndValue) Kind() Kind { return KindIteratorEnd }

// IteratorEnd is the singleton sentinel shared by all iterators.
var IteratorEnd = IteratorEndValue{}

// HostHandleValue carries opaque host objects through the runtime.
type HostHandleValue struct {
	HandleType string
	Value      any
}

func (v *HostHandleValue) Kind() Kind { return KindHostHandle }

func (v *HostHandleValue) TypeName() string {
	if v.HandleType == "" {
		return "host_handle"
	}
	return v.HandleType
}

//-----------------------------------------------------------------------------
// Formatting
//-----------------------------------------------------------------------------

// Repr renders a value for diagnostics and the REPL.
func Repr(v Value) string {
	switch val := v.(type) {
	case nil, NoneValue:
		return "None"
	case BoolValue:
		if val.Val {
			return "True"
		}
		return "False"
	case IntValue:
		return strconv.FormatInt(val.Val, 10)
	case FloatValue:
		s := strconv.FormatFloat(val.Val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case StringValue:
		return strconv.Quote(val.Val)
	case *TupleValue:
		parts := reprAll(val.Elements)
		if len(parts) == 1 {
			return "(" + parts[0] + ",)"
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ListValue:
		return "[" + strings.Join(reprAll(val.Elements), ", ") + "]"
	case *SetValue:
		var live []Value
		for _, el := range val.order {
			if el != nil {
				live = append(live, el)
			}
		}
		return "{" + strings.Join(reprAll(live), ", ") + "}"
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("<%s>", TypeName(v))
	}
}

func reprAll(vals []Value) []string {
	out := make([]string, len(vals))
	for idx, el := range vals {
		out[idx] = Repr(el)
	}
	return out
}
