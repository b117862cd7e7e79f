package checks

import (
	"fmt"
	"math"

	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"

	"github.com/liamcoop/drills/exercises"
)

// toFloat reads any CEL numeric type as a float64.
func toFloat(v ref.Val) (float64, bool) {
	switch n := v.(type) {
	case types.Int:
		return float64(n), true
	case types.Uint:
		return float64(n), true
	case types.Double:
		return float64(n), true
	}
	return 0, false
}

// toValue maps a CEL scalar onto an exercises.Value. Lists, maps and other
// aggregate values have no scalar form and are rejected.
func toValue(v ref.Val) (exercises.Value, error) {
	if f, ok := toFloat(v); ok {
		return exercises.Number(f), nil
	}
	switch s := v.(type) {
	case types.String:
		return exercises.String(string(s)), nil
	case types.Bool:
		return exercises.Bool(bool(s)), nil
	case types.Null:
		return exercises.Null(), nil
	}
	return exercises.Value{}, fmt.Errorf("%w: %s is not a scalar", exercises.ErrArgument, v.Type().TypeName())
}

// truthy applies the exercises truthiness table to scalars. Aggregates
// (lists, maps, messages) are objects and always truthy.
func truthy(v ref.Val) bool {
	val, err := toValue(v)
	if err != nil {
		return true
	}
	return exercises.IsTruthy(val)
}

func listElems(v ref.Val) ([]ref.Val, bool) {
	l, ok := v.(traits.Lister)
	if !ok {
		return nil, false
	}
	var out []ref.Val
	for it := l.Iterator(); it.HasNext() == types.True; {
		out = append(out, it.Next())
	}
	return out, true
}

// nativeOutput converts an evaluation result into plain Go values suitable
// for JSON. NaN and infinities become strings.
func nativeOutput(v ref.Val) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case types.Double:
		f := float64(t)
		switch {
		case math.IsNaN(f):
			return "NaN"
		case math.IsInf(f, 1):
			return "Infinity"
		case math.IsInf(f, -1):
			return "-Infinity"
		}
		return f
	case types.Null:
		return nil
	case traits.Lister:
		elems, _ := listElems(t)
		out := make([]any, len(elems))
		for i, e := range elems {
			out[i] = nativeOutput(e)
		}
		return out
	case traits.Mapper:
		out := make(map[string]any)
		for it := t.Iterator(); it.HasNext() == types.True; {
			k := it.Next()
			out[fmt.Sprint(k.Value())] = nativeOutput(t.Get(k))
		}
		return out
	}
	return v.Value()
}
