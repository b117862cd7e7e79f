package suites

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/liamcoop/drills/checks"
)

// Schema maps the variable names a suite's checks may reference to their
// CEL type names.
type Schema map[string]string

// celTypes lists the type names a schema may use.
var celTypes = map[string]*cel.Type{
	"int":       cel.IntType,
	"uint":      cel.UintType,
	"double":    cel.DoubleType,
	"string":    cel.StringType,
	"bool":      cel.BoolType,
	"bytes":     cel.BytesType,
	"list":      cel.ListType(cel.DynType),
	"map":       cel.MapType(cel.DynType, cel.DynType),
	"dyn":       cel.DynType,
	"timestamp": cel.TimestampType,
	"duration":  cel.DurationType,
}

// TypeNames returns the accepted type names, sorted.
func TypeNames() []string {
	names := make([]string, 0, len(celTypes))
	for name := range celTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewEnv creates a CEL environment with the exercise library and one
// variable per schema entry. The schema must already be valid.
func NewEnv(schema Schema) (*cel.Env, error) {
	vars := make(map[string]*cel.Type, len(schema))
	for name, typeName := range schema {
		t, ok := celTypes[typeName]
		if !ok {
			return nil, fmt.Errorf("variable %q has unknown type %q", name, typeName)
		}
		vars[name] = t
	}
	return checks.NewEnv(vars)
}

// PrepareFacts converts decoded JSON facts to the Go types the schema
// declares: whole numbers for int and uint, RFC 3339 strings for timestamp
// and Go duration strings for duration. Variables the schema does not
// declare are rejected; missing ones are left out.
func (s Schema) PrepareFacts(facts map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(facts))
	for name, v := range facts {
		typeName, ok := s[name]
		if !ok {
			return nil, fmt.Errorf("fact %q is not declared by the schema", name)
		}
		converted, err := convertFact(typeName, v)
		if err != nil {
			return nil, fmt.Errorf("fact %q: %w", name, err)
		}
		out[name] = converted
	}
	return out, nil
}

func convertFact(typeName string, v any) (any, error) {
	switch typeName {
	case "int":
		f, ok := v.(float64)
		if !ok {
			return v, nil
		}
		if f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
			return nil, fmt.Errorf("%v is not an int", f)
		}
		return int64(f), nil
	case "uint":
		f, ok := v.(float64)
		if !ok {
			return v, nil
		}
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return nil, fmt.Errorf("%v is not a uint", f)
		}
		return uint64(f), nil
	case "bytes":
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
	case "timestamp":
		if s, ok := v.(string); ok {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, err
			}
			return t, nil
		}
	case "duration":
		if s, ok := v.(string); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return nil, err
			}
			return d, nil
		}
	}
	return v, nil
}
