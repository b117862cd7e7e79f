package checks

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/liamcoop/drills/exercises"
)

// Library exposes the exercises as CEL functions: findMax, isLandscape,
// fizzBuzz, checkSpeed, countTruthy, calculateGrade, showStars and typeOf.
func Library() cel.EnvOption {
	return cel.Lib(exerciseLib{})
}

type exerciseLib struct{}

func (exerciseLib) CompileOptions() []cel.EnvOption {
	dynList := cel.ListType(cel.DynType)
	return []cel.EnvOption{
		cel.Function("findMax",
			cel.Overload("findMax_dyn_dyn", []*cel.Type{cel.DynType, cel.DynType}, cel.DynType,
				cel.BinaryBinding(findMax))),
		cel.Function("isLandscape",
			cel.Overload("isLandscape_dyn_dyn", []*cel.Type{cel.DynType, cel.DynType}, cel.BoolType,
				cel.BinaryBinding(isLandscape))),
		cel.Function("fizzBuzz",
			cel.Overload("fizzBuzz_dyn", []*cel.Type{cel.DynType}, cel.DynType,
				cel.UnaryBinding(fizzBuzz))),
		cel.Function("checkSpeed",
			cel.Overload("checkSpeed_dyn", []*cel.Type{cel.DynType}, cel.StringType,
				cel.UnaryBinding(checkSpeed))),
		cel.Function("countTruthy",
			cel.Overload("countTruthy_list", []*cel.Type{dynList}, cel.IntType,
				cel.UnaryBinding(countTruthy))),
		cel.Function("calculateGrade",
			cel.Overload("calculateGrade_list", []*cel.Type{dynList}, cel.StringType,
				cel.UnaryBinding(calculateGrade))),
		cel.Function("showStars",
			cel.Overload("showStars_dyn", []*cel.Type{cel.DynType}, cel.ListType(cel.StringType),
				cel.UnaryBinding(showStars))),
		cel.Function("typeOf",
			cel.Overload("typeOf_dyn", []*cel.Type{cel.DynType}, cel.StringType,
				cel.UnaryBinding(typeOf))),
	}
}

func (exerciseLib) ProgramOptions() []cel.ProgramOption {
	return nil
}

// FunctionNames lists the functions Library declares.
func FunctionNames() []string {
	return []string{"findMax", "isLandscape", "fizzBuzz", "checkSpeed", "countTruthy", "calculateGrade", "showStars", "typeOf"}
}

func notNumber(fn string, pos int, v ref.Val) ref.Val {
	return types.NewErr("%s: argument %d must be a number, got %s", fn, pos, v.Type().TypeName())
}

// findMax hands back one of its operands so the result keeps the caller's
// numeric type.
func findMax(lhs, rhs ref.Val) ref.Val {
	a, ok := toFloat(lhs)
	if !ok {
		return notNumber("findMax", 1, lhs)
	}
	b, ok := toFloat(rhs)
	if !ok {
		return notNumber("findMax", 2, rhs)
	}
	m := exercises.FindMax(a, b)
	if m == b || (math.IsNaN(m) && math.IsNaN(b)) {
		return rhs
	}
	return lhs
}

func isLandscape(width, height ref.Val) ref.Val {
	w, ok := toFloat(width)
	if !ok {
		return notNumber("isLandscape", 1, width)
	}
	h, ok := toFloat(height)
	if !ok {
		return notNumber("isLandscape", 2, height)
	}
	return types.Bool(exercises.IsLandscape(w, h))
}

// fizzBuzz returns the input itself when no label applies.
func fizzBuzz(v ref.Val) ref.Val {
	val, err := toValue(v)
	if err != nil {
		return types.String(exercises.NotANumber)
	}
	if label, ok := exercises.FizzBuzz(val).Text(); ok {
		return types.String(label)
	}
	return v
}

func checkSpeed(v ref.Val) ref.Val {
	speed, ok := toFloat(v)
	if !ok {
		return notNumber("checkSpeed", 1, v)
	}
	return types.String(exercises.CheckSpeed(speed))
}

func countTruthy(v ref.Val) ref.Val {
	elems, ok := listElems(v)
	if !ok {
		return types.NewErr("countTruthy: argument must be a list, got %s", v.Type().TypeName())
	}
	count := 0
	for _, e := range elems {
		if truthy(e) {
			count++
		}
	}
	return types.Int(count)
}

func calculateGrade(v ref.Val) ref.Val {
	elems, ok := listElems(v)
	if !ok {
		return types.NewErr("calculateGrade: argument must be a list, got %s", v.Type().TypeName())
	}
	scores := make([]float64, len(elems))
	for i, e := range elems {
		f, ok := toFloat(e)
		if !ok {
			return types.NewErr("calculateGrade: score %d must be a number, got %s", i+1, e.Type().TypeName())
		}
		scores[i] = f
	}
	grade, err := exercises.CalculateGrade(scores)
	if err != nil {
		return types.NewErr("calculateGrade: %v", err)
	}
	return types.String(grade)
}

func showStars(v ref.Val) ref.Val {
	n, ok := toFloat(v)
	if !ok {
		return notNumber("showStars", 1, v)
	}
	rows, err := exercises.Invoke("showStars", []exercises.Value{exercises.Number(n)})
	if err != nil {
		return types.NewErr("%v", err)
	}
	return types.DefaultTypeAdapter.NativeToValue(rows)
}

func typeOf(v ref.Val) ref.Val {
	val, err := toValue(v)
	if err != nil {
		return types.String("object")
	}
	return types.String(val.TypeOf())
}
