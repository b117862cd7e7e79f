package suites

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/liamcoop/drills/checks"
)

const (
	maxVariables     = 100
	maxIdentifierLen = 100
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// reservedKeywords are CEL literals and reserved words.
var reservedKeywords = map[string]bool{
	"true": true, "false": true, "null": true,
	"if": true, "else": true, "for": true, "while": true,
	"break": true, "continue": true, "return": true,
	"var": true, "let": true, "const": true, "function": true,
	"in": true, "as": true, "import": true, "package": true,
	"namespace": true, "loop": true, "void": true,
}

// ValidateSchema reports the first problem with schema, or nil if it can be
// used to build a suite.
func ValidateSchema(schema Schema) error {
	if len(schema) == 0 {
		return fmt.Errorf("schema cannot be empty, must declare at least one variable")
	}
	if len(schema) > maxVariables {
		return fmt.Errorf("schema declares %d variables, maximum allowed is %d", len(schema), maxVariables)
	}

	for name, typeName := range schema {
		if err := validateIdentifier(name); err != nil {
			return fmt.Errorf("invalid variable name %q: %w", name, err)
		}

		if typeName == "" {
			return fmt.Errorf("variable %q has empty type name", name)
		}
		if strings.TrimSpace(typeName) != typeName {
			return fmt.Errorf("variable %q has type with leading/trailing whitespace: %q", name, typeName)
		}
		if _, ok := celTypes[typeName]; !ok {
			return fmt.Errorf("variable %q has invalid type %q (must be one of: %s)",
				name, typeName, strings.Join(TypeNames(), ", "))
		}
	}

	return nil
}

func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(name), maxIdentifierLen)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("must match pattern %s", identifierPattern)
	}
	if reservedKeywords[name] {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}
	for _, fn := range checks.FunctionNames() {
		if name == fn {
			return fmt.Errorf("%q is an exercise function", name)
		}
	}
	return nil
}
