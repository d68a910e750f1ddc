package eval

import (
	"fmt"
	"os"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// ParseVarFlags converts repeated -var name=value arguments into variable
// values. Values are always strings; conversion happens where they are used.
func ParseVarFlags(flags []string) (map[string]cty.Value, error) {
	values := map[string]cty.Value{}

	for _, flag := range flags {
		name, value, found := strings.Cut(flag, "=")

		if !found || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("-var argument %q is not in name=value format", flag)
		}

		values[strings.TrimSpace(name)] = cty.StringVal(value)
	}

	return values, nil
}

// LoadVarFile reads variable values from an HCL file of name = value
// assignments, the same shape as a Terraform tfvars file. Values must be
// literals.
func LoadVarFile(path string) (map[string]cty.Value, error) {
	source, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read variable file %s: %w", path, err)
	}

	file, diags := hclparse.NewParser().ParseHCL(source, path)

	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse variable file %s: %w", path, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)

	if !ok {
		return nil, fmt.Errorf("%s is not native HCL syntax", path)
	}

	if len(body.Blocks) != 0 {
		return nil, fmt.Errorf("%s: variable files must only contain name = value assignments", path)
	}

	values := map[string]cty.Value{}

	for name, attribute := range body.Attributes {
		value, valueDiags := attribute.Expr.Value(nil)

		if valueDiags.HasErrors() {
			return nil, fmt.Errorf("%s: the value of %q must be a literal: %w", path, name, valueDiags)
		}

		values[name] = value
	}

	return values, nil
}

// MergeVariables combines declared variable defaults with externally supplied
// values, the supplied values winning. A declared variable with neither a
// default nor a supplied value is an error.
func MergeVariables(declared []*model.Variable, supplied map[string]cty.Value) (map[string]cty.Value, error) {
	merged := map[string]cty.Value{}

	for _, variable := range declared {
		if value, ok := supplied[variable.Name]; ok {
			merged[variable.Name] = value
			continue
		}

		if !variable.HasDefault() {
			return nil, fmt.Errorf("no value supplied for variable %q and it declares no default", variable.Name)
		}

		merged[variable.Name] = variable.Default
	}

	// values supplied for undeclared variables are still exposed, matching the
	// behaviour of supplying them purely from the command line
	for name, value := range supplied {
		if _, ok := merged[name]; !ok {
			merged[name] = value
		}
	}

	return merged, nil
}
