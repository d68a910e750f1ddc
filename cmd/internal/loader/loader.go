package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/sanitizer"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
	"k8s.io/utils/strings/slices"
)

// Top level block types that carry no declarations we track. They are accepted
// so real Terraform configuration parses, but contribute nothing to the graph.
var passthroughBlocks = []string{"terraform", "provider", "output", "locals"}

// LoadPath parses a fixture from either a single file or every *.tf file in a
// directory, and returns the declared graph.
func LoadPath(path string) (*model.Graph, error) {
	info, err := os.Stat(path)

	if err != nil {
		return nil, fmt.Errorf("failed to read fixture path %s: %w", path, err)
	}

	if !info.IsDir() {
		return LoadFiles(path)
	}

	entries, err := os.ReadDir(path)

	if err != nil {
		return nil, fmt.Errorf("failed to list fixture directory %s: %w", path, err)
	}

	files := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tf") {
			files = append(files, filepath.Join(path, entry.Name()))
		}
	}

	// directory listing order is not guaranteed on all platforms
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no *.tf files found in %s", path)
	}

	return LoadFiles(files...)
}

// LoadFiles parses the supplied files into a single declared graph.
func LoadFiles(paths ...string) (*model.Graph, error) {
	parser := hclparse.NewParser()

	blocks := []*model.Block{}
	variables := []*model.Variable{}

	for _, path := range paths {
		source, err := os.ReadFile(path)

		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		fileBlocks, fileVariables, err := Parse(parser, path, source)

		if err != nil {
			return nil, err
		}

		blocks = append(blocks, fileBlocks...)
		variables = append(variables, fileVariables...)
	}

	return model.NewGraph(blocks, variables)
}

// Parse decodes the top level declarations of a single fixture file. Data
// sources and resources are returned with their bodies untouched so the
// attribute expressions can be evaluated and re-rendered later.
func Parse(parser *hclparse.Parser, filename string, source []byte) ([]*model.Block, []*model.Variable, error) {
	file, diags := parser.ParseHCL(source, filename)

	if diags.HasErrors() {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", filename, diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)

	if !ok {
		return nil, nil, fmt.Errorf("%s is not native HCL syntax", filename)
	}

	blocks := []*model.Block{}
	variables := []*model.Variable{}

	for _, block := range body.Blocks {
		switch block.Type {
		case "data", "resource":
			declared, err := parseDeclaration(filename, source, block)

			if err != nil {
				return nil, nil, err
			}

			blocks = append(blocks, declared)
		case "variable":
			variable, err := parseVariable(filename, source, block)

			if err != nil {
				return nil, nil, err
			}

			variables = append(variables, variable)
		default:
			if !slices.Contains(passthroughBlocks, block.Type) {
				return nil, nil, fmt.Errorf("%s: unsupported top level block %q at %s",
					filename, block.Type, block.DefRange().String())
			}

			zap.L().Debug("Ignoring top level block " + block.Type + " in " + filename)
		}
	}

	return blocks, variables, nil
}

func parseDeclaration(filename string, source []byte, block *hclsyntax.Block) (*model.Block, error) {
	if len(block.Labels) != 2 {
		return nil, fmt.Errorf("%s: %s block at %s must have a type and a local name label",
			filename, block.Type, block.DefRange().String())
	}

	kind := model.KindResource
	if block.Type == "data" {
		kind = model.KindData
	}

	localName := block.Labels[1]
	if sanitizer.SanitizeName(localName) != localName {
		return nil, fmt.Errorf("%s: local name %q at %s is not a valid HCL resource name",
			filename, localName, block.DefRange().String())
	}

	return &model.Block{
		Kind:     kind,
		Type:     block.Labels[0],
		Name:     localName,
		Body:     block.Body,
		DefRange: block.DefRange(),
		File:     filepath.Base(filename),
		Source:   source,
	}, nil
}

func parseVariable(filename string, source []byte, block *hclsyntax.Block) (*model.Variable, error) {
	if len(block.Labels) != 1 {
		return nil, fmt.Errorf("%s: variable block at %s must have exactly one label",
			filename, block.DefRange().String())
	}

	variable := &model.Variable{
		Name:     block.Labels[0],
		Default:  cty.NilVal,
		DefRange: block.DefRange(),
	}

	for name, attribute := range block.Body.Attributes {
		switch name {
		case "default":
			value, diags := attribute.Expr.Value(nil)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: the default of variable %q must be a literal value: %w",
					filename, variable.Name, diags)
			}
			variable.Default = value
		case "description":
			value, diags := attribute.Expr.Value(nil)
			if diags.HasErrors() || value.Type() != cty.String {
				return nil, fmt.Errorf("%s: the description of variable %q must be a literal string",
					filename, variable.Name)
			}
			variable.Description = value.AsString()
		case "type":
			variable.Type = attribute.Expr.Range().SliceBytes(source)
		case "sensitive":
			variable.Sensitive = attribute.Expr.Range().SliceBytes(source)
		case "nullable":
			variable.Nullable = attribute.Expr.Range().SliceBytes(source)
		default:
			return nil, fmt.Errorf("%s: unsupported attribute %q on variable %q",
				filename, name, variable.Name)
		}
	}

	return variable, nil
}
