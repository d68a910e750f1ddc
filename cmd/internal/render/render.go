package render

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/hcl"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/samber/lo"
	"github.com/zclconf/go-cty/cty"
	"github.com/zeebo/xxh3"
)

// Files re-serializes the declared graph, returning rendered HCL keyed by the
// file name each declaration came from. Attribute expressions keep their
// original tokens, so references stay unquoted and the output re-parses into
// an identical graph.
func Files(declared *model.Graph) map[string]string {
	type item struct {
		startByte int
		variable  *model.Variable
		block     *model.Block
	}

	byFile := map[string][]item{}

	for _, variable := range declared.Variables {
		name := filepath.Base(variable.DefRange.Filename)
		byFile[name] = append(byFile[name], item{
			startByte: variable.DefRange.Start.Byte,
			variable:  variable,
		})
	}

	for _, block := range declared.Blocks {
		byFile[block.File] = append(byFile[block.File], item{
			startByte: block.DefRange.Start.Byte,
			block:     block,
		})
	}

	rendered := map[string]string{}

	for name, items := range byFile {
		// declarations keep their original order within each file
		sort.Slice(items, func(i, j int) bool {
			return items[i].startByte < items[j].startByte
		})

		file := hclwrite.NewEmptyFile()

		for index, entry := range items {
			if index != 0 {
				file.Body().AppendNewline()
			}

			if entry.variable != nil {
				appendVariable(file.Body(), entry.variable)
			} else {
				appendBlock(file.Body(), entry.block)
			}
		}

		rendered[name] = string(hclwrite.Format(file.Bytes()))
	}

	return rendered
}

// Fingerprint hashes the canonical rendering of the graph. Two graphs with
// the same declarations in the same order share a fingerprint, which is what
// the round trip guarantee is checked against.
func Fingerprint(declared *model.Graph) string {
	rendered := Files(declared)

	names := lo.Keys(rendered)
	sort.Strings(names)

	combined := ""
	for _, name := range names {
		combined += name + "\n" + rendered[name]
	}

	digest := xxh3.HashString128(combined).Bytes()
	return fmt.Sprintf("%x", digest)
}

func appendVariable(body *hclwrite.Body, variable *model.Variable) {
	block := body.AppendNewBlock("variable", []string{variable.Name})

	if len(variable.Type) != 0 {
		block.Body().SetAttributeRaw("type", hcl.RawTokens(variable.Type))
	}

	if variable.Description != "" {
		block.Body().SetAttributeValue("description", cty.StringVal(variable.Description))
	}

	if len(variable.Sensitive) != 0 {
		block.Body().SetAttributeRaw("sensitive", hcl.RawTokens(variable.Sensitive))
	}

	if len(variable.Nullable) != 0 {
		block.Body().SetAttributeRaw("nullable", hcl.RawTokens(variable.Nullable))
	}

	if variable.HasDefault() {
		block.Body().SetAttributeValue("default", variable.Default)
	}
}

func appendBlock(body *hclwrite.Body, block *model.Block) {
	written := body.AppendNewBlock(string(block.Kind), []string{block.Type, block.Name})
	appendBody(written.Body(), block.Body, block.Source)
}

func appendBody(target *hclwrite.Body, source *hclsyntax.Body, fileBytes []byte) {
	attributes := lo.Values(source.Attributes)

	// the syntax attribute map is unordered, sort back into source order
	sort.Slice(attributes, func(i, j int) bool {
		return attributes[i].SrcRange.Start.Byte < attributes[j].SrcRange.Start.Byte
	})

	for _, attribute := range attributes {
		raw := attribute.Expr.Range().SliceBytes(fileBytes)
		target.SetAttributeRaw(attribute.Name, hcl.RawTokens(raw))
	}

	for _, nested := range source.Blocks {
		written := target.AppendNewBlock(nested.Type, nested.Labels)
		appendBody(written.Body(), nested.Body, fileBytes)
	}
}
