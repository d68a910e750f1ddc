package graph

import (
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"k8s.io/utils/strings/slices"
)

// Traversal roots that belong to the evaluation scope rather than to another
// declaration in the graph.
var reservedRoots = []string{"each", "count", "local", "path", "terraform", "module", "self"}

// Reference is a textual pointer from one declaration's attribute to another
// declaration's output, e.g. octopusdeploy_project.deploy_frontend_project.id.
type Reference struct {
	// Referrer is the address of the block holding the expression
	Referrer string
	// Target is the address of the referenced declaration, or "var.<name>"
	Target string
	// SrcRange is where the reference appears in the fixture
	SrcRange hcl.Range
}

// IsVariable reports whether the reference points at an external variable
// rather than another block.
func (r Reference) IsVariable() bool {
	return len(r.Target) > 4 && r.Target[:4] == "var."
}

// BlockReferences walks every attribute expression in the block, including
// those inside nested blocks at any depth, and returns the cross declaration
// references found.
func BlockReferences(block *model.Block) []Reference {
	references := []Reference{}

	walkBody(block.Body, func(attribute *hclsyntax.Attribute) {
		for _, traversal := range attribute.Expr.Variables() {
			if target, ok := classify(traversal); ok {
				references = append(references, Reference{
					Referrer: block.Address(),
					Target:   target,
					SrcRange: traversal.SourceRange(),
				})
			}
		}
	})

	return references
}

func walkBody(body *hclsyntax.Body, visit func(attribute *hclsyntax.Attribute)) {
	for _, attribute := range body.Attributes {
		visit(attribute)
	}

	for _, nested := range body.Blocks {
		walkBody(nested.Body, visit)
	}
}

// classify maps a traversal to the address of the declaration it refers to.
// The supported shapes are var.<name>, data.<type>.<name>.<attribute path>,
// and <type>.<name>.<attribute path>.
func classify(traversal hcl.Traversal) (string, bool) {
	root := traversal.RootName()

	if slices.Contains(reservedRoots, root) {
		return "", false
	}

	steps := attributeSteps(traversal)

	if root == "var" {
		if len(steps) < 1 {
			return "", false
		}
		return "var." + steps[0], true
	}

	if root == "data" {
		if len(steps) < 2 {
			return "", false
		}
		return "data." + steps[0] + "." + steps[1], true
	}

	if len(steps) < 1 {
		return "", false
	}

	return root + "." + steps[0], true
}

// attributeSteps returns the names of the leading TraverseAttr steps that
// follow the traversal root, stopping at the first index step.
func attributeSteps(traversal hcl.Traversal) []string {
	steps := []string{}
	for _, step := range traversal[1:] {
		attr, ok := step.(hcl.TraverseAttr)
		if !ok {
			break
		}
		steps = append(steps, attr.Name)
	}

	return steps
}
