package schema

import (
	"fmt"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Validator checks each declared block against the schema of its type.
type Validator struct {
	// Lenient skips blocks whose type has no registered schema instead of
	// treating them as an error.
	Lenient bool
}

// Validate checks every block in the graph and returns all the problems
// found rather than stopping at the first one.
func (v Validator) Validate(declared *model.Graph) []error {
	failures := []error{}

	for _, block := range declared.Blocks {
		var body *BodySchema
		var known bool

		if block.Kind == model.KindData {
			body, known = DataSchema(block.Type)
		} else {
			body, known = ResourceSchema(block.Type)
		}

		if !known {
			if v.Lenient {
				zap.L().Warn("No schema registered for " + block.Address() + ", skipping validation")
				continue
			}

			failures = append(failures, fmt.Errorf("%s: unknown %s type %q", block.Address(), block.Kind, block.Type))
			continue
		}

		failures = append(failures, validateBody(block.Address(), block.Body, body)...)
	}

	return failures
}

func validateBody(context string, body *hclsyntax.Body, bodySchema *BodySchema) []error {
	errors := []error{}

	knownAttributes := lo.Map(bodySchema.Attributes, func(attribute AttributeSchema, index int) string {
		return attribute.Name
	})

	for name, attribute := range body.Attributes {
		if !lo.Contains(knownAttributes, name) {
			errors = append(errors, fmt.Errorf("%s: unknown attribute %q at %s",
				context, name, attribute.SrcRange.String()))
		}
	}

	for _, attribute := range bodySchema.Attributes {
		if attribute.Required {
			if _, ok := body.Attributes[attribute.Name]; !ok {
				errors = append(errors, fmt.Errorf("%s: missing required attribute %q", context, attribute.Name))
			}
		}
	}

	knownBlocks := lo.Map(bodySchema.Blocks, func(nested NestedBlockSchema, index int) string {
		return nested.Name
	})

	for _, nested := range body.Blocks {
		if !lo.Contains(knownBlocks, nested.Type) {
			errors = append(errors, fmt.Errorf("%s: unknown block %q at %s",
				context, nested.Type, nested.DefRange().String()))
		}
	}

	for _, nestedSchema := range bodySchema.Blocks {
		matched := lo.Filter(body.Blocks, func(nested *hclsyntax.Block, index int) bool {
			return nested.Type == nestedSchema.Name
		})

		if len(matched) < nestedSchema.MinItems {
			errors = append(errors, fmt.Errorf("%s: at least %d %q block(s) required, found %d",
				context, nestedSchema.MinItems, nestedSchema.Name, len(matched)))
		}

		if nestedSchema.MaxItems != 0 && len(matched) > nestedSchema.MaxItems {
			errors = append(errors, fmt.Errorf("%s: at most %d %q block(s) allowed, found %d",
				context, nestedSchema.MaxItems, nestedSchema.Name, len(matched)))
		}

		for index, nested := range matched {
			nestedContext := fmt.Sprintf("%s.%s[%d]", context, nestedSchema.Name, index)
			errors = append(errors, validateBody(nestedContext, nested.Body, nestedSchema.Body)...)
		}
	}

	return errors
}
