package hcl

import (
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// RawTokens wraps raw expression source so hclwrite emits it verbatim. This
// keeps reference expressions like octopusdeploy_project.x.id unquoted when a
// parsed fixture is re-rendered.
func RawTokens(raw []byte) hclwrite.Tokens {
	return hclwrite.Tokens{
		{
			Type:  hclsyntax.TokenIdent,
			Bytes: raw,
		},
	}
}
