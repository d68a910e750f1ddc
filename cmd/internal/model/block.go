package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// BlockKind distinguishes read-only lookups from managed resources.
type BlockKind string

const (
	KindData     BlockKind = "data"
	KindResource BlockKind = "resource"
)

// Block is a single data or resource declaration lifted out of a fixture file.
// The syntax body is retained untouched so attribute expressions can be
// re-rendered with their original tokens and evaluated lazily.
type Block struct {
	Kind BlockKind
	// Type is the provider resource type, e.g. octopusdeploy_project
	Type string
	// Name is the local name used to reference this block from other blocks
	Name string
	// Body is the raw parsed body of the block
	Body *hclsyntax.Body
	// DefRange is where the block was declared
	DefRange hcl.Range
	// File is the base name of the file the block was declared in
	File string
	// Source holds the bytes of the file the block was parsed from, allowing
	// expression tokens to be sliced back out by range
	Source []byte
}

// Address returns the unique address of the block within the graph, e.g.
// "octopusdeploy_project.deploy_frontend_project" or
// "data.octopusdeploy_feeds.feeds".
func (b *Block) Address() string {
	if b.Kind == KindData {
		return "data." + b.Type + "." + b.Name
	}

	return b.Type + "." + b.Name
}
