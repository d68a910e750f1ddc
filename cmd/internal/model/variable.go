package model

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Variable is an externally supplied named value declared with a
// variable "<name>" block. The default is cty.NilVal when the block did not
// declare one, in which case a value must be supplied on the command line.
// Type, Sensitive and Nullable hold the source expression bytes of those
// attributes so a re-rendered declaration keeps them.
type Variable struct {
	Name        string
	Description string
	Default     cty.Value
	Type        []byte
	Sensitive   []byte
	Nullable    []byte
	DefRange    hcl.Range
}

// HasDefault reports whether the variable declared a default value.
func (v *Variable) HasDefault() bool {
	return v.Default != cty.NilVal
}
