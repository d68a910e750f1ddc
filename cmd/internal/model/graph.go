package model

import (
	"fmt"

	"github.com/samber/lo"
)

// Graph is the immutable declared graph parsed from a fixture. Blocks and
// variables keep their declaration order, which makes renders and plans
// deterministic.
type Graph struct {
	Blocks    []*Block
	Variables []*Variable

	blockIndex map[string]*Block
	varIndex   map[string]*Variable
}

// NewGraph indexes the supplied declarations, rejecting duplicate addresses
// and duplicate variable names.
func NewGraph(blocks []*Block, variables []*Variable) (*Graph, error) {
	graph := &Graph{
		Blocks:     blocks,
		Variables:  variables,
		blockIndex: map[string]*Block{},
		varIndex:   map[string]*Variable{},
	}

	for _, block := range blocks {
		address := block.Address()
		if existing, ok := graph.blockIndex[address]; ok {
			return nil, fmt.Errorf("duplicate declaration of %s at %s (first declared at %s)",
				address, block.DefRange.String(), existing.DefRange.String())
		}
		graph.blockIndex[address] = block
	}

	for _, variable := range variables {
		if _, ok := graph.varIndex[variable.Name]; ok {
			return nil, fmt.Errorf("duplicate declaration of variable %q at %s",
				variable.Name, variable.DefRange.String())
		}
		graph.varIndex[variable.Name] = variable
	}

	return graph, nil
}

// Block looks up a declaration by address.
func (g *Graph) Block(address string) (*Block, bool) {
	block, ok := g.blockIndex[address]
	return block, ok
}

// Variable looks up a variable declaration by name.
func (g *Graph) Variable(name string) (*Variable, bool) {
	variable, ok := g.varIndex[name]
	return variable, ok
}

// DataSources returns the data blocks in declaration order.
func (g *Graph) DataSources() []*Block {
	return lo.Filter(g.Blocks, func(block *Block, index int) bool {
		return block.Kind == KindData
	})
}

// Resources returns the resource blocks in declaration order.
func (g *Graph) Resources() []*Block {
	return lo.Filter(g.Blocks, func(block *Block, index int) bool {
		return block.Kind == KindResource
	})
}
