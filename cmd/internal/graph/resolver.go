package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/samber/lo"
)

// Resolved is the declared graph with its dependency edges checked and an
// evaluation order computed.
type Resolved struct {
	Graph *model.Graph
	// References holds every cross declaration reference in the fixture
	References []Reference
	// Order is a deterministic topological ordering of the blocks
	Order []*model.Block
	// dependents maps an address to the addresses that reference it
	dependents map[string][]string
	// dependencies maps an address to the addresses it references
	dependencies map[string][]string
}

// Resolve extracts every reference in the graph, verifies that each one points
// at a declared block or variable, and computes the evaluation order.
// extraVariables names variables supplied outside the fixture (e.g. -var
// arguments) that need no variable block to be referenced.
func Resolve(declared *model.Graph, extraVariables []string) (*Resolved, error) {
	resolved := &Resolved{
		Graph:        declared,
		dependents:   map[string][]string{},
		dependencies: map[string][]string{},
	}

	for _, block := range declared.Blocks {
		address := block.Address()

		for _, reference := range BlockReferences(block) {
			resolved.References = append(resolved.References, reference)

			if reference.IsVariable() {
				name := strings.TrimPrefix(reference.Target, "var.")
				if _, ok := declared.Variable(name); !ok && !lo.Contains(extraVariables, name) {
					return nil, fmt.Errorf("%s references undeclared variable %q at %s",
						address, name, reference.SrcRange.String())
				}
				continue
			}

			target, ok := declared.Block(reference.Target)

			if !ok {
				return nil, fmt.Errorf("%s references undeclared %s at %s",
					address, reference.Target, reference.SrcRange.String())
			}

			if target.Address() == address {
				return nil, fmt.Errorf("%s references itself at %s", address, reference.SrcRange.String())
			}

			if !lo.Contains(resolved.dependencies[address], reference.Target) {
				resolved.dependencies[address] = append(resolved.dependencies[address], reference.Target)
				resolved.dependents[reference.Target] = append(resolved.dependents[reference.Target], address)
			}
		}
	}

	order, err := resolved.sort()

	if err != nil {
		return nil, err
	}

	resolved.Order = order

	return resolved, nil
}

// Dependencies returns the addresses the block at the supplied address
// references, in discovery order.
func (r *Resolved) Dependencies(address string) []string {
	return r.dependencies[address]
}

// Dependents returns every address that references the supplied address,
// directly or transitively.
func (r *Resolved) Dependents(address string) []string {
	seen := map[string]bool{}
	queue := append([]string{}, r.dependents[address]...)
	result := []string{}

	for len(queue) != 0 {
		next := queue[0]
		queue = queue[1:]

		if seen[next] {
			continue
		}
		seen[next] = true

		result = append(result, next)
		queue = append(queue, r.dependents[next]...)
	}

	sort.Strings(result)
	return result
}

// sort is Kahn's algorithm with ties broken by address so the result is
// stable across runs.
func (r *Resolved) sort() ([]*model.Block, error) {
	remaining := map[string]int{}
	for _, block := range r.Graph.Blocks {
		remaining[block.Address()] = len(r.dependencies[block.Address()])
	}

	ready := lo.FilterMap(r.Graph.Blocks, func(block *model.Block, index int) (string, bool) {
		return block.Address(), remaining[block.Address()] == 0
	})
	sort.Strings(ready)

	order := []*model.Block{}

	for len(ready) != 0 {
		next := ready[0]
		ready = ready[1:]

		block, _ := r.Graph.Block(next)
		order = append(order, block)
		delete(remaining, next)

		released := []string{}
		for _, dependent := range r.dependents[next] {
			remaining[dependent]--
			if remaining[dependent] == 0 {
				released = append(released, dependent)
			}
		}

		sort.Strings(released)
		ready = mergeSorted(ready, released)
	}

	if len(remaining) != 0 {
		cycle := lo.Keys(remaining)
		sort.Strings(cycle)
		return nil, fmt.Errorf("the reference graph contains a cycle involving %s", strings.Join(cycle, ", "))
	}

	return order, nil
}

func mergeSorted(left []string, right []string) []string {
	merged := append(append([]string{}, left...), right...)
	sort.Strings(merged)
	return merged
}
