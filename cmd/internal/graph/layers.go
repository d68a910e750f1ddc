package graph

import "github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"

// Layers groups the evaluation order into waves where every block in a wave
// only depends on blocks in earlier waves. Blocks within a wave can be applied
// in parallel.
func (r *Resolved) Layers() [][]*model.Block {
	depth := map[string]int{}
	maxDepth := 0

	for _, block := range r.Order {
		address := block.Address()
		level := 0

		for _, dependency := range r.dependencies[address] {
			if depth[dependency]+1 > level {
				level = depth[dependency] + 1
			}
		}

		depth[address] = level
		if level > maxDepth {
			maxDepth = level
		}
	}

	layers := make([][]*model.Block, maxDepth+1)
	for _, block := range r.Order {
		level := depth[block.Address()]
		layers[level] = append(layers[level], block)
	}

	return layers
}
