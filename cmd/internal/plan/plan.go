package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/hash"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/state"
	"github.com/samber/lo"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ActionType is what the apply step will do to a resource.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionNoop   ActionType = "noop"
	ActionDelete ActionType = "delete"
)

// Action pairs a resource address with the change the apply step will make.
type Action struct {
	Address string
	Type    ActionType
	// Hash fingerprints the desired configuration. Empty for deletes.
	Hash string
	// Id is the recorded remote id. Empty for creates.
	Id string
}

// Plan is the ordered set of changes needed to move the recorded state to
// the declared state. Creates and updates come first in dependency order,
// deletes last with dependents deleted before their dependencies.
type Plan struct {
	Actions []Action
}

// Build diffs the evaluated declared state against the recorded state.
// Data sources are read only and never planned.
func Build(order []*model.Block, values map[string]cty.Value, recorded *state.State) (*Plan, error) {
	result := &Plan{}
	declared := map[string]bool{}

	for _, block := range order {
		if block.Kind == model.KindData {
			continue
		}

		address := block.Address()
		declared[address] = true

		value, ok := values[address]

		if !ok {
			return nil, fmt.Errorf("no evaluated value for %s", address)
		}

		configHash, err := ConfigHash(value)

		if err != nil {
			return nil, fmt.Errorf("failed to hash the configuration of %s: %w", address, err)
		}

		entry, exists := recorded.Entry(address)

		action := Action{Address: address, Hash: configHash}

		if !exists {
			action.Type = ActionCreate
		} else if entry.Hash != configHash {
			action.Type = ActionUpdate
			action.Id = entry.Id
		} else {
			action.Type = ActionNoop
			action.Id = entry.Id
		}

		result.Actions = append(result.Actions, action)
	}

	// anything recorded but no longer declared gets deleted, children first
	orphans := []string{}
	for address := range recorded.Resources {
		if !declared[address] {
			orphans = append(orphans, address)
		}
	}

	for _, address := range orderOrphans(orphans, recorded) {
		entry, _ := recorded.Entry(address)
		result.Actions = append(result.Actions, Action{
			Address: address,
			Type:    ActionDelete,
			Id:      entry.Id,
		})
	}

	return result, nil
}

// orderOrphans schedules orphan deletes so a resource is deleted before
// anything it recorded a dependency on, e.g. an orphaned project before its
// orphaned project group. Ties break by reverse address so the order is
// stable even for states recorded without dependencies.
func orderOrphans(orphans []string, recorded *state.State) []string {
	orphaned := lo.SliceToMap(orphans, func(address string) (string, bool) {
		return address, true
	})

	// blocked counts the orphaned dependents that must be deleted first
	blocked := map[string]int{}
	for _, address := range orphans {
		entry, _ := recorded.Entry(address)
		for _, dependency := range entry.Dependencies {
			if orphaned[dependency] {
				blocked[dependency]++
			}
		}
	}

	ready := lo.Filter(orphans, func(address string, index int) bool {
		return blocked[address] == 0
	})
	sort.Sort(sort.Reverse(sort.StringSlice(ready)))

	ordered := []string{}

	for len(ready) != 0 {
		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)

		entry, _ := recorded.Entry(next)
		released := []string{}

		for _, dependency := range entry.Dependencies {
			if !orphaned[dependency] {
				continue
			}

			blocked[dependency]--
			if blocked[dependency] == 0 {
				released = append(released, dependency)
			}
		}

		ready = append(ready, released...)
		sort.Sort(sort.Reverse(sort.StringSlice(ready)))
	}

	// a dependency cycle in recorded state cannot happen through apply, but a
	// hand edited state file should still drain rather than hang
	if len(ordered) != len(orphans) {
		for _, address := range orphans {
			if !lo.Contains(ordered, address) {
				ordered = append(ordered, address)
			}
		}
	}

	return ordered
}

// HasChanges reports whether the plan contains anything other than noops.
func (p *Plan) HasChanges() bool {
	return lo.SomeBy(p.Actions, func(action Action) bool {
		return action.Type != ActionNoop
	})
}

// Changes returns the actions that modify something, preserving order.
func (p *Plan) Changes() []Action {
	return lo.Filter(p.Actions, func(action Action, index int) bool {
		return action.Type != ActionNoop
	})
}

// Summary renders a human readable account of the plan.
func (p *Plan) Summary() string {
	builder := strings.Builder{}

	counts := lo.CountValuesBy(p.Actions, func(action Action) ActionType {
		return action.Type
	})

	for _, action := range p.Actions {
		switch action.Type {
		case ActionCreate:
			builder.WriteString("  + " + action.Address + "\n")
		case ActionUpdate:
			builder.WriteString("  ~ " + action.Address + "\n")
		case ActionDelete:
			builder.WriteString("  - " + action.Address + "\n")
		case ActionNoop:
			builder.WriteString("    " + action.Address + "\n")
		}
	}

	builder.WriteString(fmt.Sprintf("Plan: %d to create, %d to update, %d to delete, %d unchanged.",
		counts[ActionCreate], counts[ActionUpdate], counts[ActionDelete], counts[ActionNoop]))

	return builder.String()
}

// ConfigHash fingerprints an evaluated block value. The resource's own id is
// excluded so the hash only changes when the configuration does. Unknown
// values (references to ids that only exist after apply) are treated as null
// so a plan against an empty state is stable.
func ConfigHash(value cty.Value) (string, error) {
	if value.Type().IsObjectType() && value.Type().HasAttribute("id") {
		attributes := value.AsValueMap()
		delete(attributes, "id")
		value = cty.ObjectVal(attributes)
	}

	known := cty.UnknownAsNull(value)

	serialized, err := ctyjson.Marshal(known, known.Type())

	if err != nil {
		return "", err
	}

	return hash.Sha256Hash(string(serialized)), nil
}
