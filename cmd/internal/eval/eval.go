package eval

import (
	"fmt"
	"sort"
	"sync"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/graph"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// collectionAttributes maps a data source type to the computed attribute
// holding its result collection, e.g. data.octopusdeploy_feeds.x.feeds.
var collectionAttributes = map[string]string{
	"octopusdeploy_feeds":          "feeds",
	"octopusdeploy_lifecycles":     "lifecycles",
	"octopusdeploy_project_groups": "project_groups",
	"octopusdeploy_environments":   "environments",
}

// evalFunctions is the small expression function set fixtures are allowed to
// call.
var evalFunctions = map[string]function.Function{
	"length":   stdlib.LengthFunc,
	"element":  stdlib.ElementFunc,
	"coalesce": stdlib.CoalesceFunc,
	"concat":   stdlib.ConcatFunc,
	"join":     stdlib.JoinFunc,
	"format":   stdlib.FormatFunc,
	"lower":    stdlib.LowerFunc,
	"upper":    stdlib.UpperFunc,
}

// Evaluator walks the resolved graph in dependency order and produces a cty
// object value per block. Resource ids recorded from state or a previous
// apply step flow back in through SetID, so expressions like
// octopusdeploy_project.x.id resolve to real ids during an apply and to
// unknown values during a plan.
type Evaluator struct {
	resolved  *graph.Resolved
	data      DataClient
	variables map[string]cty.Value

	mu     sync.Mutex
	ids    map[string]string
	values map[string]cty.Value
}

func NewEvaluator(resolved *graph.Resolved, data DataClient, variables map[string]cty.Value) *Evaluator {
	return &Evaluator{
		resolved:  resolved,
		data:      data,
		variables: variables,
		ids:       map[string]string{},
		values:    map[string]cty.Value{},
	}
}

// SetID records the remote id of a resource so later evaluations of blocks
// referencing it see the real value.
func (e *Evaluator) SetID(address string, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ids[address] = id

	// drop cached values that may have captured the id while it was unknown
	delete(e.values, address)
	for _, dependent := range e.resolved.Dependents(address) {
		delete(e.values, dependent)
	}
}

// EvaluateAll evaluates every block in dependency order and returns the
// values keyed by address.
func (e *Evaluator) EvaluateAll() (map[string]cty.Value, error) {
	for _, block := range e.resolved.Order {
		if _, err := e.Evaluate(block); err != nil {
			return nil, err
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	values := map[string]cty.Value{}
	for address, value := range e.values {
		values[address] = value
	}

	return values, nil
}

// Evaluate produces the value of a single block, evaluating attributes
// against the values of already evaluated blocks. Results are cached until
// an id update invalidates them, and invalidated dependencies are recomputed
// before the block's own expressions are evaluated.
func (e *Evaluator) Evaluate(block *model.Block) (cty.Value, error) {
	address := block.Address()

	e.mu.Lock()
	if value, ok := e.values[address]; ok {
		e.mu.Unlock()
		return value, nil
	}
	e.mu.Unlock()

	if err := e.ensureDependencies(address); err != nil {
		return cty.NilVal, err
	}

	context := e.Context()

	attributes, err := evaluateBody(address, block.Body, context)

	if err != nil {
		return cty.NilVal, err
	}

	if block.Kind == model.KindData {
		collection, err := e.readDataSource(block, attributes)

		if err != nil {
			return cty.NilVal, err
		}

		attributes[collectionAttribute(block.Type)] = collection
		attributes["id"] = cty.StringVal(address)
	} else {
		e.mu.Lock()
		if id, ok := e.ids[address]; ok {
			attributes["id"] = cty.StringVal(id)
		} else {
			// not created yet, the id is only known after apply
			attributes["id"] = cty.UnknownVal(cty.String)
		}
		e.mu.Unlock()
	}

	value := cty.ObjectVal(attributes)

	e.mu.Lock()
	e.values[address] = value
	e.mu.Unlock()

	return value, nil
}

// ensureDependencies evaluates any dependency whose cached value was dropped
// by a SetID call. The resolver rejected cycles, so the recursion through
// Evaluate terminates.
func (e *Evaluator) ensureDependencies(address string) error {
	for _, dependency := range e.resolved.Dependencies(address) {
		e.mu.Lock()
		_, cached := e.values[dependency]
		e.mu.Unlock()

		if cached {
			continue
		}

		block, ok := e.resolved.Graph.Block(dependency)

		if !ok {
			continue
		}

		if _, err := e.Evaluate(block); err != nil {
			return err
		}
	}

	return nil
}

// Decode populates a typed struct from the block body using the current
// evaluation scope. Used by the apply layer to turn blocks into API payloads.
func (e *Evaluator) Decode(block *model.Block, target any) error {
	if err := e.ensureDependencies(block.Address()); err != nil {
		return err
	}

	diags := gohcl.DecodeBody(block.Body, e.Context(), target)

	if diags.HasErrors() {
		return fmt.Errorf("failed to decode %s: %w", block.Address(), diags)
	}

	return nil
}

// Context builds the expression scope from the variables and every block
// value evaluated so far.
func (e *Evaluator) Context() *hcl.EvalContext {
	e.mu.Lock()
	defer e.mu.Unlock()

	scope := map[string]cty.Value{}

	if len(e.variables) != 0 {
		scope["var"] = cty.ObjectVal(e.variables)
	}

	dataTypes := map[string]map[string]cty.Value{}
	resourceTypes := map[string]map[string]cty.Value{}

	for address, value := range e.values {
		block, ok := e.resolved.Graph.Block(address)
		if !ok {
			continue
		}

		if block.Kind == model.KindData {
			if dataTypes[block.Type] == nil {
				dataTypes[block.Type] = map[string]cty.Value{}
			}
			dataTypes[block.Type][block.Name] = value
		} else {
			if resourceTypes[block.Type] == nil {
				resourceTypes[block.Type] = map[string]cty.Value{}
			}
			resourceTypes[block.Type][block.Name] = value
		}
	}

	if len(dataTypes) != 0 {
		byType := map[string]cty.Value{}
		for dataType, names := range dataTypes {
			byType[dataType] = cty.ObjectVal(names)
		}
		scope["data"] = cty.ObjectVal(byType)
	}

	for resourceType, names := range resourceTypes {
		scope[resourceType] = cty.ObjectVal(names)
	}

	return &hcl.EvalContext{
		Variables: scope,
		Functions: evalFunctions,
	}
}

func (e *Evaluator) readDataSource(block *model.Block, attributes map[string]cty.Value) (cty.Value, error) {
	filter := DataFilter{
		PartialName: stringAttribute(attributes, "partial_name"),
		Name:        stringAttribute(attributes, "name"),
		FeedType:    stringAttribute(attributes, "feed_type"),
		Skip:        intAttribute(attributes, "skip"),
		Take:        intAttribute(attributes, "take"),
	}

	if ids, ok := attributes["ids"]; ok && ids.IsKnown() && !ids.IsNull() {
		for _, id := range ids.AsValueSlice() {
			if id.Type() == cty.String && id.IsKnown() {
				filter.IDs = append(filter.IDs, id.AsString())
			}
		}
	}

	collection, err := e.data.Query(block.Type, filter)

	if err != nil {
		return cty.NilVal, fmt.Errorf("failed to read %s: %w", block.Address(), err)
	}

	return collection, nil
}

// evaluateBody turns a body into a flat attribute map. Nested blocks become
// lists of objects under their block type, preserving declaration order so
// repeated blocks stay ordered.
func evaluateBody(context string, body *hclsyntax.Body, evalContext *hcl.EvalContext) (map[string]cty.Value, error) {
	attributes := map[string]cty.Value{}

	names := []string{}
	for name := range body.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value, diags := body.Attributes[name].Expr.Value(evalContext)

		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to evaluate %s.%s: %w", context, name, diags)
		}

		attributes[name] = value
	}

	grouped := map[string][]cty.Value{}
	blockOrder := []string{}

	for _, nested := range body.Blocks {
		nestedAttributes, err := evaluateBody(context+"."+nested.Type, nested.Body, evalContext)

		if err != nil {
			return nil, err
		}

		if _, ok := grouped[nested.Type]; !ok {
			blockOrder = append(blockOrder, nested.Type)
		}

		grouped[nested.Type] = append(grouped[nested.Type], cty.ObjectVal(nestedAttributes))
	}

	for _, blockType := range blockOrder {
		attributes[blockType] = cty.TupleVal(grouped[blockType])
	}

	return attributes, nil
}

func collectionAttribute(dataType string) string {
	if attribute, ok := collectionAttributes[dataType]; ok {
		return attribute
	}

	return "items"
}

func stringAttribute(attributes map[string]cty.Value, name string) string {
	value, ok := attributes[name]
	if !ok || !value.IsKnown() || value.IsNull() || value.Type() != cty.String {
		return ""
	}

	return value.AsString()
}

func intAttribute(attributes map[string]cty.Value, name string) int {
	value, ok := attributes[name]
	if !ok || !value.IsKnown() || value.IsNull() || value.Type() != cty.Number {
		return 0
	}

	result, _ := value.AsBigFloat().Int64()
	return int(result)
}
