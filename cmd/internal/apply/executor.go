package apply

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/collections"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/eval"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/graph"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/plan"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/state"
	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Executor pushes a plan to an Octopus instance, walking the dependency
// layers of the graph so a block is only applied once everything it
// references has an id.
type Executor struct {
	Appliers    map[string]ResourceApplier
	Parallelism int

	stateMu sync.Mutex
}

// NewExecutor wires the per-type appliers to the SDK services.
func NewExecutor(services *Services, parallelism int) *Executor {
	if parallelism <= 0 {
		parallelism = 1
	}

	return &Executor{
		Parallelism: parallelism,
		Appliers: map[string]ResourceApplier{
			"octopusdeploy_project":         projectApplier{service: services.Projects},
			"octopusdeploy_runbook":         runbookApplier{service: services.Runbooks},
			"octopusdeploy_runbook_process": runbookProcessApplier{runbooks: services.Runbooks, processes: services.RunbookProcesses},
			"octopusdeploy_project_group":   projectGroupApplier{service: services.ProjectGroups},
			"octopusdeploy_environment":     environmentApplier{service: services.Environments},
		},
	}
}

// Apply executes the plan. Deletes of orphaned resources run first, in the
// order the plan scheduled them with dependents ahead of their dependencies,
// then creates and updates run layer by layer with bounded parallelism inside
// each layer. Every completed
// operation is recorded in the state immediately, so a partial run can be
// resumed.
func (e *Executor) Apply(ctx context.Context, resolved *graph.Resolved, evaluator *eval.Evaluator, changes *plan.Plan, current *state.State) error {
	runId := uuid.New().String()
	zap.L().Info("starting apply",
		zap.String("runId", runId),
		zap.Int("parallelism", e.Parallelism))

	actions := lo.SliceToMap(changes.Actions, func(action plan.Action) (string, plan.Action) {
		return action.Address, action
	})

	if err := e.deleteOrphans(ctx, changes, current, runId); err != nil {
		return err
	}

	for _, layer := range resolved.Layers() {
		failures := collections.SafeErrorSlice{}
		group, groupCtx := errgroup.WithContext(ctx)
		group.SetLimit(e.Parallelism)

		for _, block := range layer {
			if block.Kind != model.KindResource {
				continue
			}

			action, ok := actions[block.Address()]

			if !ok || action.Type == plan.ActionNoop {
				continue
			}

			block := block
			group.Go(func() error {
				if err := e.applyBlock(groupCtx, block, action, resolved, evaluator, current, runId); err != nil {
					failures.Append(err)
				}
				return nil
			})
		}

		if err := group.Wait(); err != nil {
			return err
		}

		// A failure anywhere in a layer poisons every later layer, so
		// stop once the in-flight work has drained.
		if errs := failures.GetCopy(); len(errs) != 0 {
			return errors.Join(errs...)
		}
	}

	zap.L().Info("apply complete", zap.String("runId", runId))

	return nil
}

func (e *Executor) applyBlock(ctx context.Context, block *model.Block, action plan.Action, resolved *graph.Resolved, evaluator *eval.Evaluator, current *state.State, runId string) error {
	applier, ok := e.Appliers[block.Type]

	if !ok {
		return errors.New("no applier registered for resource type " + block.Type)
	}

	address := block.Address()

	var id string
	var err error

	switch action.Type {
	case plan.ActionCreate:
		id, err = retry.DoWithData(func() (string, error) {
			return applier.Create(block, evaluator)
		}, retry.Context(ctx), retry.Attempts(3), retry.Delay(time.Second))
	case plan.ActionUpdate:
		id = action.Id
		err = retry.Do(func() error {
			return applier.Update(action.Id, block, evaluator)
		}, retry.Context(ctx), retry.Attempts(3), retry.Delay(time.Second))
	default:
		return nil
	}

	if err != nil {
		zap.L().Error("apply failed",
			zap.String("runId", runId),
			zap.String("address", address),
			zap.Error(err))
		return errors.New(address + ": " + err.Error())
	}

	// Expose the real id to dependent blocks, then rehash the now fully
	// known configuration for the state entry.
	evaluator.SetID(address, id)

	value, err := evaluator.Evaluate(block)

	if err != nil {
		return errors.New(address + ": " + err.Error())
	}

	hash, err := plan.ConfigHash(value)

	if err != nil {
		return errors.New(address + ": " + err.Error())
	}

	e.stateMu.Lock()
	current.Record(address, id, hash, resolved.Dependencies(address))
	e.stateMu.Unlock()

	zap.L().Info("applied",
		zap.String("runId", runId),
		zap.String("address", address),
		zap.String("action", string(action.Type)),
		zap.String("id", id))

	return nil
}

func (e *Executor) deleteOrphans(ctx context.Context, changes *plan.Plan, current *state.State, runId string) error {
	deletes := lo.Filter(changes.Actions, func(action plan.Action, _ int) bool {
		return action.Type == plan.ActionDelete
	})

	for _, action := range deletes {
		resourceType, _, found := strings.Cut(action.Address, ".")

		if !found {
			return errors.New("malformed address in state: " + action.Address)
		}

		applier, ok := e.Appliers[resourceType]

		if !ok {
			return errors.New("no applier registered for resource type " + resourceType)
		}

		err := retry.Do(func() error {
			return applier.Delete(action.Id)
		}, retry.Context(ctx), retry.Attempts(3), retry.Delay(time.Second))

		if err != nil {
			zap.L().Error("delete failed",
				zap.String("runId", runId),
				zap.String("address", action.Address),
				zap.Error(err))
			return errors.New(action.Address + ": " + err.Error())
		}

		e.stateMu.Lock()
		current.Forget(action.Address)
		e.stateMu.Unlock()

		zap.L().Info("deleted",
			zap.String("runId", runId),
			zap.String("address", action.Address),
			zap.String("id", action.Id))
	}

	return nil
}
