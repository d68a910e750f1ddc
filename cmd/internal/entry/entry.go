package entry

import (
	"context"
	"errors"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/apply"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/args"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/client"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/eval"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/graph"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/loader"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/plan"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/render"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/schema"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/state"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap"
)

// Result is everything a run produces: the rendered files, the plan that was
// calculated, and whether it was pushed to an Octopus instance.
type Result struct {
	Files       map[string]string
	Fingerprint string
	Plan        *plan.Plan
	Applied     bool
}

// Entry loads the fixture, validates it, calculates the plan, optionally
// applies it, and renders the configuration files back out.
func Entry(ctx context.Context, arguments args.Arguments) (*Result, error) {
	declared, err := loader.LoadPath(arguments.FixturePath)

	if err != nil {
		return nil, err
	}

	validator := schema.Validator{Lenient: arguments.LenientSchema}

	if validationErrors := validator.Validate(declared); len(validationErrors) != 0 {
		return nil, errors.Join(validationErrors...)
	}

	supplied, err := suppliedVariables(arguments)

	if err != nil {
		return nil, err
	}

	resolved, err := graph.Resolve(declared, lo.Keys(supplied))

	if err != nil {
		return nil, err
	}

	variables, err := eval.MergeVariables(declared.Variables, supplied)

	if err != nil {
		return nil, err
	}

	current, err := state.Load(arguments.StateFile)

	if err != nil {
		return nil, err
	}

	evaluator := eval.NewEvaluator(resolved, dataClient(arguments), variables)

	// Seed the ids recorded by earlier runs so references to already
	// applied resources evaluate to stable values.
	for _, block := range declared.Resources() {
		if recorded, ok := current.Entry(block.Address()); ok {
			evaluator.SetID(block.Address(), recorded.Id)
		}
	}

	values, err := evaluator.EvaluateAll()

	if err != nil {
		return nil, err
	}

	changes, err := plan.Build(resolved.Order, values, current)

	if err != nil {
		return nil, err
	}

	zap.L().Info(changes.Summary())

	applied := false

	if arguments.Apply && changes.HasChanges() {
		if err := applyChanges(ctx, arguments, resolved, evaluator, changes, current); err != nil {
			return nil, err
		}

		applied = true
	}

	files := render.Files(declared)

	return &Result{
		Files:       files,
		Fingerprint: render.Fingerprint(declared),
		Plan:        changes,
		Applied:     applied,
	}, nil
}

func suppliedVariables(arguments args.Arguments) (map[string]cty.Value, error) {
	supplied := map[string]cty.Value{}

	for _, varFile := range arguments.VarFiles {
		fromFile, err := eval.LoadVarFile(varFile)

		if err != nil {
			return nil, err
		}

		for name, value := range fromFile {
			supplied[name] = value
		}
	}

	// -var arguments override values from var files
	fromFlags, err := eval.ParseVarFlags(arguments.Variables)

	if err != nil {
		return nil, err
	}

	for name, value := range fromFlags {
		supplied[name] = value
	}

	return supplied, nil
}

// dataClient picks between live Octopus lookups and the offline client that
// returns unknown values for every data source.
func dataClient(arguments args.Arguments) eval.DataClient {
	if !arguments.Online() {
		zap.L().Info("no Octopus credentials supplied, data source lookups will evaluate to unknown values")
		return eval.OfflineData{}
	}

	return client.DataSourceClient{
		Client: &client.OctopusApiClient{
			Url:    arguments.Url,
			ApiKey: arguments.ApiKey,
			Space:  arguments.Space,
		},
	}
}

func applyChanges(ctx context.Context, arguments args.Arguments, resolved *graph.Resolved, evaluator *eval.Evaluator, changes *plan.Plan, current *state.State) (funcErr error) {
	octopusClient := &client.OctopusApiClient{
		Url:    arguments.Url,
		ApiKey: arguments.ApiKey,
		Space:  arguments.Space,
	}

	spaceId, err := octopusClient.GetSpaceId()

	if err != nil {
		return err
	}

	services, err := apply.NewServices(arguments.Url, arguments.ApiKey, spaceId)

	if err != nil {
		return err
	}

	release, err := state.Lock(arguments.StateFile, uuid.New().String())

	if err != nil {
		return err
	}

	defer release()

	executor := apply.NewExecutor(services, arguments.Parallelism)
	applyErr := executor.Apply(ctx, resolved, evaluator, changes, current)

	// Completed operations are recorded even when the run fails part way
	// through, so the next run picks up where this one stopped.
	if err := current.Save(arguments.StateFile); err != nil {
		return errors.Join(applyErr, err)
	}

	return applyErr
}
