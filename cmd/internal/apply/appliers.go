package apply

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/core"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/deployments"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/environments"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/packages"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/projectgroups"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/projects"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/runbooks"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/boolutil"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model/terraform"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/strutil"
)

// Decoder turns a block body into a typed configuration using the current
// evaluation scope. Satisfied by eval.Evaluator.
type Decoder interface {
	Decode(block *model.Block, target any) error
}

// ResourceApplier knows how to create, update, and delete one resource type.
type ResourceApplier interface {
	Create(block *model.Block, decoder Decoder) (id string, err error)
	Update(id string, block *model.Block, decoder Decoder) error
	Delete(id string) error
}

type projectApplier struct {
	service ProjectService
}

func (a projectApplier) Create(block *model.Block, decoder Decoder) (string, error) {
	config := terraform.Project{}

	if err := decoder.Decode(block, &config); err != nil {
		return "", err
	}

	project := projects.NewProject(config.Name, config.LifecycleId, config.ProjectGroupId)
	populateProject(project, config)

	created, err := a.service.Add(project)

	if err != nil {
		return "", err
	}

	return created.GetID(), nil
}

func (a projectApplier) Update(id string, block *model.Block, decoder Decoder) error {
	config := terraform.Project{}

	if err := decoder.Decode(block, &config); err != nil {
		return err
	}

	existing, err := a.service.GetByID(id)

	if err != nil {
		return err
	}

	existing.Name = config.Name
	existing.LifecycleID = config.LifecycleId
	existing.ProjectGroupID = config.ProjectGroupId
	populateProject(existing, config)

	_, err = a.service.Update(existing)
	return err
}

func (a projectApplier) Delete(id string) error {
	return a.service.DeleteByID(id)
}

func populateProject(project *projects.Project, config terraform.Project) {
	project.Description = strutil.EmptyIfNil(config.Description)
	project.IsDisabled = boolutil.FalseIfNil(config.IsDisabled)
	project.IsVersionControlled = boolutil.FalseIfNil(config.IsVersionControlled)
	project.AutoCreateRelease = boolutil.FalseIfNil(config.AutoCreateRelease)
	project.IsDiscreteChannelRelease = boolutil.FalseIfNil(config.DiscreteChannelRelease)

	if config.DefaultGuidedFailureMode != nil {
		project.DefaultGuidedFailureMode = *config.DefaultGuidedFailureMode
	}

	if config.IncludedLibraryVariableSets != nil {
		project.IncludedLibraryVariableSets = *config.IncludedLibraryVariableSets
	}

	if config.TenantedDeploymentParticipation != nil {
		project.TenantedDeploymentMode = core.TenantedDeploymentMode(*config.TenantedDeploymentParticipation)
	}
}

type runbookApplier struct {
	service RunbookService
}

func (a runbookApplier) Create(block *model.Block, decoder Decoder) (string, error) {
	config := terraform.Runbook{}

	if err := decoder.Decode(block, &config); err != nil {
		return "", err
	}

	runbook := runbooks.NewRunbook(config.Name, config.ProjectId)
	populateRunbook(runbook, config)

	created, err := a.service.Add(runbook)

	if err != nil {
		return "", err
	}

	return created.GetID(), nil
}

func (a runbookApplier) Update(id string, block *model.Block, decoder Decoder) error {
	config := terraform.Runbook{}

	if err := decoder.Decode(block, &config); err != nil {
		return err
	}

	existing, err := a.service.GetByID(id)

	if err != nil {
		return err
	}

	existing.Name = config.Name
	existing.ProjectID = config.ProjectId
	populateRunbook(existing, config)

	_, err = a.service.Update(existing)
	return err
}

func (a runbookApplier) Delete(id string) error {
	return a.service.DeleteByID(id)
}

func populateRunbook(runbook *runbooks.Runbook, config terraform.Runbook) {
	runbook.Description = strutil.EmptyIfNil(config.Description)
	runbook.ForcePackageDownload = boolutil.FalseIfNil(config.ForcePackageDownload)

	if config.EnvironmentScope != nil {
		runbook.EnvironmentScope = *config.EnvironmentScope
	}

	if config.Environments != nil {
		runbook.Environments = *config.Environments
	}

	if config.DefaultGuidedFailureMode != nil {
		runbook.DefaultGuidedFailureMode = *config.DefaultGuidedFailureMode
	}

	if config.MultiTenancyMode != nil {
		runbook.MultiTenancyMode = core.TenantedDeploymentMode(*config.MultiTenancyMode)
	}

	if config.RetentionPolicy != nil {
		runbook.RunRetentionPolicy = &runbooks.RunbookRetentionPeriod{
			QuantityToKeep:    int32(config.RetentionPolicy.QuantityToKeep),
			ShouldKeepForever: boolutil.FalseIfNil(config.RetentionPolicy.ShouldKeepForever),
		}
	}
}

type runbookProcessApplier struct {
	runbooks  RunbookService
	processes RunbookProcessService
}

// Create attaches steps to the process that was created implicitly with the
// runbook, so "creating" a process is really its first update.
func (a runbookProcessApplier) Create(block *model.Block, decoder Decoder) (string, error) {
	config := terraform.RunbookProcess{}

	if err := decoder.Decode(block, &config); err != nil {
		return "", err
	}

	runbook, err := a.runbooks.GetByID(config.RunbookId)

	if err != nil {
		return "", err
	}

	if runbook.RunbookProcessID == "" {
		return "", errors.New("runbook " + config.RunbookId + " has no process")
	}

	if err := a.updateProcess(runbook.RunbookProcessID, config); err != nil {
		return "", err
	}

	return runbook.RunbookProcessID, nil
}

func (a runbookProcessApplier) Update(id string, block *model.Block, decoder Decoder) error {
	config := terraform.RunbookProcess{}

	if err := decoder.Decode(block, &config); err != nil {
		return err
	}

	return a.updateProcess(id, config)
}

// Delete clears the steps rather than deleting the process, because the
// process itself lives and dies with its runbook.
func (a runbookProcessApplier) Delete(id string) error {
	process, err := a.processes.GetByID(id)

	if err != nil {
		return err
	}

	process.Steps = nil

	_, err = a.processes.Update(process)
	return err
}

func (a runbookProcessApplier) updateProcess(id string, config terraform.RunbookProcess) error {
	process, err := a.processes.GetByID(id)

	if err != nil {
		return err
	}

	process.Steps = buildSteps(config.Step)

	_, err = a.processes.Update(process)
	return err
}

func buildSteps(configSteps []terraform.Step) []*deployments.DeploymentStep {
	steps := []*deployments.DeploymentStep{}

	for _, configStep := range configSteps {
		step := deployments.NewDeploymentStep(configStep.Name)

		if configStep.Condition != nil {
			step.Condition = deployments.DeploymentStepConditionType(*configStep.Condition)
		}

		if configStep.PackageRequirement != nil {
			step.PackageRequirement = deployments.DeploymentStepPackageRequirement(*configStep.PackageRequirement)
		}

		if configStep.StartTrigger != nil {
			step.StartTrigger = deployments.DeploymentStepStartTrigger(*configStep.StartTrigger)
		}

		if configStep.Properties != nil {
			for key, value := range *configStep.Properties {
				step.Properties[key] = core.NewPropertyValue(value, false)
			}
		}

		if configStep.TargetRoles != nil {
			step.Properties["Octopus.Action.TargetRoles"] = core.NewPropertyValue(strings.Join(*configStep.TargetRoles, ","), false)
		}

		for _, configAction := range configStep.Action {
			step.Actions = append(step.Actions, buildAction(configAction))
		}

		steps = append(steps, step)
	}

	return steps
}

func buildAction(config terraform.Action) *deployments.DeploymentAction {
	action := deployments.NewDeploymentAction(config.Name, config.ActionType)

	action.Notes = strutil.EmptyIfNil(config.Notes)
	action.Condition = strutil.EmptyIfNil(config.Condition)
	action.IsDisabled = boolutil.FalseIfNil(config.IsDisabled)
	action.IsRequired = boolutil.FalseIfNil(config.IsRequired)
	action.CanBeUsedForProjectVersioning = boolutil.FalseIfNil(config.CanBeUsedForProjectVersioning)
	action.WorkerPool = strutil.EmptyIfNil(config.WorkerPoolId)
	action.WorkerPoolVariable = strutil.EmptyIfNil(config.WorkerPoolVariable)

	if config.RunOnServer != nil {
		action.Properties["Octopus.Action.RunOnServer"] = core.NewPropertyValue(strconv.FormatBool(*config.RunOnServer), false)
	}

	if config.Properties != nil {
		for key, value := range *config.Properties {
			action.Properties[key] = core.NewPropertyValue(value, false)
		}
	}

	if config.Environments != nil {
		action.Environments = *config.Environments
	}

	if config.ExcludedEnvironments != nil {
		action.ExcludedEnvironments = *config.ExcludedEnvironments
	}

	if config.Channels != nil {
		action.Channels = *config.Channels
	}

	if config.TenantTags != nil {
		action.TenantTags = *config.TenantTags
	}

	if config.Features != nil {
		action.Properties["Octopus.Action.EnabledFeatures"] = core.NewPropertyValue(strings.Join(*config.Features, ","), false)
	}

	if config.Container != nil {
		action.Container = deployments.NewDeploymentActionContainer(config.Container.FeedId, config.Container.Image)
	}

	if config.PrimaryPackage != nil {
		primary := buildPackage(*config.PrimaryPackage)
		primary.Name = ""
		action.Packages = append(action.Packages, primary)
	}

	for _, configPackage := range config.Package {
		action.Packages = append(action.Packages, buildPackage(configPackage))
	}

	return action
}

func buildPackage(config terraform.Package) *packages.PackageReference {
	reference := &packages.PackageReference{
		Name:                strutil.EmptyIfNil(config.Name),
		PackageID:           config.PackageId,
		FeedID:              strutil.EmptyIfNil(config.FeedId),
		AcquisitionLocation: strutil.DefaultIfEmptyOrNil(config.AcquisitionLocation, "Server"),
	}

	if config.Properties != nil {
		reference.Properties = *config.Properties
	}

	return reference
}

type projectGroupApplier struct {
	service ProjectGroupService
}

func (a projectGroupApplier) Create(block *model.Block, decoder Decoder) (string, error) {
	config := terraform.ProjectGroup{}

	if err := decoder.Decode(block, &config); err != nil {
		return "", err
	}

	group := projectgroups.NewProjectGroup(config.Name)
	group.Description = strutil.EmptyIfNil(config.Description)

	created, err := a.service.Add(group)

	if err != nil {
		return "", err
	}

	return created.GetID(), nil
}

func (a projectGroupApplier) Update(id string, block *model.Block, decoder Decoder) error {
	config := terraform.ProjectGroup{}

	if err := decoder.Decode(block, &config); err != nil {
		return err
	}

	group := projectgroups.NewProjectGroup(config.Name)
	group.ID = id
	group.Description = strutil.EmptyIfNil(config.Description)

	_, err := a.service.Update(*group)
	return err
}

func (a projectGroupApplier) Delete(id string) error {
	return a.service.DeleteByID(id)
}

type environmentApplier struct {
	service EnvironmentService
}

func (a environmentApplier) Create(block *model.Block, decoder Decoder) (string, error) {
	config := terraform.Environment{}

	if err := decoder.Decode(block, &config); err != nil {
		return "", err
	}

	environment := environments.NewEnvironment(config.Name)
	populateEnvironment(environment, config)

	created, err := a.service.Add(environment)

	if err != nil {
		return "", err
	}

	return created.GetID(), nil
}

func (a environmentApplier) Update(id string, block *model.Block, decoder Decoder) error {
	config := terraform.Environment{}

	if err := decoder.Decode(block, &config); err != nil {
		return err
	}

	environment := environments.NewEnvironment(config.Name)
	environment.ID = id
	populateEnvironment(environment, config)

	_, err := a.service.Update(environment)
	return err
}

func (a environmentApplier) Delete(id string) error {
	return a.service.DeleteByID(id)
}

func populateEnvironment(environment *environments.Environment, config terraform.Environment) {
	environment.Description = strutil.EmptyIfNil(config.Description)
	environment.AllowDynamicInfrastructure = boolutil.FalseIfNil(config.AllowDynamicInfrastructure)
	environment.UseGuidedFailure = boolutil.FalseIfNil(config.UseGuidedFailure)

	if config.SortOrder != nil {
		environment.SortOrder = *config.SortOrder
	}
}
