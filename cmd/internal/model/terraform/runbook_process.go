package terraform

// RunbookProcess is the typed decode target for an
// octopusdeploy_runbook_process resource body. The repeated step blocks keep
// their declaration order, which is the execution order of the runbook.
type RunbookProcess struct {
	RunbookId string `hcl:"runbook_id"`
	Step      []Step `hcl:"step,block"`
}

type Step struct {
	Name                string             `hcl:"name"`
	Condition           *string            `hcl:"condition"`
	ConditionExpression *string            `hcl:"condition_expression"`
	PackageRequirement  *string            `hcl:"package_requirement"`
	StartTrigger        *string            `hcl:"start_trigger"`
	Properties          *map[string]string `hcl:"properties"`
	TargetRoles         *[]string          `hcl:"target_roles"`
	Action              []Action           `hcl:"action,block"`
}

type Action struct {
	ActionType                    string             `hcl:"action_type"`
	Name                          string             `hcl:"name"`
	Notes                         *string            `hcl:"notes"`
	Condition                     *string            `hcl:"condition"`
	RunOnServer                   *bool              `hcl:"run_on_server"`
	IsDisabled                    *bool              `hcl:"is_disabled"`
	IsRequired                    *bool              `hcl:"is_required"`
	CanBeUsedForProjectVersioning *bool              `hcl:"can_be_used_for_project_versioning"`
	WorkerPoolId                  *string            `hcl:"worker_pool_id"`
	WorkerPoolVariable            *string            `hcl:"worker_pool_variable"`
	Properties                    *map[string]string `hcl:"properties"`
	Environments                  *[]string          `hcl:"environments"`
	ExcludedEnvironments          *[]string          `hcl:"excluded_environments"`
	Channels                      *[]string          `hcl:"channels"`
	TenantTags                    *[]string          `hcl:"tenant_tags"`
	Features                      *[]string          `hcl:"features"`
	SortOrder                     *int               `hcl:"sort_order"`
	Package                       []Package          `hcl:"package,block"`
	PrimaryPackage                *Package           `hcl:"primary_package,block"`
	Container                     *Container         `hcl:"container,block"`
}

type Package struct {
	Name                    *string            `hcl:"name"`
	PackageId               string             `hcl:"package_id"`
	FeedId                  *string            `hcl:"feed_id"`
	AcquisitionLocation     *string            `hcl:"acquisition_location"`
	ExtractDuringDeployment *bool              `hcl:"extract_during_deployment"`
	Properties              *map[string]string `hcl:"properties"`
}

type Container struct {
	FeedId *string `hcl:"feed_id"`
	Image  *string `hcl:"image"`
}
