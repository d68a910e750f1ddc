package terraform

// Project is the typed decode target for an octopusdeploy_project resource
// body. Evaluated against the graph scope, reference expressions like
// lifecycle_id resolve to the ids of the blocks they point at.
type Project struct {
	Name                            string              `hcl:"name"`
	LifecycleId                     string              `hcl:"lifecycle_id"`
	ProjectGroupId                  string              `hcl:"project_group_id"`
	Description                     *string             `hcl:"description"`
	SpaceId                         *string             `hcl:"space_id"`
	AutoCreateRelease               *bool               `hcl:"auto_create_release"`
	DefaultGuidedFailureMode        *string             `hcl:"default_guided_failure_mode"`
	DefaultToSkipIfAlreadyInstalled *bool               `hcl:"default_to_skip_if_already_installed"`
	DiscreteChannelRelease          *bool               `hcl:"discrete_channel_release"`
	IsDisabled                      *bool               `hcl:"is_disabled"`
	IsVersionControlled             *bool               `hcl:"is_version_controlled"`
	IncludedLibraryVariableSets     *[]string           `hcl:"included_library_variable_sets"`
	TenantedDeploymentParticipation *string             `hcl:"tenanted_deployment_participation"`
	ConnectivityPolicy              *ConnectivityPolicy `hcl:"connectivity_policy,block"`
}

type ConnectivityPolicy struct {
	AllowDeploymentsToNoTargets *bool     `hcl:"allow_deployments_to_no_targets"`
	ExcludeUnhealthyTargets     *bool     `hcl:"exclude_unhealthy_targets"`
	SkipMachineBehavior         *string   `hcl:"skip_machine_behavior"`
	TargetRoles                 *[]string `hcl:"target_roles"`
}
