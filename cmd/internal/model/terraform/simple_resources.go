package terraform

// ProjectGroup is the typed decode target for an octopusdeploy_project_group
// resource body.
type ProjectGroup struct {
	Name        string  `hcl:"name"`
	Description *string `hcl:"description"`
	SpaceId     *string `hcl:"space_id"`
}

// Environment is the typed decode target for an octopusdeploy_environment
// resource body.
type Environment struct {
	Name                       string  `hcl:"name"`
	Description                *string `hcl:"description"`
	SpaceId                    *string `hcl:"space_id"`
	AllowDynamicInfrastructure *bool   `hcl:"allow_dynamic_infrastructure"`
	UseGuidedFailure           *bool   `hcl:"use_guided_failure"`
	SortOrder                  *int    `hcl:"sort_order"`
}
