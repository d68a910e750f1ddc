package terraform

// Runbook is the typed decode target for an octopusdeploy_runbook resource
// body.
type Runbook struct {
	Name                     string              `hcl:"name"`
	ProjectId                string              `hcl:"project_id"`
	Description              *string             `hcl:"description"`
	EnvironmentScope         *string             `hcl:"environment_scope"`
	Environments             *[]string           `hcl:"environments"`
	ForcePackageDownload     *bool               `hcl:"force_package_download"`
	DefaultGuidedFailureMode *string             `hcl:"default_guided_failure_mode"`
	MultiTenancyMode         *string             `hcl:"multi_tenancy_mode"`
	RetentionPolicy          *RetentionPolicy    `hcl:"retention_policy,block"`
	ConnectivityPolicy       *ConnectivityPolicy `hcl:"connectivity_policy,block"`
}

type RetentionPolicy struct {
	QuantityToKeep    int   `hcl:"quantity_to_keep"`
	ShouldKeepForever *bool `hcl:"should_keep_forever"`
}
