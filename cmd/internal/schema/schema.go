package schema

// AttributeSchema describes a single attribute of a resource or data source
// body. Types are not enforced beyond what evaluation itself catches; the
// schema exists to reject unknown and missing attributes early with a useful
// error rather than failing deep inside an apply.
type AttributeSchema struct {
	Name     string
	Required bool
}

// NestedBlockSchema describes a repeatable block within a body, e.g. the
// step blocks of a runbook process.
type NestedBlockSchema struct {
	Name     string
	MinItems int
	// MaxItems of 0 means unbounded
	MaxItems int
	Body     *BodySchema
}

// BodySchema describes the attributes and nested blocks a body accepts.
type BodySchema struct {
	Attributes []AttributeSchema
	Blocks     []NestedBlockSchema
}

func attr(name string) AttributeSchema {
	return AttributeSchema{Name: name}
}

func required(name string) AttributeSchema {
	return AttributeSchema{Name: name, Required: true}
}

// lookupFilter is the shared filter surface of the octopusdeploy collection
// data sources: a name prefix plus pagination.
func lookupFilter(extra ...AttributeSchema) *BodySchema {
	attributes := []AttributeSchema{
		attr("ids"),
		attr("partial_name"),
		attr("skip"),
		attr("take"),
		attr("space_id"),
	}

	return &BodySchema{Attributes: append(attributes, extra...)}
}

var packageBody = &BodySchema{
	Attributes: []AttributeSchema{
		attr("name"),
		required("package_id"),
		attr("feed_id"),
		attr("acquisition_location"),
		attr("extract_during_deployment"),
		attr("properties"),
	},
}

var containerBody = &BodySchema{
	Attributes: []AttributeSchema{
		attr("feed_id"),
		attr("image"),
	},
}

var actionBody = &BodySchema{
	Attributes: []AttributeSchema{
		required("action_type"),
		required("name"),
		attr("notes"),
		attr("condition"),
		attr("run_on_server"),
		attr("is_disabled"),
		attr("is_required"),
		attr("can_be_used_for_project_versioning"),
		attr("worker_pool_id"),
		attr("worker_pool_variable"),
		attr("properties"),
		attr("environments"),
		attr("excluded_environments"),
		attr("channels"),
		attr("tenant_tags"),
		attr("features"),
		attr("sort_order"),
	},
	Blocks: []NestedBlockSchema{
		{Name: "package", Body: packageBody},
		{Name: "primary_package", MaxItems: 1, Body: packageBody},
		{Name: "container", MaxItems: 1, Body: containerBody},
	},
}

var stepBody = &BodySchema{
	Attributes: []AttributeSchema{
		required("name"),
		attr("condition"),
		attr("condition_expression"),
		attr("package_requirement"),
		attr("start_trigger"),
		attr("properties"),
		attr("target_roles"),
	},
	Blocks: []NestedBlockSchema{
		{Name: "action", MinItems: 1, Body: actionBody},
	},
}

var retentionPolicyBody = &BodySchema{
	Attributes: []AttributeSchema{
		required("quantity_to_keep"),
		attr("should_keep_forever"),
	},
}

var connectivityPolicyBody = &BodySchema{
	Attributes: []AttributeSchema{
		attr("allow_deployments_to_no_targets"),
		attr("exclude_unhealthy_targets"),
		attr("skip_machine_behavior"),
		attr("target_roles"),
	},
}

// resourceSchemas holds the managed resource types the engine understands.
var resourceSchemas = map[string]*BodySchema{
	"octopusdeploy_project": {
		Attributes: []AttributeSchema{
			required("name"),
			required("lifecycle_id"),
			required("project_group_id"),
			attr("description"),
			attr("space_id"),
			attr("auto_create_release"),
			attr("default_guided_failure_mode"),
			attr("default_to_skip_if_already_installed"),
			attr("discrete_channel_release"),
			attr("is_disabled"),
			attr("is_version_controlled"),
			attr("included_library_variable_sets"),
			attr("tenanted_deployment_participation"),
		},
		Blocks: []NestedBlockSchema{
			{Name: "connectivity_policy", MaxItems: 1, Body: connectivityPolicyBody},
		},
	},
	"octopusdeploy_runbook": {
		Attributes: []AttributeSchema{
			required("name"),
			required("project_id"),
			attr("description"),
			attr("environment_scope"),
			attr("environments"),
			attr("force_package_download"),
			attr("default_guided_failure_mode"),
			attr("multi_tenancy_mode"),
		},
		Blocks: []NestedBlockSchema{
			{Name: "retention_policy", MaxItems: 1, Body: retentionPolicyBody},
			{Name: "connectivity_policy", MaxItems: 1, Body: connectivityPolicyBody},
		},
	},
	"octopusdeploy_runbook_process": {
		Attributes: []AttributeSchema{
			required("runbook_id"),
		},
		Blocks: []NestedBlockSchema{
			{Name: "step", MinItems: 1, Body: stepBody},
		},
	},
	"octopusdeploy_project_group": {
		Attributes: []AttributeSchema{
			required("name"),
			attr("description"),
			attr("space_id"),
		},
	},
	"octopusdeploy_environment": {
		Attributes: []AttributeSchema{
			required("name"),
			attr("description"),
			attr("space_id"),
			attr("allow_dynamic_infrastructure"),
			attr("use_guided_failure"),
			attr("sort_order"),
		},
	},
}

// dataSchemas holds the read only lookup types the engine understands.
var dataSchemas = map[string]*BodySchema{
	"octopusdeploy_feeds":          lookupFilter(attr("feed_type")),
	"octopusdeploy_lifecycles":     lookupFilter(),
	"octopusdeploy_project_groups": lookupFilter(),
	"octopusdeploy_environments":   lookupFilter(attr("name")),
}

// ResourceSchema returns the body schema for a managed resource type.
func ResourceSchema(resourceType string) (*BodySchema, bool) {
	body, ok := resourceSchemas[resourceType]
	return body, ok
}

// DataSchema returns the body schema for a data source type.
func DataSchema(dataType string) (*BodySchema, bool) {
	body, ok := dataSchemas[dataType]
	return body, ok
}
