package render

import (
	"strings"
	"testing"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/loader"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const fixture = `
data "octopusdeploy_feeds" "feeds" {
  feed_type    = "BuiltIn"
  partial_name = ""
  skip         = 0
  take         = 1
}

resource "octopusdeploy_project" "deploy_frontend_project" {
  name             = "Deploy Frontend"
  lifecycle_id     = var.lifecycle_id
  project_group_id = "ProjectGroups-1"

  connectivity_policy {
    allow_deployments_to_no_targets = false
  }
}

resource "octopusdeploy_runbook" "runbook" {
  name       = "Restart Frontend"
  project_id = octopusdeploy_project.deploy_frontend_project.id
}

resource "octopusdeploy_runbook_process" "runbook_process" {
  runbook_id = octopusdeploy_runbook.runbook.id

  step {
    name         = "Restart Service"
    target_roles = ["frontend"]

    action {
      action_type = "Octopus.TentaclePackage"
      name        = "Restart Service"
      properties = {
        "Octopus.Action.Package.DownloadOnTentacle" = "False"
      }

      primary_package {
        package_id = "frontend-service"
        feed_id    = data.octopusdeploy_feeds.feeds.feeds[0].id
      }
    }
  }
}

variable "lifecycle_id" {
  description = "The lifecycle assigned to the project."
  default     = "Lifecycles-1"
}
`

func parseGraph(t *testing.T, filename string, source string) *model.Graph {
	t.Helper()

	blocks, variables, err := loader.Parse(hclparse.NewParser(), filename, []byte(source))

	if err != nil {
		t.Fatalf("Should have parsed the fixture: %v", err)
	}

	declared, err := model.NewGraph(blocks, variables)

	if err != nil {
		t.Fatalf("Should have built the graph: %v", err)
	}

	return declared
}

func TestReferencesSurviveRendering(t *testing.T) {
	files := Files(parseGraph(t, "space_population.tf", fixture))

	rendered, ok := files["space_population.tf"]

	if !ok {
		t.Fatalf("Declarations should be rendered back to their source file")
	}

	// reference expressions must stay bare expressions, not strings
	if !strings.Contains(rendered, "project_id = octopusdeploy_project.deploy_frontend_project.id") {
		t.Fatalf("The project reference should survive rendering, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "feed_id    = data.octopusdeploy_feeds.feeds.feeds[0].id") {
		t.Fatalf("The feed reference should survive rendering, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "lifecycle_id     = var.lifecycle_id") {
		t.Fatalf("The variable reference should survive rendering, got:\n%s", rendered)
	}
}

func TestRoundTripStability(t *testing.T) {
	declared := parseGraph(t, "space_population.tf", fixture)
	files := Files(declared)

	reparsed := parseGraph(t, "space_population.tf", files["space_population.tf"])

	if Fingerprint(declared) != Fingerprint(reparsed) {
		t.Fatalf("Rendering and re-parsing should be a fixed point")
	}

	// a second round trip stays identical too
	again := Files(reparsed)

	if again["space_population.tf"] != files["space_population.tf"] {
		t.Fatalf("A second round trip should render byte identical output")
	}
}

func TestStepOrderPreserved(t *testing.T) {
	source := `
resource "octopusdeploy_runbook_process" "process" {
  runbook_id = "Runbooks-1"

  step {
    name = "First"

    action {
      action_type = "Octopus.Script"
      name        = "First"
    }
  }

  step {
    name = "Second"

    action {
      action_type = "Octopus.Script"
      name        = "Second"
    }
  }
}
`
	files := Files(parseGraph(t, "process.tf", source))
	rendered := files["process.tf"]

	first := strings.Index(rendered, `name = "First"`)
	second := strings.Index(rendered, `name = "Second"`)

	if first == -1 || second == -1 || first > second {
		t.Fatalf("Steps should render in declaration order, got:\n%s", rendered)
	}
}

func TestFingerprintDetectsChanges(t *testing.T) {
	declared := parseGraph(t, "space_population.tf", fixture)
	changed := parseGraph(t, "space_population.tf", strings.Replace(fixture, "Restart Frontend", "Stop Frontend", 1))

	if Fingerprint(declared) == Fingerprint(changed) {
		t.Fatalf("Different graphs should not share a fingerprint")
	}
}

func TestVariablesRenderWithDefaults(t *testing.T) {
	files := Files(parseGraph(t, "space_population.tf", fixture))
	rendered := files["space_population.tf"]

	if !strings.Contains(rendered, `variable "lifecycle_id"`) {
		t.Fatalf("The variable declaration should be rendered, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, `default     = "Lifecycles-1"`) {
		t.Fatalf("The variable default should be rendered, got:\n%s", rendered)
	}
}

func TestVariableConstraintsSurviveRendering(t *testing.T) {
	source := `
variable "octopus_apikey" {
  type        = string
  description = "The API key used to connect to the Octopus server."
  sensitive   = true
  nullable    = false
}
`
	declared := parseGraph(t, "provider_variables.tf", source)
	files := Files(declared)
	rendered := files["provider_variables.tf"]

	// type is an expression, not a string, and must render as one
	if !strings.Contains(rendered, "type        = string") {
		t.Fatalf("The type constraint should survive rendering, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "sensitive   = true") {
		t.Fatalf("The sensitive flag should survive rendering, got:\n%s", rendered)
	}

	if !strings.Contains(rendered, "nullable    = false") {
		t.Fatalf("The nullable flag should survive rendering, got:\n%s", rendered)
	}

	reparsed := parseGraph(t, "provider_variables.tf", rendered)
	again := Files(reparsed)

	if again["provider_variables.tf"] != rendered {
		t.Fatalf("A variable with constraints should round trip byte identical")
	}
}
