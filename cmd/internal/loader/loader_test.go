package loader

import (
	"testing"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model"
	"github.com/hashicorp/hcl/v2/hclparse"
)

func TestLoadSpacePopulation(t *testing.T) {
	declared, err := LoadPath("testdata/space_population")

	if err != nil {
		t.Fatalf("Should have loaded the fixture: %v", err)
	}

	if len(declared.DataSources()) != 1 {
		t.Fatalf("Should have found exactly one data source, found %d", len(declared.DataSources()))
	}

	if len(declared.Resources()) != 3 {
		t.Fatalf("Should have found exactly three resources, found %d", len(declared.Resources()))
	}

	feeds, ok := declared.Block("data.octopusdeploy_feeds.feeds")

	if !ok {
		t.Fatalf("Should have found the feeds data source")
	}

	if feeds.Kind != model.KindData {
		t.Fatalf("The feeds block should have been a data source")
	}

	if _, ok := declared.Block("octopusdeploy_project.deploy_frontend_project"); !ok {
		t.Fatalf("Should have found the project resource")
	}

	if _, ok := declared.Block("octopusdeploy_runbook.runbook"); !ok {
		t.Fatalf("Should have found the runbook resource")
	}

	process, ok := declared.Block("octopusdeploy_runbook_process.runbook_process")

	if !ok {
		t.Fatalf("Should have found the runbook process resource")
	}

	steps := 0
	for _, nested := range process.Body.Blocks {
		if nested.Type != "step" {
			continue
		}

		steps++

		actions := 0
		for _, child := range nested.Body.Blocks {
			if child.Type == "action" {
				actions++
			}
		}

		if actions != 1 {
			t.Fatalf("Each step should have contained exactly one action, found %d", actions)
		}
	}

	if steps != 2 {
		t.Fatalf("The runbook process should have contained exactly two steps, found %d", steps)
	}

	if len(declared.Variables) != 5 {
		t.Fatalf("Should have found five variables, found %d", len(declared.Variables))
	}

	apikey, ok := declared.Variable("octopus_apikey")

	if !ok {
		t.Fatalf("Should have found the octopus_apikey variable")
	}

	if !apikey.HasDefault() {
		t.Fatalf("The octopus_apikey variable should have a default")
	}

	if string(apikey.Type) != "string" {
		t.Fatalf("The octopus_apikey type constraint should be kept, got %q", string(apikey.Type))
	}

	if string(apikey.Sensitive) != "true" {
		t.Fatalf("The octopus_apikey sensitive flag should be kept, got %q", string(apikey.Sensitive))
	}
}

func TestPassthroughBlocksAreIgnored(t *testing.T) {
	source := `
terraform {
  required_providers {}
}

provider "octopusdeploy" {}

output "project_id" {
  value = octopusdeploy_project.test.id
}

resource "octopusdeploy_project" "test" {
  name             = "Test"
  lifecycle_id     = "Lifecycles-1"
  project_group_id = "ProjectGroups-1"
}
`
	blocks, variables, err := Parse(hclparse.NewParser(), "test.tf", []byte(source))

	if err != nil {
		t.Fatalf("Should have parsed the file: %v", err)
	}

	if len(blocks) != 1 {
		t.Fatalf("Should have found one declaration, found %d", len(blocks))
	}

	if len(variables) != 0 {
		t.Fatalf("Should have found no variables")
	}
}

func TestUnsupportedTopLevelBlock(t *testing.T) {
	source := `
module "frontend" {
  source = "./frontend"
}
`
	_, _, err := Parse(hclparse.NewParser(), "test.tf", []byte(source))

	if err == nil {
		t.Fatalf("Should have rejected a module block")
	}
}

func TestMissingLabels(t *testing.T) {
	source := `
resource "octopusdeploy_project" {
  name = "Test"
}
`
	_, _, err := Parse(hclparse.NewParser(), "test.tf", []byte(source))

	if err == nil {
		t.Fatalf("Should have rejected a resource block with one label")
	}
}

func TestDuplicateAddress(t *testing.T) {
	source := `
resource "octopusdeploy_environment" "test" {
  name = "Development"
}

resource "octopusdeploy_environment" "test" {
  name = "Production"
}
`
	blocks, variables, err := Parse(hclparse.NewParser(), "test.tf", []byte(source))

	if err != nil {
		t.Fatalf("Should have parsed the file: %v", err)
	}

	if _, err := model.NewGraph(blocks, variables); err == nil {
		t.Fatalf("Should have rejected duplicate addresses")
	}
}

func TestVariableDefaultMustBeLiteral(t *testing.T) {
	source := `
variable "project_name" {
  default = octopusdeploy_project.test.name
}
`
	_, _, err := Parse(hclparse.NewParser(), "test.tf", []byte(source))

	if err == nil {
		t.Fatalf("Should have rejected a variable default that references a resource")
	}
}
