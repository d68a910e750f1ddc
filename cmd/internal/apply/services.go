package apply

import (
	"net/url"

	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/client"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/environments"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/projectgroups"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/projects"
	"github.com/OctopusDeploy/go-octopusdeploy/v2/pkg/runbooks"
)

// ProjectService is the slice of the SDK project service the executor needs.
type ProjectService interface {
	Add(project *projects.Project) (*projects.Project, error)
	GetByID(id string) (*projects.Project, error)
	Update(project *projects.Project) (*projects.Project, error)
	DeleteByID(id string) error
}

// RunbookService is the slice of the SDK runbook service the executor needs.
type RunbookService interface {
	Add(runbook *runbooks.Runbook) (*runbooks.Runbook, error)
	GetByID(id string) (*runbooks.Runbook, error)
	Update(runbook *runbooks.Runbook) (*runbooks.Runbook, error)
	DeleteByID(id string) error
}

// RunbookProcessService is the slice of the SDK runbook process service the
// executor needs. Processes are created and deleted with their runbook, so
// only reads and updates appear here.
type RunbookProcessService interface {
	GetByID(id string) (*runbooks.RunbookProcess, error)
	Update(runbookProcess *runbooks.RunbookProcess) (*runbooks.RunbookProcess, error)
}

// ProjectGroupService is the slice of the SDK project group service the
// executor needs. Update takes a value because that is the signature the SDK
// service exposes.
type ProjectGroupService interface {
	Add(projectGroup *projectgroups.ProjectGroup) (*projectgroups.ProjectGroup, error)
	Update(projectGroup projectgroups.ProjectGroup) (*projectgroups.ProjectGroup, error)
	DeleteByID(id string) error
}

// EnvironmentService is the slice of the SDK environment service the
// executor needs.
type EnvironmentService interface {
	Add(environment *environments.Environment) (*environments.Environment, error)
	Update(environment *environments.Environment) (*environments.Environment, error)
	DeleteByID(id string) error
}

// Services groups the SDK services behind interfaces so tests can substitute
// fakes.
type Services struct {
	Projects         ProjectService
	Runbooks         RunbookService
	RunbookProcesses RunbookProcessService
	ProjectGroups    ProjectGroupService
	Environments     EnvironmentService
}

// NewServices connects to an Octopus instance with the official SDK.
func NewServices(octopusUrl string, apiKey string, spaceId string) (*Services, error) {
	apiUrl, err := url.Parse(octopusUrl)

	if err != nil {
		return nil, err
	}

	octopusClient, err := client.NewClient(nil, apiUrl, apiKey, spaceId)

	if err != nil {
		return nil, err
	}

	return &Services{
		Projects:         octopusClient.Projects,
		Runbooks:         octopusClient.Runbooks,
		RunbookProcesses: octopusClient.RunbookProcesses,
		ProjectGroups:    octopusClient.ProjectGroups,
		Environments:     octopusClient.Environments,
	}, nil
}
