package octopus

type Space struct {
	Id               string
	Name             string
	Description      *string
	IsDefault        bool
	TaskQueueStopped bool
}

func (s Space) GetName() string {
	return s.Name
}

func (s Space) GetId() string {
	return s.Id
}
