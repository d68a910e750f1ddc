package octopus

// NamedResource provides a common interface for any resource that has a name
// and an ID. This is almost every resource in Octopus Deploy.
type NamedResource interface {
	GetName() string
	GetId() string
}

// NameId is the minimal record returned for resources the engine only needs
// to reference by id, such as lifecycles and project groups looked up by a
// data source.
type NameId struct {
	Id      string
	SpaceId string
	Name    string
}

func (n NameId) GetName() string {
	return n.Name
}

func (n NameId) GetId() string {
	return n.Id
}
