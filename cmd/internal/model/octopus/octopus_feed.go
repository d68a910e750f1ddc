package octopus

// Feed is the subset of the Octopus feed resource exposed to fixture
// expressions via the octopusdeploy_feeds data source.
type Feed struct {
	Id       string
	Name     string
	Slug     *string
	FeedType *string
	FeedUri  *string
}

func (f Feed) GetName() string {
	return f.Name
}

func (f Feed) GetId() string {
	return f.Id
}
