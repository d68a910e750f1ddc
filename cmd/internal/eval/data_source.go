package eval

import (
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// DataFilter carries the evaluated filter attributes of a data source block:
// a name prefix plus pagination, the shared query surface of the
// octopusdeploy collection lookups.
type DataFilter struct {
	PartialName string
	Name        string
	FeedType    string
	IDs         []string
	Skip        int
	Take        int
}

// DataClient performs the read only lookup behind a data source block and
// returns the ordered collection of matching records as a cty list of
// objects.
type DataClient interface {
	Query(dataType string, filter DataFilter) (cty.Value, error)
}

// OfflineData is the DataClient used when no Octopus instance is configured.
// Collections come back wholly unknown, which lets expressions like
// feeds[0].id evaluate to unknown values that plans can still reason about.
type OfflineData struct {
}

func (c OfflineData) Query(dataType string, filter DataFilter) (cty.Value, error) {
	return cty.UnknownVal(cty.List(cty.DynamicPseudoType)), nil
}

// StaticData is a DataClient backed by fixed collections, keyed by data
// source type. Lookups honor the partial name filter and pagination against
// the fixed records. It backs tests and recorded offline runs.
type StaticData struct {
	Collections map[string][]map[string]string
}

func (c StaticData) Query(dataType string, filter DataFilter) (cty.Value, error) {
	records := []cty.Value{}

	for index, record := range c.Collections[dataType] {
		if filter.Skip > 0 && index < filter.Skip {
			continue
		}

		if filter.PartialName != "" && !strings.HasPrefix(record["name"], filter.PartialName) {
			continue
		}

		if filter.FeedType != "" && record["feed_type"] != filter.FeedType {
			continue
		}

		attributes := map[string]cty.Value{}
		for key, value := range record {
			attributes[key] = cty.StringVal(value)
		}

		records = append(records, cty.ObjectVal(attributes))

		if filter.Take > 0 && len(records) == filter.Take {
			break
		}
	}

	if len(records) == 0 {
		return cty.ListValEmpty(cty.DynamicPseudoType), nil
	}

	return cty.TupleVal(records), nil
}
