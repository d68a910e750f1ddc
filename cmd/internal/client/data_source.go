package client

import (
	"fmt"
	"strings"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/eval"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model/octopus"
	"github.com/zclconf/go-cty/cty"
)

// dataSourcePaths maps the fixture data source types to the API collection
// they read.
var dataSourcePaths = map[string]string{
	"octopusdeploy_feeds":          "Feeds",
	"octopusdeploy_lifecycles":     "Lifecycles",
	"octopusdeploy_project_groups": "ProjectGroups",
	"octopusdeploy_environments":   "Environments",
}

// DataSourceClient bridges data source blocks to live Octopus lookups.
type DataSourceClient struct {
	Client OctopusClient
}

func (c DataSourceClient) Query(dataType string, filter eval.DataFilter) (cty.Value, error) {
	path, ok := dataSourcePaths[dataType]

	if !ok {
		return cty.NilVal, fmt.Errorf("no lookup registered for data source type %q", dataType)
	}

	params := [][]string{}
	if filter.PartialName != "" {
		params = append(params, []string{"partialName", filter.PartialName})
	}
	if filter.Name != "" {
		params = append(params, []string{"name", filter.Name})
	}
	if len(filter.IDs) != 0 {
		params = append(params, []string{"ids", strings.Join(filter.IDs, ",")})
	}
	if filter.Skip > 0 {
		params = append(params, []string{"skip", fmt.Sprint(filter.Skip)})
	}

	if dataType == "octopusdeploy_feeds" {
		if filter.FeedType != "" {
			params = append(params, []string{"feedType", filter.FeedType})
		}
		return c.queryFeeds(path, filter, params)
	}

	return c.queryNamed(path, filter, params)
}

func (c DataSourceClient) queryFeeds(path string, filter eval.DataFilter, params [][]string) (cty.Value, error) {
	records, err := collect[octopus.Feed](c.Client, path, filter, params)

	if err != nil {
		return cty.NilVal, err
	}

	values := []cty.Value{}
	for _, record := range records {
		values = append(values, cty.ObjectVal(map[string]cty.Value{
			"id":        cty.StringVal(record.Id),
			"name":      cty.StringVal(record.Name),
			"slug":      stringOrNull(record.Slug),
			"feed_type": stringOrNull(record.FeedType),
			"feed_uri":  stringOrNull(record.FeedUri),
		}))
	}

	return tupleOrEmpty(values), nil
}

func stringOrNull(value *string) cty.Value {
	if value == nil {
		return cty.NullVal(cty.String)
	}

	return cty.StringVal(*value)
}

func (c DataSourceClient) queryNamed(path string, filter eval.DataFilter, params [][]string) (cty.Value, error) {
	records, err := collect[octopus.NameId](c.Client, path, filter, params)

	if err != nil {
		return cty.NilVal, err
	}

	values := []cty.Value{}
	for _, record := range records {
		values = append(values, cty.ObjectVal(map[string]cty.Value{
			"id":       cty.StringVal(record.Id),
			"space_id": cty.StringVal(record.SpaceId),
			"name":     cty.StringVal(record.Name),
		}))
	}

	return tupleOrEmpty(values), nil
}

// collect fetches a page when the filter asked for one, or streams the whole
// collection in batches when it did not.
func collect[T any](apiClient OctopusClient, path string, filter eval.DataFilter, params [][]string) ([]T, error) {
	if filter.Take > 0 {
		collection := octopus.GeneralCollection[T]{}
		params = append(params, []string{"take", fmt.Sprint(filter.Take)})

		if err := apiClient.GetAllResources(path, &collection, params...); err != nil {
			return nil, err
		}

		return collection.Items, nil
	}

	done := make(chan struct{})
	defer close(done)

	items := []T{}
	for result := range (BatchingOctopusApiClient[T]{Client: apiClient}).GetAllResourcesBatch(done, path, params...) {
		if result.Err != nil {
			return nil, result.Err
		}

		items = append(items, result.Res)
	}

	return items, nil
}

func tupleOrEmpty(values []cty.Value) cty.Value {
	if len(values) == 0 {
		return cty.ListValEmpty(cty.DynamicPseudoType)
	}

	return cty.TupleVal(values)
}
