package client

import (
	"fmt"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model/octopus"
)

// BatchingOctopusApiClient retrieves all the resources of a given type in
// small pages. Data sources with no explicit take use this to stream whole
// collections without a single huge response.
type BatchingOctopusApiClient[T any] struct {
	Client OctopusClient
}

type ResultError[T any] struct {
	Res T
	Err error
}

func (c BatchingOctopusApiClient[T]) GetAllResourcesBatch(done <-chan struct{}, resourceType string, queryParams ...[]string) <-chan ResultError[T] {
	pageSize := 30
	chnl := make(chan ResultError[T])

	go func() {
		skip := 0
		items := 0

		defer close(chnl)

		for ok := true; ok; ok = items != 0 {
			collection := new(octopus.GeneralCollection[T])

			params := append([][]string{}, queryParams...)
			params = append(params, []string{"take", fmt.Sprint(pageSize)}, []string{"skip", fmt.Sprint(skip)})

			err := c.Client.GetAllResources(resourceType, collection, params...)

			if err != nil {
				chnl <- ResultError[T]{Res: *new(T), Err: err}
				break
			}

			for _, item := range collection.Items {
				// https://go.dev/blog/pipelines#explicit-cancellation
				select {
				case <-done:
					return
				case chnl <- ResultError[T]{Res: item, Err: nil}:
				}
			}

			items = len(collection.Items)
			skip += pageSize
		}
	}()

	return chnl
}
