package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/eval"
	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model/octopus"
	"github.com/zclconf/go-cty/cty"
)

func testServer(t *testing.T, requests *atomic.Int64) *httptest.Server {
	t.Helper()

	feedType := "BuiltIn"
	feeds := octopus.GeneralCollection[octopus.Feed]{
		Items: []octopus.Feed{
			{Id: "Feeds-1", Name: "Octopus Server (built-in)", FeedType: &feedType},
		},
		TotalResults: 1,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/Spaces", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(octopus.GeneralCollection[octopus.Space]{
			Items: []octopus.Space{{Id: "Spaces-1", Name: "Default"}},
		})
	})

	mux.HandleFunc("/api/Spaces-1/Feeds", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Octopus-ApiKey") != "API-xxxx" {
			w.WriteHeader(401)
			return
		}

		requests.Add(1)
		_ = json.NewEncoder(w).Encode(feeds)
	})

	mux.HandleFunc("/api/Spaces-1/Feeds/Feeds-1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(feeds.Items[0])
	})

	return httptest.NewServer(mux)
}

func TestSpaceNameResolution(t *testing.T) {
	requests := atomic.Int64{}
	server := testServer(t, &requests)
	defer server.Close()

	apiClient := &OctopusApiClient{Url: server.URL, ApiKey: "API-xxxx", Space: "Default"}

	spaceId, err := apiClient.GetSpaceId()

	if err != nil {
		t.Fatalf("Should have resolved the space name: %v", err)
	}

	if spaceId != "Spaces-1" {
		t.Fatalf("The space name should resolve to Spaces-1, got %s", spaceId)
	}
}

func TestGetAllResourcesCachesCollections(t *testing.T) {
	requests := atomic.Int64{}
	server := testServer(t, &requests)
	defer server.Close()

	apiClient := &OctopusApiClient{Url: server.URL, ApiKey: "API-xxxx", Space: "Default"}

	for i := 0; i < 3; i++ {
		collection := octopus.GeneralCollection[octopus.Feed]{}

		if err := apiClient.GetAllResources("Feeds", &collection, []string{"take", "1"}); err != nil {
			t.Fatalf("Should have fetched the feeds: %v", err)
		}

		if len(collection.Items) != 1 || collection.Items[0].Id != "Feeds-1" {
			t.Fatalf("Should have fetched the built in feed")
		}
	}

	if requests.Load() != 1 {
		t.Fatalf("Repeated identical lookups should be served from the cache, saw %d requests", requests.Load())
	}
}

func TestGetResourceById(t *testing.T) {
	requests := atomic.Int64{}
	server := testServer(t, &requests)
	defer server.Close()

	apiClient := &OctopusApiClient{Url: server.URL, ApiKey: "API-xxxx", Space: "Default"}

	feed := octopus.Feed{}
	exists, err := apiClient.GetResourceById("Feeds", "Feeds-1", &feed)

	if err != nil {
		t.Fatalf("Should have fetched the feed: %v", err)
	}

	if !exists || feed.Name != "Octopus Server (built-in)" {
		t.Fatalf("Should have fetched the built in feed")
	}

	missing := octopus.Feed{}
	exists, err = apiClient.GetResourceById("Feeds", "Feeds-404", &missing)

	if err != nil {
		t.Fatalf("A missing resource is not an error: %v", err)
	}

	if exists {
		t.Fatalf("A 404 should report the resource as missing")
	}
}

func TestDataSourceClientQuery(t *testing.T) {
	requests := atomic.Int64{}
	server := testServer(t, &requests)
	defer server.Close()

	dataClient := DataSourceClient{
		Client: &OctopusApiClient{Url: server.URL, ApiKey: "API-xxxx", Space: "Default"},
	}

	collection, err := dataClient.Query("octopusdeploy_feeds", eval.DataFilter{FeedType: "BuiltIn", Take: 1})

	if err != nil {
		t.Fatalf("Should have queried the feeds: %v", err)
	}

	if collection.LengthInt() != 1 {
		t.Fatalf("Should have returned one feed")
	}

	first := collection.Index(cty.NumberIntVal(0))

	if first.GetAttr("id").AsString() != "Feeds-1" {
		t.Fatalf("The feed id should come through the lookup")
	}

	if first.GetAttr("feed_type").AsString() != "BuiltIn" {
		t.Fatalf("The feed type should come through the lookup")
	}
}

func TestDataSourceClientUnknownType(t *testing.T) {
	dataClient := DataSourceClient{Client: &OctopusApiClient{}}

	if _, err := dataClient.Query("octopusdeploy_mystery", eval.DataFilter{}); err == nil {
		t.Fatalf("An unknown data source type should be an error")
	}
}
