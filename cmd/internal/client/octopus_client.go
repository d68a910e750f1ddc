package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/OctopusSolutionsEngineering/OctopusTerraformApply/cmd/internal/model/octopus"
	"github.com/avast/retry-go/v4"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// OctopusClient is the read side of the Octopus API used by data source
// lookups. The apply side goes through the official SDK instead.
type OctopusClient interface {
	GetSpaceBaseUrl() (string, error)
	GetSpaces() ([]octopus.Space, error)
	GetResourceById(resourceType string, id string, resource any) (exists bool, funcErr error)
	GetAllResources(resourceType string, resources any, queryParams ...[]string) error
}

// OctopusApiClient resolves the configured space once and then serves
// collection and resource lookups, caching responses for the lifetime of a
// run so repeated data source reads don't hammer the API.
type OctopusApiClient struct {
	Url    string
	ApiKey string
	Space  string

	// spaceId is what Space resolves to after a lookup
	mu      sync.Mutex
	spaceId string

	// cache maps resource types to ids to raw responses
	cacheMu sync.Mutex
	cache   map[string]map[string][]byte

	// collectionCache maps collection cache ids to raw responses
	collectionCacheMu sync.Mutex
	collectionCache   map[string][]byte
}

func (o *OctopusApiClient) lookupSpaceAsId() (bool, error) {
	if len(strings.TrimSpace(o.Space)) == 0 {
		return false, errors.New("space can not be empty")
	}

	requestURL := fmt.Sprintf("%s/api/Spaces/%s", o.Url, o.Space)

	res, err := o.get(requestURL)

	if err != nil {
		return false, err
	}

	defer res.Body.Close()

	return res.StatusCode != 404, nil
}

func (o *OctopusApiClient) lookupSpaceAsName() (spaceId string, funcErr error) {
	if len(strings.TrimSpace(o.Space)) == 0 {
		return "", errors.New("space can not be empty")
	}

	requestURL := fmt.Sprintf("%s/api/Spaces?take=1000&partialName=%s", o.Url, url.QueryEscape(o.Space))

	res, err := o.get(requestURL)

	if err != nil {
		return "", err
	}

	defer func(body io.ReadCloser) {
		funcErr = errors.Join(funcErr, body.Close())
	}(res.Body)

	if res.StatusCode != 200 {
		return "", errors.New("failed to list spaces, status code " + fmt.Sprint(res.StatusCode))
	}

	collection := octopus.GeneralCollection[octopus.Space]{}

	if err := json.NewDecoder(res.Body).Decode(&collection); err != nil {
		return "", err
	}

	match, found := lo.Find(collection.Items, func(space octopus.Space) bool {
		return space.Name == o.Space
	})

	if !found {
		return "", errors.New("did not find space with name '" + o.Space + "'")
	}

	return match.Id, nil
}

// GetSpaceBaseUrl resolves the space name or id to the API base URL of the
// space. Spaces that were just created can take a moment to appear, so the
// lookup is retried.
func (o *OctopusApiClient) GetSpaceBaseUrl() (string, error) {
	if len(strings.TrimSpace(o.Space)) == 0 {
		return "", errors.New("space can not be empty")
	}

	return retry.DoWithData(func() (string, error) {
		o.mu.Lock()
		defer o.mu.Unlock()

		if o.spaceId != "" {
			return fmt.Sprintf("%s/api/%s", o.Url, o.spaceId), nil
		}

		spaceId, err := o.lookupSpaceAsName()
		if err == nil {
			o.spaceId = spaceId
			return fmt.Sprintf("%s/api/%s", o.Url, spaceId), nil
		}

		spaceIdValid, err := o.lookupSpaceAsId()
		if spaceIdValid && err == nil {
			o.spaceId = o.Space
			return fmt.Sprintf("%s/api/%s", o.Url, o.Space), nil
		}

		return "", errors.New("did not find space with name or id '" + o.Space + "'")
	}, retry.Attempts(3), retry.Delay(1*time.Second))
}

// GetSpaceId resolves the configured space name or id to the space id.
func (o *OctopusApiClient) GetSpaceId() (string, error) {
	if _, err := o.GetSpaceBaseUrl(); err != nil {
		return "", err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	return o.spaceId, nil
}

// GetSpaces lists the spaces visible to the API key.
func (o *OctopusApiClient) GetSpaces() (spaces []octopus.Space, funcErr error) {
	requestURL := fmt.Sprintf("%s/api/Spaces?take=1000", o.Url)

	res, err := o.get(requestURL)

	if err != nil {
		return nil, err
	}

	defer func(body io.ReadCloser) {
		funcErr = errors.Join(funcErr, body.Close())
	}(res.Body)

	if res.StatusCode != 200 {
		return nil, errors.New("failed to list spaces, status code " + fmt.Sprint(res.StatusCode))
	}

	collection := octopus.GeneralCollection[octopus.Space]{}

	if err := json.NewDecoder(res.Body).Decode(&collection); err != nil {
		return nil, err
	}

	return collection.Items, nil
}

// GetResourceById fetches a single resource, returning false when the remote
// end reports 404.
func (o *OctopusApiClient) GetResourceById(resourceType string, id string, resource any) (exists bool, funcErr error) {
	cacheHit := o.readCache(resourceType, id)
	if cacheHit != nil {
		return true, json.Unmarshal(cacheHit, resource)
	}

	spaceUrl, err := o.GetSpaceBaseUrl()

	if err != nil {
		return false, err
	}

	res, err := o.get(spaceUrl + "/" + resourceType + "/" + url.PathEscape(id))

	if err != nil {
		return false, err
	}

	defer func(body io.ReadCloser) {
		funcErr = errors.Join(funcErr, body.Close())
	}(res.Body)

	if res.StatusCode == 404 {
		return false, nil
	}

	if res.StatusCode != 200 {
		return false, fmt.Errorf("failed to get %s/%s, status code %d", resourceType, id, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return false, err
	}

	o.cacheResult(resourceType, id, body)

	return true, json.Unmarshal(body, resource)
}

// GetAllResources fetches a collection, with optional query params expressed
// as name value pairs, e.g. []string{"partialName", "Docker"}.
func (o *OctopusApiClient) GetAllResources(resourceType string, resources any, queryParams ...[]string) (funcErr error) {
	queryParamsId := strings.Join(lo.Map(queryParams, func(item []string, index int) string {
		return strings.Join(item, "=")
	}), ",")

	cacheId := resourceType + "[" + queryParamsId + "]"

	cacheHit := o.readCollectionCache(cacheId)
	if cacheHit != nil {
		zap.L().Debug("Cache hit on " + cacheId)
		return json.Unmarshal(cacheHit, resources)
	}

	zap.L().Debug("Getting collection " + cacheId)

	spaceUrl, err := o.GetSpaceBaseUrl()

	if err != nil {
		return err
	}

	requestURL, err := url.Parse(spaceUrl + "/" + resourceType)

	if err != nil {
		return err
	}

	params := url.Values{}
	for _, q := range queryParams {
		if len(q) == 2 {
			params.Add(q[0], q[1])
		}
	}

	if _, ok := params["take"]; !ok {
		params.Add("take", "10000")
	}

	requestURL.RawQuery = params.Encode()

	res, err := o.get(requestURL.String())

	if err != nil {
		return err
	}

	defer func(body io.ReadCloser) {
		funcErr = errors.Join(funcErr, body.Close())
	}(res.Body)

	if res.StatusCode != 200 {
		return fmt.Errorf("failed to get %s, status code %d", resourceType, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)

	if err != nil {
		return err
	}

	o.cacheCollectionResult(cacheId, body)

	return json.Unmarshal(body, resources)
}

// get performs an authenticated GET, retrying transient transport failures.
func (o *OctopusApiClient) get(requestURL string) (*http.Response, error) {
	return retry.DoWithData(func() (*http.Response, error) {
		req, err := http.NewRequest(http.MethodGet, requestURL, nil)

		if err != nil {
			return nil, err
		}

		if o.ApiKey != "" {
			req.Header.Set("X-Octopus-ApiKey", o.ApiKey)
		}

		return http.DefaultClient.Do(req)
	}, retry.Attempts(3), retry.Delay(1*time.Second))
}

func (o *OctopusApiClient) readCache(resourceType string, id string) []byte {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	if o.cache == nil {
		return nil
	}

	if typeCache, ok := o.cache[resourceType]; ok {
		return typeCache[id]
	}

	return nil
}

func (o *OctopusApiClient) cacheResult(resourceType string, id string, body []byte) {
	o.cacheMu.Lock()
	defer o.cacheMu.Unlock()

	if o.cache == nil {
		o.cache = map[string]map[string][]byte{}
	}

	if _, ok := o.cache[resourceType]; !ok {
		o.cache[resourceType] = map[string][]byte{}
	}

	o.cache[resourceType][id] = body
}

func (o *OctopusApiClient) readCollectionCache(cacheId string) []byte {
	o.collectionCacheMu.Lock()
	defer o.collectionCacheMu.Unlock()

	return o.collectionCache[cacheId]
}

func (o *OctopusApiClient) cacheCollectionResult(cacheId string, body []byte) {
	o.collectionCacheMu.Lock()
	defer o.collectionCacheMu.Unlock()

	if o.collectionCache == nil {
		o.collectionCache = map[string][]byte{}
	}

	o.collectionCache[cacheId] = body
}
