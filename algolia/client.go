// Package algolia lists search records from Algolia indices, one index per
// collection, with configurable secret management.
package algolia

import (
	"context"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials. The key only needs the
// browse ACL.
type Secrets struct {
	// AppID is the Algolia application ID.
	AppID string `json:"app_id"`
	// APIKey is an Algolia API key allowed to browse the indices.
	APIKey string `json:"api_key"`
}

// FetchSecrets is a function type that retrieves Algolia credentials.
// It allows for different secret retrieval strategies (static, environment variables, etc.).
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{AppID: appID, APIKey: apiKey}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{AppID: appID, APIKey: apiKey}, nil
	}
}

// HitIterator yields browsed objects, decoding each into the pointer passed
// to Next, and returns io.EOF once exhausted. *search.ObjectIterator
// satisfies it.
type HitIterator interface {
	Next(opts ...interface{}) (interface{}, error)
}

// Client creates the Algolia client on first use.
type Client struct {
	getClient func() (*search.Client, error)
	tracer    trace.Tracer
}

// NewClient returns a Client that fetches its credentials on first use.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.APIKey == "" {
			return nil, errors.New("APIKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.APIKey), nil
	})

	return &Client{
		getClient: getClient,
		tracer:    otel.Tracer("globalsearch-algolia"),
	}
}

// BrowseObjects starts browsing every object of indexName.
func (c *Client) BrowseObjects(ctx context.Context, indexName string) (HitIterator, error) {
	_, span := c.tracer.Start(ctx, "algolia.browse_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, err
	}

	it, err := client.InitIndex(indexName).BrowseObjects()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to browse index "+indexName)
		return nil, errors.Wrapf(err, "failed to browse Algolia index %s", indexName)
	}

	span.SetStatus(codes.Ok, "browse started")
	return it, nil
}
