// Package dynamo lists search records from a single DynamoDB table laid out
// as described in internal/ddb.
package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/internal/ddb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Source implements globalsearch.Source by scanning one table per collection.
type Source struct {
	client    dynamodb.ScanAPIClient
	tableName string
	pageSize  int32
	tracer    trace.Tracer
}

var _ globalsearch.Source = (*Source)(nil)

// Option configures a Source.
type Option func(*Source)

// WithPageSize caps the number of items evaluated per scan page.
func WithPageSize(n int32) Option {
	return func(s *Source) {
		s.pageSize = n
	}
}

// New returns a Source reading tableName through client.
func New(client dynamodb.ScanAPIClient, tableName string, opts ...Option) *Source {
	s := &Source{
		client:    client,
		tableName: tableName,
		tracer:    otel.Tracer("globalsearch-dynamodb"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CatalogItems lists the catalog_items collection.
func (s *Source) CatalogItems(ctx context.Context) ([]globalsearch.CatalogItem, error) {
	records, err := scan[globalsearch.CatalogItem](ctx, s, ddb.CollectionCatalogItems)
	if err != nil {
		return nil, err
	}
	items := make([]globalsearch.CatalogItem, len(records))
	for i, r := range records {
		items[i] = r.Object
		items[i].ID = r.ID
	}
	return items, nil
}

// Orders lists the orders collection.
func (s *Source) Orders(ctx context.Context) ([]globalsearch.Order, error) {
	records, err := scan[globalsearch.Order](ctx, s, ddb.CollectionOrders)
	if err != nil {
		return nil, err
	}
	orders := make([]globalsearch.Order, len(records))
	for i, r := range records {
		orders[i] = r.Object
		orders[i].ID = r.ID
	}
	return orders, nil
}

// Accounts lists the accounts collection.
func (s *Source) Accounts(ctx context.Context) ([]globalsearch.Account, error) {
	records, err := scan[globalsearch.Account](ctx, s, ddb.CollectionAccounts)
	if err != nil {
		return nil, err
	}
	accounts := make([]globalsearch.Account, len(records))
	for i, r := range records {
		accounts[i] = r.Object
		accounts[i].ID = r.ID
	}
	return accounts, nil
}

func scan[T any](ctx context.Context, s *Source, collection string) ([]ddb.Record[T], error) {
	ctx, span := s.tracer.Start(ctx, "dynamodb.scan",
		trace.WithAttributes(
			attribute.String("dynamodb.table_name", s.tableName),
			attribute.String("dynamodb.collection", collection),
		),
	)
	defer span.End()

	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.tableName),
		FilterExpression:         aws.String("#sk = :sk"),
		ExpressionAttributeNames: map[string]string{"#sk": ddb.AttrSK},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sk": &types.AttributeValueMemberS{Value: collection},
		},
	}
	if s.pageSize > 0 {
		input.Limit = aws.Int32(s.pageSize)
	}

	var (
		records []ddb.Record[T]
		pages   int
	)
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "scan failed")
			return nil, errors.Wrapf(err, "failed to scan %s in table %s", collection, s.tableName)
		}
		pages++

		batch, err := ddb.UnmarshalRecords[T](page.Items)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "unmarshal failed")
			return nil, errors.Wrapf(err, "failed to decode %s page %d", collection, pages)
		}
		records = append(records, batch...)
	}

	span.SetAttributes(
		attribute.Int("dynamodb.page_count", pages),
		attribute.Int("dynamodb.record_count", len(records)),
	)
	span.SetStatus(codes.Ok, "scan complete")
	return records, nil
}
