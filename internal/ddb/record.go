// Package ddb holds the single-table layout shared by everything that reads
// or writes search records in DynamoDB.
//
// Every item stores one record: the partition key "pk" is the record id, the
// sort key "sk" names the collection and "object" holds the record itself.
package ddb

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
)

// Collection names stored in the sort key.
const (
	CollectionCatalogItems = "catalog_items"
	CollectionOrders       = "orders"
	CollectionAccounts     = "accounts"
)

// Attribute names of the table layout.
const (
	AttrPK     = "pk"
	AttrSK     = "sk"
	AttrObject = "object"
)

// Record is one item of the table.
type Record[T any] struct {
	ID         string `dynamodbav:"pk"`
	Collection string `dynamodbav:"sk"`
	Object     T      `dynamodbav:"object"`
}

// CollectionFor returns the sort key value holding records of category c.
func CollectionFor(c globalsearch.Category) (string, error) {
	switch c {
	case globalsearch.CategoryCatalogItem:
		return CollectionCatalogItems, nil
	case globalsearch.CategoryOrder:
		return CollectionOrders, nil
	case globalsearch.CategoryAccount:
		return CollectionAccounts, nil
	default:
		return "", errors.WithSecondaryError(globalsearch.ErrUnknownCategory, errors.Newf("no collection for category %q", c))
	}
}

// MarshalRecord converts a record into a DynamoDB item.
func MarshalRecord[T any](r Record[T]) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(r)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to marshal %s record %s", r.Collection, r.ID)
	}
	return item, nil
}

// UnmarshalRecord converts a DynamoDB item into a Record.
func UnmarshalRecord[T any](item map[string]types.AttributeValue) (Record[T], error) {
	var r Record[T]
	if err := attributevalue.UnmarshalMap(item, &r); err != nil {
		return Record[T]{}, errors.Wrap(err, "failed to unmarshal record")
	}
	if r.ID == "" {
		return Record[T]{}, errors.Newf("record in collection %q has no %s", r.Collection, AttrPK)
	}
	return r, nil
}

// UnmarshalRecords converts a page of items, failing on the first bad one.
func UnmarshalRecords[T any](items []map[string]types.AttributeValue) ([]Record[T], error) {
	records := make([]Record[T], 0, len(items))
	for i, item := range items {
		r, err := UnmarshalRecord[T](item)
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
		records = append(records, r)
	}
	return records, nil
}
