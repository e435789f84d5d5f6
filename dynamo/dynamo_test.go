package dynamo

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/internal/ddb"
)

// mockScanClient serves the items of the requested collection in pages of
// pageSize, continuing from ExclusiveStartKey.
type mockScanClient struct {
	items    []map[string]types.AttributeValue
	pageSize int
	err      error
	inputs   []*dynamodb.ScanInput
}

func (m *mockScanClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}

	want := params.ExpressionAttributeValues[":sk"].(*types.AttributeValueMemberS).Value
	var matched []map[string]types.AttributeValue
	for _, item := range m.items {
		if item[ddb.AttrSK].(*types.AttributeValueMemberS).Value == want {
			matched = append(matched, item)
		}
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		last := params.ExclusiveStartKey[ddb.AttrPK].(*types.AttributeValueMemberS).Value
		for i, item := range matched {
			if item[ddb.AttrPK].(*types.AttributeValueMemberS).Value == last {
				start = i + 1
			}
		}
	}

	end := len(matched)
	if m.pageSize > 0 && start+m.pageSize < end {
		end = start + m.pageSize
	}

	out := &dynamodb.ScanOutput{Items: matched[start:end]}
	if end < len(matched) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			ddb.AttrPK: matched[end-1][ddb.AttrPK],
			ddb.AttrSK: matched[end-1][ddb.AttrSK],
		}
	}
	return out, nil
}

func mustMarshal[T any](t *testing.T, collection, id string, object T) map[string]types.AttributeValue {
	t.Helper()
	item, err := ddb.MarshalRecord(ddb.Record[T]{ID: id, Collection: collection, Object: object})
	if err != nil {
		t.Fatalf("MarshalRecord failed: %v", err)
	}
	return item
}

func TestSourceScansCollections(t *testing.T) {
	client := &mockScanClient{
		pageSize: 2,
		items: []map[string]types.AttributeValue{
			mustMarshal(t, ddb.CollectionCatalogItems, "p1", globalsearch.CatalogItem{Title: "Red Hoodie", Slug: "red-hoodie", Brand: "On3"}),
			mustMarshal(t, ddb.CollectionOrders, "o1", globalsearch.Order{PaymentReference: "order_abc", Customer: &globalsearch.Customer{Email: "jane@example.com"}}),
			mustMarshal(t, ddb.CollectionCatalogItems, "p2", globalsearch.CatalogItem{Title: "Plain Tee", Slug: "plain-tee"}),
			mustMarshal(t, ddb.CollectionAccounts, "u1", globalsearch.Account{Email: "a@x.com"}),
			mustMarshal(t, ddb.CollectionCatalogItems, "p3", globalsearch.CatalogItem{Title: "Cap", Slug: "cap"}),
			mustMarshal(t, ddb.CollectionOrders, "o2", globalsearch.Order{}),
		},
	}
	src := New(client, "search-records", WithPageSize(2))
	ctx := context.Background()

	items, err := src.CatalogItems(ctx)
	if err != nil {
		t.Fatalf("CatalogItems failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("Expected 3 catalog items, got %d", len(items))
	}
	for i, want := range []string{"p1", "p2", "p3"} {
		if items[i].ID != want {
			t.Errorf("Item %d: expected ID %s, got %s", i, want, items[i].ID)
		}
	}
	if items[0].Brand != "On3" {
		t.Errorf("Expected brand On3, got %q", items[0].Brand)
	}
	if len(client.inputs) != 2 {
		t.Errorf("Expected 2 scan pages, got %d", len(client.inputs))
	}

	first := client.inputs[0]
	if aws.ToString(first.TableName) != "search-records" {
		t.Errorf("Expected table search-records, got %s", aws.ToString(first.TableName))
	}
	if aws.ToString(first.FilterExpression) != "#sk = :sk" || first.ExpressionAttributeNames["#sk"] != "sk" {
		t.Errorf("Unexpected filter %s %v", aws.ToString(first.FilterExpression), first.ExpressionAttributeNames)
	}
	if aws.ToInt32(first.Limit) != 2 {
		t.Errorf("Expected page limit 2, got %d", aws.ToInt32(first.Limit))
	}

	orders, err := src.Orders(ctx)
	if err != nil {
		t.Fatalf("Orders failed: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != "o1" || orders[0].Customer == nil || orders[1].Customer != nil {
		t.Errorf("Unexpected orders: %+v", orders)
	}

	accounts, err := src.Accounts(ctx)
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != "u1" || accounts[0].Email != "a@x.com" {
		t.Errorf("Unexpected accounts: %+v", accounts)
	}
}

func TestSourceScanError(t *testing.T) {
	scanErr := errors.New("ResourceNotFoundException: table not found")
	src := New(&mockScanClient{err: scanErr}, "missing")

	_, err := src.Orders(context.Background())
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, scanErr) {
		t.Errorf("Expected wrapped scan error, got %v", err)
	}
}

func TestSourceDecodeError(t *testing.T) {
	client := &mockScanClient{
		items: []map[string]types.AttributeValue{{
			ddb.AttrPK:     &types.AttributeValueMemberS{Value: "p1"},
			ddb.AttrSK:     &types.AttributeValueMemberS{Value: ddb.CollectionCatalogItems},
			ddb.AttrObject: &types.AttributeValueMemberBOOL{Value: true},
		}},
	}
	if _, err := New(client, "t").CatalogItems(context.Background()); err == nil {
		t.Error("Expected decode error, got nil")
	}
}
