package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/internal/ddb"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// PutItemAPI is the subset of the DynamoDB client the generator writes with.
type PutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var (
	brands = []string{"On3", "Northline", "Kestrel", "Harbor & Pine", "Volta", ""}

	garments = map[string][]string{
		"Hoodie":   {"Red", "Heather Grey", "Navy", "Forest"},
		"Tee":      {"White", "Black", "Sand", "Washed Blue"},
		"Cap":      {"Olive", "Black", "Stone"},
		"Jacket":   {"Rain", "Quilted", "Denim"},
		"Joggers":  {"Charcoal", "Black", "Oat"},
		"Backpack": {"Roll-top", "Daypack", "Commuter"},
	}

	firstNames = []string{"Aarav", "Maya", "Jonas", "Priya", "Lena", "Kofi", "Sofia", "Ravi", "Nora", "Ishaan"}
	lastNames  = []string{"Sharma", "Okafor", "Lindqvist", "Patel", "Moreau", "Tanaka", "Reyes", "Iyer"}
)

func randomCatalogItem() globalsearch.CatalogItem {
	kinds := make([]string, 0, len(garments))
	for k := range garments {
		kinds = append(kinds, k)
	}
	kind := kinds[rand.IntN(len(kinds))]
	variants := garments[kind]
	title := variants[rand.IntN(len(variants))] + " " + kind

	return globalsearch.CatalogItem{
		Title: title,
		Slug:  slugify(title),
		Brand: brands[rand.IntN(len(brands))],
	}
}

func randomAccount() globalsearch.Account {
	first := firstNames[rand.IntN(len(firstNames))]
	last := lastNames[rand.IntN(len(lastNames))]
	email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), rand.IntN(100))

	// Roughly one in four accounts never filled in a name.
	if rand.IntN(4) == 0 {
		return globalsearch.Account{Email: email}
	}
	return globalsearch.Account{Email: email, FullName: first + " " + last}
}

func randomOrder(accounts []globalsearch.Account) globalsearch.Order {
	order := globalsearch.Order{
		PaymentReference: "order_" + ksuid.New().String()[:14],
	}
	if len(accounts) > 0 && rand.IntN(5) != 0 {
		a := accounts[rand.IntN(len(accounts))]
		order.Customer = &globalsearch.Customer{Email: a.Email, FullName: a.FullName}
	}
	return order
}

func slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}

func putRecord[T any](ctx context.Context, client PutItemAPI, tableName, collection string, object T) (string, error) {
	id := ksuid.New().String()

	item, err := ddb.MarshalRecord(ddb.Record[T]{
		ID:         id,
		Collection: collection,
		Object:     object,
	})
	if err != nil {
		return "", err
	}

	_, err = client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to put %s record in DynamoDB", collection)
	}
	return id, nil
}

// generate writes count records to each collection. Orders reference the
// accounts written in the same run.
func generate(ctx context.Context, client PutItemAPI, tableName string, count int) error {
	for i := 0; i < count; i++ {
		item := randomCatalogItem()
		id, err := putRecord(ctx, client, tableName, ddb.CollectionCatalogItems, item)
		if err != nil {
			return errors.Wrapf(err, "failed to insert catalog item %d", i+1)
		}
		slog.InfoContext(ctx, "Inserted catalog item", "id", id, "title", item.Title, "brand", item.Brand)
	}

	accounts := make([]globalsearch.Account, 0, count)
	for i := 0; i < count; i++ {
		account := randomAccount()
		id, err := putRecord(ctx, client, tableName, ddb.CollectionAccounts, account)
		if err != nil {
			return errors.Wrapf(err, "failed to insert account %d", i+1)
		}
		account.ID = id
		accounts = append(accounts, account)
		slog.InfoContext(ctx, "Inserted account", "id", id, "email", account.Email)
	}

	for i := 0; i < count; i++ {
		order := randomOrder(accounts)
		id, err := putRecord(ctx, client, tableName, ddb.CollectionOrders, order)
		if err != nil {
			return errors.Wrapf(err, "failed to insert order %d", i+1)
		}
		slog.InfoContext(ctx, "Inserted order", "id", id, "payment_reference", order.PaymentReference)
	}

	return nil
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	env := c.String("env")
	tableName := c.String("table-name")
	count := c.Int("count")

	slog.InfoContext(ctx, "Starting record generator",
		"environment", env,
		"table", tableName,
		"count", count,
	)

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	if err := generate(ctx, dynamodb.NewFromConfig(cfg), tableName, count); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all records", "per_collection", count)
	return nil
}

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "generator",
		Usage: "Generate random catalog items, accounts and orders into DynamoDB",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "env",
				Aliases:  []string{"e"},
				Usage:    "Environment name",
				EnvVars:  []string{"ENVIRONMENT"},
				Required: true,
			},
			&cli.StringFlag{
				Name:     "table-name",
				Aliases:  []string{"t"},
				Usage:    "DynamoDB table name",
				EnvVars:  []string{"TABLE_NAME"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of records to generate per collection",
				Value:   1,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}
