package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch/dynamo"
	"github.com/letmevibethatforyou/globalsearch/internal/sourceflags"
	"github.com/urfave/cli/v2"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:     "table-name",
			Usage:    "DynamoDB table holding the records",
			EnvVars:  []string{"TABLE_NAME"},
			Required: true,
		},
	}
	flags = append(flags, sourceflags.SearchFlags()...)

	app := &cli.App{
		Name:   "search",
		Usage:  "Answer global search requests from API Gateway",
		Flags:  flags,
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context
	tableName := c.String("table-name")

	opts, err := sourceflags.SearchOptions(c)
	if err != nil {
		return err
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load AWS config")
	}

	handler := NewHandler(dynamo.New(dynamodb.NewFromConfig(cfg), tableName), opts...)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment", "table", tableName)
		lambda.Start(handler.HandleRequest)
	} else {
		slog.InfoContext(ctx, "Function cannot run outside of AWS Lambda environment")
	}

	return nil
}
