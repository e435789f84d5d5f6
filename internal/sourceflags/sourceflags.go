// Package sourceflags declares the command-line flags shared by the binaries
// and builds the record source and search options they select.
package sourceflags

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/globalsearch"
	"github.com/letmevibethatforyou/globalsearch/algolia"
	"github.com/letmevibethatforyou/globalsearch/dynamo"
	"github.com/letmevibethatforyou/globalsearch/fuzzy"
	"github.com/letmevibethatforyou/globalsearch/postgres"
	"github.com/urfave/cli/v2"
)

// Source kinds accepted by --source.
const (
	KindFixture  = "fixture"
	KindPostgres = "postgres"
	KindDynamoDB = "dynamodb"
	KindAlgolia  = "algolia"
)

// Flags returns the flags selecting and configuring the record source.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Record source: fixture, postgres, dynamodb or algolia",
			EnvVars: []string{"SEARCH_SOURCE"},
			Value:   KindFixture,
		},
		&cli.StringFlag{
			Name:    "fixture",
			Usage:   "Path to a JSON fixture with catalog_items, orders and accounts",
			EnvVars: []string{"FIXTURE_PATH"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "Postgres connection string",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "table",
			Aliases: []string{"t"},
			Usage:   "DynamoDB table holding the records",
			EnvVars: []string{"TABLE_NAME"},
		},
		&cli.StringFlag{
			Name:    "algolia-secret-arn",
			Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
			EnvVars: []string{"ALGOLIA_SECRET_ARN"},
		},
		&cli.StringFlag{
			Name:    "algolia-secret-env",
			Usage:   "Environment whose {env}/algolia secret holds Algolia credentials",
			EnvVars: []string{"ALGOLIA_SECRET_ENV"},
		},
		&cli.StringFlag{
			Name:    "algolia-index-prefix",
			Usage:   "Prefix of the catalog_items, orders and accounts index names",
			EnvVars: []string{"ALGOLIA_INDEX_PREFIX"},
		},
	}
}

// SearchFlags returns the flags tuning the matcher.
func SearchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "limit",
			Aliases: []string{"l"},
			Usage:   "Maximum number of results to return",
			EnvVars: []string{"SEARCH_LIMIT"},
			Value:   globalsearch.DefaultLimit,
		},
		&cli.Float64Flag{
			Name:    "threshold",
			Usage:   "Score cutoff between 0 (exact only) and 1 (anything)",
			EnvVars: []string{"SEARCH_THRESHOLD"},
			Value:   globalsearch.DefaultThreshold,
		},
		&cli.IntFlag{
			Name:    "min-length",
			Usage:   "Trimmed query length below which no search runs",
			EnvVars: []string{"SEARCH_MIN_LENGTH"},
			Value:   globalsearch.DefaultMinQueryLength,
		},
		&cli.IntFlag{
			Name:    "distance",
			Usage:   "Location penalty divisor; 0 ignores where a match starts",
			EnvVars: []string{"SEARCH_DISTANCE"},
		},
		&cli.StringFlag{
			Name:    "matcher",
			Usage:   "Matching strategy: approximate or subsequence",
			EnvVars: []string{"SEARCH_MATCHER"},
			Value:   string(fuzzy.StrategyApproximate),
		},
	}
}

// SearchOptions reads the SearchFlags and validates them together.
func SearchOptions(c *cli.Context) ([]globalsearch.SearchOption, error) {
	opts := []globalsearch.SearchOption{
		globalsearch.WithLimit(c.Int("limit")),
		globalsearch.WithThreshold(c.Float64("threshold")),
		globalsearch.WithMinQueryLength(c.Int("min-length")),
		globalsearch.WithDistance(c.Int("distance")),
		globalsearch.WithStrategy(fuzzy.Strategy(strings.TrimSpace(c.String("matcher")))),
	}
	if _, err := globalsearch.NewConfig(opts...); err != nil {
		return nil, err
	}
	return opts, nil
}

// Config is the parsed source selection.
type Config struct {
	Kind               string
	FixturePath        string
	DatabaseURL        string
	TableName          string
	AlgoliaSecretARN   string
	AlgoliaSecretEnv   string
	AlgoliaIndexPrefix string
}

// FromContext reads the Flags.
func FromContext(c *cli.Context) Config {
	return Config{
		Kind:               strings.ToLower(strings.TrimSpace(c.String("source"))),
		FixturePath:        strings.TrimSpace(c.String("fixture")),
		DatabaseURL:        strings.TrimSpace(c.String("database-url")),
		TableName:          strings.TrimSpace(c.String("table")),
		AlgoliaSecretARN:   strings.TrimSpace(c.String("algolia-secret-arn")),
		AlgoliaSecretEnv:   strings.TrimSpace(c.String("algolia-secret-env")),
		AlgoliaIndexPrefix: strings.TrimSpace(c.String("algolia-index-prefix")),
	}
}

// Build constructs the selected source. The returned cleanup releases its
// connections and is never nil.
func (cfg Config) Build(ctx context.Context) (globalsearch.Source, func(), error) {
	noop := func() {}

	switch cfg.Kind {
	case KindFixture:
		if cfg.FixturePath == "" {
			return nil, noop, errors.New("--fixture is required for the fixture source")
		}
		src, err := globalsearch.LoadFixture(cfg.FixturePath)
		if err != nil {
			return nil, noop, err
		}
		slog.InfoContext(ctx, "using fixture source", "path", cfg.FixturePath)
		return src, noop, nil

	case KindPostgres:
		if cfg.DatabaseURL == "" {
			return nil, noop, errors.New("--database-url is required for the postgres source")
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, errors.Wrap(err, "failed to connect to postgres")
		}
		slog.InfoContext(ctx, "using postgres source")
		return postgres.New(pool), pool.Close, nil

	case KindDynamoDB:
		if cfg.TableName == "" {
			return nil, noop, errors.New("--table is required for the dynamodb source")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, noop, errors.Wrap(err, "failed to load AWS config")
		}
		slog.InfoContext(ctx, "using dynamodb source", "table", cfg.TableName)
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.TableName), noop, nil

	case KindAlgolia:
		fetchSecrets, err := cfg.algoliaSecrets(ctx)
		if err != nil {
			return nil, noop, err
		}
		indices := algolia.DefaultIndices(cfg.AlgoliaIndexPrefix)
		slog.InfoContext(ctx, "using algolia source",
			"catalog_items_index", indices.CatalogItems,
			"orders_index", indices.Orders,
			"accounts_index", indices.Accounts,
		)
		return algolia.NewSource(algolia.NewClient(fetchSecrets), indices), noop, nil

	default:
		return nil, noop, errors.WithSecondaryError(globalsearch.ErrInvalidOption,
			errors.Newf("unknown source %q", cfg.Kind))
	}
}

func (cfg Config) algoliaSecrets(ctx context.Context) (algolia.FetchSecrets, error) {
	if cfg.AlgoliaSecretARN == "" && cfg.AlgoliaSecretEnv == "" {
		return algolia.EnvSecrets(), nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}
	client := secretsmanager.NewFromConfig(awsCfg)

	if cfg.AlgoliaSecretARN != "" {
		slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", cfg.AlgoliaSecretARN)
		return algolia.AWSSecretsFromARN(ctx, client, cfg.AlgoliaSecretARN), nil
	}
	slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "environment", cfg.AlgoliaSecretEnv)
	return algolia.AWSSecrets(ctx, client, cfg.AlgoliaSecretEnv), nil
}
