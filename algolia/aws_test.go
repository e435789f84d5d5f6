package algolia

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// mockSecretsManagerClient implements SecretsManagerClient for testing
type mockSecretsManagerClient struct {
	secretValue *string
	err         error
	requested   string
}

func (m *mockSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	m.requested = aws.ToString(params.SecretId)
	if m.err != nil {
		return nil, m.err
	}

	return &secretsmanager.GetSecretValueOutput{
		SecretString: m.secretValue,
	}, nil
}

func TestAWSSecrets(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		secret     *string
		err        error
		wantPath   string
		wantAppID  string
		wantAPIKey string
		wantErr    string
	}{
		{
			name:       "production",
			env:        "production",
			secret:     aws.String(`{"app_id":"test-app-id","api_key":"test-api-key"}`),
			wantPath:   "production/algolia",
			wantAppID:  "test-app-id",
			wantAPIKey: "test-api-key",
		},
		{
			name:       "staging path",
			env:        "staging",
			secret:     aws.String(`{"app_id":"staging-app-id","api_key":"staging-api-key"}`),
			wantPath:   "staging/algolia",
			wantAppID:  "staging-app-id",
			wantAPIKey: "staging-api-key",
		},
		{
			name:     "get secret error",
			env:      "production",
			err:      errors.New("secrets manager error"),
			wantPath: "production/algolia",
			wantErr:  "failed to get secret from AWS Secrets Manager at path production/algolia",
		},
		{
			name:     "nil secret string",
			env:      "production",
			wantPath: "production/algolia",
			wantErr:  "secret at path production/algolia has no string value",
		},
		{
			name:     "invalid json",
			env:      "production",
			secret:   aws.String(`{"app_id":"test-app-id","api_key":}`),
			wantPath: "production/algolia",
			wantErr:  "failed to unmarshal secret JSON at path production/algolia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSecretsManagerClient{secretValue: tt.secret, err: tt.err}

			secrets, err := AWSSecrets(context.Background(), client, tt.env)()

			if client.requested != tt.wantPath {
				t.Errorf("Expected secret id %q, got %q", tt.wantPath, client.requested)
			}
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Expected error to contain %q, got %q", tt.wantErr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if secrets.AppID != tt.wantAppID {
				t.Errorf("Expected AppID %q, got %q", tt.wantAppID, secrets.AppID)
			}
			if secrets.APIKey != tt.wantAPIKey {
				t.Errorf("Expected APIKey %q, got %q", tt.wantAPIKey, secrets.APIKey)
			}
		})
	}
}

func TestAWSSecretsFromARN(t *testing.T) {
	arn := "arn:aws:secretsmanager:us-east-1:123456789012:secret:algolia-AbCdEf"
	client := &mockSecretsManagerClient{
		secretValue: aws.String(`{"app_id":"arn-app","api_key":"arn-key"}`),
	}

	secrets, err := AWSSecretsFromARN(context.Background(), client, arn)()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if client.requested != arn {
		t.Errorf("Expected secret id %q, got %q", arn, client.requested)
	}
	if secrets.AppID != "arn-app" || secrets.APIKey != "arn-key" {
		t.Errorf("Unexpected secrets %+v", secrets)
	}

	client = &mockSecretsManagerClient{}
	_, err = AWSSecretsFromARN(context.Background(), client, arn)()
	if err == nil || !strings.Contains(err.Error(), "with ARN "+arn+" has no string value") {
		t.Errorf("Expected nil secret error, got %v", err)
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("ALGOLIA_APP_ID", "")
	t.Setenv("ALGOLIA_API_KEY", "")
	if _, err := EnvSecrets()(); err == nil {
		t.Error("Expected error when ALGOLIA_APP_ID is unset")
	}

	t.Setenv("ALGOLIA_APP_ID", "env-app")
	if _, err := EnvSecrets()(); err == nil {
		t.Error("Expected error when ALGOLIA_API_KEY is unset")
	}

	t.Setenv("ALGOLIA_API_KEY", "env-key")
	secrets, err := EnvSecrets()()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if secrets.AppID != "env-app" || secrets.APIKey != "env-key" {
		t.Errorf("Unexpected secrets %+v", secrets)
	}
}

func TestNewClientMissingCredentials(t *testing.T) {
	tests := map[string]FetchSecrets{
		"fetch error": func() (Secrets, error) { return Secrets{}, errors.New("boom") },
		"empty app":   StaticSecrets("", "key"),
		"empty key":   StaticSecrets("app", ""),
	}

	for name, fetch := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewClient(fetch)
			if _, err := c.BrowseObjects(context.Background(), "catalog_items"); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
