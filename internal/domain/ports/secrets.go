package ports

import "context"

// SecretManager resolves gateway credentials from a secrets backend. The
// Monext API key never lives in plain configuration in production; the server
// fetches it at startup from AWS Secrets Manager, Vault, or the environment.
type SecretManager interface {
	GetSecret(ctx context.Context, name string) (string, error)
}
