package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// LocalSecretManager implements ports.SecretManager from environment
// variables. Intended for local development and tests only.
type LocalSecretManager struct {
	prefix string
	logger *zap.Logger
}

// NewLocalSecretManager creates an environment-backed secret manager. Secret
// names are mapped to environment variables by upper-casing and replacing
// path separators, e.g. "monext/api-key" becomes PREFIX_MONEXT_API_KEY.
func NewLocalSecretManager(prefix string, logger *zap.Logger) *LocalSecretManager {
	logger.Warn("using local secret manager, do not use in production")
	return &LocalSecretManager{prefix: prefix, logger: logger}
}

// GetSecret resolves a secret from the environment.
func (l *LocalSecretManager) GetSecret(_ context.Context, name string) (string, error) {
	envName := l.envName(name)
	value := os.Getenv(envName)
	if value == "" {
		return "", fmt.Errorf("secret %s not set (env %s)", name, envName)
	}
	return value, nil
}

func (l *LocalSecretManager) envName(name string) string {
	replacer := strings.NewReplacer("/", "_", "-", "_", ".", "_")
	envName := strings.ToUpper(replacer.Replace(name))
	if l.prefix != "" {
		return l.prefix + "_" + envName
	}
	return envName
}
