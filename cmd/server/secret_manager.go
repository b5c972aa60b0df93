package main

import (
	"context"

	"github.com/kevin07696/monext-gateway/internal/adapters/secrets"
	"github.com/kevin07696/monext-gateway/internal/config"
	"github.com/kevin07696/monext-gateway/internal/domain/ports"
	"go.uber.org/zap"
)

// initSecretManager selects the secret manager backend holding the Monext
// API key.
//
// Supports:
//   - AWS Secrets Manager (SECRETS_PROVIDER=aws, needs AWS_REGION)
//   - HashiCorp Vault    (SECRETS_PROVIDER=vault, needs VAULT_ADDR + VAULT_TOKEN)
//   - Local environment  (SECRETS_PROVIDER=local, development only)
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SecretManager, error) {
	switch cfg.Secrets.Provider {
	case "aws":
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(cfg.Secrets.AWSRegion)
		awsCfg.Profile = cfg.Secrets.AWSProfile
		awsCfg.Endpoint = cfg.Secrets.AWSEndpoint
		awsCfg.CacheTTL = cfg.Secrets.CacheTTL
		return secrets.NewAWSSecretsManager(ctx, awsCfg, logger)

	case "vault":
		vaultCfg := secrets.DefaultVaultConfig(cfg.Secrets.VaultAddress)
		vaultCfg.Token = cfg.Secrets.VaultToken
		vaultCfg.MountPath = cfg.Secrets.VaultMountPath
		vaultCfg.CacheTTL = cfg.Secrets.CacheTTL
		return secrets.NewVaultSecretManager(ctx, vaultCfg, logger)

	default:
		return secrets.NewLocalSecretManager(cfg.Secrets.LocalPrefix, logger), nil
	}
}
