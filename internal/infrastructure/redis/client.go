// Package redis almacena sesiones en Redis con expiración nativa.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/steadymonitor/pos-api/pkg/config"
)

// NewClient crea el cliente y verifica la conexión.
// Con contraseña definida y fuera de development se exige TLS.
func NewClient(ctx context.Context, cfg config.RedisConfig, app config.AppConfig) (*redis.Client, error) {
	options := &redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.Password != "" && !app.IsDevelopment() {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(options)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
