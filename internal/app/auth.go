package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/tukangsapu/sapu/internal/models"
)

// Auth resolves bearer tokens to users via redis session hashes. Admin
// privilege is a role claim on the session, not an email comparison, so
// promoting someone is a data change rather than a deploy.
type Auth struct {
	enabled     bool
	redis       *redis.Client
	keyTemplate string
	tokenHeader string
}

func NewAuth(config *Config) (*Auth, error) {
	if !config.Server.EnableAuth {
		return &Auth{enabled: false}, nil
	}

	opt, err := redis.ParseURL(config.Auth.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Auth{
		enabled:     true,
		redis:       client,
		keyTemplate: config.Auth.SessionKeyTemplate,
		tokenHeader: config.Auth.TokenHeader,
	}, nil
}

func (a *Auth) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// UserFromRequest resolves the request's bearer token to a user. With auth
// disabled every caller passes as admin, which keeps local development and
// tests friction-free.
func (a *Auth) UserFromRequest(r *http.Request) (*models.User, error) {
	if !a.enabled {
		return &models.User{Role: models.RoleAdmin}, nil
	}

	authHeader := r.Header.Get(a.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return a.lookupSession(r.Context(), token)
}

func (a *Auth) lookupSession(ctx context.Context, token string) (*models.User, error) {
	key := strings.NewReplacer("{token}", token).Replace(a.keyTemplate)

	fields, err := a.redis.HGetAll(ctx, key).Result()
	if err != nil {
		logger.Debug.Printf("Redis error: %v", err)
		return nil, fmt.Errorf("redis error: %w", err)
	}
	if len(fields) == 0 {
		logger.Debug.Printf("Session not found for key: %s", key)
		return nil, fmt.Errorf("session not found")
	}

	return &models.User{
		Email: fields["email"],
		Role:  fields["role"],
	}, nil
}
