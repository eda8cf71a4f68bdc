package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/rachitpednekar/cloudshare/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// Credit balances are read far more often than they change, so reads go
// through a short-lived cache that ledger writes invalidate.
const creditBalanceTTL = 5 * time.Minute

// SetupCache initializes the connection to the Redis cache server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

func creditBalanceKey(clerkID string) string {
	return "credits:" + clerkID
}

type cachedBalance struct {
	Credits int    `json:"credits"`
	Plan    string `json:"plan"`
}

// SetCreditBalance stores a subject's credit balance and plan for fast reads
func SetCreditBalance(clerkID string, credits int, plan string) error {
	raw, err := json.Marshal(cachedBalance{Credits: credits, Plan: plan})
	if err != nil {
		return err
	}
	return GetClient().Set(ctx, creditBalanceKey(clerkID), raw, creditBalanceTTL).Err()
}

// GetCreditBalance retrieves a cached credit balance; redis.Nil on miss
func GetCreditBalance(clerkID string) (int, string, error) {
	raw, err := GetClient().Get(ctx, creditBalanceKey(clerkID)).Result()
	if err != nil {
		return 0, "", err
	}
	var cached cachedBalance
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return 0, "", err
	}
	return cached.Credits, cached.Plan, nil
}

// InvalidateCreditBalance drops a subject's cached balance after a ledger write
func InvalidateCreditBalance(clerkID string) error {
	return GetClient().Del(ctx, creditBalanceKey(clerkID)).Err()
}
