package service

import (
	postgres "github.com/sachin-raj-m/food-pass/internal/repository/postgres"
	redis "github.com/sachin-raj-m/food-pass/internal/repository/redis"
	"github.com/sachin-raj-m/food-pass/internal/service/issuance"
	"github.com/sachin-raj-m/food-pass/internal/service/redemption"
	"github.com/sachin-raj-m/food-pass/internal/service/stats"
)

type Services struct {
	Issuance   *issuance.Service
	Redemption *redemption.Service
	Stats      *stats.Service
}

type Config struct {
	Stats stats.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.RedemptionsPubSub,
	limiter *redis.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Issuance:   issuance.New(store, cache),
		Redemption: redemption.New(store, cache, pubsub, limiter),
		Stats:      stats.New(store, cache, cfg.Stats),
	}
}
