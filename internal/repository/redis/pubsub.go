package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sachin-raj-m/food-pass/internal/domain"
)

// RedemptionsPubSub fans redemption commits out to dashboard listeners.
type RedemptionsPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewRedemptionsPubSub(rdb *redis.Client) *RedemptionsPubSub {
	return &RedemptionsPubSub{
		rdb:     rdb,
		channel: ChannelRedemptions(),
	}
}

type couponRedeemedMsg struct {
	Type     string          `json:"type"`
	CouponID uuid.UUID       `json:"coupon_id"`
	EventID  uuid.UUID       `json:"event_id"`
	MealType domain.MealType `json:"meal_type"`
	TsUnix   int64           `json:"ts_unix"`
}

func (p *RedemptionsPubSub) PublishCouponRedeemed(
	ctx context.Context,
	couponID, eventID uuid.UUID,
	mealType domain.MealType,
) error {
	msg := couponRedeemedMsg{
		Type:     "coupon_redeemed",
		CouponID: couponID,
		EventID:  eventID,
		MealType: mealType,
		TsUnix:   time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *RedemptionsPubSub) Subscribe(
	ctx context.Context,
	handler func(ctx context.Context, couponID, eventID uuid.UUID),
) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev couponRedeemedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.CouponID != uuid.Nil {
				handler(ctx, ev.CouponID, ev.EventID)
			}
		}
	}
}
