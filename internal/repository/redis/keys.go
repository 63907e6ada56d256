package redis

import (
	"fmt"

	"github.com/google/uuid"
)

const ns = "foodpass:v1"

func KeyEventStats(eventID uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s:stats", ns, eventID)
}

func KeyGlobalStats(start, end string) string {
	return fmt.Sprintf("%s:stats:global:%s:%s", ns, start, end)
}

func ChannelRedemptions() string {
	return ns + ":redemptions"
}
