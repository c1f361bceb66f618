package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvDefaults(t *testing.T) {
	cfg := LoadEnv()

	assert.Equal(t, 100.0, cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 10.0, cfg.Pricing.FlatShipping)
	assert.Equal(t, 0.15, cfg.Pricing.TaxRate)
	assert.False(t, cfg.Inventory.DecrementOnPayment)
	assert.Equal(t, []string{"COMPLETED"}, cfg.Payment.AcceptedStatuses)
	assert.Equal(t, "orders.events", cfg.Kafka.Topic)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PRICING_TAX_RATE", "0.2")
	t.Setenv("PRICING_FLAT_SHIPPING", "not-a-number")
	t.Setenv("INVENTORY_DECREMENT_ON_PAYMENT", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("CART_TTL_HOURS", "2")

	cfg := LoadEnv()

	assert.Equal(t, 0.2, cfg.Pricing.TaxRate)
	assert.Equal(t, 10.0, cfg.Pricing.FlatShipping)
	assert.True(t, cfg.Inventory.DecrementOnPayment)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Redis.CartTTL)
}
