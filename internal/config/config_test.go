package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "JWT_TTL", "CATALOG_PAGE_SIZE", "AUTO_MIGRATE", "KAFKA_BROKERS"} {
		t.Setenv(k, "")
	}
	c := Load()
	assert.Equal(t, ":8000", c.HTTPAddr)
	assert.Equal(t, 30*time.Minute, c.JWTTTL)
	assert.Equal(t, 5, c.CatalogPageSize)
	assert.False(t, c.AutoMigrate)
	assert.Equal(t, []string{"kafka:9092"}, c.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,,")
	t.Setenv("CATALOG_CACHE_TTL", "1m")
	t.Setenv("NOTIFIER_WORKERS", "16")
	t.Setenv("AUTO_MIGRATE", "true")
	t.Setenv("SMTP_PORT", "not-a-number")

	c := Load()
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.KafkaBrokers)
	assert.Equal(t, time.Minute, c.CatalogCacheTTL)
	assert.Equal(t, 16, c.NotifierWorkers)
	assert.True(t, c.AutoMigrate)
	assert.Equal(t, 465, c.SMTPPort)
}
