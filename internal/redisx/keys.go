package redisx

import "time"

const (
	// Catalog read-through cache: catalog:{operation}:{params}
	KeyCatalog = "catalog:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCatalog = 30 * time.Second
	TTLDedup   = 48 * time.Hour
)
