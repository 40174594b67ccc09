package dispatcher

import "time"

type Config struct {
	QueueSize      int           `envconfig:"SIREN_INGEST_QUEUE_SIZE" default:"1024"`
	DbFlushSize    int           `envconfig:"SIREN_INGEST_DB_FLUSH_SIZE" default:"64"`
	DbFlushTime    time.Duration `envconfig:"SIREN_INGEST_DB_FLUSH_TIME" default:"5s"`
	RebuildDBTime  time.Duration `envconfig:"SIREN_INGEST_REBUILD_DB_TIME" default:"60s"`
	MaxItemsStored int           `envconfig:"SIREN_INGEST_MAX_ITEMS_STORED" default:"0"`
	MaxStorageTime time.Duration `envconfig:"SIREN_INGEST_MAX_STORAGE_TIME" default:"0"`
}
