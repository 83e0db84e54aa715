package store

import (
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"agwakwagan/storage"
)

// Config tunes the persistence pipeline.
type Config struct {
	// QueueSize bounds the number of boards waiting to be saved. When the
	// queue is full, mutations block on the handoff so saves keep issue
	// order instead of being dropped or reordered.
	QueueSize int
	// SaveTimeout bounds a single adapter Save call.
	SaveTimeout time.Duration
}

// DefaultConfig reads the pipeline tunables from the environment.
func DefaultConfig() Config {
	return Config{
		QueueSize:   envInt("AGWAKWAGAN_SAVE_QUEUE", 64),
		SaveTimeout: envDur("AGWAKWAGAN_SAVE_TIMEOUT", 30*time.Second),
	}
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
	if c.SaveTimeout <= 0 {
		c.SaveTimeout = 30 * time.Second
	}
	return c
}

// Options configures a Store.
type Options struct {
	Config Config
	Logger *log.Logger
	// OnSaveFailure is invoked from the persistence pipeline when a save
	// fails. The in-memory mutation is already applied and is not rolled
	// back; the callback exists so callers can surface the failure and
	// offer a retry.
	OnSaveFailure func(SaveFailure)
	// Adapter defaults to an in-memory adapter when nil.
	Adapter storage.Adapter
}

func envInt(name string, def int) int {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDur(name string, def time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
