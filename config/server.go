package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/hazemkhaled/text-extractor/internal/notify"
)

var (
	serverOnce   sync.Once
	serverConfig *ServerConfig
)

type ServerConfig struct {
	ListenAddr string
	// APISecret authorizes inbound job submissions. Required: the process
	// refuses to start without it.
	APISecret string

	WorkerConcurrency int
	WorkerQueueDepth  int

	NotifyDefaultURL string
	NotifySecret     string
	NotifyTimeout    time.Duration
	NotifyTextCap    int
}

func GetServerConfig() *ServerConfig {
	serverOnce.Do(func() {
		loadEnv()
		serverConfig = &ServerConfig{
			ListenAddr:        getString("LISTEN_ADDR", ":8080"),
			APISecret:         getString("API_SECRET", ""),
			WorkerConcurrency: getInt("WORKER_CONCURRENCY", 4),
			WorkerQueueDepth:  getInt("WORKER_QUEUE_DEPTH", 64),
			NotifyDefaultURL:  getString("NOTIFY_DEFAULT_URL", ""),
			NotifySecret:      getString("NOTIFY_SECRET", ""),
			NotifyTimeout:     getSeconds("NOTIFY_TIMEOUT_SECONDS", notify.DefaultTimeout),
			NotifyTextCap:     getInt("NOTIFY_TEXT_CAP", notify.DefaultTextCap),
		}
	})
	return serverConfig
}

// Validate enforces the startup-fatal requirements.
func (c *ServerConfig) Validate() error {
	if c.APISecret == "" {
		return fmt.Errorf("API_SECRET must be set")
	}
	return nil
}
