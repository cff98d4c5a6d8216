package websearch

import "time"

type Config struct {
	MaxResults int
	TopK       int
	CacheTTL   time.Duration
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxResults: 10,
		TopK:       5,
		CacheTTL:   10 * time.Minute,
		Timeout:    30 * time.Second,
	}
}
