package workflow

import "time"

type Config struct {
	StageTimeout   time.Duration
	ReplySignature string
	ReplyEnabled   bool
}

func LoadConfig() *Config {
	return &Config{
		StageTimeout:   60 * time.Second,
		ReplySignature: "The Support Team",
	}
}
