package sqlagent

import "time"

type Config struct {
	Timeout    time.Duration
	MaxRows    int
	SchemaName string
	// JoinHints is a curated hint block appended to the introspected schema
	// so the generator picks the right join columns.
	JoinHints string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    20 * time.Second,
		MaxRows:    50,
		SchemaName: "public",
	}
}
