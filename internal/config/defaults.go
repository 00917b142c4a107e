package config

import "time"

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "fieldcrm.db"}},
		Adapter: Adapter{
			RequestTimeout: 15 * time.Second,
			HealthPath:     "/health",
		},
		Server: Server{
			HTTPAddress:     "localhost:8765",
			ShutdownTimeout: 5 * time.Second,
		},
		Workers: Workers{
			ProbeInterval:     15 * time.Second,
			InitialCheckDelay: 2 * time.Second,
			DialTimeout:       3 * time.Second,
			RetryInterval:     30 * time.Second,
			RetryBase:         5 * time.Second,
			RetryMax:          10 * time.Minute,
		},
		Log: Log{Level: "info"},
	}
}
