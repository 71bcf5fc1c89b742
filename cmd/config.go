package main

import "time"

type Config struct {
	BufferSize                int           `env:"BUFFER_SIZE,default=256"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,default=32"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	TimelineCapacity          int           `env:"TIMELINE_CAPACITY,default=50"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,default=5s"`
	WriteTimeout              time.Duration `env:"WRITE_TIMEOUT,default=10s"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,default=30s"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,default=168h"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	UploadDir                 string        `env:"UPLOAD_DIR,default=uploads"`
	LogLevel                  string        `env:"LOG_LEVEL,default=info"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	DebugPort                 int           `env:"DEBUG_PORT,default=0"`
}
