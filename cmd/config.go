package main

import "time"

type Config struct {
	SessionBufferSize         int           `env:"SESSION_BUFFER_SIZE,required=true"`
	NotificationBufferSize    int           `env:"NOTIFICATION_BUFFER_SIZE,required=true"`
	ModerationCharReplacement rune          `env:"MODERATION_CHARACTER_REPLACEMENT,required=true"`
	SinkTimeout               time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,required=true"`
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	TokenSecret               string        `env:"TOKEN_SECRET,required=true"`
	WebhookURL                string        `env:"NOTIFICATION_WEBHOOK_URL"`
	NotifyWhenOnline          bool          `env:"NOTIFY_WHEN_ONLINE,default=false"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
}
