package dispatch

import "time"

// Config carries env-tunable queue settings. Load it with
// config.Load and pass the result to New via Options.
type Config struct {
	BatchSize     int           `env:"DISPATCH_BATCH_SIZE" envDefault:"50"`
	MaxSize       int           `env:"DISPATCH_MAX_SIZE" envDefault:"10000"`
	RateLimit     int           `env:"DISPATCH_RATE_LIMIT" envDefault:"60"`
	RetryAttempts int           `env:"DISPATCH_RETRY_ATTEMPTS" envDefault:"3"`
	RetryDelay    time.Duration `env:"DISPATCH_RETRY_DELAY" envDefault:"1s"`
	SendTimeout   time.Duration `env:"DISPATCH_SEND_TIMEOUT" envDefault:"10s"`
	SMSInterval   time.Duration `env:"DISPATCH_SMS_INTERVAL" envDefault:"100ms"`
}

// Options converts the config into queue options.
func (c Config) Options() []Option {
	return []Option{
		WithBatchSize(c.BatchSize),
		WithMaxSize(c.MaxSize),
		WithRateLimit(c.RateLimit),
		WithRetryAttempts(c.RetryAttempts),
		WithRetryDelay(c.RetryDelay),
		WithSendTimeout(c.SendTimeout),
		WithSMSInterval(c.SMSInterval),
	}
}
