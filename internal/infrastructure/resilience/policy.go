package resilience

import "time"

// Config tunes retry and circuit-breaker behavior for the outbound calls
// this service makes: model recognition/generation and queue publishes.
type Config struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	BreakerEnabled       bool
	BreakerMinSamples    uint32
	BreakerFailureRatio  float64
	BreakerCooldown      time.Duration
	BreakerHalfOpenCalls uint32
}

// DefaultConfig is tuned for slow remote model calls: a page transcription
// can legitimately take tens of seconds, so backoff starts high enough not
// to hammer a struggling provider, and the breaker trips on few samples
// because worker call volume is low.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    250 * time.Millisecond,
		MaxBackoff:        2 * time.Second,
		BackoffMultiplier: 2.0,

		BreakerEnabled:       true,
		BreakerMinSamples:    5,
		BreakerFailureRatio:  0.6,
		BreakerCooldown:      20 * time.Second,
		BreakerHalfOpenCalls: 1,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = def.InitialBackoff
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = def.MaxBackoff
	}
	if out.MaxBackoff < out.InitialBackoff {
		out.MaxBackoff = out.InitialBackoff
	}
	if out.BackoffMultiplier < 1.0 {
		out.BackoffMultiplier = def.BackoffMultiplier
	}

	if out.BreakerMinSamples == 0 {
		out.BreakerMinSamples = def.BreakerMinSamples
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = def.BreakerFailureRatio
	}
	if out.BreakerCooldown <= 0 {
		out.BreakerCooldown = def.BreakerCooldown
	}
	if out.BreakerHalfOpenCalls == 0 {
		out.BreakerHalfOpenCalls = def.BreakerHalfOpenCalls
	}

	return out
}

// ErrorClassification tells the executor how to treat one failure: whether
// another attempt makes sense, and whether the breaker should count it.
type ErrorClassification struct {
	Retryable     bool
	RecordFailure bool
}

type ErrorClassifier func(err error) ErrorClassification

// strictClassifier treats every error as final. Used when a caller supplies
// no classifier of its own.
func strictClassifier(error) ErrorClassification {
	return ErrorClassification{RecordFailure: true}
}
