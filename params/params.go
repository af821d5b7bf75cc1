package params

import "time"

const (
	ServerBodyLimit    = 1048576 // 1 MiB
	ServerIdleTimeout  = 30 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 10 * time.Second

	UserStateKeyPrefix = "2fa:u:"

	TwoFactorMaxFailCount = 15             // maximum total failed challenge attempts per user+ip; resets on successful verification
	TwoFactorStateMaxAge  = 24 * time.Hour // time to live for per user+ip challenge state

	AuthRateLimitMax    = 30              // requests per window per ip on auth endpoints
	AuthRateLimitWindow = 1 * time.Minute // rate limiter window

	AccessTokenMaxAge = 12 * time.Hour // default admin session token lifetime

	HealthCheckServerAddr = ":3001" // health check server address
)
