// Package resilience provides reliability patterns for calls to
// external services (content-extraction providers, completion APIs,
// webhooks).
//
// The package supports:
//   - Circuit breakers for external API calls
//   - Retry logic with exponential backoff
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DefaultConfig("completion-api"))
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return callExternalService()
//	})
//
//	retryConfig := retry.DefaultConfig()
//	err := retry.WithBackoff(ctx, retryConfig, func() error {
//	    return performOperation()
//	})
package resilience
