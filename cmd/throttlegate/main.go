// Throttlegate is a rate limiting decision service for an AI inference
// gateway. It evaluates sliding-window rate limits across tenant, API key,
// model, and model tier scopes and returns an admit/deny decision without
// performing any proxying itself.
//
// Usage:
//
//	# Start the server with default configuration
//	throttlegate run
//
//	# Start with a custom configuration file
//	throttlegate run --config /path/to/config.yaml
//
//	# Show version information
//	throttlegate version
package main

func main() {
	Execute()
}
