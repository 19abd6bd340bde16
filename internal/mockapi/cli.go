package mockapi

import (
	"os"
)

// ShowHelp prints usage information for the mock API server.
func ShowHelp() {
	os.Stdout.WriteString(`UserPulse Mock API
==================

A JSONPlaceholder-flavored HTTP server for exercising the report pipeline
without reaching the public API.

Usage:
  go run cmd/mock-api/main.go [options]

Options:
  -addr string
        Listen address (default ":3000")
  -users int
        Number of user fixtures to generate (default 10)
  -posts int
        Number of post fixtures to generate (default 100)
  -seed int
        Seed for deterministic fixtures (default 42)
  -fail-first int
        Answer the first N collection requests with the failure status (default 0)
  -fail-status int
        Status code used for injected failures (default 503)
  -help
        Show this help message

Examples:
  # Serve the default fixture set
  go run cmd/mock-api/main.go

  # Larger data set on another port
  go run cmd/mock-api/main.go -addr :8080 -users 50 -posts 1000

  # Exercise client retries
  go run cmd/mock-api/main.go -fail-first 2 -fail-status 503

Endpoints:
  GET /users    paginated via _page/_limit or _start/_limit
  GET /posts    paginated via _page/_limit or _start/_limit
  GET /healthz  liveness plus fixture counts
`)
}
