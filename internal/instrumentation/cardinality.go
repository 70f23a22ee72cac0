package instrumentation

import "strings"

// ExtractUserDomain reduces an email address to its domain for metric
// labels. Full addresses are unbounded-cardinality values that inflate
// series counts in Prometheus; the domain keeps the label useful for
// grouping while staying bounded. Anything that does not look like an
// email maps to "unknown".
func ExtractUserDomain(email string) string {
	if email == "" {
		return "unknown"
	}

	parts := strings.Split(email, "@")
	if len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "unknown"
}

// Operation label values for Calendar API metrics.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationDelete = "delete"
)
