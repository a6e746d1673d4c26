package domain

type SignalSource string

const (
	SignalCookie       SignalSource = "cookie"
	SignalPath         SignalSource = "path"
	SignalSubdomain    SignalSource = "subdomain"
	SignalCustomDomain SignalSource = "customDomain"
)

// Signal is one tenant-identifying hint extracted from a request. Extraction
// tags the origin; precedence is decided by the resolver, not here.
type Signal struct {
	Source SignalSource `json:"source"`
	Value  string       `json:"value"`
}
