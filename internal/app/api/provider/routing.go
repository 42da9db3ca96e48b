package provider

// RoutingConfig selects the providers tried for a request and the minimum
// confidence a result needs to be accepted.
type RoutingConfig struct {
	Primary             string   `json:"primary_provider" yaml:"primary_provider"`
	Fallbacks           []string `json:"fallback_providers" yaml:"fallback_providers"`
	ConfidenceThreshold float64  `json:"confidence_threshold" yaml:"confidence_threshold"`
}

// Chain returns [Primary] followed by Fallbacks. Duplicates are kept, so a
// provider listed twice is attempted twice.
func (c RoutingConfig) Chain() []string {
	chain := make([]string, 0, 1+len(c.Fallbacks))
	chain = append(chain, c.Primary)
	return append(chain, c.Fallbacks...)
}

// Accepts reports whether a confidence clears the threshold. Equality passes.
func (c RoutingConfig) Accepts(confidence float64) bool {
	return confidence >= c.ConfidenceThreshold
}

// StaticRouting is a fixed RoutingSource.
type StaticRouting RoutingConfig

// Routing implements RoutingSource.
func (s StaticRouting) Routing() RoutingConfig {
	cfg := RoutingConfig(s)
	cfg.Fallbacks = append([]string(nil), s.Fallbacks...)
	return cfg
}
