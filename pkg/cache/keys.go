package cache

import "slices"

// Keyer builds cache keys.
type Keyer interface {
	// RecommendationKey identifies a completion reply for a model and the
	// full conversation sent to it.
	RecommendationKey(model string, opts RecommendationKeyOpts) string

	// ArtifactKey identifies a rendered output for one catalog.
	ArtifactKey(catalogHash string, opts ArtifactKeyOpts) string
}

// RecommendationKeyOpts are the request inputs that change a reply.
type RecommendationKeyOpts struct {
	SystemPrompt string
	Messages     []string
	Temperature  float64
	MaxTokens    int
}

// ArtifactKeyOpts are the render inputs that change an artifact.
type ArtifactKeyOpts struct {
	Format    string
	Selection []string
	Width     float64
	Height    float64
	Scale     float64
	EdgeInset float64
	Detailed  bool
	Geometry  []float64 // layout spacing, offsets and radius
}

// DefaultKeyer hashes the key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) RecommendationKey(model string, opts RecommendationKeyOpts) string {
	return hashKey("recommendation", model, opts.SystemPrompt, opts.Messages, opts.Temperature, opts.MaxTokens)
}

func (DefaultKeyer) ArtifactKey(catalogHash string, opts ArtifactKeyOpts) string {
	sel := slices.Sorted(slices.Values(opts.Selection))
	return hashKey("artifact", catalogHash, opts.Format, sel, opts.Width, opts.Height, opts.Scale, opts.EdgeInset, opts.Detailed, opts.Geometry)
}
