package testutil

// FixedIDGenerator returns the same invocation ID every time, for tests
// that compare journal records byte for byte.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator returns a generator for id, or "test-invocation"
// when id is empty.
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-invocation"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
