package loader

import (
	"github.com/Carmen-Shannon/oxy-glb/engine/container"
	"github.com/Carmen-Shannon/oxy-glb/engine/schema"
)

// loaderBackend decodes raw asset bytes into a container and its document.
// Concrete implementations (e.g., glbLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode validates the binary envelope and parses the scene description.
	//
	// Parameters:
	//   - data: the raw asset bytes; the returned container borrows them
	//
	// Returns:
	//   - *container.Container: the decoded envelope
	//   - *schema.Document: the parsed document
	//   - error: MalformedContainer or MalformedSchema
	Decode(data []byte) (*container.Container, *schema.Document, error)
}
