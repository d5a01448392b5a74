package answerdesk

import "errors"

var (
	// ErrCatalogRequired is returned when a retriever is built without a catalog.
	ErrCatalogRequired = errors.New("catalog required")

	// ErrEngineRequired is returned when a retriever is built without an engine.
	ErrEngineRequired = errors.New("embedding engine required")
)
