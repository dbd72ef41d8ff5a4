// Package domain defines the core business entities for Clipbrd.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A watched file tracked by the index manager
//   - Chunk: An indexed window of tokens from a document
//   - ClipboardEvent: A captured clipboard or screenshot event
//   - Answer: The produced response together with its delivery kind
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
