// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - SearchIndex: Lexical BM25 index over chunks
//   - DocumentStore: Document and chunk persistence
//   - TextExtractor: File-to-text conversion for the watched corpus
//   - Deliverer: Answer delivery (clipboard write or status-icon encoding)
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ModelClient: Remote inference. Without it, only index queries work.
//   - Classifier: Question classification. Without it, everything is
//     treated as an open-ended question.
//   - OCRService: Screenshot text extraction. Without it, screenshot
//     events are discarded.
//   - SnapshotStore: Index persistence for fast restart.
//   - FolderWatcher: Filesystem change notification. Without it, only
//     the periodic rescan keeps the index fresh.
//   - Notifier: Failure surfacing to the user.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
