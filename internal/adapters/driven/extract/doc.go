// Package extract provides text extractors for the file formats found in
// the watched folder. Each format extractor knows how to turn one family of
// file extensions into plain text.
//
// Extractors are registered with the Registry at startup.
package extract
