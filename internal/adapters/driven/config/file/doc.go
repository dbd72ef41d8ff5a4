// Package file provides file-based configuration storage. Settings live in
// a TOML file under the clipbrd config directory; API keys come from the
// environment (optionally seeded from a .env file) and are never written
// to disk.
package file
