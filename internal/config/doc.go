// Package config provides environment-based configuration.
//
// All values are read once at process startup. Validates that the Mongo
// connection string is present when the document-store backend is selected.
package config
