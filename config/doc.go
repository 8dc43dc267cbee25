// Package config holds the tunable parameters of the cloud and blur passes
// and the noise volume, loaded from TOML files.
//
// A Watcher reloads a file when it changes on disk and publishes the new
// values atomically, so passes can read the active configuration each
// frame without locking.
package config
