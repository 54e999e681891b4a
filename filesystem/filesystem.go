// Package filesystem holds the afero backend shared by the caches, logs, config and preferences.
package filesystem

import "github.com/spf13/afero"

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active backend.
func API() afero.Afero {
	return backend
}

// Set replaces the backend and returns a function restoring the previous one.
func Set(fs afero.Fs) (restore func()) {
	previous := backend
	backend = afero.Afero{Fs: fs}
	return func() { backend = previous }
}

// SetOsFs switches to the operating system filesystem.
func SetOsFs() {
	Set(afero.NewOsFs())
}

// SetMemMapFs switches to a volatile in-memory backend.
func SetMemMapFs() {
	Set(afero.NewMemMapFs())
}
