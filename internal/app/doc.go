// Package app wires the runtime together: it loads the grid model, builds
// the dependency domain and scheduling policy, starts the resource pool, and
// submits every declared task. It owns the application's logger and
// configuration validation.
package app
