// Package migrations contains every schema migration. Each file registers
// its migrations from init(); blank-import this package wherever the
// migration runner is used (CLI, server boot, tests).
package migrations
