// Package manifest models package.json documents and applies dependency version edits.
//
// Document preserves fields it does not understand so edits only touch the
// dependency tables, and Editor layers execution-mode awareness on top so
// simulated runs report intended edits without writing files.
package manifest
