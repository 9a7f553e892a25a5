// Package ui renders terminal output for gimgdl: colored message helpers,
// the per-run Progress reporter and optional desktop notifications.
package ui
