// Package main hosts the imagegroup CLI.
//
// The Cobra command tree fetches images into the configured folder, groups
// that folder by visual similarity, or does both in one run. Configuration
// resolution and logger setup live here so the library stays free of
// process-level concerns.
package main
