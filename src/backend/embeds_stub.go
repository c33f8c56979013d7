//go:build !embed
// +build !embed

package main

import "embed"

// Builds without the embed tag read the model from disk
var modelFiles embed.FS

const embeddedModel = false
