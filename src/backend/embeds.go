//go:build embed
// +build embed

package main

import "embed"

// Embed model files
//
//go:embed modelo_final/*
var modelFiles embed.FS

const embeddedModel = true
