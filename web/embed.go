package web

import "embed"

// StaticFS embeds the single page front-end served at the root path.
//
//go:embed static/*
var StaticFS embed.FS
