// Package dashboard embeds the status page served by the status server.
//
// The page polls nothing itself; it reads /api/status once and then follows
// /api/sse for each new check.
package dashboard

import "embed"

// Assets holds assets/index.html.
//
//go:embed assets/*
var Assets embed.FS
