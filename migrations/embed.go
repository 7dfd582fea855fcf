package migrations

import "embed"

// Files holds the forward-only SQL migrations compiled into the
// binary and applied on database open.
//
//go:embed *.sql
var Files embed.FS
