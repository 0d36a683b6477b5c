package migrations

import "embed"

// Migrations holds the ordered golang-migrate files compiled into the binary.
//
//go:embed *.sql
var Migrations embed.FS
