// Package migrations embebe los archivos SQL del esquema para que el binario
// de migración no dependa de rutas en disco.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
