package migrations

import "embed"

// FS holds the SQL migrations for every supported backend, one directory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
