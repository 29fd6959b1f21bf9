package migrations

import "embed"

// PostgresFS holds the claim-record and reward-snapshot schema files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS holds the position-sample timeseries schema files.
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS
