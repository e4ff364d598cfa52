package sql

import _ "embed"

// Schema is the SQLite schema for the task table.
//
//go:embed schema.sql
var Schema string

// MySQLSchema is the MySQL flavour of Schema.
//
//go:embed schema_mysql.sql
var MySQLSchema string
