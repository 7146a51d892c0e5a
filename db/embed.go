// Package db embeds the storefront database schema.
package db

import _ "embed"

// Schema contains the DDL for the shop, product, order, and API key tables,
// including the order-touch trigger.
//
//go:embed migrations/001_schema.sql
var Schema string
