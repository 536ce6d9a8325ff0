// Package models holds the GORM row types for the ledger tables and their
// mapping to domain aggregates. Domain packages never import GORM; the
// repositories in the parent package convert at the boundary.
//
// Tables: articles, people, assignments and the append-only stock_movements
// journal. The schema itself is owned by the SQL files under migrations/.
package models
