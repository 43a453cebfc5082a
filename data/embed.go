package data

import (
	_ "embed"
)

// IngredientCatalog is the ingredient master seed, a JSON array of catalog entries
//
//go:embed seed/ingredient_master.json
var IngredientCatalog []byte

//go:embed initdb/postgres/001-init.sql
var InitdbPostgres string

//go:embed initdb/mariadb/001-init.sql
var InitdbMariaDB string
