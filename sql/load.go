package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed collections.sql
var collectionsSQL string

//go:embed chunks.sql
var chunksSQL string

// Function lists for verification
var CollectionsFunctions = []string{
	"init_collections",
	"insert_collection",
	"select_collection",
	"select_all_collections",
	"delete_collection",
}

var ChunksFunctions = []string{
	"init_chunks",
	"insert_chunk",
	"select_chunk",
	"select_chunks_by_similarity",
	"count_chunks",
	"delete_chunk",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadCollectionsSql loads collection-related SQL functions
func LoadCollectionsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, CollectionsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing collections functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(collectionsSQL)
	if err != nil {
		return fmt.Errorf("error executing collections SQL: %w", err)
	}

	exist, err := checkFunctions(db, CollectionsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL collections functions loaded successfully")
	return nil
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL chunks functions loaded successfully")
	return nil
}

// checkFunctions reports whether every named SQL function already exists.
func checkFunctions(db *sql.DB, names []string) (bool, error) {
	for _, name := range names {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`, name).Scan(&exists)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
