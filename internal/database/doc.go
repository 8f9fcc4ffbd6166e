// Package database persists retained pages, their similarity graph and the
// history of ingestion runs in SQLite (modernc.org/sqlite, no cgo).
//
// The webpages and webpage_similarities tables are read by other tools and
// their column names and types must not change. Every write operation runs
// in its own transaction; a failed operation leaves no partial rows behind.
//
// # Usage
//
//	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	id, err := db.AddWebpage(ctx, page)
//	similar, err := db.GetSimilarWebpages(ctx, id, 5, 0.5)
package database
