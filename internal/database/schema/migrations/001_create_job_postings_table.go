package migrations

import "hirefeed/internal/database/schema"

var CreateJobPostingsTable = schema.Migration{
	Version:     1,
	Description: "Create job_postings table",
	Up: `
		CREATE TABLE IF NOT EXISTS job_postings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			tweet_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT '',
			keywords TEXT NOT NULL DEFAULT ''
		)
	`,
	Down: `DROP TABLE IF EXISTS job_postings`,
}

// All lists every migration in version order.
var All = []schema.Migration{
	CreateJobPostingsTable,
}
