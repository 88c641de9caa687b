package postgres

// SQL statements for the single events table. The two WHERE-indexed columns
// mirror the secondary indexes of the DynamoDB backend.

const (
	queryPutEvent = `
		INSERT INTO fichron_events (
			id, fiction_name, property_imdb_id, character_name,
			event_date_and_time, event_type, created, modified
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	queryEventsByProperty = `
		SELECT
			id, fiction_name, property_imdb_id, character_name,
			event_date_and_time, event_type, created, modified
		FROM fichron_events
		WHERE property_imdb_id = $1
		ORDER BY created ASC
	`

	// queryEventsByCharacter is keyed by character name alone, matching the
	// name-only secondary index: no fiction filter.
	queryEventsByCharacter = `
		SELECT
			id, fiction_name, property_imdb_id, character_name,
			event_date_and_time, event_type, created, modified
		FROM fichron_events
		WHERE character_name = $1
		ORDER BY created ASC
	`
)
