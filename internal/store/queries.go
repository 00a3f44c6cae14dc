package store

// postgres statements, %s is the sanitized table identifier
const (
	queryCreateTable = `
		CREATE TABLE IF NOT EXISTS %s (
			pk TEXT NOT NULL,
			sk TEXT NOT NULL DEFAULT '',
			body JSONB NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (pk, sk)
		)
	`

	queryGet = `
		SELECT body
		FROM %s
		WHERE pk = $1 AND sk = $2
	`

	queryPut = `
		INSERT INTO %s (pk, sk, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (pk, sk)
		DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = NOW()
	`

	// the primary key doubles as the uniqueness constraint behind conditional puts
	queryPutIfAbsent = `
		INSERT INTO %s (pk, sk, body)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (pk, sk) DO NOTHING
	`

	queryUpdate = `
		UPDATE %s
		SET body = body || $3::jsonb, updated_at = NOW()
		WHERE pk = $1 AND sk = $2
		RETURNING body
	`

	queryPartition = `
		SELECT body
		FROM %s
		WHERE pk = $1
		ORDER BY sk
	`
)
