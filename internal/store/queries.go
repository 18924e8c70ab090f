package store

// SQL query constants organized by entity.
// All SQL lives here — PostgresStore methods reference these constants.

// Account queries.
const (
	queryCreateAccount = `
		INSERT INTO accounts (
			ml_user_id, nickname, email, status,
			reputation, sales, products, last_sync,
			access_token, refresh_token, auto_sync,
			created_at, updated_at
		) VALUES (
			@ml_user_id, @nickname, @email, @status,
			@reputation, @sales, @products, @last_sync,
			@access_token, @refresh_token, @auto_sync,
			now(), now()
		)
		RETURNING id, created_at, updated_at`

	accountColumns = `id, ml_user_id, nickname, email, status,
		reputation, sales, products, COALESCE(last_sync, ''),
		COALESCE(access_token, ''), COALESCE(refresh_token, ''), auto_sync,
		created_at, updated_at`

	queryGetAccount = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	queryGetAccountByNickname = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE nickname = $1`

	queryListAccounts = `
		SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY created_at`

	queryListAutoSyncAccounts = `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE auto_sync = true AND status != 'suspended'
		ORDER BY created_at`

	queryUpdateAccount = `
		UPDATE accounts SET
			ml_user_id    = @ml_user_id,
			nickname      = @nickname,
			email         = @email,
			status        = @status,
			reputation    = @reputation,
			sales         = @sales,
			products      = @products,
			last_sync     = @last_sync,
			access_token  = @access_token,
			refresh_token = @refresh_token,
			auto_sync     = @auto_sync,
			updated_at    = now()
		WHERE id = @id`

	queryDeleteAccount = `DELETE FROM accounts WHERE id = $1`

	querySetAccountAutoSync = `
		UPDATE accounts SET
			auto_sync  = $2,
			updated_at = now()
		WHERE id = $1`
)

// Product queries.
const (
	queryGetProduct = `
		SELECT ml_item_id, title, price, stock, status, account_nickname,
			views, sales, COALESCE(category, ''), images, COALESCE(description, '')
		FROM products
		WHERE ml_item_id = $1`

	queryDeleteAccountProducts = `DELETE FROM products WHERE account_nickname = $1`

	queryInsertProduct = `
		INSERT INTO products (
			ml_item_id, title, price, stock, status, account_nickname,
			views, sales, category, images, description
		) VALUES (
			@ml_item_id, @title, @price, @stock, @status, @account_nickname,
			@views, @sales, @category, @images, @description
		)
		ON CONFLICT (ml_item_id) DO UPDATE SET
			title            = EXCLUDED.title,
			price            = EXCLUDED.price,
			stock            = EXCLUDED.stock,
			status           = EXCLUDED.status,
			account_nickname = EXCLUDED.account_nickname,
			views            = EXCLUDED.views,
			sales            = EXCLUDED.sales,
			category         = EXCLUDED.category,
			images           = EXCLUDED.images,
			description      = EXCLUDED.description`
)

// User queries.
const (
	queryCreateUser = `
		INSERT INTO users (username, password_hash, role, permissions, created_by, created_at)
		VALUES (@username, @password_hash, @role, @permissions, @created_by, now())
		RETURNING id, created_at`

	userColumns = `id, username, password_hash, role, permissions, created_at, COALESCE(created_by, '')`

	queryGetUser = `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1`

	queryGetUserByUsername = `
		SELECT ` + userColumns + `
		FROM users
		WHERE username = $1`

	queryListUsers = `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at`

	queryUpdateUser = `
		UPDATE users SET
			username      = @username,
			password_hash = @password_hash,
			role          = @role,
			permissions   = @permissions
		WHERE id = @id`

	queryDeleteUser = `DELETE FROM users WHERE id = $1`
)

// Sync run queries.
const (
	queryInsertSyncRun = `
		INSERT INTO sync_runs (account_id, trigger_kind)
		VALUES ($1, $2)
		RETURNING id`

	queryCompleteSyncRun = `
		UPDATE sync_runs SET
			finished_at     = now(),
			profile_status  = $2,
			products_status = $3,
			stats_status    = $4,
			products_reason = NULLIF($5, ''),
			stats_reason    = NULLIF($6, ''),
			error_text      = NULLIF($7, '')
		WHERE id = $1`

	syncRunColumns = `id, account_id, trigger_kind,
		profile_status, products_status, stats_status,
		COALESCE(products_reason, ''), COALESCE(stats_reason, ''), COALESCE(error_text, ''),
		started_at, finished_at`

	queryListSyncRuns = `
		SELECT ` + syncRunColumns + `
		FROM sync_runs
		WHERE account_id = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestSyncRuns = `
		SELECT DISTINCT ON (account_id) ` + syncRunColumns + `
		FROM sync_runs
		ORDER BY account_id, started_at DESC`
)

// State queries.
const (
	queryCountAccounts = `
		SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'active') AS active
		FROM accounts`

	queryCountProducts = `SELECT COUNT(*) FROM products`
	queryCountUsers    = `SELECT COUNT(*) FROM users`
	queryCountSyncRuns = `SELECT COUNT(*) FROM sync_runs`

	queryLastSyncAt = `
		SELECT max(finished_at)
		FROM sync_runs
		WHERE profile_status = 'ok'`
)
