package poller

// DefaultQueries returns the five-query rotation run against a users table
// once Postgres is ready: a self join followed by a row count in a second
// result set, a lookup by id, a filter on the email domain, aggregates, and a
// name search.
func DefaultQueries() []Query {
	return []Query{
		{
			Name: "select_all_users",
			SQL: "SELECT u1.id, u1.first_name, u1.last_name, u1.email, u2.first_name AS paired_first, " +
				"u2.last_name AS paired_last, EXTRACT(EPOCH FROM u2.created_at - u1.created_at) AS created_diff_seconds " +
				"FROM users u1 CROSS JOIN users u2 ORDER BY u1.id, u2.id; " +
				"SELECT COUNT(*) AS total_users FROM users",
		},
		{
			Name: "select_user_by_id",
			SQL:  "SELECT id, first_name, last_name, email, created_at FROM users WHERE id = $1",
			Args: []any{1},
		},
		{
			Name: "select_users_by_domain",
			SQL:  "SELECT id, first_name, last_name, email FROM users WHERE email LIKE $1 ORDER BY last_name",
			Args: []any{"%example.com"},
		},
		{
			Name: "aggregate_users",
			SQL: "SELECT COUNT(*) AS total_users, MIN(created_at) AS earliest, MAX(created_at) AS latest, " +
				"AVG(LENGTH(email)) AS avg_email_length FROM users",
		},
		{
			Name: "search_users_by_name",
			SQL:  "SELECT id, first_name, last_name, email FROM users WHERE first_name LIKE $1 OR last_name LIKE $1 ORDER BY id",
			Args: []any{"%John%"},
		},
	}
}
