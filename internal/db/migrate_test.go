package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	// OpenDB already migrated; running again must be a no-op.
	require.NoError(t, Migrate(database))

	for _, table := range []string{
		"plans", "draft_periods", "draft_poas",
		"draft_activities", "draft_tasks", "draft_programmings", "submissions",
	} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name = ?`, table,
		).Scan(&name)
		assert.NoError(t, err, "table %s missing", table)
	}
}

func TestMigrate_CascadeDeletesDraftTree(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()

	mustExec := func(query string, args ...any) {
		t.Helper()
		_, err := database.Exec(query, args...)
		require.NoError(t, err)
	}

	mustExec(`INSERT INTO plans (id, name, project_id, project_code, created_at, updated_at)
		VALUES ('pl-1', 'p', 'proj-1', 'INFR-024', '2025-01-01', '2025-01-01')`)
	mustExec(`INSERT INTO draft_periods (temp_id, plan_id, code, name, year, start_date, end_date, month_label)
		VALUES ('t-per', 'pl-1', 'PER-2025', 'n', 2025, '2025-01-01', '2025-12-31', 'January-December')`)
	mustExec(`INSERT INTO draft_poas (temp_id, plan_id, period_temp_id, period_year, type, code, budget)
		VALUES ('t-poa', 'pl-1', 't-per', 2025, 'operational', 'POA-INFR-024-2025', '1000')`)
	mustExec(`INSERT INTO draft_activities (temp_id, poa_temp_id, ordinal, description)
		VALUES ('t-act', 't-poa', 1, 'd')`)
	mustExec(`INSERT INTO draft_tasks (temp_id, activity_temp_id, detail_id, name, quantity, unit_price)
		VALUES ('t-task', 't-act', 'det-1', 'task', 1, '100')`)
	mustExec(`INSERT INTO draft_programmings (task_temp_id, month_slot, value)
		VALUES ('t-task', 3, '100')`)

	mustExec(`DELETE FROM plans WHERE id = 'pl-1'`)

	var count int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM draft_programmings`).Scan(&count))
	assert.Zero(t, count, "cascade must remove the whole draft tree")
}
