package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmorante/poaplan/internal/db"
	"github.com/cmorante/poaplan/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested row does not exist locally.
var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// SQLitePlanRepo implements PlanRepo over a DBTX, so it composes into a
// unit-of-work transaction when the caller needs atomicity.
type SQLitePlanRepo struct {
	db db.DBTX
}

// NewSQLitePlanRepo creates a new SQLitePlanRepo.
func NewSQLitePlanRepo(dbtx db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: dbtx}
}

// Save inserts or fully replaces the plan and its draft tree. Callers
// wanting atomicity run it inside a unit of work; the cascade on plans
// removes any previous tree.
func (r *SQLitePlanRepo) Save(ctx context.Context, plan *domain.Plan) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, plan.ID); err != nil {
		return fmt.Errorf("clearing previous plan: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO plans (id, name, project_id, project_code, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Name, plan.ProjectID, plan.ProjectCode, string(plan.Status),
		plan.CreatedAt.Format(time.RFC3339), plan.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting plan: %w", err)
	}

	for _, period := range plan.Periods {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO draft_periods (temp_id, plan_id, code, name, year, start_date, end_date, month_label)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			period.TempID, plan.ID, period.Code, period.Name, period.Year,
			period.StartDate.Format(dateLayout), period.EndDate.Format(dateLayout), period.MonthLabel,
		)
		if err != nil {
			return fmt.Errorf("inserting draft period %s: %w", period.Code, err)
		}
	}

	for poaIdx, poa := range plan.POAs {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO draft_poas (temp_id, plan_id, period_temp_id, period_year, type, code, budget, order_index)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			poa.TempID, plan.ID, poa.PeriodTempID, poa.PeriodYear,
			string(poa.Type), poa.Code, poa.Budget.String(), poaIdx,
		)
		if err != nil {
			return fmt.Errorf("inserting draft POA %s: %w", poa.Code, err)
		}

		for _, act := range poa.Activities {
			_, err := r.db.ExecContext(ctx,
				`INSERT INTO draft_activities (temp_id, poa_temp_id, ordinal, description)
				 VALUES (?, ?, ?, ?)`,
				act.TempID, poa.TempID, act.Ordinal, act.Description,
			)
			if err != nil {
				return fmt.Errorf("inserting draft activity %d of %s: %w", act.Ordinal, poa.Code, err)
			}

			for taskIdx, task := range act.Tasks {
				_, err := r.db.ExecContext(ctx,
					`INSERT INTO draft_tasks (temp_id, activity_temp_id, detail_id, name, quantity, unit_price, order_index)
					 VALUES (?, ?, ?, ?, ?, ?, ?)`,
					task.TempID, act.TempID, task.DetailID, task.Name,
					task.Quantity, task.UnitPrice.String(), taskIdx,
				)
				if err != nil {
					return fmt.Errorf("inserting draft task %q: %w", task.Name, err)
				}

				for slot, value := range task.Months {
					if value.IsZero() {
						continue
					}
					_, err := r.db.ExecContext(ctx,
						`INSERT INTO draft_programmings (task_temp_id, month_slot, value)
						 VALUES (?, ?, ?)`,
						task.TempID, slot+1, value.String(),
					)
					if err != nil {
						return fmt.Errorf("inserting programming slot %d of %q: %w", slot+1, task.Name, err)
					}
				}
			}
		}
	}
	return nil
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	return r.getWhere(ctx, `id = ?`, id)
}

func (r *SQLitePlanRepo) GetByName(ctx context.Context, name string) (*domain.Plan, error) {
	return r.getWhere(ctx, `name = ?`, name)
}

func (r *SQLitePlanRepo) getWhere(ctx context.Context, where string, arg any) (*domain.Plan, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, project_id, project_code, status, created_at, updated_at
		 FROM plans WHERE `+where, arg)
	plan, err := scanPlan(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadTree(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *SQLitePlanRepo) List(ctx context.Context) ([]*domain.Plan, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, project_id, project_code, status, created_at, updated_at
		 FROM plans ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	defer rows.Close()

	var plans []*domain.Plan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plans: %w", err)
	}
	return plans, nil
}

func (r *SQLitePlanRepo) UpdateStatus(ctx context.Context, id string, status domain.PlanStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE plans SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating plan status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("plan %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLitePlanRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting plan: %w", err)
	}
	return nil
}

// loadTree populates the plan's periods, POAs, activities, tasks and
// programmings in their stored order.
func (r *SQLitePlanRepo) loadTree(ctx context.Context, plan *domain.Plan) error {
	periods, err := r.loadPeriods(ctx, plan.ID)
	if err != nil {
		return err
	}
	plan.Periods = periods

	poaRows, err := r.db.QueryContext(ctx,
		`SELECT temp_id, period_temp_id, period_year, type, code, budget
		 FROM draft_poas WHERE plan_id = ? ORDER BY order_index`, plan.ID)
	if err != nil {
		return fmt.Errorf("loading draft POAs: %w", err)
	}
	defer poaRows.Close()

	for poaRows.Next() {
		var poa domain.DraftPOA
		var poaType, budget string
		if err := poaRows.Scan(&poa.TempID, &poa.PeriodTempID, &poa.PeriodYear, &poaType, &poa.Code, &budget); err != nil {
			return fmt.Errorf("scanning draft POA: %w", err)
		}
		poa.Type = domain.POAType(poaType)
		if poa.Budget, err = decimal.NewFromString(budget); err != nil {
			return fmt.Errorf("parsing budget of %s: %w", poa.Code, err)
		}
		if poa.Activities, err = r.loadActivities(ctx, poa.TempID); err != nil {
			return err
		}
		plan.POAs = append(plan.POAs, poa)
	}
	return poaRows.Err()
}

func (r *SQLitePlanRepo) loadPeriods(ctx context.Context, planID string) ([]domain.Period, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT temp_id, code, name, year, start_date, end_date, month_label
		 FROM draft_periods WHERE plan_id = ? ORDER BY year`, planID)
	if err != nil {
		return nil, fmt.Errorf("loading draft periods: %w", err)
	}
	defer rows.Close()

	var periods []domain.Period
	for rows.Next() {
		var p domain.Period
		var start, end string
		if err := rows.Scan(&p.TempID, &p.Code, &p.Name, &p.Year, &start, &end, &p.MonthLabel); err != nil {
			return nil, fmt.Errorf("scanning draft period: %w", err)
		}
		if p.StartDate, err = time.Parse(dateLayout, start); err != nil {
			return nil, fmt.Errorf("parsing period start: %w", err)
		}
		if p.EndDate, err = time.Parse(dateLayout, end); err != nil {
			return nil, fmt.Errorf("parsing period end: %w", err)
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *SQLitePlanRepo) loadActivities(ctx context.Context, poaTempID string) ([]domain.DraftActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT temp_id, ordinal, description
		 FROM draft_activities WHERE poa_temp_id = ? ORDER BY ordinal`, poaTempID)
	if err != nil {
		return nil, fmt.Errorf("loading draft activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.DraftActivity
	for rows.Next() {
		var act domain.DraftActivity
		if err := rows.Scan(&act.TempID, &act.Ordinal, &act.Description); err != nil {
			return nil, fmt.Errorf("scanning draft activity: %w", err)
		}
		if act.Tasks, err = r.loadTasks(ctx, act.TempID); err != nil {
			return nil, err
		}
		activities = append(activities, act)
	}
	return activities, rows.Err()
}

func (r *SQLitePlanRepo) loadTasks(ctx context.Context, activityTempID string) ([]domain.DraftTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT temp_id, detail_id, name, quantity, unit_price
		 FROM draft_tasks WHERE activity_temp_id = ? ORDER BY order_index`, activityTempID)
	if err != nil {
		return nil, fmt.Errorf("loading draft tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.DraftTask
	for rows.Next() {
		var task domain.DraftTask
		var unitPrice string
		if err := rows.Scan(&task.TempID, &task.DetailID, &task.Name, &task.Quantity, &unitPrice); err != nil {
			return nil, fmt.Errorf("scanning draft task: %w", err)
		}
		if task.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parsing unit price of %q: %w", task.Name, err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tasks {
		if err := r.loadProgrammings(ctx, &tasks[i]); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (r *SQLitePlanRepo) loadProgrammings(ctx context.Context, task *domain.DraftTask) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT month_slot, value FROM draft_programmings WHERE task_temp_id = ?`, task.TempID)
	if err != nil {
		return fmt.Errorf("loading programmings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var value string
		if err := rows.Scan(&slot, &value); err != nil {
			return fmt.Errorf("scanning programming: %w", err)
		}
		v, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("parsing programming value: %w", err)
		}
		task.Months[slot-1] = v
	}
	return rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*domain.Plan, error) {
	var plan domain.Plan
	var status, createdAt, updatedAt string
	err := row.Scan(&plan.ID, &plan.Name, &plan.ProjectID, &plan.ProjectCode, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning plan: %w", err)
	}
	plan.Status = domain.PlanStatus(status)
	if plan.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if plan.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &plan, nil
}
