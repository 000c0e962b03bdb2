package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"bulkbuddy-workers/internal/common/errors"
	"bulkbuddy-workers/internal/models"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type MealPlanRepository struct {
	db *sql.DB
}

func NewMealPlanRepository(db *sql.DB) *MealPlanRepository {
	return &MealPlanRepository{db: db}
}

// Create stores the plan, its items and an audit entry in one transaction.
// A plan name is unique per user.
func (r *MealPlanRepository) Create(ctx context.Context, plan *models.MealPlan, summary interface{}) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM meal_plans WHERE user_id = $1 AND name = $2)`,
		plan.UserID, plan.Name).Scan(&exists); err != nil {
		return insertError(plan, err)
	}
	if exists {
		return errors.NewDuplicateMealPlanError(plan.Name)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meal_plans (id, user_id, name, target_calories, summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		plan.ID, plan.UserID, plan.Name, plan.TargetCalories, summaryJSON, plan.CreatedAt); err != nil {
		return insertError(plan, err)
	}

	for i, item := range plan.Items {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO meal_plan_items (meal_plan_id, slot, recipe_id, serving_grams, position)
			VALUES ($1, $2, $3, $4, $5)`,
			plan.ID, item.Slot, item.RecipeID, item.ServingGrams, i); err != nil {
			return insertError(plan, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO audit_log (entity, entity_id, action, payload)
		VALUES ('meal_plan', $1, 'created', $2)`,
		plan.ID, summaryJSON); err != nil {
		return insertError(plan, err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDatabaseInsertFailedError(err)
	}
	return nil
}

func insertError(plan *models.MealPlan, err error) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return errors.NewDuplicateMealPlanError(plan.Name)
	}
	return errors.NewDatabaseInsertFailedError(err)
}

// ListByUser returns the user's plans, newest first, without items.
func (r *MealPlanRepository) ListByUser(ctx context.Context, userID string) ([]models.MealPlan, error) {
	queryType := string(models.QueryTypeUserMealPlans)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_calories, created_at
		FROM meal_plans
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, queryError(ctx, queryType, err)
	}
	defer rows.Close()

	plans := []models.MealPlan{}
	for rows.Next() {
		var p models.MealPlan
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.TargetCalories, &p.CreatedAt); err != nil {
			return nil, queryError(ctx, queryType, err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, queryType, err)
	}
	return plans, nil
}

// Items returns a plan's items in position order.
func (r *MealPlanRepository) Items(ctx context.Context, planID string) ([]models.MealPlanItem, error) {
	queryType := string(models.QueryTypeMealPlanItems)

	rows, err := r.db.QueryContext(ctx, `
		SELECT slot, recipe_id, serving_grams
		FROM meal_plan_items
		WHERE meal_plan_id = $1
		ORDER BY position`, planID)
	if err != nil {
		return nil, queryError(ctx, queryType, err)
	}
	defer rows.Close()

	items := []models.MealPlanItem{}
	for rows.Next() {
		var item models.MealPlanItem
		if err := rows.Scan(&item.Slot, &item.RecipeID, &item.ServingGrams); err != nil {
			return nil, queryError(ctx, queryType, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, queryType, err)
	}
	return items, nil
}
