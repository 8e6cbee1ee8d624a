// internal/app/features/departments/expenses.go
package departments

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/audit"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/apierr"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/auditlog"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/authz"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/inputval"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/respond"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/timeouts"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/txn"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/budget"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListExpenses serves GET /church/departments/{departmentId}/expenses?category&page&limit.
// Expenses are newest first; the summary always covers the whole department.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	cat, err := inputval.Enum(r, "category", models.ExpenseCategories)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	pg := paging.Parse(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	matched := make([]models.Expense, 0, len(d.Expenses))
	for _, e := range d.Expenses {
		if cat == "" || e.Category == cat {
			matched = append(matched, e)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	views, err := h.expenseViews(ctx, scope.ChurchID, paging.Slice(matched, pg))
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, expensesData{
		Expenses:   views,
		Summary:    budget.Summarize(d),
		Pagination: paging.BuildMeta(pg, int64(len(matched))),
	})
}

// CreateExpense serves POST .../expenses. The expense and its category's
// spent amount are saved together or not at all.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in expenseInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, err := h.loadDepartment(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	now := time.Now().UTC()
	e := models.Expense{
		ID:          primitive.NewObjectID(),
		Category:    models.ExpenseCategory(in.Category),
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        now,
		ReceiptURL:  in.ReceiptURL,
		CreatedBy:   scope.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Date != nil {
		e.Date = in.Date.UTC()
	}
	if in.ApprovedBy != "" {
		id, _ := primitive.ObjectIDFromHex(in.ApprovedBy)
		if err := h.checkApprover(ctx, scope, id); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		e.ApprovedBy = &id
	}

	if err := budget.AddExpense(&d, e); err != nil {
		respond.Error(w, r, h.Log, budgetErr(err))
		return
	}
	if err := h.Store.Save(ctx, &d); err != nil {
		h.saveFailed(w, r, d, "failed to save expense", err)
		return
	}
	e = d.Expenses[len(d.Expenses)-1]
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventExpenseCreated,
		auditlog.Target{Kind: "expense", ID: e.ID},
		map[string]string{"department_id": d.ID.Hex(), "category": string(e.Category), "amount": money(e.Amount)})

	h.respondExpense(w, r, d, e, http.StatusCreated, "Expense created successfully")
}

// UpdateExpense serves PUT .../expenses/{expenseId}.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in expenseUpdate
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if in.empty() {
		respond.Error(w, r, h.Log, apierr.Validation("no fields to update"))
		return
	}
	if err := inputval.Check(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, id, err := h.loadExpense(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	p := budget.Patch{Amount: in.Amount, ReceiptURL: in.ReceiptURL}
	if in.Category != nil {
		c := models.ExpenseCategory(*in.Category)
		p.Category = &c
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		p.Description = &desc
	}
	if in.Date != nil {
		t := in.Date.UTC()
		p.Date = &t
	}
	if in.ApprovedBy != nil {
		approver, _ := primitive.ObjectIDFromHex(*in.ApprovedBy)
		if err := h.checkApprover(ctx, scope, approver); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
		p.ApprovedBy = &approver
	}

	e, err := budget.UpdateExpense(&d, id, p, time.Now())
	if err != nil {
		respond.Error(w, r, h.Log, budgetErr(err))
		return
	}
	if err := h.Store.Save(ctx, &d); err != nil {
		h.saveFailed(w, r, d, "failed to update expense", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventExpenseUpdated,
		auditlog.Target{Kind: "expense", ID: e.ID},
		map[string]string{"department_id": d.ID.Hex(), "category": string(e.Category), "amount": money(e.Amount)})

	h.respondExpense(w, r, d, e, http.StatusOK, "Expense updated successfully")
}

// DeleteExpense serves DELETE .../expenses/{expenseId}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	scope, err := authz.ScopeFrom(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d, id, err := h.loadExpense(ctx, r, scope)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	e, err := budget.RemoveExpense(&d, id)
	if err != nil {
		respond.Error(w, r, h.Log, budgetErr(err))
		return
	}
	if err := h.Store.Save(ctx, &d); err != nil {
		h.saveFailed(w, r, d, "failed to delete expense", err)
		return
	}
	h.Audit.Admin(ctx, r, scope.Actor(), audit.EventExpenseDeleted,
		auditlog.Target{Kind: "expense", ID: e.ID},
		map[string]string{"department_id": d.ID.Hex(), "amount": money(e.Amount)})

	respond.OKMessage(w, budget.Summarize(d), "Expense deleted successfully")
}

// loadExpense resolves the department and parses {expenseId}.
func (h *Handler) loadExpense(ctx context.Context, r *http.Request, scope authz.Scope) (models.Department, primitive.ObjectID, error) {
	id, err := inputval.ParseObjectID(chi.URLParam(r, "expenseId"), "expense")
	if err != nil {
		return models.Department{}, id, err
	}
	d, err := h.loadDepartment(ctx, r, scope)
	return d, id, err
}

func (h *Handler) respondExpense(w http.ResponseWriter, r *http.Request, d models.Department, e models.Expense, status int, msg string) {
	vs, err := h.expenseViews(r.Context(), d.ChurchID, []models.Expense{e})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	data := expenseData{Expense: vs[0], Budget: budget.Summarize(d)}
	if status == http.StatusCreated {
		respond.Created(w, data, msg)
		return
	}
	respond.OKMessage(w, data, msg)
}

func (h *Handler) saveFailed(w http.ResponseWriter, r *http.Request, d models.Department, msg string, err error) {
	if !errors.Is(err, txn.ErrVersionConflict) {
		h.Log.Error(msg, zap.Error(err),
			zap.String("department_id", d.ID.Hex()), zap.String("path", r.URL.Path))
	}
	respond.Error(w, r, h.Log, storeErr(err))
}

func (h *Handler) checkApprover(ctx context.Context, scope authz.Scope, id primitive.ObjectID) error {
	missing, err := h.Users.Missing(ctx, scope.ChurchID, []primitive.ObjectID{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apierr.Invalid("approver not found", map[string]string{"approvedBy": "not a user of this church"})
	}
	return nil
}

// budgetErr maps bookkeeping failures onto API errors. An exceeded budget
// carries the numbers behind the rejection.
func budgetErr(err error) error {
	var ex *budget.ExceededError
	switch {
	case errors.As(err, &ex):
		return apierr.BudgetExceeded("expense exceeds the department budget", map[string]any{
			"totalBudget":  ex.TotalBudget,
			"currentSpent": ex.CurrentSpent,
			"requested":    ex.Requested,
			"remaining":    ex.Remaining(),
		})
	case errors.Is(err, budget.ErrExpenseNotFound):
		return apierr.NotFound("expense")
	case errors.Is(err, budget.ErrInvalidCategory), errors.Is(err, budget.ErrInvalidAmount):
		return apierr.Validation(err.Error())
	}
	return err
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
