// internal/app/features/departments/types.go
package departments

import (
	"context"
	"time"

	userstore "github.com/kmwangemi/church-management-system-v2-sub004/internal/app/store/users"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/app/system/paging"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/budget"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type categoryInput struct {
	Category        string  `json:"category" validate:"required,expense_category" label:"Category"`
	AllocatedAmount float64 `json:"allocatedAmount" validate:"min=0" label:"Allocated amount"`
}

type departmentInput struct {
	Name             string          `json:"name" validate:"required,max=120" label:"Name"`
	Description      string          `json:"description" validate:"max=1000" label:"Description"`
	BranchID         string          `json:"branchId" validate:"omitempty,objectid" label:"Branch"`
	LeaderID         string          `json:"leaderId" validate:"omitempty,objectid" label:"Leader"`
	TotalBudget      float64         `json:"totalBudget" validate:"min=0" label:"Total budget"`
	BudgetCategories []categoryInput `json:"budgetCategories" validate:"omitempty,dive" label:"Budget categories"`
}

// departmentUpdate is a partial update. A non-nil BudgetCategories replaces
// the allocations; spent amounts always follow the expenses.
type departmentUpdate struct {
	Name             *string         `json:"name" validate:"omitempty,min=1,max=120" label:"Name"`
	Description      *string         `json:"description" validate:"omitempty,max=1000" label:"Description"`
	LeaderID         *string         `json:"leaderId" validate:"omitempty,objectid" label:"Leader"`
	TotalBudget      *float64        `json:"totalBudget" validate:"omitempty,min=0" label:"Total budget"`
	BudgetCategories []categoryInput `json:"budgetCategories" validate:"omitempty,dive" label:"Budget categories"`
	IsActive         *bool           `json:"isActive" label:"Active"`
}

func (in departmentUpdate) empty() bool {
	return in.Name == nil && in.Description == nil && in.LeaderID == nil &&
		in.TotalBudget == nil && in.BudgetCategories == nil && in.IsActive == nil
}

type expenseInput struct {
	Category    string     `json:"category" validate:"required,expense_category" label:"Category"`
	Amount      float64    `json:"amount" validate:"required,gt=0" label:"Amount"`
	Description string     `json:"description" validate:"required,max=500" label:"Description"`
	Date        *time.Time `json:"date" label:"Date"`
	ApprovedBy  string     `json:"approvedBy" validate:"omitempty,objectid" label:"Approved by"`
	ReceiptURL  string     `json:"receiptUrl" validate:"omitempty,httpurl" label:"Receipt URL"`
}

type expenseUpdate struct {
	Category    *string    `json:"category" validate:"omitempty,expense_category" label:"Category"`
	Amount      *float64   `json:"amount" validate:"omitempty,gt=0" label:"Amount"`
	Description *string    `json:"description" validate:"omitempty,min=1,max=500" label:"Description"`
	Date        *time.Time `json:"date" label:"Date"`
	ApprovedBy  *string    `json:"approvedBy" validate:"omitempty,objectid" label:"Approved by"`
	ReceiptURL  *string    `json:"receiptUrl" validate:"omitempty,httpurl" label:"Receipt URL"`
}

func (in expenseUpdate) empty() bool {
	return in.Category == nil && in.Amount == nil && in.Description == nil &&
		in.Date == nil && in.ApprovedBy == nil && in.ReceiptURL == nil
}

type departmentView struct {
	models.Department
	Leader *userstore.Summary `json:"leader,omitempty"`
	Budget *budget.Summary    `json:"budget,omitempty"`
}

type listData struct {
	Departments []departmentView `json:"departments"`
	Pagination  paging.Meta      `json:"pagination"`
}

type expenseView struct {
	models.Expense
	Creator  *userstore.Summary `json:"creator,omitempty"`
	Approver *userstore.Summary `json:"approver,omitempty"`
}

type expenseData struct {
	Expense expenseView    `json:"expense"`
	Budget  budget.Summary `json:"budget"`
}

type expensesData struct {
	Expenses   []expenseView  `json:"expenses"`
	Summary    budget.Summary `json:"summary"`
	Pagination paging.Meta    `json:"pagination"`
}

func (h *Handler) views(ctx context.Context, churchID primitive.ObjectID, ds []models.Department) ([]departmentView, error) {
	var ids []primitive.ObjectID
	for _, d := range ds {
		if d.LeaderID != nil {
			ids = append(ids, *d.LeaderID)
		}
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]departmentView, len(ds))
	for i, d := range ds {
		if d.Expenses == nil {
			d.Expenses = []models.Expense{}
		}
		if d.Goals == nil {
			d.Goals = []models.Goal{}
		}
		out[i] = departmentView{Department: d}
		if d.LeaderID != nil {
			if s, ok := people[*d.LeaderID]; ok {
				out[i].Leader = &s
			}
		}
	}
	return out, nil
}

// view is a single department with its budget summary.
func (h *Handler) view(ctx context.Context, d models.Department) (departmentView, error) {
	vs, err := h.views(ctx, d.ChurchID, []models.Department{d})
	if err != nil {
		return departmentView{}, err
	}
	s := budget.Summarize(d)
	vs[0].Budget = &s
	return vs[0], nil
}

func (h *Handler) expenseViews(ctx context.Context, churchID primitive.ObjectID, es []models.Expense) ([]expenseView, error) {
	var ids []primitive.ObjectID
	for _, e := range es {
		ids = append(ids, e.CreatedBy)
		if e.ApprovedBy != nil {
			ids = append(ids, *e.ApprovedBy)
		}
	}
	people, err := h.Users.Summaries(ctx, churchID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]expenseView, len(es))
	for i, e := range es {
		out[i] = expenseView{Expense: e}
		if s, ok := people[e.CreatedBy]; ok {
			out[i].Creator = &s
		}
		if e.ApprovedBy != nil {
			if s, ok := people[*e.ApprovedBy]; ok {
				out[i].Approver = &s
			}
		}
	}
	return out, nil
}
