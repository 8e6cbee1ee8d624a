// internal/domain/models/department.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExpenseCategory string

const (
	ExpenseEquipment   ExpenseCategory = "equipment"
	ExpenseSupplies    ExpenseCategory = "supplies"
	ExpenseEvents      ExpenseCategory = "events"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseTransport   ExpenseCategory = "transport"
	ExpenseOutreach    ExpenseCategory = "outreach"
	ExpenseOther       ExpenseCategory = "other"
)

var ExpenseCategories = []ExpenseCategory{
	ExpenseEquipment, ExpenseSupplies, ExpenseEvents, ExpenseMaintenance,
	ExpenseUtilities, ExpenseTransport, ExpenseOutreach, ExpenseOther,
}

func (c ExpenseCategory) Valid() bool { return oneOf(c, ExpenseCategories) }

// BudgetCategory tracks allocation and spend for one expense category.
// SpentAmount always equals the sum of the department's expenses in Category.
type BudgetCategory struct {
	Category        ExpenseCategory `bson:"category" json:"category"`
	AllocatedAmount float64         `bson:"allocated_amount" json:"allocatedAmount"`
	SpentAmount     float64         `bson:"spent_amount" json:"spentAmount"`
}

// Expense is embedded in a department (expenses[]).
type Expense struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Category    ExpenseCategory     `bson:"category" json:"category"`
	Amount      float64             `bson:"amount" json:"amount"`
	Description string              `bson:"description" json:"description"`
	Date        time.Time           `bson:"date" json:"date"`
	ApprovedBy  *primitive.ObjectID `bson:"approved_by,omitempty" json:"approvedBy,omitempty"`
	ReceiptURL  string              `bson:"receipt_url,omitempty" json:"receiptUrl,omitempty"`
	CreatedBy   primitive.ObjectID  `bson:"created_by" json:"createdBy"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// Department is a ministry unit. Expenses and goals are embedded arrays;
// the whole document is saved with a version check.
type Department struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	ChurchID    primitive.ObjectID  `bson:"church_id" json:"churchId"`
	BranchID    *primitive.ObjectID `bson:"branch_id,omitempty" json:"branchId,omitempty"`
	Name        string              `bson:"name" json:"name"`
	NameCI      string              `bson:"name_ci" json:"-"`
	Description string              `bson:"description" json:"description"`
	LeaderID    *primitive.ObjectID `bson:"leader_id,omitempty" json:"leaderId,omitempty"`

	TotalBudget      float64          `bson:"total_budget" json:"totalBudget"` // 0 means unlimited
	BudgetCategories []BudgetCategory `bson:"budget_categories" json:"budgetCategories"`
	Expenses         []Expense        `bson:"expenses" json:"expenses"`
	Goals            []Goal           `bson:"goals" json:"goals"`

	IsActive  bool      `bson:"is_active" json:"isActive"`
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
