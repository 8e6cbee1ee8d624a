// Package budget keeps a department's expense list and its per-category
// spent amounts in step. Every function mutates the in-memory department
// only after all checks pass; persisting the result is the caller's job and
// happens as a single versioned document save.
//
// Amounts are stored as float64 on the document but all arithmetic runs
// through decimal.Decimal so repeated add/subtract cycles do not drift.
package budget

import (
	"errors"
	"fmt"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrBudgetExceeded  = errors.New("budget exceeded")
	ErrInvalidCategory = errors.New("invalid expense category")
	ErrInvalidAmount   = errors.New("expense amount must be greater than zero")
	ErrExpenseNotFound = errors.New("expense not found")
)

// ExceededError carries the numbers behind a rejected expense.
type ExceededError struct {
	TotalBudget  float64
	CurrentSpent float64 // every other expense
	Requested    float64
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %.2f already spent, %.2f requested, total budget %.2f",
		e.CurrentSpent, e.Requested, e.TotalBudget)
}

func (e *ExceededError) Unwrap() error { return ErrBudgetExceeded }

// Remaining is what was still available before the rejected expense.
func (e *ExceededError) Remaining() float64 {
	return dec(e.TotalBudget).Sub(dec(e.CurrentSpent)).InexactFloat64()
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func money(d decimal.Decimal) float64 { return d.Round(2).InexactFloat64() }

// AddExpense validates e and appends it, crediting its category.
func AddExpense(d *models.Department, e models.Expense) error {
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	amount := dec(e.Amount)
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := checkBudget(d, primitive.NilObjectID, amount); err != nil {
		return err
	}

	e.Amount = money(amount)
	d.Expenses = append(d.Expenses, e)
	adjust(d, e.Category, amount)
	return nil
}

// Patch holds the fields of an expense update. Nil fields are unchanged.
type Patch struct {
	Category    *models.ExpenseCategory
	Amount      *float64
	Description *string
	Date        *time.Time
	ApprovedBy  *primitive.ObjectID
	ReceiptURL  *string
}

// UpdateExpense applies p to the expense with the given id. When the amount
// or category changes, the old amount is first taken off the old category and
// the new amount then added to the new category. The budget is only checked
// when the amount goes up.
func UpdateExpense(d *models.Department, id primitive.ObjectID, p Patch, now time.Time) (models.Expense, error) {
	i := indexOf(d.Expenses, id)
	if i < 0 {
		return models.Expense{}, ErrExpenseNotFound
	}
	old := d.Expenses[i]

	newCat := old.Category
	if p.Category != nil {
		if !p.Category.Valid() {
			return models.Expense{}, ErrInvalidCategory
		}
		newCat = *p.Category
	}
	oldAmount := dec(old.Amount)
	newAmount := oldAmount
	if p.Amount != nil {
		newAmount = dec(*p.Amount)
		if !newAmount.IsPositive() {
			return models.Expense{}, ErrInvalidAmount
		}
	}
	if newAmount.GreaterThan(oldAmount) {
		if err := checkBudget(d, id, newAmount); err != nil {
			return models.Expense{}, err
		}
	}

	if newCat != old.Category || !newAmount.Equal(oldAmount) {
		adjust(d, old.Category, oldAmount.Neg())
		adjust(d, newCat, newAmount)
	}

	e := old
	e.Category = newCat
	e.Amount = money(newAmount)
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.ApprovedBy != nil {
		e.ApprovedBy = p.ApprovedBy
	}
	if p.ReceiptURL != nil {
		e.ReceiptURL = *p.ReceiptURL
	}
	e.UpdatedAt = now.UTC()
	d.Expenses[i] = e
	return e, nil
}

// RemoveExpense debits the expense's category and drops it from the list.
func RemoveExpense(d *models.Department, id primitive.ObjectID) (models.Expense, error) {
	i := indexOf(d.Expenses, id)
	if i < 0 {
		return models.Expense{}, ErrExpenseNotFound
	}
	e := d.Expenses[i]
	adjust(d, e.Category, dec(e.Amount).Neg())
	d.Expenses = append(d.Expenses[:i:i], d.Expenses[i+1:]...)
	return e, nil
}

// Reconcile rebuilds every category's spent amount from the expense list.
// It reports whether anything had drifted.
func Reconcile(d *models.Department) bool {
	sums := map[models.ExpenseCategory]decimal.Decimal{}
	for _, e := range d.Expenses {
		sums[e.Category] = sums[e.Category].Add(dec(e.Amount))
	}

	drift := false
	for i := range d.BudgetCategories {
		c := &d.BudgetCategories[i]
		want := money(sums[c.Category])
		if c.SpentAmount != want {
			c.SpentAmount = want
			drift = true
		}
		delete(sums, c.Category)
	}
	for _, cat := range models.ExpenseCategories {
		if s, ok := sums[cat]; ok {
			d.BudgetCategories = append(d.BudgetCategories, models.BudgetCategory{Category: cat, SpentAmount: money(s)})
			drift = true
		}
	}
	return drift
}

// SpentBy sums the expense amounts in one category.
func SpentBy(d models.Department, cat models.ExpenseCategory) float64 {
	sum := decimal.Zero
	for _, e := range d.Expenses {
		if e.Category == cat {
			sum = sum.Add(dec(e.Amount))
		}
	}
	return money(sum)
}

// checkBudget rejects amount when it would push the total past a positive
// TotalBudget. skip excludes the expense being replaced.
func checkBudget(d *models.Department, skip primitive.ObjectID, amount decimal.Decimal) error {
	total := dec(d.TotalBudget)
	if !total.IsPositive() {
		return nil
	}
	others := decimal.Zero
	for _, e := range d.Expenses {
		if e.ID == skip {
			continue
		}
		others = others.Add(dec(e.Amount))
	}
	if others.Add(amount).GreaterThan(total) {
		return &ExceededError{
			TotalBudget:  d.TotalBudget,
			CurrentSpent: money(others),
			Requested:    money(amount),
		}
	}
	return nil
}

// adjust adds delta to the category's spent amount, creating the category
// entry on first use.
func adjust(d *models.Department, cat models.ExpenseCategory, delta decimal.Decimal) {
	for i := range d.BudgetCategories {
		if d.BudgetCategories[i].Category == cat {
			v := dec(d.BudgetCategories[i].SpentAmount).Add(delta)
			d.BudgetCategories[i].SpentAmount = money(v)
			return
		}
	}
	d.BudgetCategories = append(d.BudgetCategories, models.BudgetCategory{Category: cat, SpentAmount: money(delta)})
}

func indexOf(es []models.Expense, id primitive.ObjectID) int {
	for i := range es {
		if es[i].ID == id {
			return i
		}
	}
	return -1
}
