package budget_test

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/budget"
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var now = time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

func expense(cat models.ExpenseCategory, amount float64) models.Expense {
	return models.Expense{
		ID:        primitive.NewObjectID(),
		Category:  cat,
		Amount:    amount,
		Date:      now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func spent(d models.Department, cat models.ExpenseCategory) float64 {
	for _, c := range d.BudgetCategories {
		if c.Category == cat {
			return c.SpentAmount
		}
	}
	return 0
}

func assertConsistent(t *testing.T, d models.Department) {
	t.Helper()
	for _, cat := range models.ExpenseCategories {
		if got, want := spent(d, cat), budget.SpentBy(d, cat); got != want {
			t.Fatalf("%s: spentAmount %.2f != sum of expenses %.2f", cat, got, want)
		}
	}
}

func TestAddExpense_BudgetScenario(t *testing.T) {
	d := models.Department{TotalBudget: 1000}

	if err := budget.AddExpense(&d, expense(models.ExpenseUtilities, 600)); err != nil {
		t.Fatalf("first expense: %v", err)
	}
	if got := spent(d, models.ExpenseUtilities); got != 600 {
		t.Fatalf("utilities spent = %v, want 600", got)
	}

	err := budget.AddExpense(&d, expense(models.ExpenseUtilities, 500))
	if !errors.Is(err, budget.ErrBudgetExceeded) {
		t.Fatalf("second expense err = %v, want ErrBudgetExceeded", err)
	}
	var ex *budget.ExceededError
	if !errors.As(err, &ex) || ex.CurrentSpent != 600 || ex.Requested != 500 || ex.Remaining() != 400 {
		t.Errorf("exceeded detail = %+v", ex)
	}
	if got := spent(d, models.ExpenseUtilities); got != 600 {
		t.Errorf("utilities spent after rejection = %v, want 600", got)
	}
	if len(d.Expenses) != 1 {
		t.Errorf("expenses = %d, want 1", len(d.Expenses))
	}

	// exactly reaching the budget is allowed
	if err := budget.AddExpense(&d, expense(models.ExpenseSupplies, 400)); err != nil {
		t.Errorf("expense up to the limit rejected: %v", err)
	}
}

func TestAddExpense_UnlimitedBudget(t *testing.T) {
	d := models.Department{}
	for i := 0; i < 5; i++ {
		if err := budget.AddExpense(&d, expense(models.ExpenseEvents, 10000)); err != nil {
			t.Fatalf("unlimited budget rejected expense: %v", err)
		}
	}
	if got := spent(d, models.ExpenseEvents); got != 50000 {
		t.Errorf("events spent = %v, want 50000", got)
	}
}

func TestAddExpense_Validation(t *testing.T) {
	d := models.Department{TotalBudget: 100}
	if err := budget.AddExpense(&d, expense("food", 10)); !errors.Is(err, budget.ErrInvalidCategory) {
		t.Errorf("bad category err = %v", err)
	}
	if err := budget.AddExpense(&d, expense(models.ExpenseOther, 0)); !errors.Is(err, budget.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v", err)
	}
	if len(d.Expenses) != 0 || len(d.BudgetCategories) != 0 {
		t.Errorf("rejected expense mutated department: %+v", d)
	}
}

func TestUpdateExpense_MovesBetweenCategories(t *testing.T) {
	d := models.Department{TotalBudget: 1000}
	e := expense(models.ExpenseTransport, 200)
	if err := budget.AddExpense(&d, e); err != nil {
		t.Fatal(err)
	}

	cat := models.ExpenseOutreach
	amt := 250.0
	got, err := budget.UpdateExpense(&d, e.ID, budget.Patch{Category: &cat, Amount: &amt}, now)
	if err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	if got.Category != cat || got.Amount != 250 {
		t.Errorf("updated expense = %+v", got)
	}
	if spent(d, models.ExpenseTransport) != 0 || spent(d, models.ExpenseOutreach) != 250 {
		t.Errorf("categories = %+v", d.BudgetCategories)
	}
	assertConsistent(t, d)
}

func TestUpdateExpense_BudgetOnlyOnIncrease(t *testing.T) {
	d := models.Department{TotalBudget: 1000}
	a := expense(models.ExpenseUtilities, 600)
	b := expense(models.ExpenseSupplies, 300)
	for _, e := range []models.Expense{a, b} {
		if err := budget.AddExpense(&d, e); err != nil {
			t.Fatal(err)
		}
	}

	// 600 -> 750 pushes total to 1050
	over := 750.0
	if _, err := budget.UpdateExpense(&d, a.ID, budget.Patch{Amount: &over}, now); !errors.Is(err, budget.ErrBudgetExceeded) {
		t.Fatalf("increase err = %v, want ErrBudgetExceeded", err)
	}
	if spent(d, models.ExpenseUtilities) != 600 {
		t.Errorf("rejected update changed spent: %+v", d.BudgetCategories)
	}

	// shrinking the budget afterwards does not block a decrease
	d.TotalBudget = 500
	under := 100.0
	if _, err := budget.UpdateExpense(&d, a.ID, budget.Patch{Amount: &under}, now); err != nil {
		t.Errorf("decrease rejected: %v", err)
	}
	assertConsistent(t, d)
}

func TestUpdateExpense_NotFound(t *testing.T) {
	d := models.Department{}
	if _, err := budget.UpdateExpense(&d, primitive.NewObjectID(), budget.Patch{}, now); !errors.Is(err, budget.ErrExpenseNotFound) {
		t.Errorf("err = %v, want ErrExpenseNotFound", err)
	}
	if _, err := budget.RemoveExpense(&d, primitive.NewObjectID()); !errors.Is(err, budget.ErrExpenseNotFound) {
		t.Errorf("err = %v, want ErrExpenseNotFound", err)
	}
}

func TestRemoveExpense(t *testing.T) {
	d := models.Department{}
	a := expense(models.ExpenseEquipment, 120.5)
	b := expense(models.ExpenseEquipment, 79.5)
	_ = budget.AddExpense(&d, a)
	_ = budget.AddExpense(&d, b)

	if _, err := budget.RemoveExpense(&d, a.ID); err != nil {
		t.Fatal(err)
	}
	if len(d.Expenses) != 1 || d.Expenses[0].ID != b.ID {
		t.Errorf("remaining expenses = %+v", d.Expenses)
	}
	if spent(d, models.ExpenseEquipment) != 79.5 {
		t.Errorf("equipment spent = %v, want 79.5", spent(d, models.ExpenseEquipment))
	}
}

// Any sequence of create/update/delete keeps every category's spent amount
// equal to the sum of its expenses.
func TestInvariant_RandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	d := models.Department{TotalBudget: 5000}
	cats := models.ExpenseCategories

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(d.Expenses) == 0:
			amt := float64(rng.Intn(40000)+1) / 100
			_ = budget.AddExpense(&d, expense(cats[rng.Intn(len(cats))], amt))
		case op == 1:
			e := d.Expenses[rng.Intn(len(d.Expenses))]
			cat := cats[rng.Intn(len(cats))]
			amt := float64(rng.Intn(40000)+1) / 100
			_, _ = budget.UpdateExpense(&d, e.ID, budget.Patch{Category: &cat, Amount: &amt}, now)
		default:
			e := d.Expenses[rng.Intn(len(d.Expenses))]
			_, _ = budget.RemoveExpense(&d, e.ID)
		}
		assertConsistent(t, d)
	}
}

func TestReconcile(t *testing.T) {
	d := models.Department{
		Expenses: []models.Expense{expense(models.ExpenseOther, 10), expense(models.ExpenseOther, 15)},
		BudgetCategories: []models.BudgetCategory{
			{Category: models.ExpenseOther, AllocatedAmount: 100, SpentAmount: 3},
		},
	}
	if !budget.Reconcile(&d) {
		t.Error("Reconcile reported no drift")
	}
	if spent(d, models.ExpenseOther) != 25 {
		t.Errorf("other spent = %v, want 25", spent(d, models.ExpenseOther))
	}
	if budget.Reconcile(&d) {
		t.Error("second Reconcile reported drift")
	}
}

func TestSummarize(t *testing.T) {
	d := models.Department{
		TotalBudget: 1000,
		BudgetCategories: []models.BudgetCategory{
			{Category: models.ExpenseUtilities, AllocatedAmount: 400},
			{Category: models.ExpenseEvents, AllocatedAmount: 200},
		},
	}
	_ = budget.AddExpense(&d, expense(models.ExpenseUtilities, 100))
	_ = budget.AddExpense(&d, expense(models.ExpenseUtilities, 200))
	_ = budget.AddExpense(&d, expense(models.ExpenseSupplies, 50))

	s := budget.Summarize(d)
	if s.TotalSpent != 350 || s.Remaining != 650 || s.Utilization != 35 {
		t.Errorf("totals = %+v", s)
	}
	if len(s.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(s.Categories))
	}
	var util budget.CategorySummary
	for _, c := range s.Categories {
		if c.Category == models.ExpenseUtilities {
			util = c
		}
	}
	if util.Count != 2 || util.Spent != 300 || util.Remaining != 100 || util.Utilization != 75 {
		t.Errorf("utilities = %+v", util)
	}

	if u := budget.Summarize(models.Department{}); !u.Unlimited || u.Utilization != 0 || len(u.Categories) != 0 {
		t.Errorf("empty summary = %+v", u)
	}
}
