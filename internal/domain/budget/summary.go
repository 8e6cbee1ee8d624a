package budget

import (
	"github.com/kmwangemi/church-management-system-v2-sub004/internal/domain/models"
	"github.com/shopspring/decimal"
)

// CategorySummary is one row of the expense summary.
type CategorySummary struct {
	Category    models.ExpenseCategory `json:"category"`
	Count       int                    `json:"count"`
	Allocated   float64                `json:"allocatedAmount"`
	Spent       float64                `json:"spentAmount"`
	Remaining   float64                `json:"remainingAmount"`
	Utilization float64                `json:"utilization"` // percent of allocated; 0 when nothing allocated
}

// Summary describes how a department's budget is being used.
type Summary struct {
	TotalBudget float64           `json:"totalBudget"`
	TotalSpent  float64           `json:"totalSpent"`
	Remaining   float64           `json:"remainingBudget"`
	Utilization float64           `json:"budgetUtilization"` // percent of TotalBudget
	Unlimited   bool              `json:"unlimited"`
	Categories  []CategorySummary `json:"categories"`
}

// Summarize builds the per-category summary from the expenses themselves,
// joined with each category's allocation. Categories with neither an
// allocation nor an expense are left out.
func Summarize(d models.Department) Summary {
	spent := map[models.ExpenseCategory]decimal.Decimal{}
	count := map[models.ExpenseCategory]int{}
	total := decimal.Zero
	for _, e := range d.Expenses {
		a := dec(e.Amount)
		spent[e.Category] = spent[e.Category].Add(a)
		count[e.Category]++
		total = total.Add(a)
	}
	alloc := map[models.ExpenseCategory]decimal.Decimal{}
	for _, c := range d.BudgetCategories {
		alloc[c.Category] = dec(c.AllocatedAmount)
	}

	s := Summary{
		TotalBudget: d.TotalBudget,
		TotalSpent:  money(total),
		Unlimited:   d.TotalBudget <= 0,
		Categories:  []CategorySummary{},
	}
	if !s.Unlimited {
		tb := dec(d.TotalBudget)
		s.Remaining = money(tb.Sub(total))
		s.Utilization = pct(total, tb)
	}

	for _, cat := range models.ExpenseCategories {
		a, hasAlloc := alloc[cat]
		sp, hasSpend := spent[cat]
		if !hasAlloc && !hasSpend {
			continue
		}
		s.Categories = append(s.Categories, CategorySummary{
			Category:    cat,
			Count:       count[cat],
			Allocated:   money(a),
			Spent:       money(sp),
			Remaining:   money(a.Sub(sp)),
			Utilization: pct(sp, a),
		})
	}
	return s
}

// pct is part/whole*100 rounded to two decimals; 0 when whole is not positive.
func pct(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	return part.Div(whole).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
