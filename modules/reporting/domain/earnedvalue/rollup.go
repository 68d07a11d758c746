package earnedvalue

// ComponentHours carries the budgeted hours and completion percentage of a
// single component as read back from storage. Pointers distinguish a missing
// value from an explicit zero; missing values contribute nothing to a rollup.
type ComponentHours struct {
	BudgetedHours   *float64
	PercentComplete *float64
}

// Summary is an earned-value rollup over a set of components.
type Summary struct {
	EarnedHours    float64
	AllocatedHours float64
	RemainingHours float64
	Percent        float64
}

// Rollup aggregates earned hours over rows against totalBudget.
//
// Earned hours for a row is budget * percent / 100. Allocated is the sum of
// budgets, remaining is totalBudget minus earned, and Percent is earned over
// totalBudget scaled to a percentage. A non-positive totalBudget yields
// Percent 0 rather than dividing by zero.
func Rollup(rows []ComponentHours, totalBudget float64) Summary {
	var earned, allocated float64
	for _, row := range rows {
		budget := valueOrZero(row.BudgetedHours)
		pct := valueOrZero(row.PercentComplete)
		earned += budget * pct / 100
		allocated += budget
	}

	s := Summary{
		EarnedHours:    earned,
		AllocatedHours: allocated,
		RemainingHours: totalBudget - earned,
	}
	if totalBudget > 0 {
		s.Percent = earned / totalBudget * 100
	}
	return s
}

// GroupRow is the per-group aggregate produced by the report query, already
// summed in SQL. Key is the grouping value (drawing number), with components
// lacking a drawing collected under the empty key.
type GroupRow struct {
	Key            string
	ComponentCount int
	EarnedHours    float64
	AllocatedHours float64
}

// ManhourRow is one line of the manhour report: a group aggregate with its
// percent complete relative to the group's own allocation.
type ManhourRow struct {
	Key            string
	ComponentCount int
	EarnedHours    float64
	AllocatedHours float64
	Percent        float64
}

// BuildReport turns grouped aggregates into report rows plus a grand total.
// Group percentages are computed against each group's allocation; the grand
// total percent is recomputed from the summed hours against totalBudget, not
// averaged over groups.
func BuildReport(groups []GroupRow, totalBudget float64) ([]ManhourRow, Summary) {
	rows := make([]ManhourRow, 0, len(groups))
	var earned, allocated float64
	count := 0
	for _, g := range groups {
		row := ManhourRow{
			Key:            g.Key,
			ComponentCount: g.ComponentCount,
			EarnedHours:    g.EarnedHours,
			AllocatedHours: g.AllocatedHours,
		}
		if g.AllocatedHours > 0 {
			row.Percent = g.EarnedHours / g.AllocatedHours * 100
		}
		rows = append(rows, row)
		earned += g.EarnedHours
		allocated += g.AllocatedHours
		count += g.ComponentCount
	}

	total := Summary{
		EarnedHours:    earned,
		AllocatedHours: allocated,
		RemainingHours: totalBudget - earned,
	}
	if totalBudget > 0 {
		total.Percent = earned / totalBudget * 100
	}
	return rows, total
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
