package domain

// BudgetLine is reference data classifying which activities and POA types a
// task template applies to. Classifier holds three semicolon-separated
// sub-codes, one per POA type family; a sub-code of "0" means not
// applicable to that family.
type BudgetLine struct {
	ID         string
	Name       string
	Classifier string
}

// TaskDetail is one entry of the task-detail catalog a POA offers when
// tasks are created. It references the budget line that decides which
// activities it may be attached to.
type TaskDetail struct {
	ID           string
	Name         string
	BudgetLineID string
}
