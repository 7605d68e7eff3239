package domain

import "time"

// Submission is the journaled outcome of one submission attempt: how many
// entities of each class were attempted and how many committed, plus the
// first fatal error if any. The journal is what lets an operator finish a
// partially-committed plan by hand.
type Submission struct {
	ID          string
	PlanID      string
	SubmittedAt time.Time

	PeriodsAttempted      int
	PeriodsSucceeded      int
	POAsAttempted         int
	POAsSucceeded         int
	ActivitiesAttempted   int
	ActivitiesSucceeded   int
	TasksAttempted        int
	TasksSucceeded        int
	ProgrammingsAttempted int
	ProgrammingsSucceeded int

	Skipped    int
	FirstError string
}

// Complete reports whether the submission committed everything.
func (s *Submission) Complete() bool {
	return s.FirstError == "" && s.Skipped == 0
}
