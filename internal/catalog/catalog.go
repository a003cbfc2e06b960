// Package catalog lists the grades, subjects and tutors the app knows about.
package catalog

import "slices"

// Grades and Subjects are the labels a learner can choose from, in display
// order.
var (
	Grades   = []string{"Grade 8", "Grade 9", "Grade 10", "Grade 11", "Grade 12"}
	Subjects = []string{"Mathematics", "Science", "English", "History", "Geography"}

	TutorNames = []string{
		"Dr. Sarah Johnson",
		"Prof. Michael Chen",
		"Ms. Emily Rodriguez",
		"Mr. David Thompson",
		"Dr. Aisha Patel",
		"Prof. James Wilson",
	}
)

const DefaultDifficulty = "medium"

func IsGrade(s string) bool {
	return slices.Contains(Grades, s)
}

func IsSubject(s string) bool {
	return slices.Contains(Subjects, s)
}
