package course

import (
	"time"

	"github.com/google/uuid"
)

// Course is a class run by one instructor. Students join with the course's
// join code and earn points inside it.
type Course struct {
	ID           int64     `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	JoinCode     string    `db:"join_code" json:"join_code"`
	InstructorID uuid.UUID `db:"instructor_id" json:"instructor_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Enrollment links a student to a course
type Enrollment struct {
	CourseID   int64     `db:"course_id" json:"course_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
