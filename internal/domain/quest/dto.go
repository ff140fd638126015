package quest

import "time"

// CreateRequest is the body of POST /courses/{courseID}/quests
type CreateRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Points      int64      `json:"points" validate:"required,min=1"`
	DueAt       *time.Time `json:"due_at"`
}

// UpdateRequest is the body of PUT /quests/{id}
type UpdateRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Points      int64      `json:"points" validate:"required,min=1"`
	Active      bool       `json:"active"`
	DueAt       *time.Time `json:"due_at"`
}

// ApproveRequest is the body of POST /quests/{id}/approve
type ApproveRequest struct {
	StudentID string `json:"student_id" validate:"required,email"`
}

// Response is the API view of a quest
type Response struct {
	ID          int64      `json:"id"`
	CourseID    int64      `json:"course_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Points      int64      `json:"points"`
	Active      bool       `json:"active"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toResponse(q *Quest) *Response {
	resp := &Response{
		ID:          q.ID,
		CourseID:    q.CourseID,
		Name:        q.Name,
		Description: q.Description,
		Points:      q.Points,
		Active:      q.Active,
		CreatedAt:   q.CreatedAt,
	}
	if q.DueAt.Valid {
		due := q.DueAt.Time
		resp.DueAt = &due
	}
	return resp
}
