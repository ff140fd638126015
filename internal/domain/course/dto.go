package course

// CreateRequest is the body of POST /courses
type CreateRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// JoinRequest is the body of POST /courses/join
type JoinRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}
