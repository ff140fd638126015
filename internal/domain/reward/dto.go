package reward

// CreateRequest for POST /courses/{id}/rewards
type CreateRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Cost          int64  `json:"cost" validate:"gte=0"`
	QuantityLimit *int64 `json:"quantity_limit" validate:"omitempty,gte=0"`
}

// UpdateRequest for PUT /rewards/{id}
type UpdateRequest struct {
	Name          string `json:"name" validate:"required,min=1,max=255"`
	Cost          int64  `json:"cost" validate:"gte=0"`
	QuantityLimit *int64 `json:"quantity_limit" validate:"omitempty,gte=0"`
	Active        bool   `json:"active"`
}

// Response represents a reward in API
type Response struct {
	ID             int64  `json:"id"`
	CourseID       int64  `json:"course_id"`
	Name           string `json:"name"`
	Cost           int64  `json:"cost"`
	QuantityLimit  *int64 `json:"quantity_limit"`  // null = unlimited
	RemainingStock *int64 `json:"remaining_stock"` // null = unlimited
	Active         bool   `json:"active"`
	ImageURL       string `json:"image_url,omitempty"`
}

// ResponseFromEntity converts reward to response
func ResponseFromEntity(rw *Reward) *Response {
	resp := &Response{
		ID:       rw.ID,
		CourseID: rw.CourseID,
		Name:     rw.Name,
		Cost:     rw.Cost,
		Active:   rw.Active,
		ImageURL: rw.ImageURL,
	}
	if rw.QuantityLimit.Valid {
		limit := rw.QuantityLimit.Int64
		resp.QuantityLimit = &limit
	}
	return resp
}

// ResponseFromAvailable converts reward with stock to response
func ResponseFromAvailable(a *AvailableReward) *Response {
	resp := ResponseFromEntity(&a.Reward)
	resp.RemainingStock = a.RemainingStock()
	return resp
}
