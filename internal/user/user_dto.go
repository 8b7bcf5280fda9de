package user

type ReviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsApproved bool   `json:"isApproved"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	CityState  string `json:"cityState"`
	Pincode    string `json:"pincode"`
	CreatedAt  string `json:"createdAt"`
}

type ReviewResponse struct {
	User     UserResponse `json:"user"`
	Approved bool         `json:"approved"`
	Deleted  bool         `json:"deleted"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID.String(),
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		IsApproved: u.IsApproved,
		Phone:      u.Phone,
		Address:    u.Address,
		CityState:  u.CityState,
		Pincode:    u.Pincode,
		CreatedAt:  u.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

func ToListResponse(users []User) []UserResponse {
	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = ToResponse(u)
	}
	return resp
}
