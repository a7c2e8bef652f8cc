package models

type User struct {
	ID           string `json:"_id,omitempty" bson:"-"`
	Username     string `json:"username" bson:"username"`
	PasswordHash string `json:"passwordHash,omitempty" bson:"passwordHash,omitempty"`
	Name         string `json:"name" bson:"name"`
	Role         string `json:"role" bson:"role"`
	CreatedAt    string `json:"createdAt" bson:"createdAt"`
}

type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

