package dto

type CreateRemoteSessionRequest struct {
	Title string `json:"title" validate:"required,max=100" label:"Session title"`
}

// UpdateRemoteSessionRequest is a partial update; nil fields are left untouched.
type UpdateRemoteSessionRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=100" label:"Session title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500" label:"Description"`
	Language    *string `json:"language,omitempty" validate:"omitempty,oneof=kk ru en" label:"Language"`
}
