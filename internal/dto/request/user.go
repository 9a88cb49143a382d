package request

type UpdateProfileRequest struct {
	DisplayName string  `json:"display_name" validate:"required,min=1,max=60"`
	SkillLevel  *string `json:"skill_level,omitempty" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	HomeCity    *string `json:"home_city,omitempty"`
}
