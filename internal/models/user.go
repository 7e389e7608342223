package models

// UserProfile is submitted once at registration
type UserProfile struct {
	UID               string  `json:"uid,omitempty"`
	Name              string  `json:"name" validate:"required,max=100"`
	Age               int     `json:"age" validate:"required,min=1,max=120"`
	Gender            string  `json:"gender" validate:"required,oneof=male female other"`
	Weight            float64 `json:"weight" validate:"required,gt=0,lte=500"`
	Height            float64 `json:"height" validate:"required,gt=0,lte=300"`
	ActivityLevel     string  `json:"activity_level" validate:"required,oneof=sedentary light moderate active very_active"`
	Goal              string  `json:"goal" validate:"required,oneof=lose maintain gain"`
	DietaryPreference string  `json:"dietary_preference,omitempty" validate:"omitempty,max=50"`
}

// UserDetails is the server-computed projection of a user
type UserDetails struct {
	UID            string  `json:"uid"`
	Name           string  `json:"name"`
	Age            int     `json:"age"`
	Gender         string  `json:"gender"`
	Weight         float64 `json:"weight"`
	Height         float64 `json:"height"`
	ActivityLevel  string  `json:"activity_level"`
	Goal           string  `json:"goal"`
	BMR            float64 `json:"bmr"`
	TDEE           float64 `json:"tdee"`
	TargetCalories float64 `json:"target_calories"`
	TargetProtein  float64 `json:"target_protein"`
	TargetCarbs    float64 `json:"target_carbs"`
	TargetFat      float64 `json:"target_fat"`
}

// UserDetailsPatch carries only the fields being changed
type UserDetailsPatch struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Age           *int     `json:"age,omitempty" validate:"omitempty,min=1,max=120"`
	Gender        *string  `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	Weight        *float64 `json:"weight,omitempty" validate:"omitempty,gt=0,lte=500"`
	Height        *float64 `json:"height,omitempty" validate:"omitempty,gt=0,lte=300"`
	ActivityLevel *string  `json:"activity_level,omitempty" validate:"omitempty,oneof=sedentary light moderate active very_active"`
	Goal          *string  `json:"goal,omitempty" validate:"omitempty,oneof=lose maintain gain"`
}

// IsEmpty reports whether the patch changes nothing
func (p UserDetailsPatch) IsEmpty() bool {
	return p.Name == nil && p.Age == nil && p.Gender == nil && p.Weight == nil &&
		p.Height == nil && p.ActivityLevel == nil && p.Goal == nil
}

// MessageResponse is the generic acknowledgement returned by write endpoints
type MessageResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
