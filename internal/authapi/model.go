package authapi

import "github.com/openkcm/profile-session/internal/profile"

type signupRequest struct {
	Name      string `json:"name"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	Email     string `json:"email"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Data struct {
		Token string `json:"api_token"`
	} `json:"data"`
}

type userResponse struct {
	Data struct {
		Name    string `json:"name"`
		Profile struct {
			Birthdate *string `json:"birthdate"`
			Location  *string `json:"location"`
		} `json:"profile"`
	} `json:"data"`
}

func (r userResponse) toProfile() profile.Profile {
	p := profile.Profile{Name: r.Data.Name}
	if r.Data.Profile.Birthdate != nil {
		p.Birthdate = *r.Data.Profile.Birthdate
	}
	if r.Data.Profile.Location != nil {
		p.Location = *r.Data.Profile.Location
	}

	return p
}

// userUpdateRequest always carries every field; birthdate is YYYY-MM-DD.
type userUpdateRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Birthdate string `json:"birthdate"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
