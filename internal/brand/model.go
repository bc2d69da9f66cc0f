package brand

import "time"

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	LogoURL string `json:"logoUrl" validate:"required,url"`
}
