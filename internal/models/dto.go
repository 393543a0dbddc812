package models

import "time"

// CVInput is the client-writable part of a CV. Timestamps and id are server-set.
type CVInput struct {
	Firstname string `json:"firstname" form:"firstname" validate:"required,notblank,max=100"`
	Lastname  string `json:"lastname" form:"lastname" validate:"required,notblank,max=100"`
	Skills    string `json:"skills" form:"skills" validate:"required,notblank"`
	Projects  string `json:"projects" form:"projects" validate:"required,notblank"`
	Bio       string `json:"bio" form:"bio" validate:"required,notblank,min=10"`
	Contacts  string `json:"contacts" form:"contacts" validate:"required,notblank"`
}

func (in *CVInput) Validate() ValidationErrors {
	return validateStruct(in)
}

func (in *CVInput) ApplyTo(cv *CV) {
	cv.Firstname = in.Firstname
	cv.Lastname = in.Lastname
	cv.Skills = in.Skills
	cv.Projects = in.Projects
	cv.Bio = in.Bio
	cv.Contacts = in.Contacts
}

func CVInputFrom(cv *CV) CVInput {
	return CVInput{
		Firstname: cv.Firstname,
		Lastname:  cv.Lastname,
		Skills:    cv.Skills,
		Projects:  cv.Projects,
		Bio:       cv.Bio,
		Contacts:  cv.Contacts,
	}
}

// CVPatch carries a partial update; nil fields are left untouched.
type CVPatch struct {
	Firstname *string `json:"firstname"`
	Lastname  *string `json:"lastname"`
	Skills    *string `json:"skills"`
	Projects  *string `json:"projects"`
	Bio       *string `json:"bio"`
	Contacts  *string `json:"contacts"`
}

// Merge returns the full input obtained by applying the patch on top of cv.
func (p *CVPatch) Merge(cv *CV) CVInput {
	in := CVInputFrom(cv)
	if p.Firstname != nil {
		in.Firstname = *p.Firstname
	}
	if p.Lastname != nil {
		in.Lastname = *p.Lastname
	}
	if p.Skills != nil {
		in.Skills = *p.Skills
	}
	if p.Projects != nil {
		in.Projects = *p.Projects
	}
	if p.Bio != nil {
		in.Bio = *p.Bio
	}
	if p.Contacts != nil {
		in.Contacts = *p.Contacts
	}
	return in
}

type CVListItem struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Skills    string    `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCVListItem(cv *CV) CVListItem {
	return CVListItem{
		ID:        cv.ID,
		FullName:  cv.FullName(),
		Skills:    cv.Skills,
		CreatedAt: cv.CreatedAt,
	}
}

type PageResponse[T any] struct {
	Count    int64 `json:"count"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Results  []T   `json:"results"`
}

type TaskTriggerResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	TaskID  *string `json:"task_id"`
}

type TaskStatusResponse struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       TaskStatus `json:"status"`
	Result       *string    `json:"result,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}
