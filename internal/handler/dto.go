package handler

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/msomdec/inkwell/internal/domain"
	"github.com/msomdec/inkwell/internal/service"
)

// PostDTO is the JSON representation of a full post.
type PostDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage,omitempty"`
	Author     string   `json:"author"`
	UserID     string   `json:"userId"`
	Status     string   `json:"status"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

func toPostDTO(p *domain.Post) PostDTO {
	return PostDTO{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Author:     p.Author,
		UserID:     p.UserID,
		Status:     string(p.Status),
		Tags:       nonNil(p.Tags),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
	}
}

// PostSummaryDTO is a list entry. It never carries the post content.
type PostSummaryDTO struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage,omitempty"`
	Author     string   `json:"author"`
	UserID     string   `json:"userId"`
	Status     string   `json:"status"`
	Tags       []string `json:"tags"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

func toPostSummaryDTOs(posts []domain.PostSummary) []PostSummaryDTO {
	dtos := make([]PostSummaryDTO, len(posts))
	for i, p := range posts {
		dtos[i] = PostSummaryDTO{
			ID:         p.ID,
			Title:      p.Title,
			Slug:       p.Slug,
			Excerpt:    p.Excerpt,
			CoverImage: p.CoverImage,
			Author:     p.Author,
			UserID:     p.UserID,
			Status:     string(p.Status),
			Tags:       nonNil(p.Tags),
			CreatedAt:  p.CreatedAt.Format(time.RFC3339),
			UpdatedAt:  p.UpdatedAt.Format(time.RFC3339),
		}
	}
	return dtos
}

// UserDTO is the public profile of a user. The password hash is never
// serialized.
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Image     string `json:"image,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	GitHub    string `json:"github,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Image:     u.Image,
		Bio:       u.Bio,
		Location:  u.Location,
		Website:   u.Website,
		Twitter:   u.Twitter,
		GitHub:    u.GitHub,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// SignupDTO is the body of a successful signup.
type SignupDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

func toSignupDTO(u *domain.User) SignupDTO {
	return SignupDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

// SessionUserDTO is the user identity carried by the session.
type SessionUserDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toSessionUserDTO(s *domain.Session) SessionUserDTO {
	return SessionUserDTO{ID: s.UserID, Name: s.Name, Email: s.Email, Role: string(s.Role)}
}

// postRequest is the JSON body of create and update requests.
type postRequest struct {
	Title      string   `json:"title"`
	Excerpt    string   `json:"excerpt"`
	Content    string   `json:"content"`
	CoverImage string   `json:"coverImage"`
	Author     string   `json:"author"`
	Status     string   `json:"status"`
	Tags       tagInput `json:"tags"`
}

func (p postRequest) input() service.PostInput {
	return service.PostInput{
		Title:      p.Title,
		Excerpt:    p.Excerpt,
		Content:    p.Content,
		CoverImage: p.CoverImage,
		Author:     p.Author,
		Status:     p.Status,
		Tags:       p.Tags,
	}
}

// tagInput accepts either a JSON array of tags or a comma-separated string.
type tagInput []string

func (t *tagInput) UnmarshalJSON(data []byte) error {
	if strings.HasPrefix(strings.TrimSpace(string(data)), `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = service.ParseTags(s)
		return nil
	}
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*t = tags
	return nil
}

// profileRequest is the JSON body of a profile update. A missing image
// leaves the current image unchanged.
type profileRequest struct {
	Name  string  `json:"name"`
	Image *string `json:"image"`
	// ProfileImage is the client's name for Image; Image wins if both are set.
	ProfileImage *string `json:"profileImage"`
	Bio          string  `json:"bio"`
	Location     string  `json:"location"`
	Website      string  `json:"website"`
	Twitter      string  `json:"twitter"`
	GitHub       string  `json:"github"`
}

func (p profileRequest) input() service.ProfileInput {
	image := p.Image
	if image == nil {
		image = p.ProfileImage
	}
	return service.ProfileInput{
		Name:     p.Name,
		Image:    image,
		Bio:      p.Bio,
		Location: p.Location,
		Website:  p.Website,
		Twitter:  p.Twitter,
		GitHub:   p.GitHub,
	}
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
