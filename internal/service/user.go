package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/inkwell/internal/domain"
)

// ProfileInput carries profile edits. A nil Image leaves the current image
// unchanged and a blank Name keeps the current name.
type ProfileInput struct {
	Name     string
	Image    *string
	Bio      string
	Location string
	Website  string
	Twitter  string
	GitHub   string
}

// UserService reads and edits user profiles.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile edits the profile of user id. Users may only edit their own
// profile.
func (s *UserService) UpdateProfile(ctx context.Context, session *domain.Session, id string, in ProfileInput) (*domain.User, error) {
	if session == nil || session.UserID != id {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	website := strings.TrimSpace(in.Website)
	twitter := strings.TrimPrefix(strings.TrimSpace(in.Twitter), "@")
	github := strings.TrimSpace(in.GitHub)
	bio := strings.TrimSpace(in.Bio)
	location := strings.TrimSpace(in.Location)

	errs := fieldErrors{}
	errs.maxLen("name", name, MaxNameLength, "Name cannot be more than 50 characters")
	errs.maxLen("bio", bio, 500, "Bio cannot be more than 500 characters")
	errs.maxLen("location", location, 100, "Location cannot be more than 100 characters")
	errs.maxLen("twitter", twitter, 15, "Twitter username cannot be more than 15 characters")
	errs.maxLen("github", github, 39, "GitHub username cannot be more than 39 characters")
	if website != "" && !websitePattern.MatchString(website) {
		errs.add("website", "Please provide a valid URL")
	}
	var image string
	if in.Image != nil {
		image = strings.TrimSpace(*in.Image)
		if image != "" && !validImageURL(image) {
			errs.add("image", "Image must be a valid URL")
		}
	}
	if err := domain.NewValidationError(errs); err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if in.Image != nil {
		user.Image = image
	}
	user.Bio = bio
	user.Location = location
	user.Website = website
	user.Twitter = twitter
	user.GitHub = github

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SetRole changes the role of the user with the given email.
func (s *UserService) SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateRole(ctx, user.ID, role); err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	user.Role = role
	return user, nil
}
