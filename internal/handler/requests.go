package handler

import (
	"strings"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/validation"
)

const MsgProjectRequired = "Title, description, and image are required fields"

// EmptyRequest is bound by endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error { return nil }

// IDRequest carries the :id path parameter.
type IDRequest struct {
	ID string `param:"id"`
}

func (r *IDRequest) Validate() error { return nil }

// ProjectRequest is the body of project create and update.
type ProjectRequest struct {
	ID           string           `param:"id" json:"-"`
	Title        string           `json:"title" validate:"notblank"`
	Description  string           `json:"description" validate:"notblank"`
	Image        string           `json:"image" validate:"notblank"`
	Technologies model.StringList `json:"technologies"`
	Images       model.StringList `json:"images"`
	YoutubeVideo string           `json:"youtubeVideo"`
	Github       string           `json:"github"`
	Demo         string           `json:"demo"`
	Features     model.StringList `json:"features"`
}

func (r *ProjectRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return validation.MessageError(MsgProjectRequired)
	}
	return nil
}

func (r *ProjectRequest) ResourceID() string { return r.ID }

func (r *ProjectRequest) Document() *model.Project {
	return &model.Project{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Image:        strings.TrimSpace(r.Image),
		Technologies: model.NewStringList(r.Technologies...),
		Images:       model.NewStringList(r.Images...),
		YoutubeVideo: strings.TrimSpace(r.YoutubeVideo),
		Github:       strings.TrimSpace(r.Github),
		Demo:         strings.TrimSpace(r.Demo),
		Features:     model.NewStringList(r.Features...),
	}
}

type SkillRequest struct {
	ID       string           `param:"id" json:"-"`
	Category string           `json:"category" validate:"notblank"`
	Title    string           `json:"title" validate:"notblank"`
	Items    model.StringList `json:"items"`
	Order    model.Ordinal    `json:"order"`
}

func (r *SkillRequest) Validate() error { return validation.Struct(r) }

func (r *SkillRequest) ResourceID() string { return r.ID }

func (r *SkillRequest) Document() *model.Skill {
	return &model.Skill{
		Category: strings.TrimSpace(r.Category),
		Title:    strings.TrimSpace(r.Title),
		Items:    model.NewStringList(r.Items...),
		Order:    int(r.Order),
	}
}

type ContactRequest struct {
	ID       string        `param:"id" json:"-"`
	Platform string        `json:"platform" validate:"notblank"`
	URL      string        `json:"url" validate:"notblank"`
	Icon     string        `json:"icon" validate:"notblank"`
	Order    model.Ordinal `json:"order"`
}

func (r *ContactRequest) Validate() error { return validation.Struct(r) }

func (r *ContactRequest) ResourceID() string { return r.ID }

func (r *ContactRequest) Document() *model.Contact {
	return &model.Contact{
		Platform: strings.TrimSpace(r.Platform),
		URL:      strings.TrimSpace(r.URL),
		Icon:     strings.TrimSpace(r.Icon),
		Order:    int(r.Order),
	}
}

// ProfileRequest patches the profile; empty fields keep their value.
type ProfileRequest struct {
	ProfilePhoto    string `json:"profilePhoto"`
	ProfilePhotoAlt string `json:"profilePhotoAlt"`
}

func (r *ProfileRequest) Validate() error { return nil }

// ResumeRequest patches the resume; empty fields keep their value.
type ResumeRequest struct {
	File         string `json:"file"`
	FileURL      string `json:"fileUrl"`
	ExternalLink string `json:"externalLink"`
}

func (r *ResumeRequest) Validate() error { return nil }

type ListTranslationsRequest struct {
	Language string `query:"language"`
}

func (r *ListTranslationsRequest) Validate() error { return nil }

type LanguageRequest struct {
	Language string `param:"language"`
}

func (r *LanguageRequest) Validate() error { return nil }

// SaveTranslationRequest is the body of translation create and replace. The
// :language path parameter, when present, wins over the body.
type SaveTranslationRequest struct {
	PathLanguage string         `param:"language" json:"-"`
	Language     string         `json:"language"`
	Data         map[string]any `json:"data"`
}

func (r *SaveTranslationRequest) Validate() error { return nil }

func (r *SaveTranslationRequest) TargetLanguage() string {
	if r.PathLanguage != "" {
		return r.PathLanguage
	}
	return r.Language
}

type ImportTranslationRequest struct {
	Language string `json:"language"`
}

func (r *ImportTranslationRequest) Validate() error { return nil }

type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return validation.MessageError("Username/email and password are required")
	}
	return nil
}

type InitAdminRequest struct {
	Secret string `query:"secret" json:"secret"`
}

func (r *InitAdminRequest) Validate() error { return nil }

type FilenameRequest struct {
	Filename string `param:"filename"`
}

func (r *FilenameRequest) Validate() error { return nil }
