package handler

import (
	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health      *HealthHandler
	Index       *IndexHandler
	Auth        *AuthHandler
	Project     *ProjectHandler
	Skill       *SkillHandler
	Contact     *ContactHandler
	Profile     *ProfileHandler
	Resume      *ResumeHandler
	Translation *TranslationHandler
	Upload      *UploadHandler
}

func NewHandlers(s *server.Server, repos *repository.Repositories, services *service.Services) *Handlers {
	return &Handlers{
		Health:      NewHealthHandler(s),
		Index:       NewIndexHandler(s),
		Auth:        NewAuthHandler(s, services.Auth),
		Project:     NewResourceHandler[model.Project, *model.Project, *ProjectRequest](s, repos.Projects),
		Skill:       NewResourceHandler[model.Skill, *model.Skill, *SkillRequest](s, repos.Skills),
		Contact:     NewResourceHandler[model.Contact, *model.Contact, *ContactRequest](s, repos.Contacts),
		Profile:     NewProfileHandler(s, repos.Profile),
		Resume:      NewResumeHandler(s, repos.Resume),
		Translation: NewTranslationHandler(s, services.Translations),
		Upload:      NewUploadHandler(s, services.Uploads),
	}
}
