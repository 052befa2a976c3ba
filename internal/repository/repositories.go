package repository

import (
	"context"
	"errors"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/server"
	"github.com/deppfellow/portfolio-api/internal/store"
)

type (
	ProjectRepository = Repository[model.Project, *model.Project]
	SkillRepository   = Repository[model.Skill, *model.Skill]
	ContactRepository = Repository[model.Contact, *model.Contact]
	ProfileRepository = Singleton[model.Profile, *model.Profile]
	ResumeRepository  = Singleton[model.Resume, *model.Resume]
)

// Repositories groups every accessor.
type Repositories struct {
	Projects     *ProjectRepository
	Skills       *SkillRepository
	Contacts     *ContactRepository
	Profile      *ProfileRepository
	Resume       *ResumeRepository
	Translations *TranslationRepository
	Admins       *AdminRepository
}

// NewRepositories builds the accessors over the server's lazy collections
// and registers the unique indexes created on connect.
func NewRepositories(s *server.Server) *Repositories {
	db := s.DB
	db.OnConnect(context.Background(), EnsureIndexes)

	return &Repositories{
		Projects: NewRepository[model.Project](db.Collection(model.ProjectCollection), "Project",
			store.Desc("createdAt")),
		Skills: NewRepository[model.Skill](db.Collection(model.SkillCollection), "Skill",
			store.Asc("order"), store.Asc("category")),
		Contacts: NewRepository[model.Contact](db.Collection(model.ContactCollection), "Contact",
			store.Asc("order")),
		Profile:      NewSingleton[model.Profile](db.Collection(model.ProfileCollection), "Profile", model.NewProfile),
		Resume:       NewSingleton[model.Resume](db.Collection(model.ResumeCollection), "Resume", model.NewResume),
		Translations: NewTranslationRepository(db.Collection(model.TranslationCollection)),
		Admins:       NewAdminRepository(db.Collection(model.AdminCollection)),
	}
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func EnsureIndexes(ctx context.Context, backend store.Backend) error {
	indexes := []struct{ collection, field string }{
		{model.ProfileCollection, "slot"},
		{model.ResumeCollection, "slot"},
		{model.TranslationCollection, "language"},
		{model.AdminCollection, "username"},
		{model.AdminCollection, "email"},
	}

	var errs []error
	for _, idx := range indexes {
		if err := backend.Collection(idx.collection).EnsureUnique(ctx, idx.field); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
