package service

import (
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
)

type Services struct {
	Auth         *AuthService
	Translations *TranslationService
	Uploads      *UploadService
	Seed         *SeedService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	authService, err := NewAuthService(s, repos)
	if err != nil {
		return nil, err
	}

	loader := NewDirLoader(s.Config.Translations.SourceDir)

	return &Services{
		Auth:         authService,
		Translations: NewTranslationService(s, repos.Translations, loader),
		Uploads:      NewUploadService(s),
		Seed:         NewSeedService(s, repos),
	}, nil
}
