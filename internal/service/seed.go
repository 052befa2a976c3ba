package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/deppfellow/portfolio-api/internal/model"
	"github.com/deppfellow/portfolio-api/internal/repository"
	"github.com/deppfellow/portfolio-api/internal/server"
)

// DefaultContacts are inserted by Seed into an empty contacts collection.
var DefaultContacts = []model.Contact{
	{Platform: "Email", URL: "mailto:kutmank9@gmail.com", Icon: "FaEnvelope", Order: 0},
	{Platform: "LinkedIn", URL: "https://www.linkedin.com/in/kutmanbek-kubanychbek-uulu-623660303/", Icon: "FaLinkedin", Order: 1},
	{Platform: "GitHub", URL: "https://github.com/Kutman02", Icon: "FaGithub", Order: 2},
	{Platform: "Telegram", URL: "https://t.me/Kutmanbek_kg", Icon: "FaTelegram", Order: 3},
}

// SeedOptions points Seed at its sources. Empty sources are skipped.
type SeedOptions struct {
	ProjectsFile string
	Locales      TranslationLoader
}

// SeedReport counts what Seed inserted.
type SeedReport struct {
	Projects     int
	Translations []string
	Skills       int
	Contacts     int
	Profile      bool
}

// SeedService fills an empty database with initial content. Existing
// content is never overwritten.
type SeedService struct {
	server *server.Server
	repos  *repository.Repositories
}

func NewSeedService(s *server.Server, repos *repository.Repositories) *SeedService {
	return &SeedService{server: s, repos: repos}
}

type projectsFile struct {
	Projects []model.Project `json:"projects"`
}

type skillCategory struct {
	Title string           `json:"title"`
	Items model.StringList `json:"items"`
}

func (s *SeedService) Seed(ctx context.Context, opts SeedOptions) (*SeedReport, error) {
	report := &SeedReport{}
	log := s.server.Logger

	if opts.ProjectsFile != "" {
		n, err := s.seedProjects(ctx, opts.ProjectsFile)
		if err != nil {
			return report, err
		}
		report.Projects = n
	}

	var ruData map[string]any
	if opts.Locales != nil {
		for _, lang := range model.Languages {
			data, err := opts.Locales.Load(ctx, lang)
			if errors.Is(err, ErrTranslationFileMissing) {
				log.Warn().Str("language", lang).Msg("translation file not found, skipping import")
				continue
			}
			if err != nil {
				return report, err
			}
			if lang == model.LanguageRU {
				ruData = data
			}

			exists, err := s.repos.Translations.Exists(ctx, lang)
			if err != nil {
				return report, err
			}
			if exists {
				log.Info().Str("language", lang).Msg("translation already exists")
				continue
			}
			if _, err := s.repos.Translations.Upsert(ctx, lang, data); err != nil {
				return report, err
			}
			report.Translations = append(report.Translations, lang)
		}
	}

	n, err := s.seedSkills(ctx, ruData)
	if err != nil {
		return report, err
	}
	report.Skills = n

	if report.Contacts, err = s.seedContacts(ctx); err != nil {
		return report, err
	}

	if report.Profile, err = s.seedProfile(ctx, ruData); err != nil {
		return report, err
	}

	log.Info().
		Int("projects", report.Projects).
		Strs("translations", report.Translations).
		Int("skills", report.Skills).
		Int("contacts", report.Contacts).
		Bool("profile", report.Profile).
		Msg("seed completed")

	return report, nil
}

func (s *SeedService) seedProjects(ctx context.Context, file string) (int, error) {
	raw, err := os.ReadFile(file)
	if errors.Is(err, os.ErrNotExist) {
		s.server.Logger.Warn().Str("file", file).Msg("projects file not found, skipping")
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var parsed projectsFile
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, fmt.Errorf("parse %s: %w", file, err)
	}

	n, err := s.repos.Projects.Count(ctx)
	if err != nil || n > 0 || len(parsed.Projects) == 0 {
		return 0, err
	}

	for i := range parsed.Projects {
		p := parsed.Projects[i]
		p.Technologies = model.NewStringList(p.Technologies...)
		p.Images = model.NewStringList(p.Images...)
		p.Features = model.NewStringList(p.Features...)
		if err := s.repos.Projects.Create(ctx, &p); err != nil {
			return i, err
		}
	}
	return len(parsed.Projects), nil
}

// seedSkills derives skills from ru.skills.categories, ordered by category
// key so repeated runs agree on the order.
func (s *SeedService) seedSkills(ctx context.Context, ruData map[string]any) (int, error) {
	skills, _ := ruData["skills"].(map[string]any)
	categories, _ := skills["categories"].(map[string]any)
	if len(categories) == 0 {
		s.server.Logger.Info().Msg("no skills data found in translations")
		return 0, nil
	}

	n, err := s.repos.Skills.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}

	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, key := range keys {
		var cat skillCategory
		if raw, err := json.Marshal(categories[key]); err == nil {
			_ = json.Unmarshal(raw, &cat)
		}
		if cat.Title == "" {
			cat.Title = key
		}

		skill := &model.Skill{
			Category: key,
			Title:    cat.Title,
			Items:    model.NewStringList(cat.Items...),
			Order:    i,
		}
		if err := s.repos.Skills.Create(ctx, skill); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func (s *SeedService) seedContacts(ctx context.Context) (int, error) {
	n, err := s.repos.Contacts.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}

	for i := range DefaultContacts {
		c := DefaultContacts[i]
		if err := s.repos.Contacts.Create(ctx, &c); err != nil {
			return i, err
		}
	}
	return len(DefaultContacts), nil
}

func (s *SeedService) seedProfile(ctx context.Context, ruData map[string]any) (bool, error) {
	exists, err := s.repos.Profile.Exists(ctx)
	if err != nil || exists {
		return false, err
	}

	profile, err := s.repos.Profile.Get(ctx)
	if err != nil {
		return false, err
	}

	img, _ := ruData["img"].(map[string]any)
	if v, ok := img["profilePhoto"].(string); ok && v != "" {
		profile.ProfilePhoto = v
	}
	if v, ok := img["profilePhotoAlt"].(string); ok && v != "" {
		profile.ProfilePhotoAlt = v
	}

	return true, s.repos.Profile.Save(ctx, profile)
}
