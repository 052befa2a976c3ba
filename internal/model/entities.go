package model

// Project is a portfolio entry.
type Project struct {
	Base         `bson:",inline"`
	Title        string     `bson:"title" json:"title"`
	Description  string     `bson:"description" json:"description"`
	Image        string     `bson:"image" json:"image"`
	Technologies StringList `bson:"technologies" json:"technologies"`
	Images       StringList `bson:"images" json:"images"`
	YoutubeVideo string     `bson:"youtubeVideo" json:"youtubeVideo"`
	Github       string     `bson:"github" json:"github"`
	Demo         string     `bson:"demo" json:"demo"`
	Features     StringList `bson:"features" json:"features"`
}

// Skill is one category of the skills section.
type Skill struct {
	Base     `bson:",inline"`
	Category string     `bson:"category" json:"category"`
	Title    string     `bson:"title" json:"title"`
	Items    StringList `bson:"items" json:"items"`
	Order    int        `bson:"order" json:"order"`
}

// Contact is a link to an external profile.
type Contact struct {
	Base     `bson:",inline"`
	Platform string `bson:"platform" json:"platform"`
	URL      string `bson:"url" json:"url"`
	Icon     string `bson:"icon" json:"icon"`
	Order    int    `bson:"order" json:"order"`
}

// SingletonSlot is the slot value shared by single-instance documents.
const SingletonSlot = "default"

// Singleton is implemented by documents that exist at most once.
type Singleton interface {
	Document
	Claim()
}

// Profile defaults.
const (
	DefaultProfilePhoto    = "https://keephere.ru/get/HNAULXgZxfX/o/photo.jpg"
	DefaultProfilePhotoAlt = "Profile photo"
)

// Profile is the single profile photo document.
type Profile struct {
	Base            `bson:",inline"`
	Slot            string `bson:"slot" json:"-"`
	ProfilePhoto    string `bson:"profilePhoto" json:"profilePhoto"`
	ProfilePhotoAlt string `bson:"profilePhotoAlt" json:"profilePhotoAlt"`
}

// Claim marks the document as the singleton instance.
func (p *Profile) Claim() { p.Slot = SingletonSlot }

// NewProfile returns a profile populated with defaults.
func NewProfile() *Profile {
	return &Profile{
		ProfilePhoto:    DefaultProfilePhoto,
		ProfilePhotoAlt: DefaultProfilePhotoAlt,
	}
}

// Resume points at the downloadable CV. All fields default to "".
type Resume struct {
	Base         `bson:",inline"`
	Slot         string `bson:"slot" json:"-"`
	File         string `bson:"file" json:"file"`
	FileURL      string `bson:"fileUrl" json:"fileUrl"`
	ExternalLink string `bson:"externalLink" json:"externalLink"`
}

// Claim marks the document as the singleton instance.
func (r *Resume) Claim() { r.Slot = SingletonSlot }

// NewResume returns an empty resume.
func NewResume() *Resume { return &Resume{} }

// Supported translation languages.
const (
	LanguageEN = "en"
	LanguageRU = "ru"
)

// Languages lists the supported translation languages in sort order.
var Languages = []string{LanguageEN, LanguageRU}

// IsLanguage reports whether lang is a supported translation language.
func IsLanguage(lang string) bool {
	for _, l := range Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// Translation holds the UI strings of one language. Data is opaque user
// content and passes through unchanged.
type Translation struct {
	Base     `bson:",inline"`
	Language string         `bson:"language" json:"language"`
	Data     map[string]any `bson:"data" json:"data"`
}
