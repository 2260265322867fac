package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

const (
	LinkTypeSpotify = "spotify"
	LinkTypeYouTube = "youtube"
)

const (
	GenrePop         = "pop"
	GenreHipHop      = "hiphop"
	GenreRnB         = "rnb"
	GenreEDM         = "edm"
	GenreRock        = "rock"
	GenreAlternative = "alternative"
	GenreCountry     = "country"
	GenreJazz        = "jazz"
	GenreClassical   = "classical"
	GenreOther       = "other"
)

// Choice is a value/label pair offered on the submission form and dashboard filters.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var GenreChoices = []Choice{
	{GenrePop, "Pop"},
	{GenreHipHop, "Hip Hop/Rap"},
	{GenreRnB, "R&B"},
	{GenreEDM, "Electronic/Dance"},
	{GenreRock, "Rock"},
	{GenreAlternative, "Alternative"},
	{GenreCountry, "Country"},
	{GenreJazz, "Jazz"},
	{GenreClassical, "Classical"},
	{GenreOther, "Other"},
}

var LinkTypeChoices = []Choice{
	{LinkTypeSpotify, "Spotify"},
	{LinkTypeYouTube, "YouTube Music"},
}

var PaymentStatusChoices = []Choice{
	{PaymentStatusPending, "Pending"},
	{PaymentStatusCompleted, "Completed"},
	{PaymentStatusFailed, "Failed"},
}

// ChoiceLabel returns the label for value, or value itself when unknown.
func ChoiceLabel(choices []Choice, value string) string {
	for _, c := range choices {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}

// SongSubmission is one song pitch together with its payment state.
type SongSubmission struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ArtistName  string `gorm:"type:varchar(100);not null;index" json:"artist_name" validate:"required,max=100"`
	SongTitle   string `gorm:"type:varchar(100);not null;index" json:"song_title" validate:"required,max=100"`
	Genre       string `gorm:"type:varchar(50);not null" json:"genre" validate:"required,oneof=pop hiphop rnb edm rock alternative country jazz classical other"`
	LinkType    string `gorm:"type:varchar(20);not null" json:"link_type" validate:"required,oneof=spotify youtube"`
	MusicLink   string `gorm:"type:varchar(200)" json:"music_link" validate:"required_without=SongFile,omitempty,url,max=200"`
	SongFile    string `gorm:"type:varchar(255);default:null" json:"song_file,omitempty" validate:"max=255"`
	Email       string `gorm:"type:varchar(254);not null" json:"email" validate:"required,email,max=254"`
	Phone       string `gorm:"type:varchar(20);default:null" json:"phone,omitempty" validate:"max=20"`
	SocialMedia string `gorm:"type:varchar(100)" json:"social_media,omitempty" validate:"max=100"`
	Bio         string `gorm:"type:text" json:"bio,omitempty"`

	SubmissionDate time.Time `gorm:"autoCreateTime;index" json:"submission_date"`
	IsApproved     bool      `gorm:"default:false;index" json:"is_approved"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`

	PackageID            *uint      `gorm:"index" json:"package_id"`
	Package              *Package   `gorm:"foreignKey:PackageID;constraint:OnDelete:SET NULL" json:"package,omitempty"`
	PaymentStatus        string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	TransactionReference string     `gorm:"type:varchar(100)" json:"transaction_reference"`
	PaymentDate          *time.Time `gorm:"index" json:"payment_date,omitempty"`

	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *SongSubmission) Validate() error {
	v := validator.New()
	return v.Struct(s)
}

// IsPaid reports whether the submission reached the completed payment state.
func (s *SongSubmission) IsPaid() bool {
	return s.PaymentStatus == PaymentStatusCompleted
}

// PaymentConsistent checks that a completed payment carries both a reference and a date.
func (s *SongSubmission) PaymentConsistent() bool {
	if s.PaymentStatus != PaymentStatusCompleted {
		return true
	}
	return s.TransactionReference != "" && s.PaymentDate != nil
}
