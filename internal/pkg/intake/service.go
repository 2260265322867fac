// Package intake validates and stores new song submissions.
package intake

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/apperrors"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
	"github.com/ManuelReschke/SongPitch/internal/pkg/metadata"
)

// Input is the submission form as posted by the visitor.
type Input struct {
	ArtistName   string `json:"artist_name" form:"artist_name"`
	SongTitle    string `json:"song_title" form:"song_title"`
	Genre        string `json:"genre" form:"genre"`
	LinkType     string `json:"link_type" form:"link_type"`
	MusicLink    string `json:"music_link" form:"music_link"`
	SongFile     string `json:"song_file" form:"song_file"`
	Email        string `json:"email" form:"email"`
	Phone        string `json:"phone" form:"phone"`
	SocialMedia  string `json:"social_media" form:"social_media"`
	Bio          string `json:"bio" form:"bio"`
	PackageID    uint   `json:"package_id" form:"package_id"`
	Terms        bool   `json:"terms" form:"-"`
	CaptchaToken string `json:"h-captcha-response" form:"h-captcha-response"`
}

// FormOptions lists the choices offered on the submission form.
type FormOptions struct {
	Packages  []models.Package `json:"packages"`
	Genres    []models.Choice  `json:"genres"`
	LinkTypes []models.Choice  `json:"link_types"`
	SiteKey   string           `json:"hcaptcha_sitekey,omitempty"`
}

// Captcha is the optional human check on the form.
type Captcha interface {
	Enabled() bool
	Verify(ctx context.Context, token string) error
}

// Lookup fetches track details for a streaming link.
type Lookup interface {
	Fetch(ctx context.Context, linkType, link string) *metadata.Details
}

type Service struct {
	packages    repository.PackageRepository
	submissions repository.SubmissionRepository
	lookup      Lookup
	captcha     Captcha
	siteKey     string
}

// NewService wires the intake flow. lookup and captcha may be nil.
func NewService(repos *repository.Repositories, lookup Lookup, captcha Captcha, siteKey string) *Service {
	return &Service{
		packages:    repos.Package,
		submissions: repos.Submission,
		lookup:      lookup,
		captcha:     captcha,
		siteKey:     siteKey,
	}
}

func (s *Service) FormOptions(ctx context.Context) (*FormOptions, error) {
	pkgs, err := s.packages.WithContext(ctx).GetActive()
	if err != nil {
		return nil, err
	}
	opts := &FormOptions{
		Packages:  pkgs,
		Genres:    models.GenreChoices,
		LinkTypes: models.LinkTypeChoices,
	}
	if s.captcha != nil && s.captcha.Enabled() {
		opts.SiteKey = s.siteKey
	}
	return opts, nil
}

// Submit validates the input and stores a pending submission.
func (s *Service) Submit(ctx context.Context, in Input) (*models.SongSubmission, error) {
	log := logger.FromContext(ctx)
	in = normalize(in)

	if s.captcha != nil && s.captcha.Enabled() {
		if err := s.captcha.Verify(ctx, in.CaptchaToken); err != nil {
			log.Info("submission_captcha_failed", zap.Error(err))
			return nil, apperrors.Invalid("captcha", "please complete the captcha")
		}
	}

	if (in.ArtistName == "" || in.SongTitle == "") && in.MusicLink != "" && s.lookup != nil {
		if details := s.lookup.Fetch(ctx, in.LinkType, in.MusicLink); details != nil {
			if in.ArtistName == "" {
				in.ArtistName = truncate(details.ArtistName, 100)
			}
			if in.SongTitle == "" {
				in.SongTitle = truncate(details.SongTitle, 100)
			}
		}
	}

	sub := &models.SongSubmission{
		ArtistName:    in.ArtistName,
		SongTitle:     in.SongTitle,
		Genre:         in.Genre,
		LinkType:      in.LinkType,
		MusicLink:     in.MusicLink,
		SongFile:      in.SongFile,
		Email:         in.Email,
		Phone:         in.Phone,
		SocialMedia:   in.SocialMedia,
		Bio:           in.Bio,
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := validate(sub, in.Terms); err != nil {
		return nil, err
	}

	if in.PackageID != 0 {
		pkg, err := s.packages.WithContext(ctx).GetByID(in.PackageID)
		switch {
		case err == nil && pkg.IsActive:
			pkgID := pkg.ID
			sub.PackageID = &pkgID
		case err == nil, errors.Is(err, apperrors.ErrNotFound):
			log.Info("submission_package_dropped", zap.Uint("package_id", in.PackageID))
		default:
			return nil, err
		}
	}

	if err := s.submissions.WithContext(ctx).Create(sub); err != nil {
		return nil, err
	}
	log.Info("submission_created",
		zap.Uint("submission_id", sub.ID),
		zap.String("genre", sub.Genre),
		zap.Bool("has_package", sub.PackageID != nil),
	)
	return sub, nil
}

func validate(sub *models.SongSubmission, terms bool) error {
	fields := map[string]string{}
	if err := sub.Validate(); err != nil {
		var verr *apperrors.ValidationError
		if !errors.As(apperrors.FromValidator(err), &verr) {
			return err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	if !terms {
		fields["terms"] = "you must accept the terms and conditions"
	}
	if len(fields) > 0 {
		return &apperrors.ValidationError{Fields: fields}
	}
	return nil
}

func normalize(in Input) Input {
	in.ArtistName = strings.TrimSpace(in.ArtistName)
	in.SongTitle = strings.TrimSpace(in.SongTitle)
	in.Genre = strings.TrimSpace(in.Genre)
	in.LinkType = strings.TrimSpace(in.LinkType)
	if in.LinkType == "" {
		in.LinkType = models.LinkTypeSpotify
	}
	in.MusicLink = strings.TrimSpace(in.MusicLink)
	in.SongFile = strings.TrimSpace(in.SongFile)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.SocialMedia = strings.TrimSpace(in.SocialMedia)
	in.Bio = strings.TrimSpace(in.Bio)
	return in
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
