// Package statistics computes the staff dashboard and analytics figures.
package statistics

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/SongPitch/app/models"
	"github.com/ManuelReschke/SongPitch/app/repository"
	"github.com/ManuelReschke/SongPitch/internal/pkg/logger"
)

const (
	CacheKeyDashboard = "statistics:dashboard"
	CacheKeyAnalytics = "statistics:analytics"
	CacheExpiration   = 2 * time.Minute

	windowDays   = 30
	recentLimit  = 5
	dayKeyLayout = "2006-01-02"
	dayLabel     = "02 Jan"
)

// Cache stores the rendered figures for a short window. Optional.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
}

type DayValue struct {
	Date  string  `json:"date"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type Bucket struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type Dashboard struct {
	TotalSubmissions   int64                   `json:"total_submissions"`
	PendingSubmissions int64                   `json:"pending_submissions"`
	ApprovedCount      int64                   `json:"approved_submissions"`
	TotalRevenue       float64                 `json:"total_revenue"`
	RevenueByDay       []DayValue              `json:"revenue_by_day"`
	Recent             []models.SongSubmission `json:"recent_submissions"`
}

type Analytics struct {
	SubmissionsByDay    []DayValue `json:"submissions_by_day"`
	GenreDistribution   []Bucket   `json:"genre_distribution"`
	PaymentDistribution []Bucket   `json:"payment_status_distribution"`
	ApprovalRate        float64    `json:"approval_rate"`
	PendingRate         float64    `json:"pending_rate"`
}

type Service struct {
	submissions repository.SubmissionRepository
	cache       Cache
	now         func() time.Time
}

// NewService creates the statistics service. cache may be nil.
func NewService(repos *repository.Repositories, cache Cache) *Service {
	return &Service{
		submissions: repos.Submission,
		cache:       cache,
		now:         time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if s.cached(ctx, CacheKeyDashboard, &out) {
		return &out, nil
	}

	since := s.now().Add(-windowDays * 24 * time.Hour)

	var paid []repository.PaidSubmission
	g, gctx := errgroup.WithContext(ctx)
	repo := s.submissions.WithContext(gctx)
	g.Go(func() (err error) { out.TotalSubmissions, err = repo.Count(); return })
	g.Go(func() (err error) { out.ApprovedCount, err = repo.CountByApproval(true); return })
	g.Go(func() (err error) { out.PendingSubmissions, err = repo.CountByApproval(false); return })
	g.Go(func() (err error) { out.TotalRevenue, err = repo.TotalRevenue(); return })
	g.Go(func() (err error) { paid, err = repo.PaidSince(since); return })
	g.Go(func() (err error) { out.Recent, err = repo.Recent(recentLimit); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.RevenueByDay = revenueByDay(paid)
	s.store(ctx, CacheKeyDashboard, &out)
	return &out, nil
}

func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	var out Analytics
	if s.cached(ctx, CacheKeyAnalytics, &out) {
		return &out, nil
	}

	since := s.now().Add(-windowDays * 24 * time.Hour)

	var (
		submitted        []time.Time
		genres, payments []repository.GroupCount
		total, approved  int64
	)
	g, gctx := errgroup.WithContext(ctx)
	repo := s.submissions.WithContext(gctx)
	g.Go(func() (err error) { submitted, err = repo.SubmittedSince(since); return })
	g.Go(func() (err error) { genres, err = repo.CountByGenre(); return })
	g.Go(func() (err error) { payments, err = repo.CountByPaymentStatus(); return })
	g.Go(func() (err error) { total, err = repo.Count(); return })
	g.Go(func() (err error) { approved, err = repo.CountByApproval(true); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.SubmissionsByDay = submissionsByDay(submitted)
	out.GenreDistribution = buckets(genres, models.GenreChoices)
	out.PaymentDistribution = buckets(payments, models.PaymentStatusChoices)
	out.ApprovalRate, out.PendingRate = rates(approved, total)

	s.store(ctx, CacheKeyAnalytics, &out)
	return &out, nil
}

// rates returns the approval percentage and its complement.
func rates(approved, total int64) (approval, pending float64) {
	if total > 0 {
		approval = float64(approved) / float64(total) * 100
	}
	return approval, 100 - approval
}

func revenueByDay(paid []repository.PaidSubmission) []DayValue {
	sums := map[string]float64{}
	for _, p := range paid {
		sums[p.PaymentDate.Format(dayKeyLayout)] += p.Price
	}
	return toDays(sums)
}

func submissionsByDay(submitted []time.Time) []DayValue {
	counts := map[string]float64{}
	for _, at := range submitted {
		counts[at.Format(dayKeyLayout)]++
	}
	return toDays(counts)
}

// toDays orders the buckets by date. Days without activity are omitted.
func toDays(values map[string]float64) []DayValue {
	out := make([]DayValue, 0, len(values))
	for day, v := range values {
		label := day
		if t, err := time.Parse(dayKeyLayout, day); err == nil {
			label = t.Format(dayLabel)
		}
		out = append(out, DayValue{Date: day, Label: label, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func buckets(rows []repository.GroupCount, choices []models.Choice) []Bucket {
	out := make([]Bucket, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bucket{Value: r.Value, Label: models.ChoiceLabel(choices, r.Value), Count: r.Count})
	}
	return out
}

func (s *Service) cached(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("statistics_cache_read_failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (s *Service) store(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), CacheExpiration); err != nil {
		logger.FromContext(ctx).Warn("statistics_cache_write_failed", zap.String("key", key), zap.Error(err))
	}
}
