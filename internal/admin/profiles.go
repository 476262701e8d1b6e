// Package admin reviews doctor onboarding profiles.
package admin

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"doctor-booking-server/internal/models"
)

var (
	ErrProfileNotFound = errors.New("doctor profile not found")
	ErrAlreadyReviewed = errors.New("doctor profile has already been reviewed")
	ErrUnknownStatus   = errors.New("unknown profile status")
	ErrReasonRequired  = errors.New("a rejection reason is required")
)

// StatusAll matches every profile in List.
const StatusAll = "all"

// Filter narrows the profile listing.
type Filter struct {
	Status    string
	Search    string
	Specialty string
}

// Stats counts profiles per review state.
type Stats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// Profiles holds submitted onboarding profiles.
type Profiles struct {
	logger *logrus.Logger
	now    func() time.Time

	mu       sync.RWMutex
	profiles map[string]*models.DoctorProfile
}

func NewProfiles(logger *logrus.Logger) *Profiles {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Profiles{
		logger:   logger,
		now:      time.Now,
		profiles: make(map[string]*models.DoctorProfile),
	}
}

// Submit records a new profile awaiting review.
func (p *Profiles) Submit(_ context.Context, profile models.DoctorProfile) (*models.DoctorProfile, error) {
	profile.ID = uuid.NewString()
	profile.Status = models.ProfilePending
	profile.SubmittedAt = p.now()
	profile.ReviewedAt = nil
	profile.RejectionReason = ""

	p.mu.Lock()
	p.profiles[profile.ID] = &profile
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"profile_id": profile.ID,
		"specialty":  profile.Specialty,
	}).Info("doctor profile submitted")
	out := profile
	return &out, nil
}

// List returns matching profiles, oldest submission first.
func (p *Profiles) List(_ context.Context, f Filter) ([]models.DoctorProfile, error) {
	status := f.Status
	if status == "" {
		status = StatusAll
	}
	switch models.ProfileStatus(status) {
	case StatusAll, models.ProfilePending, models.ProfileApproved, models.ProfileRejected:
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, status)
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	p.mu.RLock()
	out := make([]models.DoctorProfile, 0, len(p.profiles))
	for _, prof := range p.profiles {
		if status != StatusAll && string(prof.Status) != status {
			continue
		}
		if f.Specialty != "" && prof.Specialty != f.Specialty {
			continue
		}
		if search != "" && !matches(prof, search) {
			continue
		}
		out = append(out, *prof)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

// matches reports whether the lowercased search occurs in the profile's
// name or email.
func matches(prof *models.DoctorProfile, search string) bool {
	return strings.Contains(strings.ToLower(prof.Name), search) ||
		strings.Contains(strings.ToLower(prof.Email), search)
}

func (p *Profiles) Get(_ context.Context, id string) (*models.DoctorProfile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	prof, ok := p.profiles[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	out := *prof
	return &out, nil
}

// Approve accepts a pending profile.
func (p *Profiles) Approve(ctx context.Context, id string) (*models.DoctorProfile, error) {
	return p.review(ctx, id, models.ProfileApproved, "")
}

// Reject declines a pending profile with a reason.
func (p *Profiles) Reject(ctx context.Context, id, reason string) (*models.DoctorProfile, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return p.review(ctx, id, models.ProfileRejected, reason)
}

func (p *Profiles) review(_ context.Context, id string, status models.ProfileStatus, reason string) (*models.DoctorProfile, error) {
	p.mu.Lock()
	prof, ok := p.profiles[id]
	if !ok {
		p.mu.Unlock()
		return nil, ErrProfileNotFound
	}
	if prof.Status != models.ProfilePending {
		p.mu.Unlock()
		return nil, ErrAlreadyReviewed
	}
	reviewed := p.now()
	prof.Status = status
	prof.RejectionReason = reason
	prof.ReviewedAt = &reviewed
	out := *prof
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"profile_id": id,
		"status":     status,
	}).Info("doctor profile reviewed")
	return &out, nil
}

// Stats counts every profile by status.
func (p *Profiles) Stats(_ context.Context) Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := Stats{Total: len(p.profiles)}
	for _, prof := range p.profiles {
		switch prof.Status {
		case models.ProfilePending:
			s.Pending++
		case models.ProfileApproved:
			s.Approved++
		case models.ProfileRejected:
			s.Rejected++
		}
	}
	return s
}
