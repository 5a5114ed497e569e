package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

// MockLabsRepository is an in-memory Repository backing the grading and
// progress service tests. It keeps one submission row per (user, challenge)
// and computes the aggregate reads (progress totals, lab rollup, profile
// totals) from the stored rows the same way the postgres layer does, so the
// services' derived numbers are exercised against real data movement.
//
// All access goes through one mutex; the submission cascade refreshes
// statistics and profiles from a background goroutine.
type MockLabsRepository struct {
	mu sync.Mutex

	labs          map[uint]*models.Lab
	challenges    map[uint]*models.Challenge
	submissions   map[string]*models.Submission // keyed user/challenge
	progress      map[string]*models.UserLabProgress
	completed     map[uint][]uint // progress ID -> solved challenge IDs
	stats         map[uint]*models.LabStatistics
	profiles      map[string]*models.UserProfile
	notifications []*models.Notification
	roles         map[string][]models.UserRole

	nextID uint
}

func NewMockLabsRepository() *MockLabsRepository {
	return &MockLabsRepository{
		labs:        make(map[uint]*models.Lab),
		challenges:  make(map[uint]*models.Challenge),
		submissions: make(map[string]*models.Submission),
		progress:    make(map[string]*models.UserLabProgress),
		completed:   make(map[uint][]uint),
		stats:       make(map[uint]*models.LabStatistics),
		profiles:    make(map[string]*models.UserProfile),
		roles:       make(map[string][]models.UserRole),
	}
}

func submissionKey(userID string, challengeID uint) string {
	return fmt.Sprintf("%s/%d", userID, challengeID)
}

func progressKey(userID string, labID uint) string {
	return fmt.Sprintf("%s/%d", userID, labID)
}

func (m *MockLabsRepository) newID() uint {
	m.nextID++
	return m.nextID
}

// ===== FIXTURE SEEDING =====

func (m *MockLabsRepository) AddLab(lab *models.Lab) *models.Lab {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lab.ID == 0 {
		lab.ID = m.newID()
	}
	stored := *lab
	m.labs[lab.ID] = &stored
	return lab
}

func (m *MockLabsRepository) AddChallenge(challenge *models.Challenge) *models.Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	if challenge.ID == 0 {
		challenge.ID = m.newID()
	}
	stored := *challenge
	m.challenges[challenge.ID] = &stored
	return challenge
}

func (m *MockLabsRepository) GrantRole(userID string, role models.UserRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = append(m.roles[userID], role)
}

// ===== AGGREGATE REPOSITORY =====

func (m *MockLabsRepository) Lab() repositories.LabRepository        { return &mockLabStore{m} }
func (m *MockLabsRepository) Challenge() repositories.ChallengeRepository {
	return &mockChallengeStore{m}
}
func (m *MockLabsRepository) Submission() repositories.SubmissionRepository {
	return &mockSubmissionStore{m}
}
func (m *MockLabsRepository) Progress() repositories.ProgressRepository { return &mockProgressStore{m} }
func (m *MockLabsRepository) Review() repositories.ReviewRepository     { return &mockReviewStore{m} }
func (m *MockLabsRepository) Statistics() repositories.StatisticsRepository {
	return &mockStatisticsStore{m}
}
func (m *MockLabsRepository) Notification() repositories.NotificationRepository {
	return &mockInboxStore{m}
}
func (m *MockLabsRepository) Profile() repositories.ProfileRepository { return &mockProfileStore{m} }
func (m *MockLabsRepository) User() repositories.UserRepository       { return &mockUserStore{m} }

func (m *MockLabsRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *MockLabsRepository) Ping(ctx context.Context) error { return nil }
func (m *MockLabsRepository) Close() error                   { return nil }

// ===== LAB STORE =====

type mockLabStore struct{ parent *MockLabsRepository }

func (s *mockLabStore) Create(ctx context.Context, tx *gorm.DB, lab *models.Lab) error {
	s.parent.AddLab(lab)
	return nil
}

func (s *mockLabStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	lab, ok := s.parent.labs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *lab
	return &out, nil
}

func (s *mockLabStore) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error) {
	return s.GetByID(ctx, tx, id)
}

func (s *mockLabStore) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Lab, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, lab := range s.parent.labs {
		if lab.Slug == slug {
			out := *lab
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *mockLabStore) Update(ctx context.Context, tx *gorm.DB, lab *models.Lab) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if _, ok := s.parent.labs[lab.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *lab
	s.parent.labs[lab.ID] = &stored
	return nil
}

func (s *mockLabStore) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.labs, id)
	return nil
}

func (s *mockLabStore) List(ctx context.Context, tx *gorm.DB, filters repositories.LabFilters) ([]*models.Lab, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.Lab
	for _, lab := range s.parent.labs {
		copied := *lab
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (s *mockLabStore) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.LabFilters) ([]*models.Lab, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.Lab
	for _, lab := range s.parent.labs {
		if lab.CreatedBy == creatorID {
			copied := *lab
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (s *mockLabStore) GetPremium(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Lab, error) {
	return nil, nil
}

func (s *mockLabStore) GetCategoriesWithCounts(ctx context.Context, tx *gorm.DB) ([]*models.CategoryCount, error) {
	return nil, nil
}

func (s *mockLabStore) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uint) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if lab, ok := s.parent.labs[id]; ok {
		lab.ViewCount++
	}
	return nil
}

func (s *mockLabStore) UpdateCompletionStats(ctx context.Context, tx *gorm.DB, id uint, completions int, averageScore float64) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	lab, ok := s.parent.labs[id]
	if !ok {
		return repositories.ErrNotFound
	}
	lab.CompletionCount = completions
	lab.AverageScore = averageScore
	return nil
}

func (s *mockLabStore) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, lab := range s.parent.labs {
		if lab.Slug == slug && (excludeID == nil || lab.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== CHALLENGE STORE =====

type mockChallengeStore struct{ parent *MockLabsRepository }

func (s *mockChallengeStore) Create(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error {
	s.parent.AddChallenge(challenge)
	return nil
}

func (s *mockChallengeStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	challenge, ok := s.parent.challenges[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *challenge
	return &out, nil
}

func (s *mockChallengeStore) Update(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if _, ok := s.parent.challenges[challenge.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *challenge
	s.parent.challenges[challenge.ID] = &stored
	return nil
}

func (s *mockChallengeStore) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	delete(s.parent.challenges, id)
	return nil
}

func (s *mockChallengeStore) GetByLab(ctx context.Context, tx *gorm.DB, labID uint) ([]*models.Challenge, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.Challenge
	for _, challenge := range s.parent.challenges {
		if challenge.LabID == labID {
			copied := *challenge
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *mockChallengeStore) CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, challenge := range s.parent.challenges {
		if challenge.LabID == labID {
			count++
		}
	}
	return count, nil
}

func (s *mockChallengeStore) MaxOrder(ctx context.Context, tx *gorm.DB, labID uint) (int, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	max := 0
	for _, challenge := range s.parent.challenges {
		if challenge.LabID == labID && challenge.Order > max {
			max = challenge.Order
		}
	}
	return max, nil
}

func (s *mockChallengeStore) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error) {
	return s.GetByID(ctx, tx, id)
}

func (s *mockChallengeStore) UpdateCounters(ctx context.Context, tx *gorm.DB, id uint, counters repositories.ChallengeCounters) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	challenge, ok := s.parent.challenges[id]
	if !ok {
		return repositories.ErrNotFound
	}
	challenge.Attempts = counters.Attempts
	challenge.SuccessRate = counters.SuccessRate
	return nil
}

func (s *mockChallengeStore) ExistsByOrder(ctx context.Context, tx *gorm.DB, labID uint, order int, excludeID *uint) (bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, challenge := range s.parent.challenges {
		if challenge.LabID == labID && challenge.Order == order && (excludeID == nil || challenge.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

// ===== SUBMISSION STORE =====

type mockSubmissionStore struct{ parent *MockLabsRepository }

func (s *mockSubmissionStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, sub := range s.parent.submissions {
		if sub.ID == id {
			out := *sub
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *mockSubmissionStore) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	return s.GetByID(ctx, tx, id)
}

func (s *mockSubmissionStore) GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID string, challengeID uint) (*models.Submission, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	sub, ok := s.parent.submissions[submissionKey(userID, challengeID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *sub
	return &out, nil
}

func (s *mockSubmissionStore) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	key := submissionKey(submission.UserID, submission.ChallengeID)
	if _, ok := s.parent.submissions[key]; !ok {
		return repositories.ErrNotFound
	}
	stored := *submission
	s.parent.submissions[key] = &stored
	return nil
}

// Upsert keeps one row per (user, challenge): a resubmission overwrites the
// stored row and retains its ID.
func (s *mockSubmissionStore) Upsert(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	key := submissionKey(submission.UserID, submission.ChallengeID)
	if existing, ok := s.parent.submissions[key]; ok {
		submission.ID = existing.ID
	} else {
		submission.ID = s.parent.newID()
	}
	stored := *submission
	s.parent.submissions[key] = &stored
	return nil
}

func (s *mockSubmissionStore) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var matched []*models.Submission
	for _, sub := range s.parent.submissions {
		if filters.UserID != nil && sub.UserID != *filters.UserID {
			continue
		}
		if filters.LabID != nil && sub.LabID != *filters.LabID {
			continue
		}
		if filters.ChallengeID != nil && sub.ChallengeID != *filters.ChallengeID {
			continue
		}
		if filters.Status != nil && sub.Status != *filters.Status {
			continue
		}
		copied := *sub
		matched = append(matched, &copied)
	}
	total := int64(len(matched))
	if filters.Limit > 0 && len(matched) > filters.Limit {
		matched = matched[:filters.Limit]
	}
	return matched, total, nil
}

func (s *mockSubmissionStore) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) ([]*models.Submission, error) {
	rows, _, err := s.List(ctx, tx, repositories.SubmissionFilters{UserID: &userID, LabID: &labID})
	return rows, err
}

func (s *mockSubmissionStore) GetPendingReview(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	pending := models.SubmissionPending
	filters.Status = &pending
	return s.List(ctx, tx, filters)
}

func (s *mockSubmissionStore) CountByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, sub := range s.parent.submissions {
		if sub.ChallengeID == challengeID {
			count++
		}
	}
	return count, nil
}

func (s *mockSubmissionStore) CountCorrectByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, sub := range s.parent.submissions {
		if sub.ChallengeID == challengeID && sub.Status == models.SubmissionCorrect {
			count++
		}
	}
	return count, nil
}

func (s *mockSubmissionStore) CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, sub := range s.parent.submissions {
		if sub.LabID == labID {
			count++
		}
	}
	return count, nil
}

func (s *mockSubmissionStore) GetProgressTotals(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*repositories.ProgressTotals, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	totals := &repositories.ProgressTotals{}
	for _, challenge := range s.parent.challenges {
		if challenge.LabID == labID {
			totals.TotalChallenges++
			totals.MaxPossible += challenge.Points
		}
	}
	for _, sub := range s.parent.submissions {
		if sub.UserID == userID && sub.LabID == labID && sub.Status == models.SubmissionCorrect {
			totals.CompletedCount++
			totals.TotalScore += sub.Score
			totals.CompletedIDs = append(totals.CompletedIDs, sub.ChallengeID)
		}
	}
	return totals, nil
}

func (s *mockSubmissionStore) GetProfileTotals(ctx context.Context, tx *gorm.DB, userID string) (*repositories.ProfileTotals, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	totals := &repositories.ProfileTotals{}
	labs := make(map[uint]bool)
	for _, sub := range s.parent.submissions {
		if sub.UserID == userID && sub.Status == models.SubmissionCorrect {
			labs[sub.LabID] = true
			totals.TotalPoints += sub.Score
		}
	}
	totals.CompletedLabsCount = len(labs)
	return totals, nil
}

// ===== PROGRESS STORE =====

type mockProgressStore struct{ parent *MockLabsRepository }

func (s *mockProgressStore) withCompleted(progress *models.UserLabProgress) *models.UserLabProgress {
	out := *progress
	out.CompletedChallenges = nil
	for _, id := range s.parent.completed[progress.ID] {
		out.CompletedChallenges = append(out.CompletedChallenges, models.CompletedChallenge{
			ProgressID:  progress.ID,
			ChallengeID: id,
		})
	}
	return &out
}

func (s *mockProgressStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserLabProgress, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, progress := range s.parent.progress {
		if progress.ID == id {
			return s.withCompleted(progress), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *mockProgressStore) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	progress, ok := s.parent.progress[progressKey(userID, labID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s.withCompleted(progress), nil
}

func (s *mockProgressStore) GetOrCreate(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	key := progressKey(userID, labID)
	if progress, ok := s.parent.progress[key]; ok {
		return s.withCompleted(progress), false, nil
	}
	progress := &models.UserLabProgress{
		ID:     s.parent.newID(),
		UserID: userID,
		LabID:  labID,
	}
	s.parent.progress[key] = progress
	return s.withCompleted(progress), true, nil
}

func (s *mockProgressStore) Update(ctx context.Context, tx *gorm.DB, progress *models.UserLabProgress) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	key := progressKey(progress.UserID, progress.LabID)
	if _, ok := s.parent.progress[key]; !ok {
		return repositories.ErrNotFound
	}
	stored := *progress
	stored.CompletedChallenges = nil
	s.parent.progress[key] = &stored
	return nil
}

func (s *mockProgressStore) List(ctx context.Context, tx *gorm.DB, filters repositories.ProgressFilters) ([]*models.UserLabProgress, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.UserLabProgress
	for _, progress := range s.parent.progress {
		if filters.UserID != nil && progress.UserID != *filters.UserID {
			continue
		}
		if filters.LabID != nil && progress.LabID != *filters.LabID {
			continue
		}
		out = append(out, s.withCompleted(progress))
	}
	return out, int64(len(out)), nil
}

func (s *mockProgressStore) GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.UserLabProgress, error) {
	rows, _, err := s.List(ctx, tx, repositories.ProgressFilters{UserID: &userID})
	return rows, err
}

func (s *mockProgressStore) ReplaceCompletedChallenges(ctx context.Context, tx *gorm.DB, progressID uint, challengeIDs []uint) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.completed[progressID] = append([]uint(nil), challengeIDs...)
	return nil
}

func (s *mockProgressStore) CountStarted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, progress := range s.parent.progress {
		if progress.LabID == labID && progress.IsStarted {
			count++
		}
	}
	return count, nil
}

func (s *mockProgressStore) CountCompleted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, progress := range s.parent.progress {
		if progress.LabID == labID && progress.IsCompleted {
			count++
		}
	}
	return count, nil
}

// ===== REVIEW STORE =====

type mockReviewStore struct{ parent *MockLabsRepository }

func (s *mockReviewStore) Create(ctx context.Context, tx *gorm.DB, review *models.LabReview) error {
	return nil
}

func (s *mockReviewStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LabReview, error) {
	return nil, repositories.ErrNotFound
}

func (s *mockReviewStore) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.LabReview, error) {
	return nil, repositories.ErrNotFound
}

func (s *mockReviewStore) Update(ctx context.Context, tx *gorm.DB, review *models.LabReview) error {
	return nil
}

func (s *mockReviewStore) Delete(ctx context.Context, tx *gorm.DB, id uint) error { return nil }

func (s *mockReviewStore) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.LabReview, int64, error) {
	return nil, 0, nil
}

func (s *mockReviewStore) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	return nil
}

func (s *mockReviewStore) AverageApprovedRating(ctx context.Context, tx *gorm.DB, labID uint) (float64, int64, error) {
	return 0, 0, nil
}

// ===== STATISTICS STORE =====

type mockStatisticsStore struct{ parent *MockLabsRepository }

func (s *mockStatisticsStore) GetByLab(ctx context.Context, tx *gorm.DB, labID uint) (*models.LabStatistics, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	stats, ok := s.parent.stats[labID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *stats
	return &out, nil
}

func (s *mockStatisticsStore) Upsert(ctx context.Context, tx *gorm.DB, stats *models.LabStatistics) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if existing, ok := s.parent.stats[stats.LabID]; ok {
		stats.ID = existing.ID
	} else {
		stats.ID = s.parent.newID()
	}
	stored := *stats
	s.parent.stats[stats.LabID] = &stored
	return nil
}

func (s *mockStatisticsStore) GetRollup(ctx context.Context, tx *gorm.DB, labID uint) (*repositories.LabRollup, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	rollup := &repositories.LabRollup{}
	for _, progress := range s.parent.progress {
		if progress.LabID != labID {
			continue
		}
		if progress.IsStarted {
			rollup.TotalStarts++
		}
		if progress.IsCompleted {
			rollup.TotalCompletions++
		}
	}

	var scoreSum float64
	for _, sub := range s.parent.submissions {
		if sub.LabID == labID {
			rollup.TotalSubmissions++
			scoreSum += float64(sub.Score)
		}
	}
	if rollup.TotalSubmissions > 0 {
		rollup.AverageScore = scoreSum / float64(rollup.TotalSubmissions)
	}

	return rollup, nil
}

func (s *mockStatisticsStore) GetPlatformStats(ctx context.Context, tx *gorm.DB) (*repositories.PlatformStats, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return &repositories.PlatformStats{
		TotalLabs:        int64(len(s.parent.labs)),
		TotalChallenges:  int64(len(s.parent.challenges)),
		TotalSubmissions: int64(len(s.parent.submissions)),
	}, nil
}

func (s *mockStatisticsStore) GetTopLabs(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LabStatistics, error) {
	return nil, nil
}

// ===== NOTIFICATION STORE =====

type mockInboxStore struct{ parent *MockLabsRepository }

func (s *mockInboxStore) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	notification.ID = s.parent.newID()
	stored := *notification
	s.parent.notifications = append(s.parent.notifications, &stored)
	return nil
}

func (s *mockInboxStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, n := range s.parent.notifications {
		if n.ID == id {
			out := *n
			return &out, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *mockInboxStore) List(ctx context.Context, tx *gorm.DB, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.parent.notifications {
		if n.UserID == userID {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (s *mockInboxStore) MarkRead(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	return nil
}

func (s *mockInboxStore) MarkAllRead(ctx context.Context, tx *gorm.DB, userID string) error {
	return nil
}

func (s *mockInboxStore) CountUnread(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var count int64
	for _, n := range s.parent.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// ===== PROFILE STORE =====

type mockProfileStore struct{ parent *MockLabsRepository }

func (s *mockProfileStore) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	profile, ok := s.parent.profiles[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *profile
	return &out, nil
}

func (s *mockProfileStore) GetOrCreate(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if profile, ok := s.parent.profiles[userID]; ok {
		out := *profile
		return &out, false, nil
	}
	profile := &models.UserProfile{
		ID:           s.parent.newID(),
		UserID:       userID,
		IsPublic:     true,
		LastActivity: time.Now(),
	}
	s.parent.profiles[userID] = profile
	out := *profile
	return &out, true, nil
}

func (s *mockProfileStore) Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	if _, ok := s.parent.profiles[profile.UserID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *profile
	s.parent.profiles[profile.UserID] = &stored
	return nil
}

func (s *mockProfileStore) GetLeaderboard(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.UserProfile, int64, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	var out []*models.UserProfile
	for _, profile := range s.parent.profiles {
		copied := *profile
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

// ===== USER STORE =====

type mockUserStore struct{ parent *MockLabsRepository }

func (s *mockUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (s *mockUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}

func (s *mockUserStore) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	return nil, nil
}

func (s *mockUserStore) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (s *mockUserStore) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (s *mockUserStore) ExistsByID(ctx context.Context, id string) (bool, error) { return true, nil }

func (s *mockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

func (s *mockUserStore) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	for _, granted := range s.parent.roles[id] {
		if granted == role {
			return true, nil
		}
	}
	return false, nil
}
