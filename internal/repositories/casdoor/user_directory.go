package casdoor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

// Config holds the Casdoor connection settings. The labs service reads user
// records from Casdoor and never writes them back.
type Config struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

const (
	directoryCacheTTL = 15 * time.Minute
	directoryPageSize = 10
	directoryPageMax  = 100
)

// userDirectory resolves labs users against Casdoor, keeping resolved
// records in Redis so role checks on the hot request path do not hit the
// identity provider every time.
type userDirectory struct {
	client *casdoorsdk.Client
	cache  *cache.CacheHelper
}

func NewUserDirectory(cfg Config, redisClient *redis.Client) repositories.UserRepository {
	return &userDirectory{
		client: casdoorsdk.NewClient(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.OrganizationName,
			cfg.ApplicationName,
		),
		cache: cache.NewCacheHelper(redisClient, "users:"),
	}
}

// ===== LOOKUPS =====

func (d *userDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	return d.resolve(ctx, "id:"+id, func() (*casdoorsdk.User, error) {
		return d.client.GetUserByUserId(id)
	})
}

func (d *userDirectory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.resolve(ctx, "email:"+email, func() (*casdoorsdk.User, error) {
		return d.client.GetUserByEmail(email)
	})
}

// GetByIDs resolves a batch of IDs for display joins (leaderboard rows,
// review authors). Individual misses are skipped rather than failing the
// whole batch.
func (d *userDirectory) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := d.GetByID(ctx, id)
		if err != nil {
			continue
		}
		users = append(users, user)
	}
	return users, nil
}

// resolve serves a user from the cache, falling back to the given Casdoor
// call on a miss. Resolved records are cached under both the id and email
// keys so either lookup path hits afterwards.
func (d *userDirectory) resolve(ctx context.Context, key string, fetch func() (*casdoorsdk.User, error)) (*models.User, error) {
	var cached models.User
	if err := d.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	record, err := fetch()
	if err != nil {
		return nil, fmt.Errorf("casdoor lookup failed: %w", err)
	}
	if record == nil {
		return nil, fmt.Errorf("user %s: %w", key, repositories.ErrNotFound)
	}

	user := toUser(record)
	d.remember(ctx, user)
	return user, nil
}

// remember caches a resolved user best effort; a cold cache only costs an
// extra Casdoor round trip.
func (d *userDirectory) remember(ctx context.Context, user *models.User) {
	_ = d.cache.Set(ctx, "id:"+user.ID, user, directoryCacheTTL)
	if user.Email != "" {
		_ = d.cache.Set(ctx, "email:"+user.Email, user, directoryCacheTTL)
	}
}

// ===== CHECKS =====

func (d *userDirectory) ExistsByID(ctx context.Context, id string) (bool, error) {
	_, err := d.GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *userDirectory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := d.GetByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (d *userDirectory) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := d.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return user.Role == role, nil
}

// ===== LISTING =====

// List returns one directory page. Casdoor pages are 1-indexed, so the
// offset is translated; a search query matches against the email field.
func (d *userDirectory) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = directoryPageSize
	}
	if filters.Limit > directoryPageMax {
		filters.Limit = directoryPageMax
	}

	page := (filters.Offset / filters.Limit) + 1
	if page < 1 {
		page = 1
	}

	query := make(map[string]string)
	if filters.Query != "" {
		query["field"] = "email"
		query["value"] = filters.Query
	}

	records, total, err := d.client.GetPaginationUsers(page, filters.Limit, query)
	if err != nil {
		return nil, 0, fmt.Errorf("casdoor listing failed: %w", err)
	}

	users := make([]*models.User, 0, len(records))
	for _, record := range records {
		user := toUser(record)
		users = append(users, user)
		d.remember(ctx, user)
	}

	return users, int64(total), nil
}

func (d *userDirectory) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	filters.Query = query
	return d.List(ctx, filters)
}

// ===== CONVERSION =====

var roleNames = map[string]models.UserRole{
	"student":       models.RoleStudent,
	"teacher":       models.RoleInstructor,
	"instructor":    models.RoleInstructor,
	"moderator":     models.RoleModerator,
	"admin":         models.RoleAdmin,
	"administrator": models.RoleAdmin,
}

var rolePrecedence = map[models.UserRole]int{
	models.RoleStudent:    0,
	models.RoleInstructor: 1,
	models.RoleModerator:  2,
	models.RoleAdmin:      3,
}

func toUser(record *casdoorsdk.User) *models.User {
	user := &models.User{
		ID:            record.Id,
		FullName:      record.DisplayName,
		Email:         record.Email,
		Role:          resolveRole(record),
		EmailVerified: record.EmailVerified,
	}
	if record.Avatar != "" {
		avatar := record.Avatar
		user.AvatarURL = &avatar
	}
	if parsed, err := time.Parse(time.RFC3339, record.CreatedTime); err == nil {
		user.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339, record.UpdatedTime); err == nil {
		user.UpdatedAt = parsed
	}
	return user
}

// resolveRole maps the Casdoor role assignments to the single strongest labs
// role. Unknown assignments are ignored; a user with none is a student.
func resolveRole(record *casdoorsdk.User) models.UserRole {
	if record.IsAdmin {
		return models.RoleAdmin
	}

	resolved := models.RoleStudent
	for _, assigned := range record.Roles {
		role, ok := roleNames[strings.ToLower(assigned.Name)]
		if !ok {
			continue
		}
		if rolePrecedence[role] > rolePrecedence[resolved] {
			resolved = role
		}
	}
	return resolved
}
