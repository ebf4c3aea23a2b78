package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/gw-user-registry/internal/logger"
	"github.com/sbilibin2017/gw-user-registry/internal/models"
	"github.com/sbilibin2017/gw-user-registry/internal/stats"
)

const pgUniqueViolation = "23505"

const userSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		phone TEXT NOT NULL,
		date_of_birth TIMESTAMPTZ,
		gender TEXT,
		address TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT,
		country TEXT,
		occupation TEXT,
		company TEXT,
		website TEXT,
		emergency_contact_name TEXT,
		emergency_contact_phone TEXT,
		photo_filename TEXT,
		photo_original_name TEXT,
		photo_mimetype TEXT,
		photo_size BIGINT,
		photo_path TEXT,
		newsletter_subscription BOOLEAN NOT NULL DEFAULT FALSE,
		terms_accepted BOOLEAN NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		email_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		last_login TIMESTAMPTZ,
		login_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS users_created_at_idx ON users (created_at DESC);
`

const userColumns = `id, name, email, password, phone, date_of_birth, gender, address, city, state,
	zip_code, country, occupation, company, website, emergency_contact_name, emergency_contact_phone,
	photo_filename, photo_original_name, photo_mimetype, photo_size, photo_path,
	newsletter_subscription, terms_accepted, status, email_verified,
	created_at, updated_at, last_login, login_count`

// userRow is the flattened relational shape of models.User.
type userRow struct {
	ID                     string     `db:"id"`
	Name                   string     `db:"name"`
	Email                  string     `db:"email"`
	Password               string     `db:"password"`
	Phone                  string     `db:"phone"`
	DateOfBirth            *time.Time `db:"date_of_birth"`
	Gender                 *string    `db:"gender"`
	Address                *string    `db:"address"`
	City                   *string    `db:"city"`
	State                  *string    `db:"state"`
	ZipCode                *string    `db:"zip_code"`
	Country                *string    `db:"country"`
	Occupation             *string    `db:"occupation"`
	Company                *string    `db:"company"`
	Website                *string    `db:"website"`
	EmergencyContactName   *string    `db:"emergency_contact_name"`
	EmergencyContactPhone  *string    `db:"emergency_contact_phone"`
	PhotoFilename          *string    `db:"photo_filename"`
	PhotoOriginalName      *string    `db:"photo_original_name"`
	PhotoMimeType          *string    `db:"photo_mimetype"`
	PhotoSize              *int64     `db:"photo_size"`
	PhotoPath              *string    `db:"photo_path"`
	NewsletterSubscription bool       `db:"newsletter_subscription"`
	TermsAccepted          bool       `db:"terms_accepted"`
	Status                 string     `db:"status"`
	EmailVerified          bool       `db:"email_verified"`
	CreatedAt              time.Time  `db:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at"`
	LastLogin              *time.Time `db:"last_login"`
	LoginCount             int        `db:"login_count"`
}

func toUserRow(u *models.User) userRow {
	row := userRow{
		ID:                     u.ID,
		Name:                   u.Name,
		Email:                  u.Email,
		Password:               u.Password,
		Phone:                  u.Phone,
		DateOfBirth:            u.DateOfBirth,
		Gender:                 u.Gender,
		Address:                u.Address,
		City:                   u.City,
		State:                  u.State,
		ZipCode:                u.ZipCode,
		Country:                u.Country,
		Occupation:             u.Occupation,
		Company:                u.Company,
		Website:                u.Website,
		EmergencyContactName:   u.EmergencyContactName,
		EmergencyContactPhone:  u.EmergencyContactPhone,
		NewsletterSubscription: u.NewsletterSubscription,
		TermsAccepted:          u.TermsAccepted,
		Status:                 u.Status,
		EmailVerified:          u.EmailVerified,
		CreatedAt:              u.CreatedAt,
		UpdatedAt:              u.UpdatedAt,
		LastLogin:              u.LastLogin,
		LoginCount:             u.LoginCount,
	}
	if p := u.ProfilePhoto; p != nil {
		row.PhotoFilename = &p.Filename
		row.PhotoOriginalName = &p.OriginalName
		row.PhotoMimeType = &p.MimeType
		row.PhotoSize = &p.Size
		row.PhotoPath = &p.Path
	}
	return row
}

func (row *userRow) toModel() models.User {
	u := models.User{
		ID:                     row.ID,
		Name:                   row.Name,
		Email:                  row.Email,
		Password:               row.Password,
		Phone:                  row.Phone,
		DateOfBirth:            row.DateOfBirth,
		Gender:                 row.Gender,
		Address:                row.Address,
		City:                   row.City,
		State:                  row.State,
		ZipCode:                row.ZipCode,
		Country:                row.Country,
		Occupation:             row.Occupation,
		Company:                row.Company,
		Website:                row.Website,
		EmergencyContactName:   row.EmergencyContactName,
		EmergencyContactPhone:  row.EmergencyContactPhone,
		NewsletterSubscription: row.NewsletterSubscription,
		TermsAccepted:          row.TermsAccepted,
		Status:                 row.Status,
		EmailVerified:          row.EmailVerified,
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
		LastLogin:              row.LastLogin,
		LoginCount:             row.LoginCount,
	}
	if row.PhotoFilename != nil {
		u.ProfilePhoto = &models.Photo{Filename: *row.PhotoFilename}
		if row.PhotoOriginalName != nil {
			u.ProfilePhoto.OriginalName = *row.PhotoOriginalName
		}
		if row.PhotoMimeType != nil {
			u.ProfilePhoto.MimeType = *row.PhotoMimeType
		}
		if row.PhotoSize != nil {
			u.ProfilePhoto.Size = *row.PhotoSize
		}
		if row.PhotoPath != nil {
			u.ProfilePhoto.Path = *row.PhotoPath
		}
	}
	return u
}

// UserPostgresRepository stores users in a PostgreSQL table.
type UserPostgresRepository struct {
	db          *sqlx.DB
	schemaReady atomic.Bool
}

// NewUserPostgresRepository creates a repository on db.
func NewUserPostgresRepository(db *sqlx.DB) *UserPostgresRepository {
	return &UserPostgresRepository{db: db}
}

// EnsureSchema creates the users table and its indexes.
func (r *UserPostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, userSchema)
	logQuery(userSchema, nil, nil, err)
	if err == nil {
		r.schemaReady.Store(true)
	}
	return err
}

// Name implements the store contract.
func (r *UserPostgresRepository) Name() string {
	return "postgres"
}

// Ping checks the database is reachable. Until EnsureSchema has succeeded
// once, a successful ping also creates the schema.
func (r *UserPostgresRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return err
	}
	if r.schemaReady.Load() {
		return nil
	}
	return r.EnsureSchema(ctx)
}

// Create inserts the user keeping its identifier.
func (r *UserPostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (
		:id, :name, :email, :password, :phone, :date_of_birth, :gender, :address, :city, :state,
		:zip_code, :country, :occupation, :company, :website, :emergency_contact_name, :emergency_contact_phone,
		:photo_filename, :photo_original_name, :photo_mimetype, :photo_size, :photo_path,
		:newsletter_subscription, :terms_accepted, :status, :email_verified,
		:created_at, :updated_at, :last_login, :login_count)`

	res, err := r.db.NamedExecContext(ctx, query, toUserRow(user))
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, []any{user.ID, user.Email}, rowsAffected, err)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// Insert stores a copy of user under a fresh identifier.
func (r *UserPostgresRepository) Insert(ctx context.Context, user models.User) (*models.User, error) {
	var id string
	if err := r.db.GetContext(ctx, &id, `SELECT gen_random_uuid()::TEXT`); err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}
	user.ID = id
	if err := r.Create(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail looks a user up by its lowercased email.
func (r *UserPostgresRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

// FindByID looks a user up by identifier.
func (r *UserPostgresRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserPostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, query, arg)
	logQuery(query, []any{arg}, row.ID, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, err
	}
	u := row.toModel()
	return &u, nil
}

// All returns every user, oldest first.
func (r *UserPostgresRepository) All(ctx context.Context) ([]models.User, error) {
	return r.selectUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
}

// List returns a page of users sorted by creation time, newest first.
func (r *UserPostgresRepository) List(ctx context.Context, params models.ListParams) (*models.UserPage, error) {
	params = params.Normalize()

	var status *string
	if params.Status != "" {
		status = &params.Status
	}

	const countQuery = `SELECT COUNT(*) FROM users WHERE ($1::TEXT IS NULL OR status = $1)`
	var total int
	err := r.db.GetContext(ctx, &total, countQuery, status)
	logQuery(countQuery, []any{status}, total, err)
	if err != nil {
		return nil, err
	}

	users, err := r.selectUsers(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE ($1::TEXT IS NULL OR status = $1)
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		status, params.PageSize, params.Offset())
	if err != nil {
		return nil, err
	}

	return &models.UserPage{
		Users:      users,
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: models.TotalPages(total, params.PageSize),
	}, nil
}

func (r *UserPostgresRepository) selectUsers(ctx context.Context, query string, args ...any) ([]models.User, error) {
	var rows []userRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	logQuery(query, args, len(rows), err)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toModel())
	}
	return users, nil
}

// Statistics aggregates the counters in a single query.
func (r *UserPostgresRepository) Statistics(ctx context.Context, now time.Time) (*models.StatsSnapshot, error) {
	start, end := stats.DayBounds(now)

	const query = `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE email_verified) AS verified,
			COUNT(*) FILTER (WHERE newsletter_subscription) AS subscribers,
			COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2) AS today,
			MAX(created_at) AS last_registration
		FROM users
	`

	var agg struct {
		Total            int          `db:"total"`
		Active           int          `db:"active"`
		Verified         int          `db:"verified"`
		Subscribers      int          `db:"subscribers"`
		Today            int          `db:"today"`
		LastRegistration sql.NullTime `db:"last_registration"`
	}
	err := r.db.GetContext(ctx, &agg, query, start, end)
	logQuery(query, []any{start, end}, agg.Total, err)
	if err != nil {
		return nil, err
	}

	snap := &models.StatsSnapshot{
		TotalUsers:            agg.Total,
		ActiveUsers:           agg.Active,
		VerifiedUsers:         agg.Verified,
		NewsletterSubscribers: agg.Subscribers,
		RegistrationsToday:    agg.Today,
		LastUpdated:           now,
	}
	if agg.LastRegistration.Valid {
		t := agg.LastRegistration.Time
		snap.LastRegistration = &t
	}
	return snap, nil
}

// logQuery logs a statement on a single line.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Debugw("sql",
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}
