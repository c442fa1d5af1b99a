package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahil06012005/globe-trotter-match/internal/models"
)

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ----------------------------------------------------------------------------
// Users

// CreateUser inserts the auth user and its profile row in one transaction.
func (s *Postgres) CreateUser(ctx context.Context, email, passwordHash, username string, fullName *string) (*models.User, error) {
	userID := uuid.New()
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		userID, email, passwordHash, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, username, full_name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)`,
		userID, username, fullName, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.User{
		ID:           userID,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CreateOAuthUser inserts a user signed in through an OAuth provider. Such
// accounts carry an empty password hash and can only log in via the provider.
func (s *Postgres) CreateOAuthUser(ctx context.Context, email, username string, fullName, avatarURL *string) (*models.User, error) {
	userID := uuid.New()
	now := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, '', $3, $3)`,
		userID, email, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO profiles (id, username, full_name, avatar_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		userID, username, fullName, avatarURL, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &models.User{ID: userID, Email: email, CreatedAt: now, UpdatedAt: now}, nil
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE email = $1`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE id = $1`,
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ----------------------------------------------------------------------------
// Profiles

const profileColumns = `id, username, full_name, bio, avatar_url, location, age, gender,
		COALESCE(interests, '{}'), COALESCE(languages, '{}'), created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Username, &p.FullName, &p.Bio, &p.AvatarURL, &p.Location,
		&p.Age, &p.Gender, &p.Interests, &p.Languages, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Postgres) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (s *Postgres) GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0, len(ids))
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *Postgres) UpdateProfile(ctx context.Context, p *models.Profile) error {
	now := time.Now()
	cmd, err := s.pool.Exec(ctx,
		`UPDATE profiles
		    SET username = $1,
		        full_name = $2,
		        bio = $3,
		        location = $4,
		        age = $5,
		        gender = $6,
		        interests = $7,
		        languages = $8,
		        updated_at = $9
		  WHERE id = $10`,
		p.Username, p.FullName, p.Bio, p.Location, p.Age, p.Gender,
		p.Interests, p.Languages, now, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	p.UpdatedAt = now
	return nil
}

func (s *Postgres) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE profiles SET avatar_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ----------------------------------------------------------------------------
// Trips

const tripColumns = `id, user_id, title, destination, description, start_date, end_date,
		budget, max_travelers, current_travelers, COALESCE(interests, '{}'), image_url,
		status, created_at, updated_at`

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var t models.Trip
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Destination, &t.Description,
		&t.StartDate, &t.EndDate, &t.Budget, &t.MaxTravelers, &t.CurrentTravelers,
		&t.Interests, &t.ImageURL, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Postgres) CreateTrip(ctx context.Context, t *models.Trip) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO trips (id, user_id, title, destination, description, start_date, end_date,
		                    budget, max_travelers, current_travelers, interests, image_url,
		                    status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.UserID, t.Title, t.Destination, t.Description, t.StartDate, t.EndDate,
		t.Budget, t.MaxTravelers, t.CurrentTravelers, t.Interests, t.ImageURL,
		t.Status, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *Postgres) GetTrip(ctx context.Context, id uuid.UUID) (*models.Trip, error) {
	return scanTrip(s.pool.QueryRow(ctx,
		`SELECT `+tripColumns+` FROM trips WHERE id = $1`, id))
}

// ListTrips returns all trips newest-first; filtering happens in memory in
// the tripsearch package.
func (s *Postgres) ListTrips(ctx context.Context) ([]models.Trip, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tripColumns+` FROM trips ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := make([]models.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (s *Postgres) UpdateTrip(ctx context.Context, t *models.Trip) error {
	now := time.Now()
	cmd, err := s.pool.Exec(ctx,
		`UPDATE trips
		    SET title = $1,
		        destination = $2,
		        description = $3,
		        start_date = $4,
		        end_date = $5,
		        budget = $6,
		        max_travelers = $7,
		        interests = $8,
		        status = $9,
		        updated_at = $10
		  WHERE id = $11`,
		t.Title, t.Destination, t.Description, t.StartDate, t.EndDate,
		t.Budget, t.MaxTravelers, t.Interests, t.Status, now, t.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	t.UpdatedAt = now
	return nil
}

func (s *Postgres) DeleteTrip(ctx context.Context, id uuid.UUID) error {
	cmd, err := s.pool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) SetTripImage(ctx context.Context, id uuid.UUID, url string) error {
	cmd, err := s.pool.Exec(ctx,
		`UPDATE trips SET image_url = $1, updated_at = $2 WHERE id = $3`,
		url, time.Now(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ----------------------------------------------------------------------------
// Trip join requests

const requestColumns = `id, trip_id, user_id, message, status, created_at, updated_at`

func scanRequest(row pgx.Row) (*models.TripRequest, error) {
	var r models.TripRequest
	err := row.Scan(&r.ID, &r.TripID, &r.UserID, &r.Message, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRequest inserts a pending join request. Uniqueness of
// (trip_id, user_id) is enforced by the DB constraint, not a prior read, so
// concurrent submissions cannot both succeed.
func (s *Postgres) CreateRequest(ctx context.Context, tripID, userID uuid.UUID, message *string) (*models.TripRequest, error) {
	req, err := scanRequest(s.pool.QueryRow(ctx,
		`INSERT INTO trip_requests (id, trip_id, user_id, message, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'pending', $5, $5)
		 ON CONFLICT (trip_id, user_id) DO NOTHING
		 RETURNING `+requestColumns,
		uuid.New(), tripID, userID, message, time.Now()))
	if errors.Is(err, ErrNotFound) {
		// ON CONFLICT swallowed the insert: a request already exists.
		return nil, ErrDuplicateRequest
	}
	return req, err
}

func (s *Postgres) GetRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	return scanRequest(s.pool.QueryRow(ctx,
		`SELECT `+requestColumns+` FROM trip_requests WHERE id = $1`, id))
}

func (s *Postgres) ListRequestsForTrip(ctx context.Context, tripID uuid.UUID) ([]models.TripRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM trip_requests WHERE trip_id = $1 ORDER BY created_at DESC`, tripID)
}

func (s *Postgres) ListRequestsByUser(ctx context.Context, userID uuid.UUID) ([]models.TripRequest, error) {
	return s.listRequests(ctx,
		`SELECT `+requestColumns+` FROM trip_requests WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Postgres) listRequests(ctx context.Context, query string, arg any) ([]models.TripRequest, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := make([]models.TripRequest, 0)
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// ApproveRequest flips a pending request to approved and increments the
// trip's traveler count, both in one transaction. The status UPDATE is
// guarded on 'pending' so a second approval finds zero rows, and the counter
// UPDATE is guarded on current < max so a full trip rolls the whole thing
// back with ErrTripFull.
func (s *Postgres) ApproveRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	req, err := scanRequest(tx.QueryRow(ctx,
		`UPDATE trip_requests SET status = 'approved', updated_at = $2
		  WHERE id = $1 AND status = 'pending'
		 RETURNING `+requestColumns, id, time.Now()))
	if errors.Is(err, ErrNotFound) {
		return nil, s.closedOrMissing(ctx, id)
	}
	if err != nil {
		return nil, err
	}

	cmd, err := tx.Exec(ctx,
		`UPDATE trips
		    SET current_travelers = current_travelers + 1, updated_at = $2
		  WHERE id = $1 AND current_travelers < max_travelers`,
		req.TripID, time.Now())
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrTripFull
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return req, nil
}

// RejectRequest flips a pending request to rejected. No side effect on the
// trip's traveler count.
func (s *Postgres) RejectRequest(ctx context.Context, id uuid.UUID) (*models.TripRequest, error) {
	req, err := scanRequest(s.pool.QueryRow(ctx,
		`UPDATE trip_requests SET status = 'rejected', updated_at = $2
		  WHERE id = $1 AND status = 'pending'
		 RETURNING `+requestColumns, id, time.Now()))
	if errors.Is(err, ErrNotFound) {
		return nil, s.closedOrMissing(ctx, id)
	}
	return req, err
}

// closedOrMissing distinguishes a request in a terminal state from one that
// does not exist.
func (s *Postgres) closedOrMissing(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM trip_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrRequestClosed
	}
	return ErrNotFound
}

// ----------------------------------------------------------------------------
// Messages

const messageColumns = `id, sender_id, receiver_id, content, read, created_at`

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.Read, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Postgres) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, content string) (*models.Message, error) {
	return scanMessage(s.pool.QueryRow(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, content, read, created_at)
		 VALUES ($1, $2, $3, $4, false, $5)
		 RETURNING `+messageColumns,
		uuid.New(), senderID, receiverID, content, time.Now()))
}

// ListMessagesBetween returns the full history between two users, oldest
// first.
func (s *Postgres) ListMessagesBetween(ctx context.Context, userID, partnerID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+`
		   FROM messages
		  WHERE (sender_id = $1 AND receiver_id = $2)
		     OR (sender_id = $2 AND receiver_id = $1)
		  ORDER BY created_at ASC`, userID, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

// ListMessagesForUser returns every message the user sent or received,
// newest first. The conversation list is derived from this in memory.
func (s *Postgres) ListMessagesForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+messageColumns+`
		   FROM messages
		  WHERE sender_id = $1 OR receiver_id = $1
		  ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMessages(rows)
}

func collectMessages(rows pgx.Rows) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// MarkMessagesRead bulk-flips the read flag. The flag only ever goes
// false -> true.
func (s *Postgres) MarkMessagesRead(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx,
		`UPDATE messages SET read = true WHERE id = ANY($1) AND read = false`, ids)
	return err
}
