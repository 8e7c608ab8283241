package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cake-tracker/internal/domain"
)

const incidentColumns = `
	id::text,
	person_name,
	to_char(incident_date, 'YYYY-MM-DD'),
	notes,
	cake_delivered,
	created_at`

// PostgresIncidentsRepository IncidentsRepository 的 PostgreSQL 实现
type PostgresIncidentsRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresIncidentsRepository 创建 incidents Repository
func NewPostgresIncidentsRepository(db *sql.DB) *PostgresIncidentsRepository {
	return &PostgresIncidentsRepository{db: db, now: time.Now}
}

// 确保实现了接口
var _ IncidentsRepository = (*PostgresIncidentsRepository)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(s rowScanner) (*domain.Incident, error) {
	var (
		inc   domain.Incident
		notes sql.NullString
	)
	if err := s.Scan(
		&inc.ID,
		&inc.PersonName,
		&inc.IncidentDate,
		&notes,
		&inc.CakeDelivered,
		&inc.CreatedAt,
	); err != nil {
		return nil, err
	}
	if notes.Valid {
		inc.Notes = &notes.String
	}
	return &inc, nil
}

func (r *PostgresIncidentsRepository) ListIncidents(ctx context.Context) ([]domain.Incident, error) {
	query := `SELECT` + incidentColumns + `
		FROM cake_incidents
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list", fmt.Errorf("failed to list incidents: %w", err))
	}
	defer rows.Close()

	incidents := []domain.Incident{}
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, storeErr("list", fmt.Errorf("failed to scan incident: %w", err))
		}
		incidents = append(incidents, *inc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list", fmt.Errorf("failed to iterate incidents: %w", err))
	}

	return incidents, nil
}

func (r *PostgresIncidentsRepository) CreateIncident(ctx context.Context, personName, notes string) (*domain.Incident, error) {
	if personName == "" {
		return nil, storeErr("insert", fmt.Errorf("person_name is required"))
	}

	// incident_date follows the UTC calendar day of the submission
	incidentDate := r.now().UTC().Format(domain.IncidentDateLayout)

	query := `
		INSERT INTO cake_incidents (person_name, incident_date, notes, cake_delivered)
		VALUES ($1, $2::date, $3, FALSE)
		RETURNING` + incidentColumns

	inc, err := scanIncident(r.db.QueryRowContext(ctx, query,
		personName,
		incidentDate,
		sql.NullString{String: notes, Valid: notes != ""},
	))
	if err != nil {
		return nil, storeErr("insert", fmt.Errorf("failed to insert incident: %w", err))
	}

	return inc, nil
}

func (r *PostgresIncidentsRepository) SetDelivered(ctx context.Context, id string, delivered bool) error {
	if id == "" {
		return storeErr("update", ErrIncidentNotFound)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE cake_incidents SET cake_delivered = $2 WHERE id = $1`,
		id, delivered,
	)
	if err != nil {
		return storeErr("update", fmt.Errorf("failed to update incident: %w", err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return storeErr("update", fmt.Errorf("failed to read affected rows: %w", err))
	}
	if n == 0 {
		return storeErr("update", fmt.Errorf("%w: %s", ErrIncidentNotFound, id))
	}

	return nil
}

func (r *PostgresIncidentsRepository) SearchNames(ctx context.Context, fragment string) ([]string, error) {
	query := `
		SELECT person_name
		FROM cake_incidents
		WHERE person_name ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, "%"+escapeLike(fragment)+"%")
	if err != nil {
		return nil, storeErr("search", fmt.Errorf("failed to search names: %w", err))
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, storeErr("search", fmt.Errorf("failed to scan name: %w", err))
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("search", fmt.Errorf("failed to iterate names: %w", err))
	}

	return names, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
