package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/road-damage-service/internal/domain"
)

// TicketFilter captures listing parameters. OwnerID scopes the result to a
// single reporter; IncludeOwner joins account fields for admin views.
type TicketFilter struct {
	OwnerID      *string
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	IncludeOwner bool
	Limit        int
	Offset       int
}

// StatusUpdate describes an atomic status mutation. AdminNotes nil leaves
// existing notes untouched.
type StatusUpdate struct {
	TicketID   string
	ActorID    string
	NewStatus  domain.TicketStatus
	AdminNotes *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string, includeOwner bool) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// UpdateStatus commits the status change, the notes and the history
	// entry in a single transaction.
	UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.Ticket, error)
	CountByStatus(ctx context.Context, ownerID *string) (map[domain.TicketStatus]int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.owner_id, t.title, t.description, t.location, t.latitude, t.longitude,
        t.status, t.priority, t.damage_percentage, t.total_detections, t.damaged_area_px,
        t.image_path, t.annotated_image, t.admin_notes, t.created_at, t.updated_at`

const ownerColumns = `, u.username, u.full_name, u.email, u.phone`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (owner_id, title, description, location, latitude, longitude,
            status, priority, damage_percentage, total_detections, damaged_area_px,
            image_path, annotated_image)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.OwnerID,
		ticket.Title,
		ticket.Description,
		ticket.Location,
		ticket.Latitude,
		ticket.Longitude,
		ticket.Status,
		ticket.Priority,
		ticket.Damage.Percentage,
		ticket.Damage.TotalDetections,
		ticket.Damage.DamagedAreaPx,
		ticket.ImagePath,
		ticket.AnnotatedImage,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string, includeOwner bool) (*domain.Ticket, error) {
	if includeOwner {
		query := fmt.Sprintf(`SELECT %s%s FROM tickets t JOIN users u ON u.id = t.owner_id WHERE t.id=$1`,
			ticketColumns, ownerColumns)
		row := r.pool.QueryRow(ctx, query, id)
		return scanTicketWithOwner(row)
	}
	query := fmt.Sprintf(`SELECT %s FROM tickets t WHERE t.id=$1`, ticketColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	base := fmt.Sprintf(`SELECT %s`, ticketColumns)
	from := ` FROM tickets t`
	if filter.IncludeOwner {
		base += ownerColumns
		from = ` FROM tickets t JOIN users u ON u.id = t.owner_id`
	}

	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("t.owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.priority IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		base, from, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket *domain.Ticket
		if filter.IncludeOwner {
			ticket, err = scanTicketWithOwner(rows)
		} else {
			ticket, err = scanTicket(rows)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, update StatusUpdate) (*domain.Ticket, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var oldStatus domain.TicketStatus
	if err := tx.QueryRow(ctx, `SELECT status FROM tickets WHERE id=$1 FOR UPDATE`, update.TicketID).
		Scan(&oldStatus); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE tickets t SET status=$1, admin_notes=COALESCE($2, t.admin_notes), updated_at=NOW()
        WHERE t.id=$3 RETURNING %s`, ticketColumns)
	row := tx.QueryRow(ctx, query, update.NewStatus, update.AdminNotes, update.TicketID)
	ticket, err := scanTicket(row)
	if err != nil {
		return nil, err
	}

	const historyQuery = `
        INSERT INTO ticket_history (ticket_id, actor_id, old_status, new_status, notes)
        VALUES ($1,$2,$3,$4,$5)`
	if _, err := tx.Exec(ctx, historyQuery,
		update.TicketID, update.ActorID, oldStatus, update.NewStatus, update.AdminNotes); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) CountByStatus(ctx context.Context, ownerID *string) (map[domain.TicketStatus]int64, error) {
	query := `SELECT status, COUNT(*) FROM tickets GROUP BY status`
	args := []any{}
	if ownerID != nil {
		query = `SELECT status, COUNT(*) FROM tickets WHERE owner_id=$1 GROUP BY status`
		args = append(args, *ownerID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.TicketStatus]int64, 4)
	for rows.Next() {
		var status domain.TicketStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Location,
		&ticket.Latitude,
		&ticket.Longitude,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Damage.Percentage,
		&ticket.Damage.TotalDetections,
		&ticket.Damage.DamagedAreaPx,
		&ticket.ImagePath,
		&ticket.AnnotatedImage,
		&ticket.AdminNotes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTicketWithOwner(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.OwnerID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Location,
		&ticket.Latitude,
		&ticket.Longitude,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Damage.Percentage,
		&ticket.Damage.TotalDetections,
		&ticket.Damage.DamagedAreaPx,
		&ticket.ImagePath,
		&ticket.AnnotatedImage,
		&ticket.AdminNotes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.OwnerUsername,
		&ticket.OwnerFullName,
		&ticket.OwnerEmail,
		&ticket.OwnerPhone,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
