package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// ReportRepo runs the read-only aggregation queries behind the admin
// reports.  Cancelled seat-lines never count toward revenue or
// attendance.
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo constructs a ReportRepo with the given DB handle.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

// MovieRevenue is one row of the per-movie revenue report.
type MovieRevenue struct {
	MovieID     uint64          `json:"movieId"`
	Title       string          `json:"title"`
	SeatsSold   int             `json:"seatsSold"`
	Revenue     decimal.Decimal `json:"revenue"`
	RevenueRank int             `json:"rank"`
}

// MoviesByRevenue sums active seat-line prices per movie, highest
// first.  Movies with no sales are included with zero revenue.
func (r *ReportRepo) MoviesByRevenue(ctx context.Context) ([]MovieRevenue, error) {
	const q = `SELECT m.movie_id, m.title,
	                  COUNT(bs.booking_seat_id) AS seats_sold,
	                  COALESCE(SUM(bs.final_price), 0) AS revenue,
	                  RANK() OVER (ORDER BY COALESCE(SUM(bs.final_price), 0) DESC) AS rnk
	           FROM movie m
	           LEFT JOIN showtime s ON s.movie_id = m.movie_id
	           LEFT JOIN booking_seat bs ON bs.showtime_id = s.showtime_id AND bs.status = 'active'
	           WHERE m.deleted_at IS NULL
	           GROUP BY m.movie_id, m.title
	           ORDER BY revenue DESC, m.title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]MovieRevenue, 0)
	for rows.Next() {
		var it MovieRevenue
		if err := rows.Scan(&it.MovieID, &it.Title, &it.SeatsSold, &it.Revenue, &it.RevenueRank); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MovieAttendance is one row of the per-movie attendance report.
type MovieAttendance struct {
	MovieID   uint64 `json:"movieId"`
	Title     string `json:"title"`
	Showtimes int    `json:"showtimes"`
	SeatsSold int    `json:"seatsSold"`
}

// MoviesByAttendance counts showtimes and active seat-lines per
// movie, most attended first.
func (r *ReportRepo) MoviesByAttendance(ctx context.Context) ([]MovieAttendance, error) {
	const q = `SELECT m.movie_id, m.title,
	                  COUNT(DISTINCT s.showtime_id) AS showtimes,
	                  COUNT(bs.booking_seat_id) AS seats_sold
	           FROM movie m
	           LEFT JOIN showtime s ON s.movie_id = m.movie_id AND s.deleted_at IS NULL
	           LEFT JOIN booking_seat bs ON bs.showtime_id = s.showtime_id AND bs.status = 'active'
	           WHERE m.deleted_at IS NULL
	           GROUP BY m.movie_id, m.title
	           ORDER BY seats_sold DESC, m.title`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]MovieAttendance, 0)
	for rows.Next() {
		var it MovieAttendance
		if err := rows.Scan(&it.MovieID, &it.Title, &it.Showtimes, &it.SeatsSold); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UserSpending is one row of the top-spenders report.
type UserSpending struct {
	UserID      uint64          `json:"userId"`
	FirstName   string          `json:"firstName"`
	LastName    string          `json:"lastName"`
	Email       string          `json:"email"`
	Bookings    int             `json:"bookings"`
	TotalSpent  decimal.Decimal `json:"totalSpent"`
	SpendingRnk int             `json:"rank"`
}

// TopSpenders ranks users by the sum of their active seat-line
// prices, highest first, limited to the given number of rows.
func (r *ReportRepo) TopSpenders(ctx context.Context, limit int) ([]UserSpending, error) {
	const q = `SELECT u.user_id, u.first_name, u.last_name, u.email,
	                  COUNT(DISTINCT b.booking_id) AS bookings,
	                  COALESCE(SUM(bs.final_price), 0) AS total_spent,
	                  RANK() OVER (ORDER BY COALESCE(SUM(bs.final_price), 0) DESC) AS rnk
	           FROM users u
	           JOIN booking b ON b.user_id = u.user_id
	           LEFT JOIN booking_seat bs ON bs.booking_id = b.booking_id AND bs.status = 'active'
	           WHERE u.deleted_at IS NULL
	           GROUP BY u.user_id, u.first_name, u.last_name, u.email
	           ORDER BY total_spent DESC, u.user_id
	           LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]UserSpending, 0)
	for rows.Next() {
		var it UserSpending
		if err := rows.Scan(&it.UserID, &it.FirstName, &it.LastName, &it.Email,
			&it.Bookings, &it.TotalSpent, &it.SpendingRnk); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
