package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviehall/cinema-booking/internal/model"
	"github.com/moviehall/cinema-booking/internal/repository"
)

// The tests below run the booking engine against a real Postgres
// database so the partial unique index and transaction rollback
// behaviour are exercised for real.  They are skipped unless
// TEST_DATABASE_URL points at a disposable database; the schema is
// dropped and rebuilt from the migration file on every test.

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Ping())

	_, err = db.Exec(`DROP SCHEMA public CASCADE; CREATE SCHEMA public`)
	require.NoError(t, err)
	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)
	return db
}

func seedID(t *testing.T, db *sql.DB, q string, args ...interface{}) uint64 {
	t.Helper()
	var id uint64
	require.NoError(t, db.QueryRow(q, args...).Scan(&id))
	return id
}

func countRows(t *testing.T, db *sql.DB, q string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}

// bookingEnv holds a seeded database with one hall of two seats, an
// all-day 1.50 tariff and a showtime tomorrow relative to the fixed
// test clock.
type bookingEnv struct {
	db         *sql.DB
	bookings   *BookingService
	showtimes  *ShowtimeService
	userID     uint64
	otherID    uint64
	hallID     uint64
	showtimeID uint64
	seatA      uint64
	seatB      uint64
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()
	db := testDB(t)

	userID := seedID(t, db, `INSERT INTO users (first_name, last_name, email, password)
	                         VALUES ('Anna', 'Berg', 'anna@example.com', 'x') RETURNING user_id`)
	otherID := seedID(t, db, `INSERT INTO users (first_name, last_name, email, password)
	                          VALUES ('Ben', 'Craig', 'ben@example.com', 'x') RETURNING user_id`)
	movieID := seedID(t, db, `INSERT INTO movie (title, age_limit, duration_min, release_year)
	                          VALUES ('Arrival', 12, 116, 2016) RETURNING movie_id`)
	hallID := seedID(t, db, `INSERT INTO cinema_hall (hall_number, capacity)
	                         VALUES (1, 50) RETURNING hall_id`)
	seatA := seedID(t, db, `INSERT INTO seat (hall_id, row_number, seat_number, seat_type, base_price)
	                        VALUES ($1, 1, 1, 'standard', 100.00) RETURNING seat_id`, hallID)
	seatB := seedID(t, db, `INSERT INTO seat (hall_id, row_number, seat_number, seat_type, base_price)
	                        VALUES ($1, 1, 2, 'vip', 200.00) RETURNING seat_id`, hallID)
	tariffID := seedID(t, db, `INSERT INTO tariff (name, start_time, end_time, price_multiplier)
	                           VALUES ('all day', '00:00:00', '23:59:59', 1.50) RETURNING tariff_id`)
	showtimeID := seedID(t, db, `INSERT INTO showtime (hall_id, movie_id, show_date, show_time, tariff_id)
	                             VALUES ($1, $2, '2026-09-02', '18:00:00', $3) RETURNING showtime_id`,
		hallID, movieID, tariffID)

	showtimes := repository.NewShowtimeRepo(db)
	halls := repository.NewHallRepo(db)
	tariffs := repository.NewTariffRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	clock := fixedClock(t, "2026-09-01 12:00:00")

	return &bookingEnv{
		db: db,
		bookings: &BookingService{
			db: db, showtimes: showtimes, halls: halls,
			tariffs: tariffs, bookings: bookingRepo, now: clock,
		},
		showtimes: &ShowtimeService{
			db: db, showtimes: showtimes, halls: halls,
			tariffs: tariffs, bookings: bookingRepo, now: clock,
		},
		userID:     userID,
		otherID:    otherID,
		hallID:     hallID,
		showtimeID: showtimeID,
		seatA:      seatA,
		seatB:      seatB,
	}
}

func TestBookSeats_PersistsPricedBooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	b, err := env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA, env.seatB})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	// 100.00 * 1.50 + 200.00 * 1.50
	assert.True(t, b.TotalPrice.Equal(decimal.RequireFromString("450.00")),
		"total %s", b.TotalPrice)
	require.Len(t, b.Seats, 2)
	assert.True(t, b.Seats[0].FinalPrice.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, b.Seats[1].FinalPrice.Equal(decimal.RequireFromString("300.00")))

	var status string
	var total decimal.Decimal
	require.NoError(t, env.db.QueryRow(
		`SELECT status, total_price FROM booking WHERE booking_id = $1`, b.ID).Scan(&status, &total))
	assert.Equal(t, model.BookingStatusPending, status)
	assert.True(t, total.Equal(decimal.RequireFromString("450.00")))
	assert.Equal(t, 2, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking_seat WHERE booking_id = $1 AND status = 'active'`, b.ID))
}

func TestBookSeats_OneWinnerUnderConcurrency(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var taken *SeatsAlreadyBookedError
		require.ErrorAs(t, err, &taken)
		assert.Contains(t, taken.SeatIDs, env.seatA)
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking_seat WHERE showtime_id = $1 AND seat_id = $2 AND status = 'active'`,
		env.showtimeID, env.seatA))
	assert.Equal(t, 1, countRows(t, env.db, `SELECT COUNT(*) FROM booking`))
}

func TestBookSeats_PartialConflictRollsBackWhole(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA})
	require.NoError(t, err)

	_, err = env.bookings.BookSeats(ctx, env.otherID, env.showtimeID, []uint64{env.seatA, env.seatB})
	var taken *SeatsAlreadyBookedError
	require.ErrorAs(t, err, &taken)
	assert.Equal(t, []uint64{env.seatA}, taken.SeatIDs)

	// The free seat must not be held by the failed booking.
	assert.Equal(t, 0, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking WHERE user_id = $1`, env.otherID))
	assert.Equal(t, 0, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking_seat WHERE seat_id = $1`, env.seatB))
}

func TestBookSeats_CancelReleasesSeatForRebooking(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	first, err := env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA})
	require.NoError(t, err)
	_, err = env.bookings.CancelBooking(ctx, first.ID, env.userID, false)
	require.NoError(t, err)

	second, err := env.bookings.BookSeats(ctx, env.otherID, env.showtimeID, []uint64{env.seatA})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The cancelled line stays as history next to the new active one.
	assert.Equal(t, 1, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking_seat WHERE showtime_id = $1 AND seat_id = $2 AND status = 'cancelled'`,
		env.showtimeID, env.seatA))
	assert.Equal(t, 1, countRows(t, env.db,
		`SELECT COUNT(*) FROM booking_seat WHERE showtime_id = $1 AND seat_id = $2 AND status = 'active'`,
		env.showtimeID, env.seatA))
}

func TestBookSeats_NoActiveTariffWritesNothing(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	_, err := env.db.Exec(`UPDATE tariff SET deleted_at = now()`)
	require.NoError(t, err)

	_, err = env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA})
	require.ErrorIs(t, err, ErrNoActiveTariff)
	assert.Equal(t, 0, countRows(t, env.db, `SELECT COUNT(*) FROM booking`))
	assert.Equal(t, 0, countRows(t, env.db, `SELECT COUNT(*) FROM booking_seat`))
}

func TestHallUpdate_DeleteUnknownSeatRejected(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	halls := repository.NewHallRepo(env.db)
	now := time.Now()
	_, err := halls.Update(ctx, env.hallID, repository.HallUpdate{
		Seats: []model.Seat{{ID: env.seatB + 1000, DeletedAt: &now}},
	})
	require.ErrorIs(t, err, repository.ErrSeatNotFound)
	assert.Equal(t, 2, countRows(t, env.db,
		`SELECT COUNT(*) FROM seat WHERE hall_id = $1 AND deleted_at IS NULL`, env.hallID))
}

func TestShowtimeDelete_BlockedByActiveBookings(t *testing.T) {
	env := newBookingEnv(t)
	ctx := context.Background()

	b, err := env.bookings.BookSeats(ctx, env.userID, env.showtimeID, []uint64{env.seatA})
	require.NoError(t, err)

	err = env.showtimes.Delete(ctx, env.showtimeID)
	require.ErrorIs(t, err, ErrShowtimeHasBookings)
	assert.Equal(t, 0, countRows(t, env.db,
		`SELECT COUNT(*) FROM showtime WHERE showtime_id = $1 AND deleted_at IS NOT NULL`, env.showtimeID))

	_, err = env.bookings.CancelBooking(ctx, b.ID, env.userID, false)
	require.NoError(t, err)
	require.NoError(t, env.showtimes.Delete(ctx, env.showtimeID))
	assert.Equal(t, 1, countRows(t, env.db,
		`SELECT COUNT(*) FROM showtime WHERE showtime_id = $1 AND deleted_at IS NOT NULL`, env.showtimeID))
}
