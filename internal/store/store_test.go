package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"campus-reveal-backend/internal/db"
	"campus-reveal-backend/internal/model"
	"campus-reveal-backend/internal/parse"
)

// newSQLiteStore opens a private in-memory database with the schema applied.
func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return NewGormStore(gormDB)
}

// newMockStore builds a store over sqlmock for failure paths.
func newMockStore(t *testing.T) (Store, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: conn,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	return NewGormStore(gormDB), mock
}

func seedColleges(t *testing.T, s Store, names ...string) []model.College {
	t.Helper()
	colleges := make([]model.College, 0, len(names))
	for i, name := range names {
		colleges = append(colleges, model.College{
			Name:  name,
			City:  fmt.Sprintf("City %d", i),
			State: "State",
		})
	}
	res, err := s.InsertColleges(context.Background(), colleges)
	require.NoError(t, err)
	require.Equal(t, int64(len(names)), res.Inserted)

	all, err := s.ListColleges(context.Background(), "")
	require.NoError(t, err)
	return all
}

func collegeNames(colleges []model.College) []string {
	names := make([]string, 0, len(colleges))
	for _, c := range colleges {
		names = append(names, c.Name)
	}
	return names
}

func TestGormStore_ListColleges(t *testing.T) {
	s := newSQLiteStore(t)
	seedColleges(t, s, "Alpha Tech", "Beta Tech", "Gamma", "100% Institute", "Delta_Poly")

	testCases := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "empty query returns all in insertion order", query: "", expected: []string{"Alpha Tech", "Beta Tech", "Gamma", "100% Institute", "Delta_Poly"}},
		{name: "case-insensitive substring", query: "tech", expected: []string{"Alpha Tech", "Beta Tech"}},
		{name: "unanchored", query: "AMM", expected: []string{"Gamma"}},
		{name: "percent is literal", query: "0%", expected: []string{"100% Institute"}},
		{name: "underscore is literal", query: "a_p", expected: []string{"Delta_Poly"}},
		{name: "no match is empty, not an error", query: "zeta", expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			colleges, err := s.ListColleges(context.Background(), tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, collegeNames(colleges))
		})
	}
}

func TestGormStore_ListColleges_UnicodeCaseFolding(t *testing.T) {
	s := newSQLiteStore(t)
	seedColleges(t, s, "ÉCOLE Tech", "Öffentliche Akademie", "Gamma")

	for _, q := range []string{"école", "ÉCOLE", "éCoLe t", "öffentliche"} {
		colleges, err := s.ListColleges(context.Background(), q)
		require.NoError(t, err, q)
		require.Len(t, colleges, 1, q)
		assert.True(t, parse.NameMatches(colleges[0].Name, q), q)
	}

	colleges, err := s.ListColleges(context.Background(), "ecole")
	require.NoError(t, err)
	assert.Empty(t, colleges)
}

func TestGormStore_ListColleges_PostgresSearchesInSQL(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT \* FROM "colleges" WHERE LOWER\(name\) LIKE \$1 ESCAPE '\\' ORDER BY seq`).
		WithArgs(`%école\_%`).
		WillReturnRows(sqlmock.NewRows([]string{"seq", "id", "name", "city", "state", "nirf_rank", "rank"}).
			AddRow(1, uuid.NewString(), "ÉCOLE_X", "Paris", "IDF", "nan", "nan"))

	colleges, err := s.ListColleges(context.Background(), "ÉCOLE_")
	require.NoError(t, err)
	assert.Equal(t, []string{"ÉCOLE_X"}, collegeNames(colleges))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_InsertColleges_LargeCatalogue(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	const n = 6200
	colleges := make([]model.College, 0, n)
	for i := 0; i < n; i++ {
		colleges = append(colleges, model.College{
			Name:  fmt.Sprintf("College %05d", i),
			City:  "City",
			State: "State",
		})
	}

	res, err := s.InsertColleges(ctx, colleges)
	require.NoError(t, err)
	assert.Equal(t, InsertResult{Inserted: n}, res)

	// Re-importing with a few new rows skips the rest across every batch.
	colleges = append(colleges, model.College{Name: "Late Addition", City: "City", State: "State"})
	res, err = s.InsertColleges(ctx, colleges)
	require.NoError(t, err)
	assert.Equal(t, InsertResult{Inserted: 1, Skipped: n}, res)

	all, err := s.ListColleges(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, n+1)
	assert.Equal(t, "College 00000", all[0].Name)
	assert.Equal(t, "Late Addition", all[n].Name)
}

func TestGormStore_InsertColleges(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	res, err := s.InsertColleges(ctx, []model.College{
		{Name: "Alpha Tech", City: "Pune", State: "Maharashtra", NIRFRank: "12"},
		{Name: "Gamma", City: "Delhi", State: "Delhi"},
	})
	require.NoError(t, err)
	assert.Equal(t, InsertResult{Inserted: 2}, res)

	// Same identity again is skipped; a new one goes in.
	res, err = s.InsertColleges(ctx, []model.College{
		{Name: "Alpha Tech", City: "Pune", State: "Maharashtra", NIRFRank: "99"},
		{Name: "Beta Tech", City: "Chennai", State: "Tamil Nadu"},
	})
	require.NoError(t, err)
	assert.Equal(t, InsertResult{Inserted: 1, Skipped: 1}, res)

	colleges, err := s.ListColleges(ctx, "")
	require.NoError(t, err)
	require.Len(t, colleges, 3)

	assert.Equal(t, "12", colleges[0].NIRFRank)
	assert.Equal(t, "nan", colleges[0].Rank)
	assert.Equal(t, "nan", colleges[1].NIRFRank)
	for _, c := range colleges {
		_, err := uuid.Parse(c.ID)
		assert.NoError(t, err)
	}

	res, err = s.InsertColleges(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, InsertResult{}, res)
}

func TestGormStore_GetCollege(t *testing.T) {
	s := newSQLiteStore(t)
	colleges := seedColleges(t, s, "Alpha Tech")

	got, err := s.GetCollege(context.Background(), colleges[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Tech", got.Name)
	assert.Equal(t, colleges[0].ID, got.ID)

	_, err = s.GetCollege(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetCollege(context.Background(), "64f1c0ffee")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStore_Reviews(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()
	colleges := seedColleges(t, s, "Alpha Tech", "Gamma")
	alpha, gamma := colleges[0].ID, colleges[1].ID

	submitted := []model.Review{
		{CollegeID: alpha, Review: "Great labs", Rating: 5},
		{CollegeID: gamma, Review: "", Rating: 1},
		{CollegeID: alpha, Review: "Crowded hostel", Rating: 2},
	}
	before := time.Now().Add(-time.Second)
	for i := range submitted {
		require.NoError(t, s.AddReview(ctx, &submitted[i]))
		assert.NotEmpty(t, submitted[i].ID)
		assert.True(t, submitted[i].CreatedAt.After(before))
	}

	reviews, err := s.ListReviews(ctx, alpha)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Great labs", reviews[0].Review)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.Equal(t, submitted[0].ID, reviews[0].ID)
	assert.Equal(t, "Crowded hostel", reviews[1].Review)
	assert.Equal(t, 2, reviews[1].Rating)

	// Reviews are matched by value; an unknown college simply has none.
	reviews, err = s.ListReviews(ctx, "not-a-college")
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.NotNil(t, reviews)
}

func TestGormStore_OrphanReviewAllowed(t *testing.T) {
	s := newSQLiteStore(t)
	orphan := uuid.NewString()

	require.NoError(t, s.AddReview(context.Background(), &model.Review{CollegeID: orphan, Rating: 3}))

	reviews, err := s.ListReviews(context.Background(), orphan)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestGormStore_DatabaseErrors(t *testing.T) {
	boom := errors.New("connection reset by peer")

	t.Run("list colleges", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "colleges"`).WillReturnError(boom)

		_, err := s.ListColleges(context.Background(), "tech")
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get college", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "colleges" WHERE id = \$1`).WillReturnError(boom)

		_, err := s.GetCollege(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed id never reaches the database", func(t *testing.T) {
		s, mock := newMockStore(t)

		_, err := s.GetCollege(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list reviews", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectQuery(`SELECT \* FROM "reviews" WHERE college_id = \$1`).WillReturnError(boom)

		_, err := s.ListReviews(context.Background(), uuid.NewString())
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("add review", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO "reviews"`).WillReturnError(boom)
		mock.ExpectRollback()

		err := s.AddReview(context.Background(), &model.Review{CollegeID: uuid.NewString(), Rating: 4})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
