package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyInto_EmptyRows(t *testing.T) {
	n, err := CopyInto(context.TODO(), nil, "listings", []string{"link", "title"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyInto_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"link", "title"}).WillReturnResult(2)

	rows := [][]any{{"https://a", "Fender Player Stratocaster"}, {"https://b", "Gibson SG Standard"}}
	n, err := CopyInto(context.Background(), mock, "listings", []string{"link", "title"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyInto_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"listings"}, []string{"link"}).WillReturnError(fmt.Errorf("copy failed"))

	_, err = CopyInto(context.Background(), mock, "listings", []string{"link"}, [][]any{{"https://a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO listings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, "listings", []string{"link"}, []string{"link"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_MissingKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, "listings", []string{"link"}, nil, [][]any{{"https://a"}})
	require.Error(t, err)
}

func TestBulkUpsert_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"link", "title", "price"}
	rows := [][]any{{"https://a", "Fender Player Stratocaster", 899.0}}

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_listings"`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_listings"}, cols).WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "listings"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	n, err := BulkUpsert(context.Background(), mock, "listings", cols, []string{"link"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
