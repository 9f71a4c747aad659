package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresBackend_Load(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(mock pgxmock.PgxPoolIface)
		wantData    string
		wantVersion int64
		wantErr     bool
	}{
		{
			name: "document found",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"document", "version"}).
					AddRow([]byte(`{"v":{}}`), int64(4))
				mock.ExpectQuery("SELECT document, version FROM content_documents WHERE key = \\$1").
					WithArgs(DefaultKey).
					WillReturnRows(rows)
			},
			wantData:    `{"v":{}}`,
			wantVersion: 4,
		},
		{
			name: "document missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT document, version FROM content_documents").
					WithArgs(DefaultKey).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "database error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT document, version FROM content_documents").
					WithArgs(DefaultKey).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			backend := NewPostgresBackend(mock)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			data, version, err := backend.Load(ctx, DefaultKey)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantData, string(data))
				assert.Equal(t, tt.wantVersion, version)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestPostgresBackend_Save(t *testing.T) {
	doc := []byte(`{"v":{"quizzes":[]}}`)

	tests := []struct {
		name        string
		expected    int64
		setup       func(mock pgxmock.PgxPoolIface)
		wantVersion int64
		wantErr     error
		wantAnyErr  bool
	}{
		{
			name:     "first insert",
			expected: 0,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO content_documents").
					WithArgs(DefaultKey, doc).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
			wantVersion: 1,
		},
		{
			name:     "insert lost the race",
			expected: 0,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO content_documents").
					WithArgs(DefaultKey, doc).
					WillReturnResult(pgxmock.NewResult("INSERT", 0))
			},
			wantErr: ErrVersionConflict,
		},
		{
			name:     "versioned update",
			expected: 3,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE content_documents SET document = \\$1, version = version \\+ 1").
					WithArgs(doc, DefaultKey, int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			wantVersion: 4,
		},
		{
			name:     "stale version",
			expected: 3,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE content_documents").
					WithArgs(doc, DefaultKey, int64(3)).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: ErrVersionConflict,
		},
		{
			name:     "database error",
			expected: 3,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE content_documents").
					WithArgs(doc, DefaultKey, int64(3)).
					WillReturnError(assert.AnError)
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			backend := NewPostgresBackend(mock)

			version, err := backend.Save(context.Background(), DefaultKey, doc, tt.expected)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, ErrVersionConflict)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantVersion, version)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}
