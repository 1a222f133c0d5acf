package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/greenacre/farmcore/farmstate"
	"github.com/greenacre/farmcore/save"
)

func newMockGORM(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestMySQLRepositoryGetFarmByIDNotFound(t *testing.T) {
	db, mock := newMockGORM(t)
	repo := &MySQLRepository{db: db}

	mock.ExpectQuery("SELECT \\* FROM `farms`").WillReturnRows(sqlmock.NewRows(nil))

	doc, err := repo.GetFarmByID(context.Background(), 1)
	require.NoError(t, err)
	require.Nil(t, doc)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLRepositoryUpdateGameStateConflictOnNoRowsAffected(t *testing.T) {
	db, mock := newMockGORM(t)
	repo := &MySQLRepository{db: db}

	addr := common.HexToAddress("0x00000000000000000000000000000000000001")
	state := farmstate.New(addr.Hex())
	doc := save.FarmDocument{ID: 1, Address: addr, GameState: state.ToDocument()}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `farms`").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT \\* FROM `farms`").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	err := repo.UpdateGameState(context.Background(), doc, [32]byte{9}, [32]byte{1})
	require.ErrorIs(t, err, save.ErrSessionConflict)
}

func TestEventRecordTableName(t *testing.T) {
	require.Equal(t, "farm_events", EventRecord{}.TableName())
}

func TestFarmRecordTableName(t *testing.T) {
	require.Equal(t, "farms", FarmRecord{}.TableName())
}
