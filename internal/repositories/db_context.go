package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/maxaizer/realjobs/internal/entities"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Driver string

const (
	Sqlite Driver = "sqlite"
	Mysql  Driver = "mysql"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(driver Driver, connectionString string) (*DbContext, error) {

	var dialector gorm.Dialector
	switch driver {
	case Sqlite:
		dialector = sqlite.Open(connectionString)
	case Mysql:
		dialector = mysql.Open(connectionString)
	default:
		return nil, fmt.Errorf("unsupported driver: %v", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	if driver == Sqlite {
		// sqlite allows a single writer; one connection makes ledger transactions serialize
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"User", &entities.User{}},
		{"JobPosting", &entities.JobPosting{}},
		{"Vote", &entities.Vote{}},
		{"Comment", &entities.Comment{}},
		{"CommentVote", &entities.CommentVote{}},
		{"Bookmark", &entities.Bookmark{}},
	}

	for _, m := range models {
		if err := c.DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s entity: %w", m.name, err)
		}
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
