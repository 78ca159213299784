package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // PostgreSQL 드라이버 등록
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/kapu/youtube-tracker-bot-go/internal/constants"
)

// PostgresService: PostgreSQL 연결과 GORM 인스턴스를 함께 관리한다.
// raw SQL 경로(sql.DB)와 마이그레이션 경로(gorm.DB)가 같은 커넥션 풀을 공유한다.
type PostgresService struct {
	db     *sql.DB
	gormDB *gorm.DB
	logger *slog.Logger
}

// PostgresConfig: PostgreSQL 접속 설정.
// URL이 지정되면 개별 필드(Host/Port/...)보다 우선한다. (호스팅 환경의 DATABASE_URL 대응)
type PostgresConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// dsn: 접속 문자열을 만든다. URL이 있으면 그대로 사용한다.
func (cfg PostgresConfig) dsn() string {
	if cfg.URL != "" {
		return cfg.URL
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, sslMode)
}

// NewPostgresService: PostgreSQL 연결을 수립하고 커넥션 풀과 GORM을 초기화한다.
// 초기 Ping이 실패하면 연결을 닫고 에러를 반환한다.
func NewPostgresService(cfg PostgresConfig, logger *slog.Logger) (*PostgresService, error) {
	db, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(constants.DatabaseConfig.MaxOpenConns)
	db.SetMaxIdleConns(constants.DatabaseConfig.MaxIdleConns)
	db.SetConnMaxLifetime(constants.DatabaseConfig.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(context.Background(), constants.RequestTimeout.DatabasePing)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	// 기존 sql.DB 커넥션을 재사용하므로 GORM 쪽에 별도 풀이 생기지 않는다.
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize GORM: %w", err)
	}

	logger.Info("PostgreSQL connected",
		slog.String("database", cfg.Database),
		slog.Int("max_open_conns", constants.DatabaseConfig.MaxOpenConns),
	)

	return &PostgresService{db: db, gormDB: gormDB, logger: logger}, nil
}

// GetDB: raw SQL 질의용 sql.DB 인스턴스를 반환한다.
func (ps *PostgresService) GetDB() *sql.DB {
	return ps.db
}

// GetGormDB: GORM DB 인스턴스를 반환한다. (스키마 마이그레이션 시 활용)
func (ps *PostgresService) GetGormDB() *gorm.DB {
	return ps.gormDB
}

// Ping: 연결 상태를 확인한다. (헬스 체크용)
func (ps *PostgresService) Ping(ctx context.Context) error {
	if err := ps.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// Close: 데이터베이스 연결을 종료한다.
func (ps *PostgresService) Close() error {
	if ps.db == nil {
		return nil
	}
	if err := ps.db.Close(); err != nil {
		return fmt.Errorf("failed to close postgres: %w", err)
	}
	return nil
}
