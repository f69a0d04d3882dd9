package gateway

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"sales-segmentation/internal/domain"
)

const (
	driverMySQL    = "mysql"
	driverPostgres = "postgres"
)

var safeTable = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open opens the archive warehouse. mariadb:// and mysql:// URLs are converted to the
// MySQL driver format, postgres:// URLs go to lib/pq, anything else is handed to the
// MySQL driver unchanged. It returns the driver name alongside the pool.
func Open(dsn string) (*sql.DB, string, error) {
	driver, native, err := resolveDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sql.Open(driver, native)
	if err != nil {
		return nil, "", fmt.Errorf("could not open %s archive: %w", driver, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, driver, nil
}

// Ping checks the archive is reachable within three seconds.
func Ping(ctx context.Context, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("archive ping failed: %w", err)
	}
	return nil
}

func resolveDSN(dsn string) (string, string, error) {
	switch {
	case dsn == "":
		return "", "", fmt.Errorf("archive dsn is empty")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return driverPostgres, dsn, nil
	default:
		native, err := toMySQLDSN(dsn)
		if err != nil {
			return "", "", err
		}
		return driverMySQL, native, nil
	}
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user, pass := "", ""
		if u.User != nil {
			user = u.User.Username()
			pass, _ = u.User.Password()
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// SQLArchiveSource reads closed-year sales lines from the warehouse, one page at a time.
type SQLArchiveSource struct {
	db       *sql.DB
	driver   string
	table    string
	tables   map[int]string
	pageSize int
	verbose  bool
}

// ArchiveOptions selects the tables and page size of an SQLArchiveSource.
type ArchiveOptions struct {
	Table    string
	Tables   map[int]string
	PageSize int
	Verbose  bool
}

// NewSQLArchiveSource creates a source over db. Tables maps a year to a dedicated table;
// other years read Table.
func NewSQLArchiveSource(db *sql.DB, driver string, opts ArchiveOptions) *SQLArchiveSource {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 1000
	}
	return &SQLArchiveSource{
		db:       db,
		driver:   driver,
		table:    opts.Table,
		tables:   opts.Tables,
		pageSize: pageSize,
		verbose:  opts.Verbose,
	}
}

// Fetch returns every sales line invoiced within [from, to].
func (s *SQLArchiveSource) Fetch(ctx context.Context, from, to time.Time) ([]domain.RawRow, error) {
	table := s.tableFor(from.Year())
	if !safeTable.MatchString(table) {
		return nil, fmt.Errorf("invalid archive table %q", table)
	}
	q := buildPageQuery(s.driver, table)
	fromArg, toArg := from.Format(time.DateOnly), to.Format(time.DateOnly)

	var rows []domain.RawRow
	for offset := 0; ; offset += s.pageSize {
		page, err := s.fetchPage(ctx, q, fromArg, toArg, offset)
		if err != nil {
			return nil, fmt.Errorf("could not read archive page at offset %d: %w", offset, err)
		}
		rows = append(rows, page...)
		if s.verbose {
			log.Printf("[DEBUG] archive %s offset=%d rows=%d", table, offset, len(page))
		}
		if len(page) < s.pageSize {
			break
		}
	}
	return rows, nil
}

func (s *SQLArchiveSource) fetchPage(ctx context.Context, q, from, to string, offset int) ([]domain.RawRow, error) {
	res, err := s.db.QueryContext(ctx, q, from, to, s.pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var page []domain.RawRow
	for res.Next() {
		var customerID, customerName, orderID, date, amount, channel, line sql.NullString
		if err := res.Scan(&customerID, &customerName, &orderID, &date, &amount, &channel, &line); err != nil {
			return nil, err
		}
		page = append(page, domain.ArchiveRow{
			CustomerID:     customerID.String,
			CustomerName:   customerName.String,
			OrderID:        orderID.String,
			Date:           date.String,
			Amount:         amount.String,
			Channel:        channel.String,
			LineOfBusiness: line.String,
		})
	}
	return page, res.Err()
}

func (s *SQLArchiveSource) tableFor(year int) string {
	if t, ok := s.tables[year]; ok {
		return t
	}
	return s.table
}

func buildPageQuery(driver, table string) string {
	cols := `partner_id, partner_name, invoice_name, invoice_date, price_subtotal, canal, commercial_line_name`
	if driver == driverPostgres {
		return fmt.Sprintf(`SELECT %s FROM %s WHERE invoice_date >= $1 AND invoice_date <= $2 ORDER BY invoice_date, id LIMIT $3 OFFSET $4`, cols, table)
	}
	return fmt.Sprintf(`SELECT %s FROM %s WHERE invoice_date >= ? AND invoice_date <= ? ORDER BY invoice_date, id LIMIT ? OFFSET ?`, cols, table)
}
