package dialect

import "fmt"

// MySQLDialect implements the MySQL dialect
type MySQLDialect struct{}

func (d *MySQLDialect) Name() string {
	return "mysql"
}

func (d *MySQLDialect) QuoteIdentifier(name string) string {
	return quoteWith(name, "`")
}

func (d *MySQLDialect) GetPlaceholder(index int) string {
	return "?"
}

func (d *MySQLDialect) GetDriverName() string {
	return "mysql"
}

func (d *MySQLDialect) GetLimitOffsetSyntax(limit, offset int) string {
	switch {
	case limit >= 0 && offset > 0:
		// MySQL suporta LIMIT offset, limit
		return fmt.Sprintf("LIMIT %d, %d", offset, limit)
	case limit >= 0:
		return fmt.Sprintf("LIMIT %d", limit)
	case offset > 0:
		// MySQL has no OFFSET without LIMIT
		return fmt.Sprintf("LIMIT 18446744073709551615 OFFSET %d", offset)
	}
	return ""
}
