// Package geoip maps client IPs to ISO country codes so invoices can fall
// back to a country-derived locale when the request carries no language
// preference.
package geoip

import (
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
)

// DB wraps a MaxMind country database.
type DB struct {
	reader *geoip2.Reader
}

// Open loads the database at path. An empty path means geo lookups are not
// configured and yields a nil DB without error.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &DB{reader: reader}, nil
}

// Country returns the uppercase ISO 3166-1 code for ip, or "" when the
// database has no record for it. It satisfies middleware.CountryLookup.
func (db *DB) Country(ip string) (string, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := db.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup %s: %w", parsed, err)
	}
	if record == nil {
		return "", nil
	}
	return strings.ToUpper(record.Country.IsoCode), nil
}

// Close releases the underlying reader.
func (db *DB) Close() error {
	if db == nil || db.reader == nil {
		return nil
	}
	return db.reader.Close()
}
