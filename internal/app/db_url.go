package app

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/riskibarqy/propline/internal/config"
)

var sqlitePragmas = []string{"busy_timeout(5000)", "foreign_keys(1)"}

func normalizeDBURL(driver, raw string, disablePreparedBinaryResult bool) string {
	switch driver {
	case config.DBDriverSQLite:
		return withSQLitePragmas(raw)
	case config.DBDriverPostgres:
		if !disablePreparedBinaryResult {
			return raw
		}
	default:
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	if query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

// withSQLitePragmas adds modernc _pragma parameters the DSN does not set yet.
func withSQLitePragmas(raw string) string {
	if strings.Contains(raw, ":memory:") {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}

	query := parsed.Query()
	existing := strings.Join(query["_pragma"], ",")
	changed := false
	for _, pragma := range sqlitePragmas {
		name := pragma[:strings.IndexByte(pragma, '(')]
		if strings.Contains(existing, name) {
			continue
		}
		query.Add("_pragma", pragma)
		changed = true
	}
	if !changed {
		return raw
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		if parsed.Opaque != "" {
			return strings.TrimSuffix(filepath.Base(parsed.Opaque), filepath.Ext(parsed.Opaque))
		}
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			if parsed.Scheme == "file" {
				return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
			}
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
