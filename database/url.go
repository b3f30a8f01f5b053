package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL and a database name. When databaseName is empty the
// base URL is returned untouched. Otherwise the name is inserted before any query string and
// sslmode=disable is appended unless the URL already chooses an sslmode.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	base, query, hasQuery := strings.Cut(strings.TrimRight(baseURL, "/"), "?")
	databaseURL := fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), databaseName)
	if hasQuery {
		databaseURL = fmt.Sprintf("%s?%s", databaseURL, query)
	}

	if strings.Contains(databaseURL, "sslmode=") {
		return databaseURL
	}
	if hasQuery {
		return databaseURL + "&sslmode=disable"
	}
	return databaseURL + "?sslmode=disable"
}
