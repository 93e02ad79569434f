package app

import (
	"strings"

	"github.com/charlesng35/botspace/internal/database"
)

// ConnectionConfig converts the database section into database.Open parameters.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	var hostAuth *DBAuthConfig
	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		hostAuth = &c.Postgres
	case "mysql":
		hostAuth = &c.MySQL
	default:
		// unsupported drivers surface from database.Open
	}

	if hostAuth != nil {
		dbCfg.Host = strings.TrimSpace(hostAuth.Host)
		dbCfg.Port = hostAuth.Port
		dbCfg.Name = strings.TrimSpace(hostAuth.Database)
		dbCfg.User = strings.TrimSpace(hostAuth.Username)
		dbCfg.Password = hostAuth.Password
	}

	return dbCfg
}
