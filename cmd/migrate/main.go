// Comando de migraciones: aplica o revierte el esquema embebido en el binario.
//
//	migrate up          aplica todas las migraciones pendientes
//	migrate down [n]    revierte n migraciones (default 1)
//	migrate version     muestra la versión actual del esquema
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/tu-usuario/farmacia-pos/migrations"
	"github.com/tu-usuario/farmacia-pos/pkg/config"
	"github.com/tu-usuario/farmacia-pos/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name})

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		log.Fatal().Err(err).Msg("cargar migraciones embebidas")
	}

	// golang-migrate registra el driver de pgx/v5 bajo el esquema pgx5://
	dsn := strings.Replace(cfg.DB.ConnectionString(), "postgres://", "pgx5://", 1)
	dsn = strings.Replace(dsn, "postgresql://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migrador")
	}
	defer m.Close()

	switch os.Args[1] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Msg("aplicar migraciones")
		}
		log.Info().Msg("esquema al día")
	case "down":
		n := 1
		if len(os.Args) > 2 {
			if parsed, err := strconv.Atoi(os.Args[2]); err == nil && parsed > 0 {
				n = parsed
			}
		}
		if err := m.Steps(-n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Int("steps", n).Msg("revertir migraciones")
		}
		log.Info().Int("steps", n).Msg("migraciones revertidas")
	case "version":
		version, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatal().Err(err).Msg("consultar versión")
		}
		log.Info().Uint("version", version).Bool("dirty", dirty).Msg("versión del esquema")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "uso: migrate <up|down [n]|version>")
}
