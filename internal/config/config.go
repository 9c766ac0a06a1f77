// Package config loads application configuration from environment
// variables.  A .env file in the working directory is applied first
// when present, so local development needs no exported shell state.
package config

import (
    "log"     // report configuration errors and halt execution
    "os"      // access to environment variables
    "strconv" // convert strings to other types

    "github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.
type Config struct {
    Env          string // application environment (e.g. "dev", "prod")
    Port         string // HTTP port to listen on
    DBUser       string // database username
    DBPass       string // database password (optional)
    DBHost       string // database host address
    DBPort       string // database port number
    DBName       string // database name
    JWTSecret    string // secret used to sign JWTs
    AccessTTLMin int    // access token time-to-live in minutes
    KioskTTLMin  int    // kiosk login token time-to-live in minutes
}

// Load reads configuration from a .env file (best effort) and the
// environment.  Required variables are enforced by must(); missing
// values exit with a fatal log message.
func Load() Config {
    if err := godotenv.Load(); err != nil {
        log.Printf("config: no .env file loaded: %v", err)
    }
    return Config{
        Env:          must("APP_ENV"),
        Port:         must("APP_PORT"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       must("DB_PORT"),
        DBName:       must("DB_NAME"),
        JWTSecret:    must("JWT_SECRET"),
        AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
        KioskTTLMin:  mustInt("KIOSK_TOKEN_TTL_MIN"),
    }
}

// must retrieves a required environment variable or exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the value to an integer.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
