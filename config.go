package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server configuration. Flags win over environment variables,
// which win over the defaults.
type Config struct {
	Addr            string
	GRPCAddr        string
	DBPath          string
	LeaderboardFile string
	LogLevel        string
	LogFormat       string
	ErrorLog        string
	JWTSecret       string
	AdminUser       string
	AdminHash       string
	AllowedOrigins  []string
	TrustedProxies  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Guard           GuardConfig

	// HashPassword, when set, prints its bcrypt hash and exits
	HashPassword string
}

// LoadConfig reads .env (if present), the environment and the command line
func LoadConfig(args []string) (Config, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load()

	guard := DefaultGuardConfig()
	cfg := Config{Guard: guard}
	fs := flag.NewFlagSet("deadwave", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", getEnv("ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", getEnv("GRPC_ADDR", ""), "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db", getEnv("DB_PATH", ""), "SQLite database path (empty uses the JSON leaderboard file)")
	fs.StringVar(&cfg.LeaderboardFile, "leaderboard", getEnv("LEADERBOARD_FILE", "leaderboard.json"), "JSON leaderboard file")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", getEnv("LOG_FORMAT", "console"), "console or json")
	fs.StringVar(&cfg.ErrorLog, "error-log", getEnv("ERROR_LOG", "logs/error.log"), "rotated error log (empty disables)")
	fs.StringVar(&cfg.AdminUser, "admin-user", getEnv("ADMIN_USER", ""), "admin basic-auth user")
	fs.StringVar(&cfg.AdminHash, "admin-hash", getEnv("ADMIN_PASSWORD_HASH", ""), "bcrypt hash of the admin password")
	fs.StringVar(&cfg.HashPassword, "hash-password", "", "print the bcrypt hash of a password and exit")
	origins := fs.String("origins", getEnv("ALLOWED_ORIGINS", "*"), "comma separated CORS origins")
	proxies := fs.String("trusted-proxies", getEnv("TRUSTED_PROXIES", ""), "comma separated proxy CIDRs whose X-Forwarded-For is believed")
	fs.DurationVar(&cfg.ReadTimeout, "read-timeout", parseDuration(getEnv("READ_TIMEOUT", "15s"), 15*time.Second), "HTTP read timeout")
	fs.DurationVar(&cfg.WriteTimeout, "write-timeout", parseDuration(getEnv("WRITE_TIMEOUT", "15s"), 15*time.Second), "HTTP write timeout")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", parseDuration(getEnv("SHUTDOWN_TIMEOUT", "10s"), 10*time.Second), "graceful shutdown limit")
	fs.IntVar(&cfg.Guard.MaxConnsPerIP, "max-conns-per-ip", getEnvInt("MAX_CONNS_PER_IP", guard.MaxConnsPerIP), "connections per address")
	fs.IntVar(&cfg.Guard.MaxTotalConns, "max-conns", getEnvInt("MAX_CONNS", guard.MaxTotalConns), "total connections")
	fs.DurationVar(&cfg.Guard.BanDuration, "ban-duration", parseDuration(getEnv("BAN_DURATION", ""), guard.BanDuration), "ban length after repeated violations")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	// the secret is never a flag so it stays out of ps output
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.AllowedOrigins = splitList(*origins)
	cfg.TrustedProxies = splitList(*proxies)
	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
