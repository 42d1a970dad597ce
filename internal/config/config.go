package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gallerywalk/internal/domain/world"

	"github.com/pelletier/go-toml"
	"github.com/sirupsen/logrus"
)

type Cell struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

type Config struct {
	World struct {
		ChunkSize       float64  `toml:"chunk_size"`
		SeedOrigin      bool     `toml:"seed_origin"`
		SpecialTemplate string   `toml:"special_template"`
		Pool            []string `toml:"pool"`
		OffLimits       []Cell   `toml:"off_limits"`
		Special         []Cell   `toml:"special"`
	} `toml:"world"`
	Loop struct {
		TickMillis int   `toml:"tick_millis"`
		RandSeed   int64 `toml:"rand_seed"`
	} `toml:"loop"`
	HTTP struct {
		Addr string `toml:"addr"`
	} `toml:"http"`
	Database struct {
		DSN        string `toml:"dsn"`
		SeedLayout bool   `toml:"seed_layout"`
	} `toml:"database"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// Default mirrors the shipped gallery: a lobby block that is never
// streamed, one atrium cell far to the west, and three hall templates.
func Default() Config {
	c := Config{}
	c.World.ChunkSize = 22
	c.World.SpecialTemplate = "atrium"
	c.World.Pool = []string{"hall-a", "hall-b", "hall-c"}
	c.World.OffLimits = []Cell{
		{0, 0}, {1, 0}, {2, 0}, {3, 0},
		{1, 1}, {2, 1}, {3, 1},
		{1, -1}, {2, -1}, {3, -1},
	}
	c.World.Special = []Cell{{-10, 0}}
	c.Loop.TickMillis = 50
	c.HTTP.Addr = ":8080"
	c.Log.Level = "info"
	return c
}

// Load reads the TOML file at path, creating it with defaults when it does
// not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	c := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return c, fmt.Errorf("create config %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("decode config %s: %w", path, err)
		}
	}
	fillOperational(&c)
	ApplyEnv(&c)
	return c, c.Validate()
}

// fillOperational restores loop, http and log defaults a partial file left
// empty. World settings are never filled in.
func fillOperational(c *Config) {
	def := Default()
	if c.Loop.TickMillis == 0 {
		c.Loop.TickMillis = def.Loop.TickMillis
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = def.HTTP.Addr
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

func ApplyEnv(c *Config) {
	c.World.ChunkSize = floatEnv("GALLERY_CHUNK_SIZE", c.World.ChunkSize)
	c.Loop.TickMillis = intEnv("GALLERY_TICK_MS", c.Loop.TickMillis)
	c.Loop.RandSeed = int64(intEnv("GALLERY_RAND_SEED", int(c.Loop.RandSeed)))
	c.HTTP.Addr = stringEnv("GALLERY_HTTP_ADDR", c.HTTP.Addr)
	c.Database.DSN = stringEnv("GALLERY_DB_DSN", c.Database.DSN)
	c.Log.Level = stringEnv("GALLERY_LOG_LEVEL", c.Log.Level)
}

func (c Config) Validate() error {
	if c.World.ChunkSize <= 0 || math.IsNaN(c.World.ChunkSize) || math.IsInf(c.World.ChunkSize, 0) {
		return fmt.Errorf("%w: chunk_size must be positive, got %v", world.ErrInvalidConfig, c.World.ChunkSize)
	}
	if c.Loop.TickMillis <= 0 {
		return fmt.Errorf("%w: tick_millis must be positive, got %d", world.ErrInvalidConfig, c.Loop.TickMillis)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", world.ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) TickInterval() time.Duration {
	return time.Duration(c.Loop.TickMillis) * time.Millisecond
}

func (c Config) Layout() world.Layout {
	return world.Layout{
		OffLimits:       toCoords(c.World.OffLimits),
		Special:         toCoords(c.World.Special),
		SpecialTemplate: c.World.SpecialTemplate,
		Pool:            append([]string(nil), c.World.Pool...),
	}
}

func NewLogger(level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	log.Level = lvl
	return log, nil
}

func toCoords(cells []Cell) []world.ChunkCoord {
	out := make([]world.ChunkCoord, 0, len(cells))
	for _, c := range cells {
		out = append(out, world.ChunkCoord{X: c.X, Y: c.Y})
	}
	return out
}

func intEnv(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func floatEnv(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
