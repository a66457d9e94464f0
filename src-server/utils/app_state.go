package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"schedly/src-server/model"
	"schedly/src-server/nlp"

	"github.com/bwmarrin/discordgo"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	Limits model.Limits

	RawDB  *sql.DB
	BunDB  *bun.DB
	Store  *model.Store
	Parser *nlp.Parser

	// nil when DISCORD_APP_TOKEN is not set
	DgSession   *discordgo.Session
	MetricChans *Metric
	// OnParse, when set, is told about every parsed text.
	OnParse func(f nlp.Fields, took time.Duration)

	AppCloseSignalChan chan os.Signal

	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc

	mu sync.RWMutex
	// will be send to Discord
	appCmdInfo map[string]*discordgo.ApplicationCommand
	// handling commands from Discord WSAPI
	appCmdHandler map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// NewAppState reads the environment, opens the database and, when
// configured, the Discord session.
func NewAppState() (*AppState, error) {
	cfg, err := NewConfig()
	if err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}
	limits, err := LoadLimits(cfg.GetScheduleConfigPath())
	if err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	rawDB, err := sql.Open(sqliteshim.ShimName, cfg.GetDatabasePath()+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't open sqlite database: %w", err)
	}
	// sqlite has one writer; a single connection also keeps :memory: whole
	rawDB.SetMaxOpenConns(1)
	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	as := WrapDB(cfg, limits, rawDB, bunDB)
	if err := model.CreateSchema(as.ctx, as.BunDB); err != nil {
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	if cfg.DiscordEnabled() {
		if as.DgSession, err = discordgo.New("Bot " + cfg.GetDiscordAppToken()); err != nil {
			return nil, fmt.Errorf("NewAppState: can't create discord session: %w", err)
		}
	}
	return as, nil
}

// WrapDB builds an AppState around an already open database.
func WrapDB(cfg *Config, limits model.Limits, rawDB *sql.DB, bunDB *bun.DB) *AppState {
	ctx, cancel := context.WithCancel(context.Background())
	return &AppState{
		Config:             cfg,
		Limits:             limits,
		RawDB:              rawDB,
		BunDB:              bunDB,
		Store:              model.NewStore(bunDB, limits),
		Parser:             nlp.New(),
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
		startedAt:          time.Now(),
		ctx:                ctx,
		cancel:             cancel,
		appCmdInfo:         make(map[string]*discordgo.ApplicationCommand),
		appCmdHandler:      make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) error),
	}
}

// ParseText runs the parser and reports the result to OnParse.
func (as *AppState) ParseText(text, timezoneHint string, now time.Time) nlp.Fields {
	start := time.Now()
	f := as.Parser.Parse(text, timezoneHint, now)
	if as.OnParse != nil {
		as.OnParse(f, time.Since(start))
	}
	if f.TimezoneFallback && timezoneHint != "" {
		slog.Warn("unknown timezone, using UTC", "timezone", timezoneHint)
	}
	return f
}

func (as *AppState) GetUptime() time.Duration {
	return time.Since(as.startedAt).Round(time.Second)
}

// Done is closed once GracefulShutdown starts.
func (as *AppState) Done() <-chan struct{} {
	return as.ctx.Done()
}

func (as *AppState) Context() context.Context {
	return as.ctx
}

func (as *AppState) GracefulShutdown() {
	as.cancel()
	if as.DgSession != nil {
		if err := as.DgSession.Close(); err != nil {
			slog.Warn("can't close discord session", "error", err)
		}
	}
	if err := as.BunDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}
}

func (as *AppState) AddAppCmdInfo(id string, info *discordgo.ApplicationCommand) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo[id] = info
}

func (as *AppState) AddAppCmdHandler(id string, handler func(s *discordgo.Session, i *discordgo.InteractionCreate) error) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdHandler[id] = handler
}

func (as *AppState) GetAppCmdHandler(id string) (func(s *discordgo.Session, i *discordgo.InteractionCreate) error, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	handler, ok := as.appCmdHandler[id]
	return handler, ok
}

func (as *AppState) IterateAppCmdInfo(fn func(id string, info *discordgo.ApplicationCommand)) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	for id, info := range as.appCmdInfo {
		fn(id, info)
	}
}

// NukeAppCmdInfo drops the command descriptions once Discord has them.
func (as *AppState) NukeAppCmdInfo() {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.appCmdInfo = make(map[string]*discordgo.ApplicationCommand)
}
