package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"schedly/src-server/handler"
	"schedly/src-server/handler/event_handler"
	"schedly/src-server/metric"
	"schedly/src-server/route"
	"schedly/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as, err := utils.NewAppState()
	if err != nil {
		slog.Error("can't start", "error", err)
		os.Exit(1)
	}

	// metrics
	schedule := metric.NewSchedule(prometheus.DefaultRegisterer)
	as.Store.SetObserver(schedule)
	as.OnParse = schedule.ObserveParse
	as.BunDB.AddQueryHook(metric.NewQueryHook(as.MetricChans))

	if as.DgSession != nil {
		startDiscord(as)
	} else {
		slog.Info("DISCORD_APP_TOKEN not set, running without the discord bot")
	}

	metric.Init(as, prometheus.DefaultRegisterer)

	// http server
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.Handler())
	route.Register(muxer, as)
	server := &http.Server{
		Addr:              ":" + as.Config.GetPort(),
		Handler:           route.LogMiddleware(muxer),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan

	slog.Info("Gracefully shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	as.GracefulShutdown()
}

func startDiscord(as *utils.AppState) {
	// injecting interaction handlers into appCmdInfo, appCmdHandler in AppState
	event_handler.Init(as)
	handler.Ping(as)

	// tell discordgo how to handle interactions from Discord (w/ appCmdHandler)
	as.DgSession.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		execute := func(id string) {
			if handler, ok := as.GetAppCmdHandler(id); ok {
				if err := handler(s, i); err != nil {
					slog.Error("handler error", "command", id, "error", err.Error())
				}
				return
			}
			if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
				Type: discordgo.InteractionResponseChannelMessageWithSource,
				Data: &discordgo.InteractionResponseData{
					Flags:   discordgo.MessageFlagsEphemeral,
					Content: "Unknown command",
				},
			}); err != nil {
				slog.Warn("can't respond", "error", err.Error())
			}
		}

		switch i.Type {
		case discordgo.InteractionApplicationCommand: // slash commands
			execute(i.ApplicationCommandData().Name)
		default:
			slog.Debug("ignored interaction", "type", i.Type)
		}
	})

	// open a connection to Discord
	if err := as.DgSession.Open(); err != nil {
		slog.Error("can't open discord connection", "error", err)
		os.Exit(1)
	}

	// tell Discord what commands we have (w/ appCmdInfo)
	if _, err := as.DgSession.ApplicationCommandBulkOverwrite(
		as.Config.GetDiscordClientID(),
		as.Config.GetDiscordGuildID(),
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err.Error())
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	slog.Info("number of guilds", "guilds", len(as.DgSession.State.Guilds))
}
