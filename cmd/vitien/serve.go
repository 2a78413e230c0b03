package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hxngan/vitien/internal/discord"
	"github.com/hxngan/vitien/internal/engine"
	"github.com/hxngan/vitien/internal/report"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Discord bot",
		Long: `Connect to Discord and answer chat events until interrupted.

The bot token comes from the config file, the VITIEN_DISCORD_TOKEN
environment variable, or a local .env file.`,
		RunE: runServe,
	}

	cmd.Flags().String("channel", "", "restrict the bot to one channel id")
	cmd.Flags().String("health-addr", ":8080", "health endpoint listen address (empty to disable)")
	_ = viper.BindPFlag("discord.channel", cmd.Flags().Lookup("channel"))
	_ = viper.BindPFlag("discord.health_addr", cmd.Flags().Lookup("health-addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	bot, err := discord.NewBot(discord.Config{
		Token:      viper.GetString("discord.token"),
		ChannelID:  viper.GetString("discord.channel"),
		HealthAddr: viper.GetString("discord.health_addr"),
	}, engine.New(store), report.NewReporter(store))
	if err != nil {
		return err
	}

	if err := bot.Start(); err != nil {
		return err
	}
	defer bot.Stop()

	slog.Info("bot is running, press ctrl+c to stop")
	<-ctx.Done()
	return nil
}
