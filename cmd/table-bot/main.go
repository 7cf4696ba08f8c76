package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"tablelink/internal/client"
	"tablelink/internal/config"
	"tablelink/internal/logging"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)

	clientCfg, err := config.LoadClient()
	if err != nil {
		log.Fatal().Err(err).Msg("load client config failed")
	}
	botCfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	c, err := client.New(botCfg.TableID, botCfg.PlayerID, botCfg.PlayerName, botCfg.BuyIn, client.Options{
		Config: clientCfg,
		Logger: log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("client init failed")
	}
	defer c.Close()

	statuses := c.StatusChanges()
	snapshots := c.Store().Subscribe()

	if err := c.Connect(); err != nil {
		log.Warn().Err(err).Msg("initial connect failed, supervisor will retry")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	joined := false
	for {
		select {
		case <-stop:
			log.Info().Msg("shutting down")
			return
		case s, ok := <-statuses:
			if !ok {
				return
			}
			log.Info().Str("status", string(s)).Msg("connection status")
			if s == client.StatusConnected && !joined {
				if c.JoinTable(botCfg.Seat) {
					joined = true
				}
			}
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if snap == nil {
				joined = false
				continue
			}
			if result, ok := c.Showdown(); ok {
				log.Info().Int64("pot", result.Pot).Interface("winners", result.Winners).Msg("showdown")
			}
			if !c.IsMyTurn() {
				continue
			}
			play(c, snap.BigBlind)
		}
	}
}

// play is a deliberately naive strategy: check when free, call anything up
// to four big blinds, otherwise fold.
func play(c *client.Client, bigBlind int64) {
	toCall := c.CallAmount()
	switch {
	case c.CanCheck():
		c.Check()
	case toCall <= 4*bigBlind:
		c.Call()
	default:
		c.Fold()
	}
	if msg, ok := c.LastError(); ok {
		log.Warn().Str("error", msg).Msg("action rejected")
	}
}
