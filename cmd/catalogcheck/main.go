package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/cheese-arena/internal/gamemode"
	"github.com/park285/cheese-arena/internal/msgcat"
	"github.com/park285/cheese-arena/internal/notify"
	"github.com/park285/cheese-arena/internal/opponent"
	"github.com/park285/cheese-arena/pkg/arenadto"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

var requiredMessages = []string{
	"search.started", "search.status", "search.cancelled", "search.found", "search.fallback",
	"match.started", "match.check", "match.draw_offered", "match.draw_declined",
	"player.white", "player.black",
	"result.win", "result.loss", "result.draw",
	"reason.checkmate", "reason.stalemate", "reason.time_expired", "reason.move_time_expired",
	"reason.resignation", "reason.draw_agreement",
	"summary.ended", "summary.rating", "summary.unrated", "summary.profile",
}

func main() {
	failed := false

	modes, err := gamemode.LoadFile(os.Getenv("MODE_CATALOG_FILE"))
	if err != nil {
		log.Printf("modes error: %v", err)
		failed = true
	} else {
		for _, m := range modes.All() {
			log.Printf("mode ok: %s %s ranked=%v", m.Name, m.TimeControlText(), m.Ranked)
		}
	}

	opps, err := opponent.LoadFile(os.Getenv("OPPONENT_CATALOG_FILE"), nil)
	if err != nil {
		log.Printf("opponents error: %v", err)
		failed = true
	} else {
		for _, p := range opps.All() {
			log.Printf("opponent ok: %s (%d) %s", p.Name, p.Rating, p.Personality)
		}
	}

	msgs, err := msgcat.New(os.Getenv("MESSAGES_DIR"))
	if err != nil {
		log.Printf("messages error: %v", err)
		failed = true
	} else {
		for _, key := range requiredMessages {
			if !msgs.Has(key) {
				log.Printf("message missing: %s", key)
				failed = true
			}
		}
	}

	if url := os.Getenv("WEBHOOK_URL"); url != "" {
		client := notify.NewClient(url, notify.WithTimeout(5*time.Second))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := client.Post(ctx, notify.Payload{Kind: "catalog_check", At: time.Now(), Text: "catalog check"})
		cancel()
		if err != nil {
			log.Printf("webhook error: %v", err)
			failed = true
		} else {
			log.Printf("webhook ok: %s", url)
		}
	}

	if wsURL := os.Getenv("ARENA_EVENTS_URL"); wsURL != "" {
		observe(wsURL)
	}

	if failed {
		os.Exit(1)
	}
}

// observe prints event frames from a running arena for a short window.
func observe(wsURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		log.Printf("events connect error: %v", err)
		return
	}
	defer conn.CloseNow()
	for {
		var f arenadto.Event
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return
		}
		fmt.Printf("event kind=%s match=%s text=%q\n", f.Kind, f.MatchID, f.Text)
	}
}
