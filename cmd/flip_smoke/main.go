// flip_smoke exercises a running server end to end: it opens a session
// over HTTP, connects the websocket, flips once and prints the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	addr := flag.String("addr", "", "server host:port (default 127.0.0.1:$APP_PORT)")
	timeout := flag.Duration("timeout", 15*time.Second, "give up after")
	flag.Parse()

	if *addr == "" {
		port := os.Getenv("APP_PORT")
		if port == "" {
			port = "8080"
		}
		// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
		*addr = "127.0.0.1:" + port
	}

	if err := run(*addr, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "smoke failed:", err)
		os.Exit(1)
	}
}

func run(addr string, timeout time.Duration) error {
	resp, err := http.Post("http://"+addr+"/api/v1/session", "application/json", nil)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("session: status %d", resp.StatusCode)
	}
	var sess struct {
		PlayerID int64  `json:"player_id"`
		Token    string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		return fmt.Errorf("session: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", addr, sess.Token), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	send := func(msg string) error {
		return conn.WriteMessage(websocket.TextMessage, []byte(msg))
	}
	if err := send(`{"type":"hello","payload":{"renderer":true,"timeline":true}}`); err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	frames := 0
	flipped := false
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("bad message %s: %w", raw, err)
		}

		switch env.Type {
		case "frame":
			frames++
			if !flipped {
				// first frame: the session's loop is running
				if err := send(`{"type":"flip"}`); err != nil {
					return err
				}
				flipped = true
			}
		case "error":
			return fmt.Errorf("server: %s", env.Payload)
		case "result":
			var res struct {
				Outcome string `json:"outcome"`
				Label   string `json:"label"`
			}
			_ = json.Unmarshal(env.Payload, &res)
			fmt.Printf("player=%d result=%s (%s) frames=%d\n", sess.PlayerID, res.Outcome, res.Label, frames)
			return nil
		}
	}
	return fmt.Errorf("no result within %s", timeout)
}
