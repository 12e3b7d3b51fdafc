// mockclient is an integration smoke client: it authenticates against a
// running server over the WebSocket surface, optionally sends one message,
// and prints every event it receives until the timeout elapses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

type clientConfig struct {
	serverAddr string
	username   string
	password   string
	register   bool
	role       string
	target     string
	isGroup    bool
	body       string
	timeout    time.Duration
}

type event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func main() {
	cfg := parseConfig()
	if err := run(cfg); err != nil {
		log.Fatalf("mock client failed: %v", err)
	}
	log.Printf("mock client role %s done as %s", cfg.role, cfg.username)
}

func parseConfig() clientConfig {
	var cfg clientConfig
	flag.StringVar(&cfg.serverAddr, "server", "127.0.0.1:8080", "Server host:port")
	flag.StringVar(&cfg.username, "username", "smoke", "Username to authenticate as")
	flag.StringVar(&cfg.password, "password", "smoke-password", "Password for the account")
	flag.BoolVar(&cfg.register, "register", false, "Register the account instead of logging in")
	flag.StringVar(&cfg.role, "role", "listener", "Role for this client (sender|listener)")
	flag.StringVar(&cfg.target, "target", "", "Message target (username, or group name with -group)")
	flag.BoolVar(&cfg.isGroup, "group", false, "Treat target as a group name")
	flag.StringVar(&cfg.body, "body", "smoke-test message", "Message body to send")
	flag.DurationVar(&cfg.timeout, "timeout", 15*time.Second, "How long to stay connected")
	flag.Parse()

	switch cfg.role {
	case "sender", "listener":
	default:
		log.Fatalf("unknown role %q", cfg.role)
	}
	if cfg.role == "sender" && cfg.target == "" {
		log.Fatal("sender role requires -target")
	}
	return cfg
}

func run(cfg clientConfig) error {
	u := url.URL{Scheme: "ws", Host: cfg.serverAddr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", u.String(), err)
	}
	defer conn.Close()

	if err := send(conn, "authenticate", map[string]any{
		"username":      cfg.username,
		"password":      cfg.password,
		"isRegistering": cfg.register,
	}); err != nil {
		return err
	}

	deadline := time.Now().Add(cfg.timeout)
	authed := false
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		var evt event
		if err := conn.ReadJSON(&evt); err != nil {
			if authed {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		log.Printf("<- %s %s", evt.Type, string(evt.Payload))

		switch evt.Type {
		case "auth_error":
			return fmt.Errorf("authentication rejected: %s", string(evt.Payload))
		case "auth_success":
			authed = true
			if cfg.role == "sender" {
				if err := send(conn, "chat_message", map[string]any{
					"to":      cfg.target,
					"isGroup": cfg.isGroup,
					"body":    cfg.body,
				}); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func send(conn *websocket.Conn, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(event{Type: eventType, Payload: raw}); err != nil {
		return fmt.Errorf("send %s: %w", eventType, err)
	}
	return nil
}
