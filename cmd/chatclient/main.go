package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	SessionKey string `json:"session_key"`
}

type clientMessage struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type serverMessage struct {
	Type        string `json:"type"`
	Content     string `json:"content,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	SessionName string `json:"session_name,omitempty"`
	Error       string `json:"error,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type session struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Messages []message `json:"messages"`
}

type sessionInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Timestamp    time.Time `json:"timestamp"`
	MessageCount int       `json:"message_count"`
}

type sessionsResponse struct {
	Sessions []*sessionInfo `json:"sessions"`
}

type errorResponse struct {
	Error       string `json:"error"`
	Description string `json:"description"`
}

//client talks to the desk server's HTTP API
type client struct {
	server string
	key    string
}

func (c *client) do(method, path string, body, out interface{}) error {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.server+"/api/1.0"+path, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if method != "GET" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("X-Session-Key", c.key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, &e) == nil && e.Error != "" {
			if e.Description != "" {
				return fmt.Errorf("%s: %s", e.Error, e.Description)
			}
			return fmt.Errorf("%s (status %d)", e.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *client) authenticate(email, password string) error {
	var resp authResponse
	if err := c.do("POST", "/auth", &authRequest{Email: email, Password: password}, &resp); err != nil {
		return err
	}
	c.key = resp.SessionKey
	return nil
}

func (c *client) dial() (*websocket.Conn, error) {
	wsURL := strings.Replace(c.server, "http://", "ws://", 1)
	wsURL = strings.Replace(wsURL, "https://", "wss://", 1)
	wsURL += "/api/1.0/chat"

	header := http.Header{}
	header.Set("X-Session-Key", c.key)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	return conn, err
}

//repl holds the state of an interactive chat
type repl struct {
	c         *client
	conn      *websocket.Conn
	sessionID string
}

func (r *repl) newSession(name string) {
	var s session
	if err := r.c.do("POST", "/sessions/", map[string]string{"name": name}, &s); err != nil {
		fmt.Printf("Could not create session: %v\n", err)
		return
	}
	r.sessionID = s.ID
	fmt.Printf("Started session %q (%s)\n", s.Name, s.ID)
}

func (r *repl) listSessions() {
	var resp sessionsResponse
	if err := r.c.do("GET", "/sessions/", nil, &resp); err != nil {
		fmt.Printf("Could not list sessions: %v\n", err)
		return
	}
	if len(resp.Sessions) == 0 {
		fmt.Println("No saved sessions yet")
		return
	}
	for _, s := range resp.Sessions {
		marker := " "
		if s.ID == r.sessionID {
			marker = "*"
		}
		fmt.Printf("%s %s  %-30s %s (%d messages)\n", marker, s.ID, s.Name, s.Timestamp.Local().Format("2006-01-02 15:04"), s.MessageCount)
	}
}

func (r *repl) loadSession(id string) {
	var s session
	if err := r.c.do("GET", "/sessions/"+url.PathEscape(id), nil, &s); err != nil {
		fmt.Printf("Could not load session: %v\n", err)
		return
	}
	r.sessionID = s.ID
	fmt.Printf("Loaded session %q (%s)\n", s.Name, s.ID)
	for _, m := range s.Messages {
		who := "You"
		if m.Role == "assistant" {
			who = "Assistant"
		}
		fmt.Printf("\n%s: %s\n", who, m.Content)
	}
}

func (r *repl) renameSession(name string) {
	if r.sessionID == "" {
		fmt.Println("No active session; send a message or use /new first")
		return
	}
	var s session
	if err := r.c.do("POST", "/sessions/"+url.PathEscape(r.sessionID)+"/name", map[string]string{"name": name}, &s); err != nil {
		fmt.Printf("Could not rename session: %v\n", err)
		return
	}
	fmt.Printf("Session renamed to %q\n", s.Name)
}

//command handles a slash command, returning false if input isn't one
func (r *repl) command(input string) bool {
	if !strings.HasPrefix(input, "/") {
		return false
	}

	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/new", "/reset":
		r.newSession(arg)
	case "/sessions":
		r.listSessions()
	case "/load":
		if arg == "" {
			fmt.Println("Usage: /load <session id>")
			break
		}
		r.loadSession(arg)
	case "/name":
		if arg == "" {
			fmt.Println("Usage: /name <new name>")
			break
		}
		r.renameSession(arg)
	default:
		fmt.Println("Commands: /new [name], /sessions, /load <id>, /name <name>, /reset, exit")
	}

	return true
}

//send sends a chat message and prints the reply
func (r *repl) send(input string) error {
	if err := r.conn.WriteJSON(clientMessage{Message: input, SessionID: r.sessionID}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	fmt.Print("Assistant: ")
	for {
		var msg serverMessage
		if err := r.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("error reading response: %w", err)
		}

		switch msg.Type {
		case "text":
			fmt.Print(msg.Content)
		case "done":
			fmt.Println()
			if msg.SessionID != r.sessionID {
				r.sessionID = msg.SessionID
				fmt.Printf("(Session: %s %s)\n", msg.SessionName, msg.SessionID)
			}
			return nil
		case "error":
			fmt.Printf("\nError: %s\n", msg.Error)
			return nil
		}
	}
}

func main() {
	server := flag.String("server", "http://localhost:8080", "Server URL (http/https)")
	email := flag.String("email", "", "Operator email for authentication")
	password := flag.String("password", "", "Operator password for authentication")
	sessionID := flag.String("session", "", "Session ID to continue (optional)")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Println("Error: -email and -password are required")
		flag.Usage()
		os.Exit(1)
	}

	c := &client{server: strings.TrimSuffix(*server, "/")}

	if err := c.authenticate(*email, *password); err != nil {
		fmt.Printf("Authentication failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Authentication successful!")

	conn, err := c.dial()
	if err != nil {
		fmt.Printf("WebSocket connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { conn.Close() }()

	r := &repl{c: c, conn: conn}
	if *sessionID != "" {
		r.loadSession(*sessionID)
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("\nYou: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.ToLower(input) == "exit" || strings.ToLower(input) == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		if r.command(input) {
			continue
		}

		if err := r.send(input); err != nil {
			fmt.Printf("\n%v\n", err)
			fmt.Println("Reconnecting...")
			conn.Close()
			if conn, err = c.dial(); err != nil {
				fmt.Printf("WebSocket connection failed: %v\n", err)
				os.Exit(1)
			}
			r.conn = conn
		}
	}
}
