// Alert Viewer - Real-time compliance alert display
// Consumes from the Kafka alert topic and displays via WebSocket to browser
package main

import (
	"context"
	"embed"
	"encoding/json"
	"flag"
	"io/fs"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"
)

//go:embed static/*
var staticFiles embed.FS

// AlertEvent represents an alert message from Kafka
type AlertEvent struct {
	EventType  string   `json:"eventType"`
	AnalysisID string   `json:"analysisId"`
	Source     string   `json:"source"`
	Level      string   `json:"level"`
	Reasons    []string `json:"reasons"`
	Timestamp  string   `json:"timestamp"`
	EmittedAt  int64    `json:"emittedAt"`
}

// Hub manages WebSocket connections
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan AlertEvent
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func newHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan AlertEvent, 100),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			log.Printf("Client connected. Total: %d", len(h.clients))

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()
			log.Printf("Client disconnected. Total: %d", len(h.clients))

		case event := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				err := conn.WriteJSON(event)
				if err != nil {
					log.Printf("Write error: %v", err)
					conn.Close()
					delete(h.clients, conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local dev
	},
}

func wsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade error: %v", err)
			return
		}
		hub.register <- conn

		// Keep connection alive, handle disconnects
		go func() {
			defer func() {
				hub.unregister <- conn
			}()
			for {
				_, _, err := conn.ReadMessage()
				if err != nil {
					break
				}
			}
		}()
	}
}

func consumeKafka(ctx context.Context, hub *Hub, brokers, topic string) {
	// Use partition reader without consumer group (works better through port-forward)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   strings.Split(brokers, ","),
		Topic:     topic,
		Partition: 0, // Read from partition 0 only (simplest for demo)
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour)) // Last hour of messages

	log.Printf("Consuming from Kafka topic: %s partition 0 (last hour)", topic)

	for {
		select {
		case <-ctx.Done():
			return
		default:
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Kafka read error on %s: %v", topic, err)
				time.Sleep(time.Second)
				continue
			}

			var event AlertEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("JSON unmarshal error: %v", err)
				continue
			}

			reason := ""
			if len(event.Reasons) > 0 {
				reason = event.Reasons[0]
			}
			log.Printf("Received %s alert %s: %s", event.Level, event.AnalysisID, truncate(reason, 60))
			hub.broadcast <- event
		}
	}
}

func main() {
	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "compliance.alerts", "Alert topic")
	flag.Parse()

	hub := newHub()
	go hub.run()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumeKafka(ctx, hub, *brokers, *topic)

	// Serve static files
	staticFS, _ := fs.Sub(staticFiles, "static")
	http.Handle("/", http.FileServer(http.FS(staticFS)))

	// WebSocket endpoint
	http.HandleFunc("/ws", wsHandler(hub))

	log.Printf("Alert Viewer starting on http://localhost:%s", *port)
	log.Printf("   Kafka brokers: %s", *brokers)
	log.Printf("   Topic: %s", *topic)

	if err := http.ListenAndServe(":"+*port, nil); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
