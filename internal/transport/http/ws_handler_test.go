package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"pairquiz-service/internal/app"
	"pairquiz-service/internal/domain"
	"pairquiz-service/internal/infra/memory"
)

func TestWebSocketWatchStream(t *testing.T) {
	store := memory.NewSessionStore(30*time.Minute, 5*time.Minute)
	bank := memory.NewQuestionBank(memory.NewStaticPoolLoader(memory.BuiltinPools()), time.Minute)
	service := app.NewPairService(store, bank, domain.RewardPolicy{CoinsPerCorrect: 5})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/pair", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	created, err := service.Create(context.Background(), "host", domain.QuizConfig{
		Subject:      "mathematics",
		Difficulty:   "easy",
		NumQuestions: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	u := "ws" + server.URL[len("http"):] + "/ws/pair?sessionId=" + created.ID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readSnapshot(t, conn)
	if initial.Status != domain.StatusWaiting {
		t.Fatalf("expected initial WAITING snapshot, got %s", initial.Status)
	}

	if _, err := service.Join(context.Background(), "partner", created.Code); err != nil {
		t.Fatalf("join: %v", err)
	}

	update := readSnapshot(t, conn)
	if update.Status != domain.StatusInProgress || update.PartnerUserID != "partner" {
		t.Fatalf("expected join update, got %+v", update)
	}

	if _, err := service.Cancel(context.Background(), created.ID, "host", "done watching"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	final := readSnapshot(t, conn)
	if final.Status != domain.StatusCancelled || final.CancelReason != "done watching" {
		t.Fatalf("expected cancel update, got %+v", final)
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	store := memory.NewSessionStore(30*time.Minute, 5*time.Minute)
	bank := memory.NewQuestionBank(memory.NewStaticPoolLoader(memory.BuiltinPools()), time.Minute)
	service := app.NewPairService(store, bank, domain.RewardPolicy{})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/pair", NewWSHandler(service).ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/ws/pair?sessionId=unknown")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func readSnapshot(t *testing.T, conn *websocket.Conn) domain.SessionSnapshot {
	t.Helper()
	var msg struct {
		Type    string                 `json:"type"`
		Payload domain.SessionSnapshot `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read message: %v", err)
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "session" {
		t.Fatalf("expected session message, got %s", msg.Type)
	}
	return msg.Payload
}
