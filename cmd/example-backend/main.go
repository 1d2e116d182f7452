package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"
)

// Backend de exemplo para rodar o gateway ponta a ponta:
//
//	AUTHGATE_BACKEND_URL=http://localhost:8081 gateway serve -c ""
//	curl -X POST localhost:8000/auth -d '{"username":"ana","password":"secret"}'
//	curl 'localhost:8000/reports?KEY=<API_KEY>'

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type account struct {
	password string
	role     string
}

var accounts = map[string]account{
	"ana":   {password: "secret", role: "admin"},
	"bruno": {password: "secret", role: "analyst"},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
			return
		}
		acc, ok := accounts[c.Username]
		if !ok || acc.password != c.Password {
			logger.Info("auth rejected", "username", c.Username)
			writeJSON(w, http.StatusOK, map[string]any{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "role": acc.role})
	})
	mux.HandleFunc("POST /register", func(w http.ResponseWriter, r *http.Request) {
		var c credentials
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Username == "" {
			writeJSON(w, http.StatusBadRequest, map[string]any{"registered": false})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"registered": true, "username": c.Username})
	})
	mux.HandleFunc("GET /reports", func(w http.ResponseWriter, r *http.Request) {
		logger.Info("reports requested", "query", r.URL.RawQuery, "request_id", r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, map[string]any{
			"reports": []string{"q1", "q2"},
			"year":    r.URL.Query().Get("year"),
		})
	})

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		names := make([]string, 0, len(accounts))
		for name := range accounts {
			names = append(names, name)
		}
		slices.Sort(names)
		writeJSON(w, http.StatusOK, map[string]any{"users": names})
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example backend listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
