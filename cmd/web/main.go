package main

import (
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/danmaku/internal/config"
	"github.com/tomz197/danmaku/internal/highscore"
)

//go:embed index.html
var htmlPage string

var pageTemplate = template.Must(template.New("index").Parse(htmlPage))

// pageData fills the landing page template.
type pageData struct {
	SSHHost   string
	SSHPort   string
	HighScore int
}

// landingHandler serves the landing page with the current high score.
type landingHandler struct {
	cfg    *config.Config
	store  highscore.Store
	logger *log.Logger
}

func (h *landingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	best, err := h.store.Load(ctx)
	if err != nil {
		h.logger.Warn("failed to load high score", "err", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := pageData{SSHHost: h.cfg.Web.DisplayHost, SSHPort: h.cfg.SSH.Port, HighScore: best}
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render page", "err", err)
	}
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger, logCloser, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	store, err := highscore.Open(context.Background(), cfg.Store)
	if err != nil {
		logger.Fatal("failed to open high score store", "err", err)
	}
	defer store.Close()

	http.Handle("/", &landingHandler{cfg: cfg, store: store, logger: logger})

	addr := net.JoinHostPort(cfg.Web.Host, cfg.Web.Port)
	logger.Info("starting web server", "addr", "http://"+addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
