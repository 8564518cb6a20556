// Command demo runs a minimal web app protected by the session lifecycle:
// an index page that shows the current authentication view, plus the login,
// callback, logout and error routes.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"

	"github.com/albumgate/albumgate/internal/config"
	"github.com/albumgate/albumgate/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	c := config.New()
	displayAppname(c.GetAppName())

	s, err := server.New(c)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	s.RegisterRouteFunc("GET /{$}", server.ChainMiddleware(indexHandler, s.StandardMiddleware()...))

	httpServer := &http.Server{Addr: c.GetPort(), Handler: s}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	view := server.AuthenticationFromContext(r.Context())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if !view.LoggedIn {
		fmt.Fprintf(w, "Hello, anonymous. Sign in at %s\n", server.RouteLogin)
		return
	}
	fmt.Fprintf(w, "Hello, %s <%s> (owner: %t). Log out at %s\n",
		view.User.Name, view.User.Email, view.User.IsOwner, view.LogoutURL)
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
