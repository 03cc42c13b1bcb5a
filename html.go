/*
Copyright © 2026 KmFahimHossain
*/

package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
)

// serveHomePage lists the available game namespaces. The actual game
// clients live elsewhere; this page only tells a human where the
// channels are.
func serveHomePage(cfg *Config) httprouter.Handle {
	games := []struct {
		name string
		path string
	}{
		{"Tic-Tac-Toe", "/ttt"},
		{"Nim", "/nim"},
		{"Hot Potato", "/hotpotato"},
	}

	var body strings.Builder

	body.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	body.WriteString(`<title>minigames</title></head><body>`)
	body.WriteString(`<h1>minigames</h1><ul>`)
	for _, game := range games {
		body.WriteString(fmt.Sprintf(`<li>%s — websocket at <code>%s/ws%s</code></li>`,
			game.name, cfg.prefix, game.path))
	}
	body.WriteString(`</ul></body></html>`)

	page := body.String()

	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write([]byte(page))
	}
}

func serveHealthCheck(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("Ok\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}

func serveRobots(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)

		_, err := w.Write([]byte("User-agent: *\nDisallow: /\n"))
		if err != nil {
			errs <- err

			return
		}
	}
}
