// Package webserver exposes the live leaderboard, its websocket feed and
// the process metrics over HTTP.
package webserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"f1livebot/pkg/caster"
	"f1livebot/pkg/model"
	"f1livebot/pkg/pubsub"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const (
	writeWait       = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{} // use default options

type Manager struct {
	r      *mux.Router
	addr   string
	feed   *pubsub.PubSub[string]
	caster caster.ChannelCaster[model.LiveLeaderboard]
}

func NewManager(addr string, feed *pubsub.PubSub[string]) *Manager {
	m := &Manager{
		r:      mux.NewRouter(),
		addr:   addr,
		feed:   feed,
		caster: caster.JSONChannelCaster[model.LiveLeaderboard]{},
	}

	m.rootHandlers()
	return m
}

func (m *Manager) Router() http.Handler {
	return m.r
}

func (m *Manager) rootHandlers() {
	m.r.HandleFunc("/healthz", m.healthz).Methods(http.MethodGet)
	m.r.HandleFunc("/leaderboard", m.leaderboard).Methods(http.MethodGet)
	m.r.HandleFunc("/ws", m.websocket)
	m.r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
}

func (m *Manager) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (m *Manager) leaderboard(w http.ResponseWriter, r *http.Request) {
	payload, ok := m.feed.Last(pubsub.TopicLeaderboard)
	if !ok {
		http.Error(w, "no leaderboard yet", http.StatusServiceUnavailable)
		return
	}
	lb, err := m.caster.From(payload)
	if err != nil {
		log.WithError(err).Error("decoding leaderboard payload")
		http.Error(w, "invalid leaderboard", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(lb.Text))
}

// websocket streams every published leaderboard payload, starting with the latest one.
func (m *Manager) websocket(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer c.Close()

	updates := m.feed.Subscribe(pubsub.TopicLeaderboard)
	defer m.feed.Unsubscribe(pubsub.TopicLeaderboard, updates)

	logger := log.WithField("remote", r.RemoteAddr)
	logger.Debug("websocket client connected")
	defer logger.Debug("websocket client disconnected")

	// Reads only detect the peer going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if last, ok := m.feed.Last(pubsub.TopicLeaderboard); ok {
		if err := write(c, last); err != nil {
			return
		}
	}
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case payload, open := <-updates:
			if !open {
				return
			}
			if err := write(c, payload); err != nil {
				logger.WithError(err).Debug("websocket write")
				return
			}
		}
	}
}

func write(c *websocket.Conn, payload string) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteMessage(websocket.TextMessage, []byte(payload))
}

func (m *Manager) Debug() {
	_ = m.r.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, _ := route.GetMethods()
		log.WithFields(log.Fields{"path": pathTemplate, "methods": strings.Join(methods, ",")}).Debug("route")
		return nil
	})
}

// Serve listens until ctx is canceled and then shuts the server down gracefully.
func (m *Manager) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:         m.addr,
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("webserver listening on %s", m.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(err, "webserver")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Info("webserver shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "webserver shutdown")
	}
	return nil
}
