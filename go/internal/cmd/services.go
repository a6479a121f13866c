package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/synccue/synccue/go/internal/event"
	"github.com/synccue/synccue/go/internal/feedback"
	"github.com/synccue/synccue/go/internal/gateway"
	"github.com/synccue/synccue/go/internal/presenter"
	"github.com/synccue/synccue/go/internal/timer"
	"github.com/synccue/synccue/go/internal/users"
)

type Services struct {
	Users      *users.Service
	Events     *event.Service
	Timers     *timer.Service
	Presenters *presenter.Service
	Feedback   *feedback.Service
	WebSocket  *gateway.WebSocketHandler

	TimerApp *timer.App
	Buffers  *gateway.BufferManager
	ConnMgr  *gateway.ConnectionManager
}

func setupServices(database *sql.DB, config *Config) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → Service layer
	clock := clockwork.NewRealClock()

	// Users
	userRepo := users.NewRepository(database)
	userApp := users.NewApp(userRepo)
	userService := users.NewService(userApp)

	// Timers
	timerRepo := timer.NewRepository(database)
	timerApp := timer.NewApp(timerRepo, clock)
	timerService := timer.NewService(timerApp)

	// WebSocket fan-out
	connConfig := gateway.DefaultConnectionConfig()
	if config.Gateway.PingIntervalSec > 0 {
		connConfig.PingInterval = config.gatewayPingInterval()
	}
	connMgr := gateway.NewConnectionManager(connConfig)
	wsHandler := gateway.NewWebSocketHandler(connMgr)

	// Events, with the gateway state handler mounted on the event subtree
	eventRepo := event.NewRepository(database)
	eventApp := event.NewApp(eventRepo)
	buffers := gateway.NewBufferManager(clock)
	stateHandler := gateway.NewStateHandler(eventApp, timerApp, buffers, connMgr, clock)
	eventService := event.NewService(eventApp, stateHandler)

	// Presenter slots
	presenterRepo := presenter.NewRepository(database)
	presenterApp := presenter.NewApp(presenterRepo)
	presenterService := presenter.NewService(presenterApp)

	// Feedback
	feedbackRepo := feedback.NewRepository(database)
	feedbackApp := feedback.NewApp(feedbackRepo)
	feedbackService := feedback.NewService(feedbackApp)

	return &Services{
		Users:      userService,
		Events:     eventService,
		Timers:     timerService,
		Presenters: presenterService,
		Feedback:   feedbackService,
		WebSocket:  wsHandler,
		TimerApp:   timerApp,
		Buffers:    buffers,
		ConnMgr:    connMgr,
	}
}
