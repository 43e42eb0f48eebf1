// Package handler implements the webhook and health HTTP handlers.
package handler

import (
	"time"

	"lingo-relay/internal/dispatcher"
	"lingo-relay/internal/gate"
	"lingo-relay/internal/messenger"
	"lingo-relay/internal/services"
	"lingo-relay/internal/types"

	"go.uber.org/dig"
)

// Server holds the handler dependencies.
type Server struct {
	configManager types.ConfigManager
	dispatcher    *dispatcher.Dispatcher
	gate          *gate.Gate
	tenantService *services.TenantService
	groupService  *services.GroupService
	adminService  *services.AdminService
	usageService  *services.UsageService
	messenger     messenger.Messenger
	startTime     time.Time
}

// ServerParams defines the dependencies for the Server.
type ServerParams struct {
	dig.In
	ConfigManager types.ConfigManager
	Dispatcher    *dispatcher.Dispatcher
	Gate          *gate.Gate
	TenantService *services.TenantService
	GroupService  *services.GroupService
	AdminService  *services.AdminService
	UsageService  *services.UsageService
	Messenger     messenger.Messenger
}

// NewServer creates a new Server instance.
func NewServer(params ServerParams) *Server {
	return &Server{
		configManager: params.ConfigManager,
		dispatcher:    params.Dispatcher,
		gate:          params.Gate,
		tenantService: params.TenantService,
		groupService:  params.GroupService,
		adminService:  params.AdminService,
		usageService:  params.UsageService,
		messenger:     params.Messenger,
		startTime:     time.Now(),
	}
}
