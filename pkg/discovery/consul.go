package discovery

import (
	"fmt"
	"strconv"

	"dataroom-service/internal/config"

	"github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
	logger *zap.Logger
}

func NewServiceRegistry(cfg *config.Config, logger *zap.Logger) (*ServiceRegistry, error) {
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.Consul.Address

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %w", err)
	}

	return &ServiceRegistry{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

func (sr *ServiceRegistry) registration() (*api.AgentServiceRegistration, error) {
	server := sr.config.Server
	httpPort, err := strconv.Atoi(server.Port)
	if err != nil {
		return nil, fmt.Errorf("invalid port %q: %w", server.Port, err)
	}

	return &api.AgentServiceRegistration{
		ID:      server.ServiceID + "-http",
		Name:    server.ServiceName,
		Port:    httpPort,
		Address: server.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", server.ServiceAddress, server.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"dataroom", "access", "http"},
		Meta: map[string]string{
			"protocol": "http",
		},
	}, nil
}

func (sr *ServiceRegistry) Register() error {
	registration, err := sr.registration()
	if err != nil {
		return err
	}
	if err := sr.client.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("failed to register HTTP service with Consul: %w", err)
	}

	sr.logger.Info("Registered service with Consul", zap.String("service_id", registration.ID))
	return nil
}

func (sr *ServiceRegistry) Deregister() error {
	serviceID := sr.config.Server.ServiceID + "-http"
	if err := sr.client.Agent().ServiceDeregister(serviceID); err != nil {
		return fmt.Errorf("failed to deregister %s: %w", serviceID, err)
	}
	sr.logger.Info("Deregistered service from Consul", zap.String("service_id", serviceID))
	return nil
}
