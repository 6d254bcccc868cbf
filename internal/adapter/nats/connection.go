package nats

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/app/config"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
)

// connectionOptions turns the config into client options. Event handlers only
// log: publishers already treat a failed publish as non-fatal.
func connectionOptions(cfg config.NATSConfig, log logger.Logger) []nats.Option {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warnf("disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info("connection closed")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				log.Errorf("async error on %s: %v", sub.Subject, err)
				return
			}
			log.Errorf("async error: %v", err)
		}),
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, nats.Timeout(cfg.ConnectTimeout))
	}
	if cfg.ReconnectWait > 0 {
		opts = append(opts, nats.ReconnectWait(cfg.ReconnectWait))
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}
	return opts
}

func NewConnection(cfg config.NATSConfig, log logger.Logger) (*nats.Conn, error) {
	log = log.Named("NATS")
	nc, err := nats.Connect(cfg.URL, connectionOptions(cfg, log)...)
	if err != nil {
		return nil, fmt.Errorf("nats: connect %s: %w", cfg.URL, err)
	}
	log.Infof("connected to %s as %q", nc.ConnectedUrl(), cfg.ClientName)
	return nc, nil
}
