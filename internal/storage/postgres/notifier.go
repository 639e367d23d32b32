package postgres

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gravadigital/galawall-api/internal/config"
	"github.com/gravadigital/galawall-api/internal/logger"
)

// notifyChannel is the LISTEN/NOTIFY channel shared by all API instances.
const notifyChannel = "galawall_changes"

// Notification payloads. Each names the collection whose snapshot changed.
const (
	payloadParticipants = "participants"
	payloadConfig       = "config"
)

// Notifier bridges cross-process writes into the in-process hubs. Every write
// in this package also fires pg_notify; each instance listens and refreshes
// the named repository, so subscribers on every instance converge on the same
// snapshot without polling.
type Notifier struct {
	listener     *pq.Listener
	participants *ParticipantRepository
	configs      *ConfigRepository
	done         chan struct{}
	log          *log.Logger
}

// NewNotifier opens a dedicated listening connection. It does not share the
// GORM pool; LISTEN requires a connection that stays parked.
func NewNotifier(cfg *config.Config, participants *ParticipantRepository, configs *ConfigRepository) (*Notifier, error) {
	l := logger.Store("notifier")

	listener := pq.NewListener(cfg.GetDatabaseURL(), 2*time.Second, time.Minute, func(event pq.ListenerEventType, err error) {
		if err != nil {
			l.Warn("listener connection event", "event", event, "error", err)
		}
	})
	if err := listener.Listen(notifyChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	return &Notifier{
		listener:     listener,
		participants: participants,
		configs:      configs,
		done:         make(chan struct{}),
		log:          l,
	}, nil
}

// Start runs the dispatch loop until Stop is called.
func (n *Notifier) Start() {
	go n.loop()
	n.log.Info("change notifier listening", "channel", notifyChannel)
}

// Stop closes the listening connection and waits for the loop to exit.
func (n *Notifier) Stop() error {
	err := n.listener.Close()
	<-n.done
	return err
}

func (n *Notifier) loop() {
	defer close(n.done)

	for {
		select {
		case msg, ok := <-n.listener.Notify:
			if !ok {
				return
			}
			// A nil message means the connection was re-established and
			// notifications may have been missed. Refresh everything.
			if msg == nil {
				n.log.Debug("listener reconnected, refreshing all snapshots")
				n.participants.Refresh()
				n.configs.Refresh()
				continue
			}
			n.dispatch(msg.Extra)
		case <-time.After(90 * time.Second):
			go n.listener.Ping()
		}
	}
}

func (n *Notifier) dispatch(payload string) {
	n.log.Debug("change notification received", "payload", payload)
	switch payload {
	case payloadParticipants:
		n.participants.Refresh()
	case payloadConfig:
		n.configs.Refresh()
	default:
		n.log.Warn("unknown notification payload", "payload", payload)
	}
}

// notify fires a change notification for other instances. Failures are logged
// and swallowed; the local hubs were already refreshed directly.
func notify(db *gorm.DB, l *log.Logger, payload string) {
	if err := db.Exec("SELECT pg_notify(?, ?)", notifyChannel, payload).Error; err != nil {
		l.Warn("failed to publish change notification", "payload", payload, "error", err)
	}
}
