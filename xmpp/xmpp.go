// Package xmpp sends simulation notifications as chat messages.
package xmpp

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-xmpp"
	log "github.com/sirupsen/logrus"
)

type (
	// Config for the notifier. Host defaults to the Jid domain.
	Config struct {
		Host     string
		Jid      string
		Password string
		To       string
	}

	Xmpp struct {
		Config Config
	}
)

var ErrMissingConfig = errors.New("missing xmpp config")

func serverName(jid string) string {
	parts := strings.SplitN(jid, "@", 2)
	if len(parts) < 2 {
		return jid
	}
	return parts[1]
}

// Enabled tells whether enough is configured to send anything.
func (x Xmpp) Enabled() bool {
	return len(x.Config.Jid) > 0 && len(x.Config.Password) > 0 && len(x.Config.To) > 0
}

func (x Xmpp) options() xmpp.Options {
	host := x.Config.Host
	if len(host) == 0 {
		host = serverName(x.Config.Jid)
	}
	return xmpp.Options{
		Host:          host,
		User:          x.Config.Jid,
		Password:      x.Config.Password,
		NoTLS:         true,
		StartTLS:      true,
		Debug:         false,
		Session:       false,
		Status:        "xa",
		StatusMessage: "Sailing",
	}
}

func (x Xmpp) Send(message string) error {

	if !x.Enabled() {
		log.Debug("Missing xmpp config")
		return ErrMissingConfig
	}

	xmpp.DefaultConfig = tls.Config{
		InsecureSkipVerify: true,
	}

	options := x.options()
	log.WithField("host", options.Host).Debug("Create xmpp client")
	talk, err := options.NewClient()
	if err != nil {
		log.WithError(err).Error("Xmpp client")
		return err
	}
	defer talk.Close()

	log.WithField("to", x.Config.To).Debug("Send xmpp message")
	_, err = talk.Send(xmpp.Chat{Remote: x.Config.To, Type: "chat", Text: message})
	return err
}

// Notify sends in the background, logging failures. It does nothing when
// the notifier is not configured.
func (x Xmpp) Notify(format string, v ...interface{}) {
	if !x.Enabled() {
		return
	}
	message := fmt.Sprintf(format, v...)
	go func() {
		if err := x.Send(message); err != nil {
			log.WithError(err).Warn("Notification not sent")
		}
	}()
}
