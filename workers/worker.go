package workers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wojake/B2M-testnet/metrics"
	"github.com/wojake/B2M-testnet/utils"
)

type WorkerAbs struct {
	ID        int
	Name      string
	Frequency int // in sec, 0 runs once
	Quit      chan bool
	Network   string // source network id -> sidechain network id
	Logger    *logrus.Entry
	Notifier  *utils.Notifier
	Metrics   *metrics.B2MMetrics
}

type Worker interface {
	Execute(ctx context.Context) error
	GetName() string
	GetFrequency() int
	GetQuitChan() chan bool
	GetNetwork() string
}

func (a *WorkerAbs) Init(id int, name string, freq int, network string) error {
	a.ID = id
	a.Name = name
	a.Frequency = freq
	a.Network = network
	a.Quit = make(chan bool, 1)
	a.Logger = logrus.WithFields(logrus.Fields{
		"worker":  name,
		"network": network,
	})
	a.Metrics = metrics.NewB2MMetrics()
	return nil
}

func (a *WorkerAbs) Execute(ctx context.Context) error {
	fmt.Println("Abstract worker is executing...")
	return nil
}

func (a *WorkerAbs) GetName() string {
	return a.Name
}

func (a *WorkerAbs) GetFrequency() int {
	return a.Frequency
}

func (a *WorkerAbs) GetQuitChan() chan bool {
	return a.Quit
}

func (a *WorkerAbs) GetNetwork() string {
	return a.Network
}

// ExportErrorLog logs msg and forwards it to the alert webhook.
func (a *WorkerAbs) ExportErrorLog(msg string) {
	a.Logger.Error(msg)
	if err := a.Notifier.SendSlackNotification(fmt.Sprintf("[%s] %s", a.Name, msg), utils.AlertNotification); err != nil {
		a.Logger.Debugf("Could not send alert notification - with err: %v", err)
	}
}

// ExportInfoLog logs msg and forwards it to the info webhook.
func (a *WorkerAbs) ExportInfoLog(msg string) {
	a.Logger.Info(msg)
	if err := a.Notifier.SendSlackNotification(fmt.Sprintf("[%s] %s", a.Name, msg), utils.InfoNotification); err != nil {
		a.Logger.Debugf("Could not send info notification - with err: %v", err)
	}
}
