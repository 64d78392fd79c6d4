package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"

	tonledger "github.com/status-im/ton-ledger-go"
	"github.com/status-im/ton-ledger-go/transport"
	"github.com/status-im/ton-ledger-go/transport/ble"
	"github.com/status-im/ton-ledger-go/transport/framing"
	"github.com/status-im/ton-ledger-go/transport/hid"
	"github.com/status-im/ton-ledger-go/transport/sim"
	"github.com/status-im/ton-ledger-go/tonclient"
)

// app is the state of one command run: a started session and its metrics.
type app struct {
	session  *tonledger.Session
	link     *transport.Link
	registry *prometheus.Registry
}

func openLink() (*transport.Link, error) {
	kind, err := transport.ParseKind(viper.GetString(cfgTransport))
	if err != nil {
		return nil, err
	}

	opts := []framing.Option{framing.WithTimeout(viper.GetDuration(cfgTimeout))}
	device := viper.GetString(cfgDevice)

	if kind == transport.KindBLE && device == "" {
		return nil, errors.Errorf("--%s is required for the %s transport", cfgDevice, kind)
	}

	switch kind {
	case transport.KindHID:
		t, err := hid.Open(device, opts...)
		if err != nil {
			return nil, err
		}
		return t.Link(), nil
	case transport.KindBLE:
		f, err := os.OpenFile(device, os.O_RDWR, 0)
		if err != nil {
			return nil, errors.Wrap(err, "cannot open ble pipe")
		}
		t, err := ble.New(f, viper.GetInt(cfgBLEMTU), opts...)
		if err != nil {
			f.Close()
			return nil, err
		}
		return t.Link(), nil
	default:
		dev, err := openSimulator()
		if err != nil {
			return nil, err
		}
		return dev.Link(), nil
	}
}

func openSimulator() (*sim.Transport, error) {
	opts := []sim.Option{sim.WithWorkchain(int8(viper.GetInt(cfgWorkchain)))}

	if path := viper.GetString(cfgKeystore); path != "" {
		passphrase, err := readPassphrase(fmt.Sprintf("Passphrase for %s: ", path))
		if err != nil {
			return nil, err
		}
		return sim.OpenKeystore(path, passphrase, opts...)
	}

	if mnemonic := viper.GetString(cfgMnemonic); mnemonic != "" {
		return sim.NewFromMnemonic(mnemonic, "", opts...)
	}

	return nil, errors.Errorf("the sim transport needs --%s or --%s", cfgMnemonic, cfgKeystore)
}

func startApp() (*app, error) {
	link, err := openLink()
	if err != nil {
		return nil, err
	}

	a := &app{registry: prometheus.NewRegistry()}
	a.link = transport.Instrument(link, transport.NewMetrics(a.registry))

	a.session = tonledger.NewSession(
		tonledger.WithDebugMode(viper.GetBool(cfgDebug)),
		tonledger.WithWorkchain(int8(viper.GetInt(cfgWorkchain))),
	)

	if err := a.session.Start(a.link); err != nil {
		a.link.Close()
		return nil, err
	}

	logger.Debug("transport opened", "kind", a.link.Kind())

	return a, nil
}

func (a *app) close() {
	if err := a.link.Close(); err != nil {
		logger.Warn("cannot close transport", "error", err)
	}

	if path := viper.GetString(cfgMetricsOut); path != "" {
		if err := prometheus.WriteToTextfile(path, a.registry); err != nil {
			logger.Warn("cannot write metrics", "path", path, "error", err)
		}
	}
}

// verifier returns nil when verification is disabled or the transport
// cannot compute reference results.
func (a *app) verifier() *tonledger.Verifier {
	if !viper.GetBool(cfgVerify) {
		return nil
	}

	v, ok := a.session.Verifier()
	if !ok {
		logger.Debug("transport cannot cross verify", "kind", a.link.Kind())
		return nil
	}

	return v
}

func newClient() *tonclient.Client {
	return tonclient.New(
		viper.GetString(cfgEndpoint),
		tonclient.WithAPIKey(viper.GetString(cfgAPIKey)),
		tonclient.WithTimeout(viper.GetDuration(cfgTimeout)),
	)
}
