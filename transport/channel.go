package transport

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"

	"github.com/status-im/ton-ledger-go/apdu"
)

// Channel sends APDU commands over a Transport.
type Channel struct {
	t      Transport
	debug  bool
	logger log.Logger
}

func NewChannel(t Transport) *Channel {
	return &Channel{
		t:      t,
		logger: log.New("package", "ton-ledger-go/transport"),
	}
}

// SetDebugMode logs every command and response frame at debug level.
func (c *Channel) SetDebugMode(debug bool) {
	c.debug = debug
}

func (c *Channel) Send(cmd *apdu.Command) (*apdu.Response, error) {
	frame, err := cmd.Serialize()
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("=> apdu", "frame", hexutil.Bytes(frame))
	}

	raw, err := c.t.Exchange(frame)
	if err != nil {
		return nil, Wrap("exchange", err)
	}

	if c.debug {
		c.logger.Debug("<= apdu", "frame", hexutil.Bytes(raw))
	}

	return apdu.ParseResponse(raw)
}
