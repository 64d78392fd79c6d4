package tonledger

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/xssnick/tonutils-go/address"

	"github.com/status-im/ton-ledger-go/apdu"
	"github.com/status-im/ton-ledger-go/types"
)

const (
	ClaTon = 0xE0

	InsGetAppConfiguration = 0x01
	InsGetAddress          = 0x02
	InsDeploy              = 0x03
	InsTransfer            = 0x04

	P1GetAddressSilent  = 0x00
	P1GetAddressDisplay = 0x01

	// MaxAccount is the largest account index that can be derived hardened.
	MaxAccount = 0x7FFFFFFF

	destFlagBounceable = 0x01
	destFlagTestOnly   = 0x02

	accountDataLength  = 4
	transferDataLength = 55
)

const (
	opGetAppConfiguration = "get app configuration"
	opGetAddress          = "get address"
	opDeploy              = "deploy"
	opTransfer            = "transfer"
)

// AddressParams are the parameters of GET_ADDRESS.
type AddressParams struct {
	Account uint32
	Display bool
	Format  types.AddressFormat
}

// TransferParams are the parameters of TRANSFER.
type TransferParams struct {
	Account     uint32
	Seqno       uint32
	ValidUntil  uint32
	Amount      *big.Int
	Destination *address.Address
	SendMode    uint8
}

func NewCommandGetAppConfiguration() *apdu.Command {
	return apdu.NewCommand(
		ClaTon,
		InsGetAppConfiguration,
		0,
		0,
		nil,
	)
}

func NewCommandGetAddress(account uint32, display bool, format types.AddressFormat) (*apdu.Command, error) {
	if err := checkAccount(account); err != nil {
		return nil, err
	}

	if err := format.Validate(); err != nil {
		return nil, &EncodingError{Field: "address format", Reason: err.Error()}
	}

	p1 := uint8(P1GetAddressSilent)
	if display {
		p1 = P1GetAddressDisplay
	}

	return apdu.NewCommand(
		ClaTon,
		InsGetAddress,
		p1,
		uint8(format),
		encodeAccount(account),
	), nil
}

func NewCommandDeploy(account uint32) (*apdu.Command, error) {
	if err := checkAccount(account); err != nil {
		return nil, err
	}

	return apdu.NewCommand(
		ClaTon,
		InsDeploy,
		0,
		0,
		encodeAccount(account),
	), nil
}

func NewCommandTransfer(params *TransferParams) (*apdu.Command, error) {
	if err := checkAccount(params.Account); err != nil {
		return nil, err
	}

	if params.Destination == nil {
		return nil, &EncodingError{Field: "destination", Reason: "missing"}
	}

	if params.Destination.Type() != address.StdAddress || len(params.Destination.Data()) != 32 {
		return nil, &EncodingError{Field: "destination", Reason: "not a standard address"}
	}

	if params.Amount == nil {
		return nil, &EncodingError{Field: "amount", Reason: "missing"}
	}

	if params.Amount.Sign() < 0 {
		return nil, &EncodingError{Field: "amount", Reason: "negative"}
	}

	if !params.Amount.IsUint64() {
		return nil, &EncodingError{Field: "amount", Reason: fmt.Sprintf("%s does not fit in 64 bits", params.Amount.String())}
	}

	data := make([]byte, 0, transferDataLength)
	data = binary.BigEndian.AppendUint32(data, params.Account)
	data = binary.BigEndian.AppendUint32(data, params.Seqno)
	data = binary.BigEndian.AppendUint32(data, params.ValidUntil)
	data = binary.BigEndian.AppendUint64(data, params.Amount.Uint64())

	var flags byte
	if params.Destination.IsBounceable() {
		flags |= destFlagBounceable
	}
	if params.Destination.IsTestnetOnly() {
		flags |= destFlagTestOnly
	}

	data = append(data, flags, byte(int8(params.Destination.Workchain())))
	data = append(data, params.Destination.Data()...)
	data = append(data, params.SendMode)

	return apdu.NewCommand(
		ClaTon,
		InsTransfer,
		0,
		0,
		data,
	), nil
}

func checkAccount(account uint32) error {
	if account > MaxAccount {
		return &EncodingError{Field: "account", Reason: fmt.Sprintf("%d is not lower than 2^31", account)}
	}

	return nil
}

func encodeAccount(account uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, account)
}

func checkCommand(op string, cmd *apdu.Command, ins uint8, length int) error {
	if cmd.Cla != ClaTon {
		return &ProtocolError{Op: op, Err: ErrWrongCla}
	}

	if cmd.Ins != ins {
		return &ProtocolError{Op: op, Err: ErrWrongIns}
	}

	if len(cmd.Data) != length {
		return &ProtocolError{Op: op, Err: fmt.Errorf("%w: expected %d bytes, got %d", ErrWrongLength, length, len(cmd.Data))}
	}

	return nil
}

func decodeAccount(op string, data []byte) (uint32, error) {
	account := binary.BigEndian.Uint32(data)
	if account > MaxAccount {
		return 0, &ProtocolError{Op: op, Err: fmt.Errorf("%w: account %d", ErrWrongData, account)}
	}

	return account, nil
}

// ParseGetAppConfigurationCommand checks a GET_CONFIG frame.
func ParseGetAppConfigurationCommand(cmd *apdu.Command) error {
	if err := checkCommand(opGetAppConfiguration, cmd, InsGetAppConfiguration, 0); err != nil {
		return err
	}

	if cmd.P1 != 0 || cmd.P2 != 0 {
		return &ProtocolError{Op: opGetAppConfiguration, Err: ErrWrongP1P2}
	}

	return nil
}

func ParseGetAddressCommand(cmd *apdu.Command) (*AddressParams, error) {
	if err := checkCommand(opGetAddress, cmd, InsGetAddress, accountDataLength); err != nil {
		return nil, err
	}

	if cmd.P1 != P1GetAddressSilent && cmd.P1 != P1GetAddressDisplay {
		return nil, &ProtocolError{Op: opGetAddress, Err: ErrWrongP1P2}
	}

	format := types.AddressFormat(cmd.P2)
	if err := format.Validate(); err != nil {
		return nil, &ProtocolError{Op: opGetAddress, Err: fmt.Errorf("%w: %v", ErrWrongP1P2, err)}
	}

	account, err := decodeAccount(opGetAddress, cmd.Data)
	if err != nil {
		return nil, err
	}

	return &AddressParams{
		Account: account,
		Display: cmd.P1 == P1GetAddressDisplay,
		Format:  format,
	}, nil
}

func ParseDeployCommand(cmd *apdu.Command) (uint32, error) {
	if err := checkCommand(opDeploy, cmd, InsDeploy, accountDataLength); err != nil {
		return 0, err
	}

	if cmd.P1 != 0 || cmd.P2 != 0 {
		return 0, &ProtocolError{Op: opDeploy, Err: ErrWrongP1P2}
	}

	return decodeAccount(opDeploy, cmd.Data)
}

func ParseTransferCommand(cmd *apdu.Command) (*TransferParams, error) {
	if err := checkCommand(opTransfer, cmd, InsTransfer, transferDataLength); err != nil {
		return nil, err
	}

	if cmd.P1 != 0 || cmd.P2 != 0 {
		return nil, &ProtocolError{Op: opTransfer, Err: ErrWrongP1P2}
	}

	data := cmd.Data

	account, err := decodeAccount(opTransfer, data[0:4])
	if err != nil {
		return nil, err
	}

	flags := data[20]
	if flags&^(destFlagBounceable|destFlagTestOnly) != 0 {
		return nil, &ProtocolError{Op: opTransfer, Err: fmt.Errorf("%w: destination flags %02x", ErrWrongData, flags)}
	}

	dest := address.NewAddress(0, data[21], append([]byte{}, data[22:54]...))
	dest.SetBounce(flags&destFlagBounceable != 0)
	dest.SetTestnetOnly(flags&destFlagTestOnly != 0)

	amount := binary.BigEndian.Uint64(data[12:20])

	return &TransferParams{
		Account:     account,
		Seqno:       binary.BigEndian.Uint32(data[4:8]),
		ValidUntil:  binary.BigEndian.Uint32(data[8:12]),
		Amount:      new(big.Int).SetUint64(amount),
		Destination: dest,
		SendMode:    data[54],
	}, nil
}

// checkResponse turns a status word other than 0x9000 into a ProtocolError.
func checkResponse(op string, resp *apdu.Response) error {
	if resp.Sw != apdu.SwOK {
		return &ProtocolError{Op: op, Sw: resp.Sw, Err: ErrBadStatusWord}
	}

	return nil
}

// decodeError wraps a response layout error.
func decodeError(op string, err error) error {
	return &ProtocolError{Op: op, Err: err}
}
