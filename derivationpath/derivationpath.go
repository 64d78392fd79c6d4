package derivationpath

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type StartingPoint int

const (
	tokenMaster    = 0x6D // char m
	tokenSeparator = 0x2F // char /
	tokenHardened  = 0x27 // char '
	tokenDot       = 0x2E // char .

	HardenedStart = 0x80000000 // 2^31

	// CoinType is the SLIP-0044 coin type registered for TON.
	CoinType = 607
)

const (
	StartingPointMaster StartingPoint = iota + 1
	StartingPointCurrent
	StartingPointParent
)

var (
	ErrNotHardened   = errors.New("all path segments must be hardened")
	ErrNotTonAccount = errors.New("path is not a TON account path")
	ErrIndexTooLarge = errors.New("index must be lower than 2^31")
)

type parseFunc = func() error

type decoder struct {
	r                    *strings.Reader
	f                    parseFunc
	pos                  int
	path                 []uint32
	start                StartingPoint
	currentToken         string
	currentTokenHardened bool
}

func newDecoder(path string) *decoder {
	d := &decoder{
		r: strings.NewReader(path),
	}

	d.reset()

	return d
}

func (d *decoder) reset() {
	d.r.Seek(0, io.SeekStart)
	d.pos = 0
	d.start = StartingPointCurrent
	d.f = d.parseStart
	d.path = make([]uint32, 0)
	d.resetCurrentToken()
}

func (d *decoder) resetCurrentToken() {
	d.currentToken = ""
	d.currentTokenHardened = false
}

func (d *decoder) decode() (StartingPoint, []uint32, error) {
	for {
		err := d.f()
		if err != nil {
			if err == io.EOF {
				err = nil
			} else {
				err = fmt.Errorf("at position %d, %w", d.pos, err)
			}

			return d.start, d.path, err
		}
	}
}

func (d *decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return b, err
	}

	d.pos++

	return b, nil
}

func (d *decoder) unreadByte() error {
	err := d.r.UnreadByte()
	if err != nil {
		return err
	}

	d.pos--

	return nil
}

func (d *decoder) parseStart() error {
	b, err := d.readByte()
	if err != nil {
		return err
	}

	if b == tokenMaster {
		d.start = StartingPointMaster
		d.f = d.parseSeparator
		return nil
	}

	if b == tokenDot {
		b2, err := d.readByte()
		if err != nil {
			return err
		}

		if b2 == tokenDot {
			d.f = d.parseSeparator
			d.start = StartingPointParent
			return nil
		}

		d.f = d.parseSeparator
		d.start = StartingPointCurrent
		return d.unreadByte()
	}

	d.f = d.parseSegment

	return d.unreadByte()
}

func (d *decoder) saveSegment() error {
	if len(d.currentToken) > 0 {
		i, err := strconv.ParseUint(d.currentToken, 10, 32)
		if err != nil {
			return err
		}

		if i >= HardenedStart {
			d.pos -= len(d.currentToken) - 1
			return fmt.Errorf("%w, got %d", ErrIndexTooLarge, i)
		}

		if d.currentTokenHardened {
			i += HardenedStart
		}

		d.path = append(d.path, uint32(i))
	}

	d.f = d.parseSegment
	d.resetCurrentToken()

	return nil
}

func (d *decoder) parseSeparator() error {
	b, err := d.readByte()
	if err == io.EOF {
		if newErr := d.saveSegment(); newErr != nil {
			return newErr
		}

		return err
	}

	if err != nil {
		return err
	}

	if b == tokenSeparator {
		return d.saveSegment()
	}

	return fmt.Errorf("expected %s, got %s", string(rune(tokenSeparator)), string(b))
}

func (d *decoder) parseSegment() error {
	b, err := d.readByte()
	if err == io.EOF {
		if len(d.currentToken) == 0 {
			return fmt.Errorf("expected number, got EOF")
		}

		if newErr := d.saveSegment(); newErr != nil {
			return newErr
		}

		return err
	}

	if err != nil {
		return err
	}

	if len(d.currentToken) > 0 && b == tokenSeparator {
		return d.saveSegment()
	}

	if len(d.currentToken) > 0 && b == tokenHardened {
		d.currentTokenHardened = true
		d.f = d.parseSeparator
		return nil
	}

	if b < 0x30 || b > 0x39 {
		return fmt.Errorf("expected number, got %s", string(b))
	}

	d.currentToken += string(b)

	return nil
}

// Decode parses a textual path like "m/44'/607'/0'" into its starting point and
// segment indexes. Hardened segments have HardenedStart added.
func Decode(str string) (StartingPoint, []uint32, error) {
	d := newDecoder(str)
	return d.decode()
}

// Encode renders a path starting from the master key.
func Encode(path []uint32) string {
	var sb strings.Builder
	sb.WriteString("m")

	for _, segment := range path {
		sb.WriteString("/")
		if segment >= HardenedStart {
			sb.WriteString(strconv.FormatUint(uint64(segment-HardenedStart), 10))
			sb.WriteString("'")
		} else {
			sb.WriteString(strconv.FormatUint(uint64(segment), 10))
		}
	}

	return sb.String()
}

// TonAccountPath returns m/44'/607'/0'/0'/account'/0'. The caller checks that
// account is lower than 2^31.
func TonAccountPath(account uint32) []uint32 {
	return []uint32{
		44 + HardenedStart,
		CoinType + HardenedStart,
		HardenedStart,
		HardenedStart,
		account + HardenedStart,
		HardenedStart,
	}
}

// AccountFromPath extracts the account index from a TON account path.
func AccountFromPath(str string) (uint32, error) {
	start, path, err := Decode(str)
	if err != nil {
		return 0, err
	}

	if start != StartingPointMaster || len(path) != 6 {
		return 0, ErrNotTonAccount
	}

	for _, segment := range path {
		if segment < HardenedStart {
			return 0, ErrNotHardened
		}
	}

	account := path[4] - HardenedStart
	expected := TonAccountPath(account)
	for i := range expected {
		if expected[i] != path[i] {
			return 0, ErrNotTonAccount
		}
	}

	return account, nil
}
