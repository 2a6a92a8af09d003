package account

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	notifier "github.com/IRT-SystemX/bcm-notifier/notifier"
)

var (
	ErrInvalidAddress = errors.New("invalid address")
	ErrNotConnected   = errors.New("wallet not connected")
)

// IdentityRegistrationError is logged and retried on the next identity check;
// it never ends the session.
type IdentityRegistrationError struct {
	Account notifier.Recipient
	Err     error
}

func (e *IdentityRegistrationError) Error() string {
	return fmt.Sprintf("register identity for %s: %v", e.Account, e.Err)
}

func (e *IdentityRegistrationError) Unwrap() error {
	return e.Err
}

type Registrar interface {
	RegisterIdentity(ctx context.Context, account notifier.Recipient) (string, error)
}

// Handler reacts to a session event for the given recipient.
type Handler func(ctx context.Context, recipient notifier.Recipient) error

// Session is the wallet connection of the page: the connected address, its
// identity key and the subscription of the notifier engine.
type Session struct {
	engine    *notifier.Engine
	namespace string
	logger    zerolog.Logger

	mux            sync.Mutex
	address        string
	identityKey    string
	recipientSet   []Handler
	identityAbsent []Handler
}

func NewSession(engine *notifier.Engine, chainID string) *Session {
	return &Session{
		engine:    engine,
		namespace: "eip155:" + chainID,
		logger:    log.Logger.With().Str("component", "account").Logger(),
	}
}

func (session *Session) SetLogger(logger zerolog.Logger) {
	session.logger = logger
}

// OnRecipientSet registers a handler run after every successful Connect.
func (session *Session) OnRecipientSet(handler Handler) {
	session.mux.Lock()
	session.recipientSet = append(session.recipientSet, handler)
	session.mux.Unlock()
}

// OnIdentityAbsent registers a handler run by EnsureIdentity while no
// identity key is held.
func (session *Session) OnIdentityAbsent(handler Handler) {
	session.mux.Lock()
	session.identityAbsent = append(session.identityAbsent, handler)
	session.mux.Unlock()
}

// RegisterWith wires a Registrar as the identity-absent handler.
func (session *Session) RegisterWith(registrar Registrar) {
	session.OnIdentityAbsent(func(ctx context.Context, recipient notifier.Recipient) error {
		key, err := registrar.RegisterIdentity(ctx, recipient)
		if err != nil {
			return err
		}
		session.mux.Lock()
		if session.recipient() == recipient {
			session.identityKey = key
		}
		session.mux.Unlock()
		return nil
	})
}

func (session *Session) recipient() notifier.Recipient {
	if session.address == "" {
		return ""
	}
	return notifier.Recipient(session.namespace + ":" + session.address)
}

func (session *Session) Recipient() notifier.Recipient {
	session.mux.Lock()
	defer session.mux.Unlock()
	return session.recipient()
}

func (session *Session) IdentityKey() string {
	session.mux.Lock()
	defer session.mux.Unlock()
	return session.identityKey
}

// Connect sets the recipient for a wallet address, runs the recipient-set
// handlers and then the identity check.
func (session *Session) Connect(ctx context.Context, address string) (notifier.Recipient, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	checksum := common.HexToAddress(address).Hex()

	session.mux.Lock()
	if session.address != checksum {
		session.identityKey = ""
	}
	session.address = checksum
	recipient := session.recipient()
	handlers := append([]Handler(nil), session.recipientSet...)
	session.mux.Unlock()

	session.engine.SetRecipient(recipient)
	session.logger.Info().Str("recipient", recipient.String()).Msg("Wallet connected")
	for _, handler := range handlers {
		if err := handler(ctx, recipient); err != nil {
			session.logger.Error().Err(err).Msg("Recipient handler failed")
		}
	}
	_ = session.EnsureIdentity(ctx)
	return recipient, nil
}

// Disconnect tears the session down: the notifier loop is stopped (its
// in-flight tick discarded) and the recipient cleared.
func (session *Session) Disconnect() {
	session.engine.Stop()
	session.engine.ClearRecipient()
	session.engine.State().SetSubscribed(false)
	session.mux.Lock()
	session.address = ""
	session.identityKey = ""
	session.mux.Unlock()
	session.logger.Info().Msg("Wallet disconnected")
}

// EnsureIdentity runs the identity-absent handlers when the connected account
// holds no identity key. Failures are logged and returned as
// *IdentityRegistrationError.
func (session *Session) EnsureIdentity(ctx context.Context) error {
	session.mux.Lock()
	recipient := session.recipient()
	absent := recipient != "" && session.identityKey == ""
	handlers := append([]Handler(nil), session.identityAbsent...)
	session.mux.Unlock()
	if !absent {
		return nil
	}
	for _, handler := range handlers {
		if err := handler(ctx, recipient); err != nil {
			err = &IdentityRegistrationError{Account: recipient, Err: err}
			session.logger.Error().Err(err).Msg("Identity registration failed")
			return err
		}
	}
	return nil
}

func (session *Session) Subscribe(ctx context.Context) error {
	if session.Recipient() == "" {
		return ErrNotConnected
	}
	_ = session.EnsureIdentity(ctx)
	session.engine.State().SetSubscribed(true)
	session.logger.Info().Msg("Subscribed")
	return nil
}

func (session *Session) Unsubscribe() error {
	if session.Recipient() == "" {
		return ErrNotConnected
	}
	session.engine.State().SetSubscribed(false)
	session.logger.Info().Msg("Unsubscribed")
	return nil
}

type View struct {
	Address     string `json:"address"`
	Recipient   string `json:"account"`
	Identity    bool   `json:"identity"`
	Subscribed  bool   `json:"subscribed"`
	BlockAlerts bool   `json:"blockNotifications"`
}

func (session *Session) View() View {
	session.mux.Lock()
	view := View{
		Address:   session.address,
		Recipient: session.recipient().String(),
		Identity:  session.identityKey != "",
	}
	session.mux.Unlock()
	view.Subscribed = session.engine.State().Subscribed()
	view.BlockAlerts = session.engine.State().Enabled()
	return view
}
