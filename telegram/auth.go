// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	mtproto "github.com/roseloverx/mtproto"
)

// ValueSource yields a login value: phone number, code or password.
type ValueSource interface {
	// Value returns the value. hint is the phone number when asking for a
	// code and the password hint when asking for a password.
	Value(ctx context.Context, hint string) (string, error)
	// Fixed reports whether the value was given up front. A rejected fixed
	// value is an error; a provider is asked again instead.
	Fixed() bool
}

type fixedValue string

// FixedValue is a value known before the login starts.
func FixedValue(v string) ValueSource { return fixedValue(v) }

func (v fixedValue) Value(context.Context, string) (string, error) { return string(v), nil }

func (fixedValue) Fixed() bool { return true }

type providerValue func(ctx context.Context, hint string) (string, error)

// ProviderValue asks f for the value every time it is needed, e.g. by
// prompting the user.
func ProviderValue(f func(ctx context.Context, hint string) (string, error)) ValueSource {
	return providerValue(f)
}

func (f providerValue) Value(ctx context.Context, hint string) (string, error) { return f(ctx, hint) }

func (providerValue) Fixed() bool { return false }

func (c *Client) authorize(ctx context.Context) error {
	switch {
	case c.cfg.BotToken != "":
		return c.authorizeBot(ctx)
	case c.cfg.Phone != nil:
		return c.authorizeUser(ctx)
	}
	return ErrNotAuthorized
}

// authorizeBot logs in with the bot token. USER_MIGRATE_X is handled by
// the send gateway.
func (c *Client) authorizeBot(ctx context.Context) error {
	auth, err := invokeAs[AuthAuthorization](ctx, c, &AuthImportBotAuthorizationParams{
		ApiID:        int32(c.cfg.AppID),
		ApiHash:      c.cfg.AppHash,
		BotAuthToken: c.cfg.BotToken,
	})
	if err != nil {
		return err
	}
	return c.completeAuthorization(auth, true)
}

func (c *Client) authorizeUser(ctx context.Context) error {
	// rate limits are decided per step, by the value source in use
	inv := gateway{c: c}

	phone, sent, err := c.sendCode(ctx, inv)
	if err != nil {
		return err
	}
	auth, err := c.signIn(ctx, inv, phone, sent.PhoneCodeHash)
	if err != nil {
		return err
	}
	return c.completeAuthorization(auth, false)
}

var phoneCleaner = strings.NewReplacer("+", "", " ", "", "-", "", "(", "", ")", "")

func (c *Client) sendCode(ctx context.Context, inv Invoker) (string, *AuthSentCode, error) {
	src := c.cfg.Phone
	for {
		phone, err := src.Value(ctx, "")
		if err != nil {
			return "", nil, errors.Wrap(err, "reading phone number")
		}
		phone = phoneCleaner.Replace(phone)

		sent, err := invokeAs[*AuthSentCode](ctx, inv, &AuthSendCodeParams{
			PhoneNumber: phone,
			ApiID:       int32(c.cfg.AppID),
			ApiHash:     c.cfg.AppHash,
			Settings:    &CodeSettings{},
		})
		if err == nil {
			return phone, sent, nil
		}
		if err := c.retryAuthStep(ctx, src, err, "PHONE_NUMBER_INVALID", "PHONE_NUMBER_BANNED"); err != nil {
			return "", nil, err
		}
	}
}

func (c *Client) signIn(ctx context.Context, inv Invoker, phone, codeHash string) (AuthAuthorization, error) {
	src := c.cfg.Code
	if src == nil {
		return nil, errors.New("signing in needs a code value source")
	}
	for {
		code, err := src.Value(ctx, phone)
		if err != nil {
			return nil, errors.Wrap(err, "reading code")
		}

		auth, err := invokeAs[AuthAuthorization](ctx, inv, &AuthSignInParams{
			PhoneNumber:   phone,
			PhoneCodeHash: codeHash,
			PhoneCode:     strings.TrimSpace(code),
		})
		if err == nil {
			return auth, nil
		}
		if mtproto.MatchError(err, "SESSION_PASSWORD_NEEDED") {
			return c.checkPassword(ctx, inv)
		}
		if err := c.retryAuthStep(ctx, src, err, "PHONE_CODE_INVALID", "PHONE_CODE_EMPTY", "PHONE_CODE_EXPIRED", "PHONE_CODE_HASH_EMPTY"); err != nil {
			return nil, err
		}
	}
}

func (c *Client) checkPassword(ctx context.Context, inv Invoker) (AuthAuthorization, error) {
	src := c.cfg.Password
	if src == nil {
		return nil, errors.New("the account has two-step verification and no password source was given")
	}
	for {
		ap, err := invokeAs[*AccountPassword](ctx, inv, &AccountGetPasswordParams{})
		if err != nil {
			return nil, err
		}
		password, err := src.Value(ctx, ap.Hint)
		if err != nil {
			return nil, errors.Wrap(err, "reading password")
		}
		check, err := computeCheckPassword(password, ap)
		if err != nil {
			return nil, err
		}

		auth, err := invokeAs[AuthAuthorization](ctx, inv, &AuthCheckPasswordParams{Password: check})
		if err == nil {
			return auth, nil
		}
		if err := c.retryAuthStep(ctx, src, err, "PASSWORD_HASH_INVALID", "PASSWORD_EMPTY"); err != nil {
			return nil, err
		}
	}
}

// retryAuthStep returns nil when the step should ask src again. Rejected
// values and rate limits only come back as errors when src is fixed.
func (c *Client) retryAuthStep(ctx context.Context, src ValueSource, err error, invalid ...string) error {
	if wait, ok := mtproto.AsFloodWait(err); ok {
		if src.Fixed() {
			return err
		}
		c.Log.Warnf("login rate limited, waiting %s", wait)
		select {
		case <-time.After(wait):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if mtproto.MatchError(err, invalid...) {
		if src.Fixed() {
			return err
		}
		c.Log.WithError(err).Warn("value rejected, asking again")
		return nil
	}
	return err
}

func (c *Client) completeAuthorization(auth AuthAuthorization, bot bool) error {
	obj, ok := auth.(*AuthAuthorizationObj)
	if !ok {
		return ErrSignUpRequired
	}
	id, ok := userID(obj.User)
	if !ok {
		return errors.Errorf("authorization carries %T", obj.User)
	}

	c.mu.Lock()
	c.userID, c.isBot = id, bot
	c.mu.Unlock()

	if u, ok := obj.User.(*UserObj); ok && u.Username != "" {
		c.Log.Infof("logged in as @%s", u.Username)
	} else {
		c.Log.Infof("logged in as %d", id)
	}
	return nil
}

// LogOut ends the authorization on the server and deletes the stored
// session. The client should be stopped afterwards.
func (c *Client) LogOut(ctx context.Context) error {
	if _, err := c.AuthLogOut(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.userID, c.isBot, c.loggedOut = 0, false, true
	c.mu.Unlock()

	if err := c.storage.Delete(); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
