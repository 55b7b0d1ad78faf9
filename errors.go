// Copyright (c) 2024 RoseLoverX

package mtproto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/roseloverx/mtproto/internal/mtproto/objects"
)

type ErrResponseCode struct {
	Code           int64
	Message        string
	Description    string
	AdditionalInfo any // some errors has additional data like timeout seconds, dc id etc.
}

func RpcErrorToNative(r *objects.RpcError, method ...string) error {
	nativeErrorName, additionalData := TryExpandError(r.ErrorMessage)

	desc, ok := errorMessages[nativeErrorName]
	if !ok {
		desc = nativeErrorName
	}

	if additionalData != nil && strings.Contains(desc, "%v") {
		desc = fmt.Sprintf(desc, additionalData)
	}

	if len(method) > 0 {
		desc = fmt.Sprintf("%s (method: %s)", desc, strings.Join(method, ", "))
	}

	return &ErrResponseCode{
		Code:           int64(r.ErrorCode),
		Message:        nativeErrorName,
		Description:    desc,
		AdditionalInfo: additionalData,
	}
}

type prefixSuffix struct {
	prefix string
	suffix string
}

var specificErrors = []prefixSuffix{
	{"EMAIL_UNCONFIRMED_", ""},
	{"FILE_MIGRATE_", ""},
	{"FILE_PART_", "_MISSING"},
	{"FLOOD_TEST_PHONE_WAIT_", ""},
	{"FLOOD_WAIT_", ""},
	{"FLOOD_PREMIUM_WAIT_", ""},
	{"INTERDC_", "_CALL_ERROR"},
	{"INTERDC_", "_CALL_RICH_ERROR"},
	{"NETWORK_MIGRATE_", ""},
	{"PASSWORD_TOO_FRESH_", ""},
	{"PHONE_MIGRATE_", ""},
	{"SESSION_TOO_FRESH_", ""},
	{"SLOWMODE_WAIT_", ""},
	{"STATS_MIGRATE_", ""},
	{"TAKEOUT_INIT_DELAY_", ""},
	{"USER_MIGRATE_", ""},
}

// TryExpandError splits a parametrised error like FLOOD_WAIT_17 into its
// generic name (FLOOD_WAIT_X) and the number it carries. Other errors are
// returned unchanged with nil data.
func TryExpandError(errStr string) (nativeErrorName string, additionalData any) {
	for _, errCase := range specificErrors {
		if !strings.HasPrefix(errStr, errCase.prefix) || !strings.HasSuffix(errStr, errCase.suffix) {
			continue
		}

		trimmed := strings.TrimSuffix(strings.TrimPrefix(errStr, errCase.prefix), errCase.suffix)
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			continue
		}
		return errCase.prefix + "X" + errCase.suffix, value
	}

	return errStr, nil // common error, returning
}

func (e *ErrResponseCode) Error() string {
	return fmt.Sprintf("[%s] %s (code %d)", e.Message, e.Description, e.Code)
}

func (e *ErrResponseCode) intInfo() int {
	v, _ := e.AdditionalInfo.(int)
	return v
}

// MatchError reports whether err is an rpc error with one of the given names,
// in their generic form (FLOOD_WAIT_X, not FLOOD_WAIT_17).
func MatchError(err error, names ...string) bool {
	var e *ErrResponseCode
	if !errors.As(err, &e) {
		return false
	}
	for _, name := range names {
		if e.Message == name {
			return true
		}
	}
	return false
}

// AsFloodWait returns the wait demanded by a rate limit error.
func AsFloodWait(err error) (time.Duration, bool) {
	var e *ErrResponseCode
	if !errors.As(err, &e) {
		return 0, false
	}
	switch e.Message {
	case "FLOOD_WAIT_X", "FLOOD_PREMIUM_WAIT_X", "FLOOD_TEST_PHONE_WAIT_X", "SLOWMODE_WAIT_X":
		return time.Duration(e.intInfo()) * time.Second, true
	}
	return 0, false
}

// AsMigrate returns the data center an account or phone number must be
// served from.
func AsMigrate(err error) (int, bool) {
	var e *ErrResponseCode
	if !errors.As(err, &e) {
		return 0, false
	}
	switch e.Message {
	case "PHONE_MIGRATE_X", "NETWORK_MIGRATE_X", "USER_MIGRATE_X":
		return e.intInfo(), true
	}
	return 0, false
}

// AsFileMigrate returns the data center a file is stored in.
func AsFileMigrate(err error) (int, bool) {
	var e *ErrResponseCode
	if errors.As(err, &e) && e.Message == "FILE_MIGRATE_X" {
		return e.intInfo(), true
	}
	return 0, false
}

// gathered from the methods this package drives
var errorMessages = map[string]string{
	"ACCESS_TOKEN_EXPIRED":      "Access token expired.",
	"ACCESS_TOKEN_INVALID":      "Access token invalid.",
	"API_ID_INVALID":            "API ID invalid.",
	"API_ID_PUBLISHED_FLOOD":    "This API ID was published somewhere, you can't use it now.",
	"AUTH_KEY_DUPLICATED":       "The authorization key was used under two different IP addresses simultaneously and is now invalid.",
	"AUTH_KEY_INVALID":          "The Authorization Key is invalid.",
	"AUTH_KEY_PERM_EMPTY":       "The method is unavailable for temporary authorization keys, not bound to permanent.",
	"AUTH_KEY_UNREGISTERED":     "The key is not registered in the system.",
	"CDN_METHOD_INVALID":        "You can't call this method in a CDN DC.",
	"CDN_UPLOAD_TIMEOUT":        "A server-side timeout occurred while reuploading the file to the CDN DC.",
	"CHANNEL_INVALID":           "The provided channel is invalid.",
	"CHANNEL_PRIVATE":           "You haven't joined this channel/supergroup.",
	"CONNECTION_API_ID_INVALID": "The provided API id is invalid.",
	"CONNECTION_LAYER_INVALID":  "Layer invalid.",
	"CONNECTION_NOT_INITED":     "Connection not initialized.",
	"FILE_ID_INVALID":           "The provided file id is invalid.",
	"FILE_PARTS_INVALID":        "The number of file parts is invalid.",
	"FILE_PART_EMPTY":           "The provided file part is empty.",
	"FILE_PART_INVALID":         "The file part number is invalid.",
	"FILE_PART_SIZE_INVALID":    "The provided file part size is invalid.",
	"FILE_PART_TOO_BIG":         "The uploaded file part is too big.",
	"FILE_REFERENCE_EXPIRED":    "File reference expired, it must be refetched.",
	"FILE_TOKEN_INVALID":        "The specified file token is invalid.",
	"LIMIT_INVALID":             "The provided limit is invalid.",
	"LOCATION_INVALID":          "The provided location is invalid.",
	"MSG_WAIT_FAILED":           "A waiting call returned an error.",
	"OFFSET_INVALID":            "The provided offset is invalid.",
	"PASSWORD_EMPTY":            "The provided password is empty.",
	"PASSWORD_HASH_INVALID":     "The provided password hash is invalid.",
	"PEER_ID_INVALID":           "The provided peer id is invalid.",
	"PHONE_CODE_EMPTY":          "phone_code is missing.",
	"PHONE_CODE_EXPIRED":        "The phone code you provided has expired.",
	"PHONE_CODE_INVALID":        "The provided phone code is invalid.",
	"PHONE_NUMBER_BANNED":       "The provided phone number is banned from telegram.",
	"PHONE_NUMBER_FLOOD":        "You asked for the code too many times.",
	"PHONE_NUMBER_INVALID":      "The phone number is invalid.",
	"PHONE_NUMBER_UNOCCUPIED":   "The phone number is not yet being used.",
	"PHONE_PASSWORD_FLOOD":      "You have tried logging in too many times.",
	"SESSION_EXPIRED":           "The authorization has expired.",
	"SESSION_PASSWORD_NEEDED":   "2FA is enabled, use a password to login.",
	"SESSION_REVOKED":           "The authorization has been invalidated because the user terminated all sessions.",
	"SRP_ID_INVALID":            "Invalid SRP ID provided.",
	"SRP_PASSWORD_CHANGED":      "Password has changed.",
	"TIMEOUT":                   "A timeout occurred while fetching data from the worker.",
	"USERNAME_INVALID":          "The provided username is not valid.",
	"USERNAME_NOT_OCCUPIED":     "The provided username is not occupied.",
	"FILE_MIGRATE_X":            "The file to be accessed is currently stored in DC %v.",
	"FILE_PART_X_MISSING":       "Part %v of the file is missing from storage.",
	"FLOOD_PREMIUM_WAIT_X":      "A wait of %v seconds is required before calling the method.",
	"FLOOD_TEST_PHONE_WAIT_X":   "A wait of %v seconds is required in the test servers.",
	"FLOOD_WAIT_X":              "Please wait %v seconds before repeating the action.",
	"NETWORK_MIGRATE_X":         "The source IP address is associated with DC %v.",
	"PASSWORD_TOO_FRESH_X":      "The password was modified less than 24 hours ago, try again in %v seconds.",
	"PHONE_MIGRATE_X":           "The phone number a user is trying to use for authorization is associated with DC %v.",
	"SESSION_TOO_FRESH_X":       "This session was created less than 24 hours ago, try again in %v seconds.",
	"SLOWMODE_WAIT_X":           "Slowmode is enabled in this chat: wait %v seconds before sending another message to this chat.",
	"USER_MIGRATE_X":            "The user whose identity is being used to execute queries is associated with DC %v.",
}

// ConnectError is returned when the network link can't be established.
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when every attempt of a request timed out.
type TimeoutError struct {
	Request  string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out after %d attempt(s)", e.Request, e.Attempts)
}

// InvalidStateError is returned when an operation is not allowed in the
// current lifecycle state.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("can't %s: session is %s", e.Op, e.State)
}

// NegotiationError is returned by a failed auth key exchange.
type NegotiationError struct {
	Stage string
	Err   error
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("auth key negotiation failed at %s: %v", e.Stage, e.Err)
}

func (e *NegotiationError) Unwrap() error {
	return e.Err
}

// ErrSessionStopped is delivered to requests still pending when the session
// stops.
var ErrSessionStopped = errors.New("session stopped")

var ErrAuthKeyInvalid = errors.New("auth key invalid (code -404)")

type BadMsgError struct {
	*objects.BadMsgNotification
	Description string
}

func BadMsgErrorFromNative(in *objects.BadMsgNotification) *BadMsgError {
	return &BadMsgError{
		BadMsgNotification: in,
		Description:        badMsgErrorCodes[BadSystemMessageCode(in.Code)],
	}
}

func (e *BadMsgError) Error() string {
	return fmt.Sprintf("%v (code %v)", e.Description, e.Code)
}

type BadSystemMessageCode int32

const (
	ErrBadMsgUnknown             BadSystemMessageCode = 0
	ErrBadMsgIdTooLow            BadSystemMessageCode = 16
	ErrBadMsgIdTooHigh           BadSystemMessageCode = 17
	ErrBadMsgIncorrectMsgIdBits  BadSystemMessageCode = 18
	ErrBadMsgWrongContainerMsgId BadSystemMessageCode = 19 // this must never happen
	ErrBadMsgMessageTooOld       BadSystemMessageCode = 20
	ErrBadMsgSeqNoTooLow         BadSystemMessageCode = 32
	ErrBadMsgSeqNoTooHigh        BadSystemMessageCode = 33
	ErrBadMsgSeqNoExpectedEven   BadSystemMessageCode = 34
	ErrBadMsgSeqNoExpectedOdd    BadSystemMessageCode = 35
	ErrBadMsgServerSaltIncorrect BadSystemMessageCode = 48
	ErrBadMsgInvalidContainer    BadSystemMessageCode = 64
)

// https://core.telegram.org/mtproto/service_messages_about_messages#notice-of-ignored-error-message
var badMsgErrorCodes = map[BadSystemMessageCode]string{
	ErrBadMsgIdTooLow:            "msg_id too low",
	ErrBadMsgIdTooHigh:           "msg_id too high",
	ErrBadMsgIncorrectMsgIdBits:  "incorrect two lower order msg_id bits",
	ErrBadMsgWrongContainerMsgId: "container msg_id is the same as msg_id of a previously received message",
	ErrBadMsgMessageTooOld:       "message too old",
	ErrBadMsgSeqNoTooLow:         "msg_seqno too low",
	ErrBadMsgSeqNoTooHigh:        "msg_seqno too high",
	ErrBadMsgSeqNoExpectedEven:   "an even msg_seqno expected, but odd received",
	ErrBadMsgSeqNoExpectedOdd:    "odd msg_seqno expected, but even received",
	ErrBadMsgServerSaltIncorrect: "incorrect server salt",
	ErrBadMsgInvalidContainer:    "invalid container",
}
