// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"github.com/roseloverx/mtproto/internal/encoding/tl"
)

type CodeSettings struct {
	AllowFlashcall  bool `tl:"flag:0,encoded_in_bitflags"`
	CurrentNumber   bool `tl:"flag:1,encoded_in_bitflags"`
	AllowAppHash    bool `tl:"flag:4,encoded_in_bitflags"`
	AllowMissedCall bool `tl:"flag:5,encoded_in_bitflags"`
	AllowFirebase   bool `tl:"flag:7,encoded_in_bitflags"`
	LogoutTokens    [][]byte `tl:"flag:6"`
}

func (*CodeSettings) CRC() uint32 { return 0xad253d78 }

func (*CodeSettings) FlagIndex() int { return 0 }

type AuthSentCode struct {
	Type          tl.Object
	PhoneCodeHash string
	NextType      tl.Object `tl:"flag:1"`
	Timeout       int32     `tl:"flag:2"`
}

func (*AuthSentCode) CRC() uint32 { return 0x5e002502 }

func (*AuthSentCode) FlagIndex() int { return 0 }

type AuthSentCodeTypeApp struct {
	Length int32
}

func (*AuthSentCodeTypeApp) CRC() uint32 { return 0x3dbb5986 }

type AuthSentCodeTypeSms struct {
	Length int32
}

func (*AuthSentCodeTypeSms) CRC() uint32 { return 0xc000bba2 }

type AuthSentCodeTypeCall struct {
	Length int32
}

func (*AuthSentCodeTypeCall) CRC() uint32 { return 0x5353e5a7 }

type AuthSentCodeTypeFlashCall struct {
	Pattern string
}

func (*AuthSentCodeTypeFlashCall) CRC() uint32 { return 0xab03c6d9 }

type AuthCodeTypeSms struct{}

func (*AuthCodeTypeSms) CRC() uint32 { return 0x72a3158c }

type AuthCodeTypeCall struct{}

func (*AuthCodeTypeCall) CRC() uint32 { return 0x741cd3e3 }

type AuthCodeTypeFlashCall struct{}

func (*AuthCodeTypeFlashCall) CRC() uint32 { return 0x226ccefb }

type AuthAuthorization interface {
	tl.Object
	ImplementsAuthAuthorization()
}

// AuthAuthorizationObj shares flag 1 between SetupPasswordRequired and
// OtherwiseReloginDays.
type AuthAuthorizationObj struct {
	SetupPasswordRequired bool `tl:"flag:1,encoded_in_bitflags"`
	OtherwiseReloginDays  int32  `tl:"flag:1"`
	TmpSessions           int32  `tl:"flag:0"`
	FutureAuthToken       []byte `tl:"flag:2"`
	User                  User
}

func (*AuthAuthorizationObj) CRC() uint32 { return 0x2ea2c0d4 }

func (*AuthAuthorizationObj) FlagIndex() int { return 1 }

func (*AuthAuthorizationObj) ImplementsAuthAuthorization() {}

type AuthAuthorizationSignUpRequired struct {
	TermsOfService tl.Object `tl:"flag:0"`
}

func (*AuthAuthorizationSignUpRequired) CRC() uint32 { return 0x44747e9a }

func (*AuthAuthorizationSignUpRequired) FlagIndex() int { return 0 }

func (*AuthAuthorizationSignUpRequired) ImplementsAuthAuthorization() {}

type AuthExportedAuthorization struct {
	ID    int64
	Bytes []byte
}

func (*AuthExportedAuthorization) CRC() uint32 { return 0xb434e2b8 }

type AuthLoggedOut struct {
	FutureAuthToken []byte `tl:"flag:0"`
}

func (*AuthLoggedOut) CRC() uint32 { return 0xc3a2835f }

func (*AuthLoggedOut) FlagIndex() int { return 0 }

// AccountPassword describes the 2FA settings. CurrentAlgo, SrpB and SrpID
// are present together with HasPassword.
type AccountPassword struct {
	HasRecovery             bool `tl:"flag:0,encoded_in_bitflags"`
	HasSecureValues         bool `tl:"flag:1,encoded_in_bitflags"`
	HasPassword             bool `tl:"flag:2,encoded_in_bitflags"`
	CurrentAlgo             tl.Object `tl:"flag:2"`
	SrpB                    []byte    `tl:"flag:2"`
	SrpID                   int64     `tl:"flag:2"`
	Hint                    string    `tl:"flag:3"`
	EmailUnconfirmedPattern string    `tl:"flag:4"`
	NewAlgo                 tl.Object
	NewSecureAlgo           tl.Object
	SecureRandom            []byte
	PendingResetDate        int32  `tl:"flag:5"`
	LoginEmailPattern       string `tl:"flag:6"`
}

func (*AccountPassword) CRC() uint32 { return 0x957b50fb }

func (*AccountPassword) FlagIndex() int { return 3 }

type PasswordKdfAlgoUnknown struct{}

func (*PasswordKdfAlgoUnknown) CRC() uint32 { return 0xd45ab096 }

type PasswordKdfAlgoSHA256SHA256PBKDF2HMACSHA512iter100000SHA256ModPow struct {
	Salt1 []byte
	Salt2 []byte
	G     int32
	P     []byte
}

func (*PasswordKdfAlgoSHA256SHA256PBKDF2HMACSHA512iter100000SHA256ModPow) CRC() uint32 {
	return 0x3a912d4a
}

type SecurePasswordKdfAlgoUnknown struct{}

func (*SecurePasswordKdfAlgoUnknown) CRC() uint32 { return 0x004a8537 }

type SecurePasswordKdfAlgoPBKDF2HMACSHA512iter100000 struct {
	Salt []byte
}

func (*SecurePasswordKdfAlgoPBKDF2HMACSHA512iter100000) CRC() uint32 { return 0xbbf2dda0 }

type SecurePasswordKdfAlgoSHA512 struct {
	Salt []byte
}

func (*SecurePasswordKdfAlgoSHA512) CRC() uint32 { return 0x86471d92 }

type InputCheckPasswordEmpty struct{}

func (*InputCheckPasswordEmpty) CRC() uint32 { return 0x9880f658 }

type InputCheckPasswordSRP struct {
	SrpID int64
	A     []byte
	M1    []byte
}

func (*InputCheckPasswordSRP) CRC() uint32 { return 0xd27ff082 }

func init() {
	tl.RegisterObjects(
		&CodeSettings{}, &AuthSentCode{},
		&AuthSentCodeTypeApp{}, &AuthSentCodeTypeSms{}, &AuthSentCodeTypeCall{}, &AuthSentCodeTypeFlashCall{},
		&AuthCodeTypeSms{}, &AuthCodeTypeCall{}, &AuthCodeTypeFlashCall{},
		&AuthAuthorizationObj{}, &AuthAuthorizationSignUpRequired{}, &AuthExportedAuthorization{},
		&AuthLoggedOut{}, &AccountPassword{},
		&PasswordKdfAlgoUnknown{}, &PasswordKdfAlgoSHA256SHA256PBKDF2HMACSHA512iter100000SHA256ModPow{},
		&SecurePasswordKdfAlgoUnknown{}, &SecurePasswordKdfAlgoPBKDF2HMACSHA512iter100000{},
		&SecurePasswordKdfAlgoSHA512{},
		&InputCheckPasswordEmpty{}, &InputCheckPasswordSRP{},
	)
}
