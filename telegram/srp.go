// Copyright (c) 2024 RoseLoverX

package telegram

import (
	"github.com/pkg/errors"

	ige "github.com/roseloverx/mtproto/internal/aes_ige"
	"github.com/roseloverx/mtproto/internal/encoding/tl"
	"github.com/roseloverx/mtproto/internal/utils"
)

// https://core.telegram.org/api/srp#checking-the-password-with-srp
func computeCheckPassword(password string, ap *AccountPassword) (tl.Object, error) {
	if !ap.HasPassword {
		return &InputCheckPasswordEmpty{}, nil
	}
	current, ok := ap.CurrentAlgo.(*PasswordKdfAlgoSHA256SHA256PBKDF2HMACSHA512iter100000SHA256ModPow)
	if !ok {
		return nil, errors.Errorf("unsupported password algorithm %T", ap.CurrentAlgo)
	}

	res, err := ige.GetInputCheckPassword(password, ap.SrpB, &ige.ModPow{
		Salt1: current.Salt1,
		Salt2: current.Salt2,
		G:     current.G,
		P:     current.P,
	}, utils.RandomBytes(256))
	if err != nil {
		return nil, errors.Wrap(err, "computing password check")
	}

	return &InputCheckPasswordSRP{
		SrpID: ap.SrpID,
		A:     res.GA,
		M1:    res.M1,
	}, nil
}
