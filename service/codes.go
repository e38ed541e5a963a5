package service

import (
	"errors"

	"github.com/bitfsorg/libyield-go/distribution"
	"github.com/bitfsorg/libyield-go/ledger"
)

// Result codes. Every error a caller can receive maps to exactly one code.
const (
	CodeOK                  = "OK"
	CodeUnauthorized        = "Unauthorized"
	CodePaused              = "Paused"
	CodeInvalidAmount       = "InvalidAmount"
	CodeInvalidRecipient    = "InvalidRecipient"
	CodeInvalidMinter       = "InvalidMinter"
	CodeAlreadyRegistered   = "AlreadyRegistered"
	CodeMetadataTooLong     = "MetadataTooLong"
	CodeInsufficientBalance = "InsufficientBalance"
	CodeInvalidFarmID       = "InvalidFarmId"
	CodeTokenLocked         = "TokenLocked"
	CodeNoYield             = "NoYield"
	CodeAlreadyClaimed      = "AlreadyClaimed"
	CodeInvalidFarm         = "InvalidFarm"
	CodeInsufficientFunds   = "InsufficientFunds"
	CodeOracleNotTrusted    = "OracleNotTrusted"
	CodeDistributionActive  = "DistributionActive"
	CodeRateLimited         = "RateLimited"
	CodeClosed              = "Closed"
	CodeHeightNotManual     = "HeightNotManual"
	CodeInternal            = "Internal"
)

// codeTable is ordered: distribution sentinels come first because a claim
// against an unknown share ledger wraps both ErrInvalidFarm and the
// ledger's ErrInvalidFarmID.
var codeTable = []struct {
	err  error
	code string
}{
	{ErrRateLimited, CodeRateLimited},
	{ErrClosed, CodeClosed},
	{ErrHeightNotManual, CodeHeightNotManual},

	{distribution.ErrUnauthorized, CodeUnauthorized},
	{distribution.ErrPaused, CodePaused},
	{distribution.ErrNoYield, CodeNoYield},
	{distribution.ErrAlreadyClaimed, CodeAlreadyClaimed},
	{distribution.ErrInvalidFarm, CodeInvalidFarm},
	{distribution.ErrInsufficientFunds, CodeInsufficientFunds},
	{distribution.ErrOracleNotTrusted, CodeOracleNotTrusted},
	{distribution.ErrDistributionActive, CodeDistributionActive},

	{ledger.ErrUnauthorized, CodeUnauthorized},
	{ledger.ErrPaused, CodePaused},
	{ledger.ErrInvalidAmount, CodeInvalidAmount},
	{ledger.ErrInvalidRecipient, CodeInvalidRecipient},
	{ledger.ErrInvalidMinter, CodeInvalidMinter},
	{ledger.ErrAlreadyRegistered, CodeAlreadyRegistered},
	{ledger.ErrMetadataTooLong, CodeMetadataTooLong},
	{ledger.ErrInsufficientBalance, CodeInsufficientBalance},
	{ledger.ErrInvalidFarmID, CodeInvalidFarmID},
	{ledger.ErrTokenLocked, CodeTokenLocked},
}

// Code returns the result code for err. A nil error is CodeOK; an error
// outside the taxonomy, such as a storage failure, is CodeInternal.
func Code(err error) string {
	if err == nil {
		return CodeOK
	}
	for _, e := range codeTable {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return CodeInternal
}
